package models

// PlatformSettings carries the per-platform credentials and routing details a
// campaign owns. The exact keys differ per platform; unknown keys are preserved
// so the workflow engine receives everything the campaign configured.
type PlatformSettings struct {
	Token     string `json:"token,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	Username  string `json:"username,omitempty"`
}

// SocialMediaSettings maps platform name to its campaign-level settings
type SocialMediaSettings map[Platform]PlatformSettings

// Campaign owns platform credentials; the scheduler reads it, never writes it
type Campaign struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	UserID              string              `json:"user_id"`
	SocialMediaSettings SocialMediaSettings `json:"social_media_settings"`
}

// SettingsFor returns the campaign's settings for the platform, if configured
func (c *Campaign) SettingsFor(platform Platform) (PlatformSettings, bool) {
	s, ok := c.SocialMediaSettings[platform]
	return s, ok
}
