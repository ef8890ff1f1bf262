package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/signmark/niap-ui-base-sub002/config"
	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// WebhookPublisher delegates platform delivery to the external workflow engine
// via `POST {host}/webhook/publish-{platform}` and translates its response into
// a publication result. The engine owns provider credentials and API quirks.
type WebhookPublisher struct {
	host   string
	client *http.Client
}

// NewWebhookPublisher creates a webhook dispatch adapter from configuration
func NewWebhookPublisher(cfg config.WebhookConfig) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WebhookPublisher{
		host:   strings.TrimRight(cfg.Host, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// webhookResponse is the workflow engine's reply shape. Some workflows report
// the post location under `postUrl`, older ones under `url`.
type webhookResponse struct {
	Success   bool    `json:"success"`
	PostURL   *string `json:"postUrl"`
	URL       *string `json:"url"`
	MessageID *string `json:"messageId"`
	Error     *string `json:"error"`
}

// Publish sends one content item to the workflow engine for the platform.
// Transport failures are returned both as an error and as a failed result so
// the caller can reconcile without special-casing.
func (p *WebhookPublisher) Publish(ctx context.Context, content *models.ContentItem, platform models.Platform, settings models.PlatformSettings) (models.PublicationResult, error) {
	payload, err := json.Marshal(map[string]any{
		"contentId": content.ID,
		"platform":  platform,
		"settings":  settings,
	})
	if err != nil {
		return models.FailedResult(platform, err), err
	}

	endpoint := fmt.Sprintf("%s/webhook/publish-%s", p.host, platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.FailedResult(platform, err), err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.FailedResult(platform, err), err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read webhook response: %w", err)
		return models.FailedResult(platform, err), err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("webhook publish-%s http status: %d", platform, resp.StatusCode)
		return models.FailedResult(platform, err), err
	}

	var out webhookResponse
	if err := json.Unmarshal(body, &out); err != nil {
		err = fmt.Errorf("failed to decode webhook response: %w", err)
		return models.FailedResult(platform, err), err
	}

	if !out.Success {
		result := models.PublicationResult{
			Platform: platform,
			Status:   models.PlatformStatusFailed,
			Error:    out.Error,
		}
		if result.Error == nil {
			result.Error = utils.ToPtr("workflow engine reported failure")
		}
		return result, nil
	}

	postURL := out.PostURL
	if utils.IsBlankPtr(postURL) {
		postURL = out.URL
	}
	return models.PublicationResult{
		Platform:    platform,
		Status:      models.PlatformStatusPublished,
		PostURL:     postURL,
		MessageID:   out.MessageID,
		PublishedAt: utils.UTCNowPtr(),
	}, nil
}
