// Package services provides external service integrations and technical concerns for the application
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/signmark/niap-ui-base-sub002/config"
	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// Directus collection names holding campaign content and campaigns
const (
	contentCollection  = "campaign_content"
	campaignCollection = "user_campaigns"
)

// DirectusClient talks to the backing Directus content store over HTTP.
// It is the single source of truth for content items; nothing is cached here.
type DirectusClient struct {
	baseURL string
	client  *http.Client
}

// NewDirectusClient creates a content store client from configuration
func NewDirectusClient(cfg config.DirectusConfig) *DirectusClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DirectusClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// directusEnvelope is the standard Directus response wrapper
type directusEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// LoginResult carries the outcome of an interactive auth exchange
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Login performs an interactive credential exchange against the auth endpoint
func (d *DirectusClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("admin credentials not configured")
	}

	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth login http status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env directusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	var data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Expires      int64  `json:"expires"` // milliseconds
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode login payload: %w", err)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in login response")
	}

	expiresAt := utils.UTCNowAdd(time.Duration(data.Expires) * time.Millisecond)
	if data.Expires <= 0 {
		expiresAt = utils.UTCNowAdd(utils.SystemTokenTTL)
	}
	return &LoginResult{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// GetContent retrieves a content item by id. Returns (nil, nil) when absent.
func (d *DirectusClient) GetContent(ctx context.Context, token, id string) (*models.ContentItem, error) {
	raw, err := d.getItem(ctx, token, contentCollection, id)
	if err != nil || raw == nil {
		return nil, err
	}

	var item models.ContentItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode content item %s: %w", id, err)
	}
	return &item, nil
}

// GetCampaign retrieves a campaign by id. Returns (nil, nil) when absent.
func (d *DirectusClient) GetCampaign(ctx context.Context, token, id string) (*models.Campaign, error) {
	raw, err := d.getItem(ctx, token, campaignCollection, id)
	if err != nil || raw == nil {
		return nil, err
	}

	var campaign models.Campaign
	if err := json.Unmarshal(raw, &campaign); err != nil {
		return nil, fmt.Errorf("failed to decode campaign %s: %w", id, err)
	}
	return &campaign, nil
}

// ListScheduledContent returns every item with scheduled status and a non-null
// scheduled_at, sorted by scheduled_at ascending. Due filtering happens in the
// scheduler; the store query stays time-independent.
func (d *DirectusClient) ListScheduledContent(ctx context.Context, token string) ([]*models.ContentItem, error) {
	q := url.Values{}
	q.Set("filter[status][_eq]", string(models.ContentStatusScheduled))
	q.Set("filter[scheduled_at][_nnull]", "true")
	q.Set("sort", "scheduled_at")
	q.Set("limit", "-1")

	endpoint := fmt.Sprintf("%s/items/%s?%s", d.baseURL, contentCollection, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list scheduled content http status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env directusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	var items []*models.ContentItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode content items: %w", err)
	}
	return items, nil
}

// UpdateContent patches the given fields of a content item in one call
func (d *DirectusClient) UpdateContent(ctx context.Context, token, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal content update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/items/%s/%s", d.baseURL, contentCollection, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("update content %s http status: %d", id, resp.StatusCode)
	}
	return nil
}

// getItem fetches a single item from a collection, returning the raw data
// payload, or nil when the store reports the item missing or forbidden.
func (d *DirectusClient) getItem(ctx context.Context, token, collection, id string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/items/%s/%s", d.baseURL, collection, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Directus answers 403 for unknown ids to avoid existence leaks
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s/%s http status: %d", collection, id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env directusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", collection, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	return env.Data, nil
}
