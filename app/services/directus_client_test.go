package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signmark/niap-ui-base-sub002/config"
	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

func directusClientFor(srv *httptest.Server) *DirectusClient {
	return NewDirectusClient(config.DirectusConfig{URL: srv.URL})
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin@example.com", creds["email"])
		assert.Equal(t, "secret", creds["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"access_token":  "tok-123",
				"refresh_token": "ref-456",
				"expires":       900000, // 15 minutes in milliseconds
			},
		})
	}))
	defer srv.Close()

	client := directusClientFor(srv)
	login, err := client.Login(context.Background(), "admin@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", login.AccessToken)
	assert.Equal(t, "ref-456", login.RefreshToken)

	remaining := login.ExpiresAt.Sub(utils.UTCNow())
	assert.Greater(t, remaining, 14*time.Minute)
	assert.LessOrEqual(t, remaining, 15*time.Minute)
}

func TestLoginWithoutCredentials(t *testing.T) {
	client := NewDirectusClient(config.DirectusConfig{URL: "http://localhost:1"})
	_, err := client.Login(context.Background(), "", "")
	require.Error(t, err)
}

func TestListScheduledContentQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/items/campaign_content", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "scheduled", q.Get("filter[status][_eq]"))
		assert.Equal(t, "true", q.Get("filter[scheduled_at][_nnull]"))
		assert.Equal(t, "scheduled_at", q.Get("sort"))
		assert.Equal(t, "-1", q.Get("limit"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"id":           "c1",
					"campaign_id":  "camp-1",
					"status":       "scheduled",
					"scheduled_at": "2026-01-01T10:00:00Z",
					"social_platforms": map[string]any{
						"telegram": map[string]any{"status": "pending"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := directusClientFor(srv)
	items, err := client.ListScheduledContent(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c1", items[0].ID)
	assert.Equal(t, models.ContentStatusScheduled, items[0].Status)
	entry, ok := items[0].SocialPlatforms[models.PlatformTelegram]
	require.True(t, ok)
	assert.Equal(t, models.PlatformStatusPending, entry.Status)
}

func TestGetContentNotFoundVariants(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		client := directusClientFor(srv)
		item, err := client.GetContent(context.Background(), "tok", "missing")

		require.NoError(t, err)
		assert.Nil(t, item)
		srv.Close()
	}
}

func TestGetCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/items/user_campaigns/camp-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":      "camp-1",
				"user_id": "user-1",
				"social_media_settings": map[string]any{
					"telegram": map[string]any{"token": "tg-token", "chat_id": "chat"},
				},
			},
		})
	}))
	defer srv.Close()

	client := directusClientFor(srv)
	campaign, err := client.GetCampaign(context.Background(), "tok", "camp-1")

	require.NoError(t, err)
	require.NotNil(t, campaign)
	assert.Equal(t, "user-1", campaign.UserID)

	settings, ok := campaign.SettingsFor(models.PlatformTelegram)
	require.True(t, ok)
	assert.Equal(t, "tg-token", settings.Token)
}

func TestUpdateContentPatchBody(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "c1"}})
	}))
	defer srv.Close()

	client := directusClientFor(srv)
	err := client.UpdateContent(context.Background(), "tok", "c1", map[string]any{
		"status": models.ContentStatusPublished,
		"social_platforms": models.SocialPlatforms{
			models.PlatformTelegram: {
				Status:  models.PlatformStatusPublished,
				PostURL: utils.ToPtr("https://t.me/c/1/1"),
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/items/campaign_content/c1", gotPath)
	assert.Equal(t, "published", gotBody["status"])

	platforms, ok := gotBody["social_platforms"].(map[string]any)
	require.True(t, ok)
	tg, ok := platforms["telegram"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "published", tg["status"])
	assert.Equal(t, "https://t.me/c/1/1", tg["postUrl"])
}

func TestUpdateContentNoFieldsIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := directusClientFor(srv)
	require.NoError(t, client.UpdateContent(context.Background(), "tok", "c1", nil))
	assert.False(t, called)
}
