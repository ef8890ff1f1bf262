package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/repository"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// CredentialStrategy is one tier of system token resolution. Resolve returns
// an empty token when the tier has nothing to offer; an error means the tier
// was tried and failed, which is logged but never aborts the chain.
type CredentialStrategy interface {
	Name() string
	Resolve(ctx context.Context) (string, error)
}

// CredentialResolver composes an ordered list of strategies via first-success.
// No retries happen across tiers within one resolution.
type CredentialResolver struct {
	strategies []CredentialStrategy
	logger     *log.Logger
}

// NewCredentialResolver creates a resolver over the given ordered strategies
func NewCredentialResolver(logger *log.Logger, strategies ...CredentialStrategy) *CredentialResolver {
	if logger == nil {
		logger = log.Default()
	}
	return &CredentialResolver{strategies: strategies, logger: logger}
}

// SystemToken resolves a usable content store token, or ("", false) when every
// tier comes up empty. Callers treat the latter as "cannot proceed this cycle."
func (r *CredentialResolver) SystemToken(ctx context.Context) (string, bool) {
	for _, s := range r.strategies {
		token, err := s.Resolve(ctx)
		if err != nil {
			r.logger.Printf("credentials: strategy %s failed: %v", s.Name(), err)
			continue
		}
		if token != "" {
			return token, true
		}
	}
	return "", false
}

// tokenUsable inspects a JWT's expiry claim without verifying the signature;
// verification is the content store's job, we only avoid sending dead tokens.
// Static tokens that are not JWTs are assumed non-expiring.
func tokenUsable(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	// Leave a margin so the token survives the request it is resolved for
	return exp.Time.After(utils.UTCNowAdd(10 * time.Second))
}

// StaticTokenStrategy serves the statically configured admin token
type StaticTokenStrategy struct {
	token string
}

func NewStaticTokenStrategy(token string) *StaticTokenStrategy {
	return &StaticTokenStrategy{token: token}
}

func (s *StaticTokenStrategy) Name() string { return "static-token" }

func (s *StaticTokenStrategy) Resolve(_ context.Context) (string, error) {
	if utils.IsBlank(s.token) {
		return "", nil
	}
	return s.token, nil
}

// AdminLoginStrategy performs an interactive login against the content store's
// auth endpoint, caching the obtained token with a fixed server-side TTL and
// recording the session for the later resolution tiers.
type AdminLoginStrategy struct {
	store       *DirectusClient
	cache       *redis.Client
	sessions    repository.AdminSessionRepository
	cachePrefix string
	email       string
	password    string
	userID      string
}

func NewAdminLoginStrategy(
	store *DirectusClient,
	cache *redis.Client,
	sessions repository.AdminSessionRepository,
	cachePrefix, email, password, userID string,
) *AdminLoginStrategy {
	return &AdminLoginStrategy{
		store:       store,
		cache:       cache,
		sessions:    sessions,
		cachePrefix: cachePrefix,
		email:       email,
		password:    password,
		userID:      userID,
	}
}

func (s *AdminLoginStrategy) Name() string { return "admin-login" }

func (s *AdminLoginStrategy) Resolve(ctx context.Context) (string, error) {
	if utils.IsBlank(s.email) || utils.IsBlank(s.password) {
		return "", nil
	}

	// Reuse the cached login token while it is still alive
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.cachePrefix+utils.SystemTokenCacheKey).Result()
		if err == nil && cached != "" && tokenUsable(cached) {
			return cached, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			// Cache trouble is not fatal; fall through to a fresh login
		}
	}

	login, err := s.store.Login(ctx, s.email, s.password)
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}

	now := utils.UTCNow()
	ttl := utils.SystemTokenTTL
	if remaining := login.ExpiresAt.Sub(now); remaining > 0 && remaining < ttl {
		ttl = remaining
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, s.cachePrefix+utils.SystemTokenCacheKey, login.AccessToken, ttl).Err()
		_ = s.cache.ZAdd(ctx, s.cachePrefix+utils.RecentSessionsCacheKey, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: login.AccessToken,
		}).Err()
	}

	if s.sessions != nil && s.userID != "" {
		session := &models.AdminSession{
			UserID:         s.userID,
			Token:          login.AccessToken,
			IsActive:       utils.ToPtr(true),
			CreatedAt:      now,
			LastAccessedAt: now,
			ExpiresAt:      login.ExpiresAt,
		}
		// Persisting the session is best-effort; the token is already usable
		_ = s.sessions.Save(ctx, session)
	}

	return login.AccessToken, nil
}

// CachedSessionStrategy serves the most recently established session token
// still alive in the shared cache, pruning dead entries as it goes.
type CachedSessionStrategy struct {
	cache       *redis.Client
	cachePrefix string
}

func NewCachedSessionStrategy(cache *redis.Client, cachePrefix string) *CachedSessionStrategy {
	return &CachedSessionStrategy{cache: cache, cachePrefix: cachePrefix}
}

func (s *CachedSessionStrategy) Name() string { return "cached-session" }

func (s *CachedSessionStrategy) Resolve(ctx context.Context) (string, error) {
	if s.cache == nil {
		return "", nil
	}

	key := s.cachePrefix + utils.RecentSessionsCacheKey
	tokens, err := s.cache.ZRevRange(ctx, key, 0, 9).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("recent sessions lookup: %w", err)
	}

	for _, token := range tokens {
		if tokenUsable(token) {
			return token, nil
		}
		_ = s.cache.ZRem(ctx, key, token).Err()
	}
	return "", nil
}

// StoredTokenStrategy looks up a persisted token for the designated fallback
// identity, the last resort before the cycle is skipped.
type StoredTokenStrategy struct {
	sessions repository.AdminSessionRepository
	userID   string
}

func NewStoredTokenStrategy(sessions repository.AdminSessionRepository, userID string) *StoredTokenStrategy {
	return &StoredTokenStrategy{sessions: sessions, userID: userID}
}

func (s *StoredTokenStrategy) Name() string { return "stored-token" }

func (s *StoredTokenStrategy) Resolve(ctx context.Context) (string, error) {
	if s.sessions == nil || utils.IsBlank(s.userID) {
		return "", nil
	}

	session, err := s.sessions.LatestActiveByUser(ctx, s.userID)
	if err != nil {
		return "", fmt.Errorf("stored token lookup: %w", err)
	}
	if session == nil || !tokenUsable(session.Token) {
		return "", nil
	}

	_ = s.sessions.TouchLastAccessed(ctx, session.ID)
	return session.Token, nil
}
