package utils

import (
	"time"
)

// Token and session time constants
const (
	// SystemTokenTTL is the server-side time-to-live for admin login tokens
	// cached between scheduler cycles (15 minutes, the Directus default)
	SystemTokenTTL = 15 * time.Minute

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// Cache key constants
const (
	// SystemTokenCacheKey stores the admin login token acquired via the CMS auth endpoint
	SystemTokenCacheKey = "system:token"

	// RecentSessionsCacheKey is the sorted set of recently established session tokens
	RecentSessionsCacheKey = "sessions:recent"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
