// nationportal/config/config.go
package config

const (
	AppVersion = "1.0.0"
	AppTitle   = "SUPERPOWER v1.0"

	// Persistence Defaults
	DefaultDataFile  = "nation_data.json"
	DefaultBackupDir = "./backups"
	DefaultUploadDir = "./uploads"
	DefaultStaticDir = "./static"

	// AdminCodeDigest is the sha256 digest of the admin code ("admin123").
	AdminCodeDigest = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"

	// Display labels
	AdminAuthorLabel  = "대통령실"
	AdminDisplayLabel = "대통령 (관리자)"
	CitizenSuffix     = "시민"

	// Form Limits
	MaxTitleLen   = 200
	MaxContentLen = 8000
	MaxReasonLen  = 500

	// Emblem Upload Limits
	MaxFileSize     = 5 * 1024 * 1024 // 5MB
	MaxEmblemWidth  = 1600
	MaxEmblemHeight = 1600

	// Sessions
	SessionCookieName  = "portal_session"
	DefaultSessionTTL  = "12h"
	DefaultListenPort  = "8080"
	DefaultShutdownSec = 5

	// Rate Limiting Defaults
	DefaultRateLimitEvery  = "10s"
	DefaultRateLimitBurst  = 5
	DefaultRateLimitPrune  = "1h"
	DefaultRateLimitExpire = "24h"
)
