package constants

import (
	"net/http"
	"time"
)

// API defaults
const (
	DefaultAPIPrefix      = "api"
	DefaultLoginEndpoint  = "users/login"
	DefaultLogoutEndpoint = "users/logout"

	// UnauthorizedStatus triggers the session expiry sequence.
	UnauthorizedStatus = http.StatusUnauthorized
	// DefaultFailureStatus is reported when the transport produced no response.
	DefaultFailureStatus = http.StatusInternalServerError

	FallbackMessage = "Oops! Something went wrong"
	ExpiryMessage   = "Your sign-in expired, please sign in again"
	UnsavedMessage  = "You have unsaved changes do you want to continue?"
)

// Routing defaults
const (
	DefaultAdminPrefix     = "/admin"
	DefaultAdminLoginPath  = "/admin/login"
	DefaultPortalLoginPath = "/login"
)

// Storage defaults
const (
	// AuthStorageKey is the well-known key holding the encoded credential.
	AuthStorageKey = "auth"

	DefaultStorageTable    = "local_storage"
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	DefaultPostgresMaxConnections = 10
	DefaultPostgresMaxIdleConns   = 2
	DefaultMaxConnLifetime        = 5 * time.Minute
	DefaultMaxIdleTime            = 1 * time.Minute
	DefaultSQLiteLifetime         = 10 * time.Minute
	DefaultSQLiteIdleTime         = 5 * time.Minute
)

// Header values
const (
	ContentTypeJSON     = "application/json"
	HeaderAuthorization = "authorization"
)

// Request intents
const (
	ActionDownload = "download"
	ActionUpload   = "upload"
)
