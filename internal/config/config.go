package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Backend    BackendConfig    `mapstructure:"backend" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Payment    PaymentConfig    `mapstructure:"payment" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Export     ExportConfig     `mapstructure:"export" validate:"required"`
}

// ServerConfig contains the HTTP session API and logging settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
	// AllowedOrigins lists browser origins permitted by CORS. Empty allows none.
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	SessionIdleMinutes int      `mapstructure:"session_idle_minutes" validate:"gt=0"`
}

// SessionIdle returns the idle period after which a session is swept.
func (c ServerConfig) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// BackendConfig points at the flashcard and payment backend.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// Timeout returns the per-request timeout for backend calls.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenerationConfig selects how flashcards are generated.
type GenerationConfig struct {
	// Provider is "remote" for the backend endpoint or "gemini" to call the model directly.
	Provider       string `mapstructure:"provider" validate:"required,oneof=remote gemini"`
	MinNotesLength int    `mapstructure:"min_notes_length" validate:"gte=1"`
}

// LLMConfig contains Gemini settings, used when the generation provider is "gemini".
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	MaxCards           int    `mapstructure:"max_cards" validate:"gte=1"`
	MaxRetries         int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// PaymentConfig contains the export charge settings.
type PaymentConfig struct {
	Amount           float64 `mapstructure:"amount" validate:"gt=0"`
	EntitlementHours int     `mapstructure:"entitlement_hours" validate:"gt=0"`
}

// EntitlementWindow returns how long a payment unlocks the export.
func (c PaymentConfig) EntitlementWindow() time.Duration {
	return time.Duration(c.EntitlementHours) * time.Hour
}

// StorageConfig selects the session storage backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `mapstructure:"dsn" validate:"required_unless=Driver memory"`
}

// AuthConfig contains session token settings for the HTTP API.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// TokenLifetime returns the session token lifetime.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// ExportConfig controls the exported text.
type ExportConfig struct {
	// DateLayout is a Go time layout for the "Generated on" line.
	DateLayout string `mapstructure:"date_layout" validate:"required"`
}
