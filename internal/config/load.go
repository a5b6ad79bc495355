package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. STUDYBUDDY_SERVER_PORT.
const EnvPrefix = "STUDYBUDDY"

// ErrGeminiKeyRequired is returned when the gemini provider is selected without an API key.
var ErrGeminiKeyRequired = errors.New("llm.gemini_api_key is required when generation.provider is gemini")

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":        "server.port",
	"log-level":   "server.log_level",
	"log-format":  "server.log_format",
	"backend-url": "backend.base_url",
	"provider":    "generation.provider",
	"storage":     "storage.driver",
	"dsn":         "storage.dsn",
}

// LoadOptions tunes where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file. When empty, config.yaml is
	// looked up in the working directory and a missing file is not an error.
	ConfigFile string
	// Flags, when set, override file and environment values for the flags in flagKeys.
	Flags *pflag.FlagSet
}

// Load reads configuration from defaults, an optional config file, environment
// variables and command-line flags, in increasing order of precedence.
// Returns a populated Config or an error if loading or validation fails.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Generation.Provider == "gemini" && cfg.LLM.GeminiAPIKey == "" {
		return fmt.Errorf("invalid configuration: %w", ErrGeminiKeyRequired)
	}
	return nil
}

// RegisterFlags adds the overridable flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 8080, "HTTP port for the session API")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text)")
	fs.String("backend-url", "http://localhost:5000", "base URL of the flashcard backend")
	fs.String("provider", "remote", "flashcard generator (remote, gemini)")
	fs.String("storage", "memory", "session storage driver (memory, sqlite, postgres)")
	fs.String("dsn", "", "sqlite path or postgres URL for session storage")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.session_idle_minutes", 120)

	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.timeout_seconds", 30)

	v.SetDefault("generation.provider", "remote")
	v.SetDefault("generation.min_notes_length", 50)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.max_cards", 12)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 1)

	v.SetDefault("payment.amount", 1.00)
	v.SetDefault("payment.entitlement_hours", 24)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 720)

	v.SetDefault("export.date_layout", "1/2/2006")
}
