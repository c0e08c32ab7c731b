package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/sentinelmcp/sentinelmcp/internal/observability"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig               `mapstructure:"server"`
	MCP      MCPConfig                  `mapstructure:"mcp"`
	Auth     AuthConfig                 `mapstructure:"auth"`
	Backends BackendsConfig             `mapstructure:"backends"`
	Tracing  observability.TracerConfig `mapstructure:"tracing"`
	Metrics  MetricsConfig              `mapstructure:"metrics"`
	Debug    bool                       `mapstructure:"debug"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	BodyLimit       int           `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig contains MCP endpoint authentication settings
type AuthConfig struct {
	// Mode selects how bearer tokens are verified: "none", "static",
	// or "jwt".
	Mode string `mapstructure:"mode"`

	// StaticToken is the accepted token in static mode.
	StaticToken string `mapstructure:"static_token"`

	// JWTSecret signs and verifies tokens in jwt mode.
	JWTSecret string `mapstructure:"jwt_secret"`

	// DefaultScopes are granted to authenticated callers whose token
	// carries no scopes claim.
	DefaultScopes []string `mapstructure:"default_scopes"`
}

// Validate validates authentication configuration
func (ac *AuthConfig) Validate() error {
	switch ac.Mode {
	case "none":
		return nil
	case "static":
		if ac.StaticToken == "" {
			return fmt.Errorf("auth static_token is required in static mode")
		}
	case "jwt":
		if ac.JWTSecret == "" {
			return fmt.Errorf("auth jwt_secret is required in jwt mode")
		}
	default:
		return fmt.Errorf("auth mode must be 'none', 'static', or 'jwt', got: %s", ac.Mode)
	}
	return nil
}

// BackendsConfig locates the SentinelOne console APIs the server fronts.
type BackendsConfig struct {
	// ConsoleBaseURL is the console root, https only.
	ConsoleBaseURL string `mapstructure:"console_base_url"`

	// ServiceToken authenticates every backend call.
	ServiceToken string `mapstructure:"service_token"`

	// Per-service endpoint paths under ConsoleBaseURL.
	AlertsEndpoint            string `mapstructure:"alerts_endpoint"`
	MisconfigurationsEndpoint string `mapstructure:"misconfigurations_endpoint"`
	VulnerabilitiesEndpoint   string `mapstructure:"vulnerabilities_endpoint"`
	InventoryEndpoint         string `mapstructure:"inventory_endpoint"`

	// Transport tuning, shared by every backend client.
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RetryWaitMin      time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax      time.Duration `mapstructure:"retry_wait_max"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// Validate validates backend configuration
func (bc *BackendsConfig) Validate() error {
	if bc.ConsoleBaseURL == "" {
		return fmt.Errorf("backends console_base_url is required")
	}
	if !strings.HasPrefix(bc.ConsoleBaseURL, "https://") {
		return fmt.Errorf("backends console_base_url must use HTTPS")
	}
	if bc.ServiceToken == "" {
		return fmt.Errorf("backends service_token is required")
	}

	endpoints := map[string]string{
		"alerts_endpoint":            bc.AlertsEndpoint,
		"misconfigurations_endpoint": bc.MisconfigurationsEndpoint,
		"vulnerabilities_endpoint":   bc.VulnerabilitiesEndpoint,
		"inventory_endpoint":         bc.InventoryEndpoint,
	}
	for name, endpoint := range endpoints {
		if !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("backends %s must start with a slash, got: %q", name, endpoint)
		}
	}

	if bc.MaxAttempts < 1 {
		return fmt.Errorf("backends max_attempts must be at least 1, got: %d", bc.MaxAttempts)
	}
	if bc.RetryWaitMin > bc.RetryWaitMax {
		return fmt.Errorf("backends retry_wait_min cannot exceed retry_wait_max")
	}
	return nil
}

// GraphQLURL joins the console base URL with a service endpoint path.
func (bc *BackendsConfig) GraphQLURL(endpoint string) string {
	return strings.TrimRight(bc.ConsoleBaseURL, "/") + endpoint
}

// MetricsConfig contains Prometheus exposure settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	viper.SetConfigName("sentinelmcp")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sentinelmcp")

	// Set defaults
	setDefaults()

	// Enable environment variable support with underscore replacer
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SENTINELMCP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (if it exists)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
		log.Info().Msg("No config file found, using environment variables and defaults")
	} else {
		log.Info().Str("file", viper.ConfigFileUsed()).Msg("Config file loaded")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	// Check multiple locations for .env file
	locations := []string{
		".env",
		".env.local",
		"../.env", // For when running from subdirectories
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Info().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.body_limit", 4*1024*1024) // 4MB
	viper.SetDefault("server.shutdown_timeout", "10s")

	// MCP defaults
	viper.SetDefault("mcp.enabled", true)
	viper.SetDefault("mcp.base_path", "/mcp")
	viper.SetDefault("mcp.session_timeout", "30m")
	viper.SetDefault("mcp.max_message_size", 1024*1024) // 1MB
	viper.SetDefault("mcp.rate_limit_per_min", 120)

	// Auth defaults
	viper.SetDefault("auth.mode", "static")
	viper.SetDefault("auth.default_scopes", []string{
		"read:alerts",
		"read:misconfigurations",
		"read:vulnerabilities",
		"read:inventory",
	})

	// Backend defaults
	viper.SetDefault("backends.alerts_endpoint", "/web/api/v2.1/unifiedalerts/graphql")
	viper.SetDefault("backends.misconfigurations_endpoint", "/web/api/v2.1/xspm/findings/misconfigurations/graphql")
	viper.SetDefault("backends.vulnerabilities_endpoint", "/web/api/v2.1/xspm/findings/vulnerabilities/graphql")
	viper.SetDefault("backends.inventory_endpoint", "/web/api/v2.1/xdr/assets")
	viper.SetDefault("backends.timeout", "30s")
	viper.SetDefault("backends.max_attempts", 3)
	viper.SetDefault("backends.retry_wait_min", "2s")
	viper.SetDefault("backends.retry_wait_max", "10s")
	viper.SetDefault("backends.requests_per_second", 0)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4317")
	viper.SetDefault("tracing.service_name", "sentinelmcp")
	viper.SetDefault("tracing.environment", "development")
	viper.SetDefault("tracing.sample_rate", 1.0)
	viper.SetDefault("tracing.insecure", true)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// General defaults
	viper.SetDefault("debug", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.MCP.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Backends.Validate(); err != nil {
		return err
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with a slash, got: %q", c.Metrics.Path)
	}
	return nil
}
