package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	AI        AIConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// DemoMode runs the API against an in-memory database seeded with
	// sample data, so the stack can be tried without Postgres.
	DemoMode bool
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// RedisConfig holds the connection settings for sessions and UI state
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds session and credential settings
type AuthConfig struct {
	// SessionTTL is how long a session stays valid without re-login (seconds)
	SessionTTL int
	// SessionCookieName is the cookie carrying the session token
	SessionCookieName string
	// CSRFCookieName is the cookie carrying the CSRF token
	CSRFCookieName string
	// CookieSecure marks auth cookies Secure; disable only for local HTTP
	CookieSecure bool
	// BcryptCost is the work factor for password hashing
	BcryptCost int
	// ResetTokenSecret signs password reset JWTs
	ResetTokenSecret string
	// ResetTokenTTL is how long a reset link stays valid (seconds)
	ResetTokenTTL int
}

// AIConfig holds settings for the Anthropic-backed assistant endpoints
type AIConfig struct {
	// Enabled controls whether the AI routes are mounted
	Enabled bool
	// APIKey is the Anthropic API key
	APIKey string
	// Model is the model identifier used for all assistant calls
	Model string
	// MaxTokens caps the length of generated replies
	MaxTokens int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	BurstSize             int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	// Enabled controls whether the cron scheduler starts
	Enabled bool
	// StaleLeadCron is the schedule for the stale lead sweep (with seconds field)
	StaleLeadCron string
	// OverdueInvoiceCron is the schedule for the overdue invoice sweep
	OverdueInvoiceCron string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// SessionTTLDuration returns session lifetime as duration
func (a *AuthConfig) SessionTTLDuration() time.Duration {
	return time.Duration(a.SessionTTL) * time.Second
}

// ResetTokenTTLDuration returns reset token lifetime as duration
func (a *AuthConfig) ResetTokenTTLDuration() time.Duration {
	return time.Duration(a.ResetTokenTTL) * time.Second
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets come from the environment only, never the config file
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = v.GetString("ANTHROPIC_API_KEY")
	}
	if cfg.Auth.ResetTokenSecret == "" {
		cfg.Auth.ResetTokenSecret = v.GetString("RESET_TOKEN_SECRET")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	}

	if v.GetBool("DEMO_MODE") {
		cfg.App.DemoMode = true
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Saqr Sales API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.demoMode", false)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "saqr_sales")
	v.SetDefault("database.user", "saqr_user")
	v.SetDefault("database.password", "saqr_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Auth defaults
	v.SetDefault("auth.sessionTTL", 28800) // 8 hours
	v.SetDefault("auth.sessionCookieName", "saqr_session")
	v.SetDefault("auth.csrfCookieName", "saqr_csrf")
	v.SetDefault("auth.cookieSecure", false)
	v.SetDefault("auth.bcryptCost", 12)
	v.SetDefault("auth.resetTokenTTL", 3600) // 1 hour

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.maxTokens", 1024)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Job defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.staleLeadCron", "0 0 * * * *")       // hourly
	v.SetDefault("jobs.overdueInvoiceCron", "0 30 6 * * *") // daily 06:30
}
