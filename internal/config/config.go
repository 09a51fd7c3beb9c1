package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tripdesk/agency-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Pricing   PricingConfig
	Realtime  RealtimeConfig
	Jobs      JobsConfig
	Documents DocumentsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig selects the relational store. Driver is "postgres",
// "sqlite" or "auto"; auto uses postgres when a host is set and the local
// sqlite file otherwise.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AuthConfig configures token issuing and the system API key
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	// TokenTTL is the access token lifetime in minutes
	TokenTTL int
	// PasswordResetTTL is the reset token lifetime in minutes
	PasswordResetTTL int
	ApiKey           string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	SnapshotPrefix        string
	DocumentPrefix        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
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
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	// AuthRequestsPerMinute limits sign-in and password reset attempts per IP
	AuthRequestsPerMinute int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// VehicleClassConfig maps parties of up to MaxPax people to a vehicle class
type VehicleClassConfig struct {
	Class  string
	MaxPax int
}

// PricingConfig holds the tables the cost aggregator is parameterised with
type PricingConfig struct {
	Currency        string
	Markups         map[string]float64
	VehicleClasses  []VehicleClassConfig
	PeakMonths      []int
	OffSeasonMonths []int
}

// RealtimeConfig selects the chat event broker: "memory" or "redis"
type RealtimeConfig struct {
	Mode          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ChannelPrefix string
	BufferSize    int
}

// JobsConfig configures the background scheduler
type JobsConfig struct {
	Enabled              bool
	Timezone             string
	FollowUpReminderCron string
	CatalogSnapshotCron  string
	AuditPurgeCron       string
	// AuditRetentionDays of zero keeps audit entries forever
	AuditRetentionDays int
	// Timeout is the per-run job timeout in seconds
	Timeout int
}

// DocumentsConfig configures generated itinerary documents
type DocumentsConfig struct {
	PublicBaseURL string
	CompanyName   string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ResolvedDriver returns the driver to open, resolving "auto"
func (d *DatabaseConfig) ResolvedDriver() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		if d.Host == "" {
			return "sqlite"
		}
		return "postgres"
	}
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

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TokenTTLDuration returns the access token lifetime
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

// PasswordResetTTLDuration returns the reset token lifetime
func (a *AuthConfig) PasswordResetTTLDuration() time.Duration {
	return time.Duration(a.PasswordResetTTL) * time.Minute
}

// TimeoutDuration returns the per-run job timeout
func (j *JobsConfig) TimeoutDuration() time.Duration {
	return time.Duration(j.Timeout) * time.Second
}

// Location returns the scheduler timezone, falling back to UTC
func (j *JobsConfig) Location() *time.Location {
	if j.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from file and environment variables.
// It does not contact Key Vault; use LoadWithSecrets for that.
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

	if cfg.Auth.ApiKey == "" {
		cfg.Auth.ApiKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if cfg.Realtime.RedisAddr == "" {
		cfg.Realtime.RedisAddr = v.GetString("REDIS_ADDR")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the
// configured source. Key Vault is used only when USE_AZURE_KEY_VAULT=true
// and the environment is staging or production.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, cfg.validate()
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, cfg.validate()
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	applySecrets(ctx, cfg, provider, logger)

	return cfg, cfg.validate()
}

// secretSource is the part of secrets.Provider used to fill in config
type secretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

func applySecrets(ctx context.Context, cfg *Config, provider secretSource, logger *zap.Logger) {
	set := func(target *string, secretName, envName string) {
		value, err := provider.GetSecretOrEnv(ctx, secretName, envName)
		if err != nil || value == "" {
			logger.Debug("Secret not resolved, keeping configured value",
				zap.String("secret_name", secretName),
			)
			return
		}
		*target = value
	}

	set(&cfg.Database.Host, "POSTGRES-MAIN-HOST", "DATABASE_HOST")
	set(&cfg.Database.User, "POSTGRES-MAIN-USER", "DATABASE_USER")
	set(&cfg.Database.Password, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD")
	set(&cfg.Auth.JWTSecret, "jwt-signing-secret", "JWT_SECRET")
	set(&cfg.Auth.ApiKey, "admin-api-key", "ADMIN_API_KEY")
	set(&cfg.Storage.CloudConnectionString, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
	set(&cfg.Realtime.RedisPassword, "redis-password", "REALTIME_REDISPASSWORD")

	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	logger.Info("Secrets loaded from Azure Key Vault")
}

// validate rejects configurations the service cannot run with
func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if c.App.Environment == "production" || c.App.Environment == "staging" {
			return fmt.Errorf("auth.jwtSecret (JWT_SECRET) is required in %s", c.App.Environment)
		}
		c.Auth.JWTSecret = "development-only-secret-change-me"
	}
	if c.Realtime.Mode == "redis" && c.Realtime.RedisAddr == "" {
		return fmt.Errorf("realtime.redisAddr is required when realtime.mode is redis")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Tripdesk Agency API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "auto")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "agency")
	v.SetDefault("database.user", "agency_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "./data/appdata.db")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "tripdesk-agency-api")
	v.SetDefault("auth.tokenTTL", 720)
	v.SetDefault("auth.passwordResetTTL", 60)
	v.SetDefault("auth.apiKey", "")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "agency")
	v.SetDefault("storage.snapshotPrefix", "snapshots")
	v.SetDefault("storage.documentPrefix", "itineraries")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 240)
	v.SetDefault("rateLimit.authRequestsPerMinute", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	v.SetDefault("pricing.currency", "USD")
	v.SetDefault("pricing.markups", map[string]float64{"admin": 0, "agent": 35, "sales": 50})
	v.SetDefault("pricing.peakMonths", []int{7, 8, 12})
	v.SetDefault("pricing.offSeasonMonths", []int{1, 2, 3})

	v.SetDefault("realtime.mode", "memory")
	v.SetDefault("realtime.redisAddr", "")
	v.SetDefault("realtime.redisPassword", "")
	v.SetDefault("realtime.redisDB", 0)
	v.SetDefault("realtime.channelPrefix", "agency")
	v.SetDefault("realtime.bufferSize", 32)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.timezone", "UTC")
	v.SetDefault("jobs.followUpReminderCron", "0 0 8 * * *")
	v.SetDefault("jobs.catalogSnapshotCron", "0 30 2 * * *")
	v.SetDefault("jobs.auditPurgeCron", "0 0 3 * * 0")
	v.SetDefault("jobs.auditRetentionDays", 365)
	v.SetDefault("jobs.timeout", 300)

	v.SetDefault("documents.publicBaseURL", "http://localhost:8080")
	v.SetDefault("documents.companyName", "Tripdesk Travel")
}
