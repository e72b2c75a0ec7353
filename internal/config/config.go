package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// DedupSettings holds deduplicator configuration
type DedupSettings struct {
	// SourcesPath points at the JSON registry of dedup source definitions
	SourcesPath string `mapstructure:"sources_path"`
	// Source is the default source name when the runner gets no -source flag
	Source string `mapstructure:"source"`
}

// HistorySettings holds history builder configuration
type HistorySettings struct {
	// BoundedEnd keeps a literal next-period end on current rows instead of
	// an open end, for consumers that expect the bounded convention
	BoundedEnd bool `mapstructure:"bounded_end"`
}

// AuditSettings holds invariant audit configuration
type AuditSettings struct {
	Worker    WorkerConfig `mapstructure:"worker"`
	PageSize  int          `mapstructure:"page_size"`
	FailOnBad bool         `mapstructure:"fail_on_bad"`
}

// DedupConfig holds configuration for dedup-runner
type DedupConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Dedup      DedupSettings  `mapstructure:"dedup"`
}

// ActivityConfig holds configuration for activity-runner
type ActivityConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// MonthlyConfig holds configuration for monthly-runner
type MonthlyConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// HistoryConfig holds configuration for history-runner
type HistoryConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	History    HistorySettings `mapstructure:"history"`
}

// AuditConfig holds configuration for mart-audit
type AuditConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	History    HistorySettings `mapstructure:"history"`
	Audit      AuditSettings   `mapstructure:"audit"`
}

// LoadDedupConfig loads configuration for dedup-runner
func LoadDedupConfig(configFile string, envPath string) (*DedupConfig, error) {
	v := configureViper("dedup-runner", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("dedup.sources_path", "config/dedup_sources.json")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg DedupConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadActivityConfig loads configuration for activity-runner
func LoadActivityConfig(configFile string, envPath string) (*ActivityConfig, error) {
	v := configureViper("activity-runner", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ActivityConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadMonthlyConfig loads configuration for monthly-runner
func LoadMonthlyConfig(configFile string, envPath string) (*MonthlyConfig, error) {
	v := configureViper("monthly-runner", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg MonthlyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadHistoryConfig loads configuration for history-runner
func LoadHistoryConfig(configFile string, envPath string) (*HistoryConfig, error) {
	v := configureViper("history-runner", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("history.bounded_end", false)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg HistoryConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadAuditConfig loads configuration for mart-audit
func LoadAuditConfig(configFile string, envPath string) (*AuditConfig, error) {
	v := configureViper("mart-audit", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("history.bounded_end", false)
	v.SetDefault("audit.worker.pool_size", 8)
	v.SetDefault("audit.worker.queue_size", 64)
	v.SetDefault("audit.page_size", 500)
	v.SetDefault("audit.fail_on_bad", false)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg AuditConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDatabaseDefaults applies the shared database defaults for batch runners
func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

// readConfig reads the config file, tolerating a missing file so runners can
// be configured entirely through environment variables
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// validateDatabase checks the required database fields
func validateDatabase(db DatabaseConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/history-runner/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("ACTIVITY_MARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Dedup
		"dedup.sources_path",
		"dedup.source",
		// History
		"history.bounded_end",
		// Audit
		"audit.worker.pool_size",
		"audit.worker.queue_size",
		"audit.page_size",
		"audit.fail_on_bad",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
