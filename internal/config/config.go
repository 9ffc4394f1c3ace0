// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the contact store backend.
type StoreConfig struct {
	// Driver selects the backend: postgres, sqlite, or salesforce.
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string  `yaml:"client_id" mapstructure:"client_id"`
	Username string  `yaml:"username" mapstructure:"username"`
	KeyPath  string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string  `yaml:"login_url" mapstructure:"login_url"`
	RateRPS  float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// NotionConfig holds the Notion API token and the scan-report database ID.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	ReportDB string `yaml:"report_db" mapstructure:"report_db"`
}

// MatchConfig configures the duplicate scan.
type MatchConfig struct {
	MinScore  int    `yaml:"min_score" mapstructure:"min_score"`
	Workspace string `yaml:"workspace" mapstructure:"workspace"`
}

// ImportConfig configures export imports.
type ImportConfig struct {
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	Workers     int    `yaml:"workers" mapstructure:"workers"`
	Latin1      bool   `yaml:"latin1" mapstructure:"latin1"`
	FTPUser     string `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPassword string `yaml:"ftp_password" mapstructure:"ftp_password"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEDUPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "dedupe.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_rps", 5)
	v.SetDefault("match.min_score", 60)
	v.SetDefault("match.workspace", "default")
	v.SetDefault("import.batch_size", 500)
	v.SetDefault("import.workers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
