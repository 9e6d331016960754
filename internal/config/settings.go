package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Audit drivers.
const (
	AuditDriverPostgres = "postgres"
	AuditDriverSQLite   = "sqlite"
	AuditDriverSQS      = "sqs"
	AuditDriverMemory   = "memory"
)

// Settings holds process configuration for the service and CLI.
type Settings struct {
	Stage  string         `mapstructure:"stage"`
	Log    LogSettings    `mapstructure:"log"`
	Server ServerSettings `mapstructure:"server"`
	Rules  RulesSettings  `mapstructure:"rules"`
	Engine EngineSettings `mapstructure:"engine"`
	Audit  AuditSettings  `mapstructure:"audit"`
}

// LogSettings controls the zap logger.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// ServerSettings controls the HTTP listener.
type ServerSettings struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release or test
}

// RulesSettings locates the rule table. An empty path selects the embedded
// defaults.
type RulesSettings struct {
	Path string `mapstructure:"path"`
}

// EngineSettings tunes calculation behaviour.
type EngineSettings struct {
	StrictJurisdictions bool `mapstructure:"strict_jurisdictions"`
}

// AuditSettings selects and configures the audit store.
type AuditSettings struct {
	Driver          string        `mapstructure:"driver"`
	DatabaseURL     string        `mapstructure:"database_url"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	QueueURL        string        `mapstructure:"queue_url"`
	MaxRetries      uint64        `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// LoadSettings reads settings from an optional config file, the environment
// and a .env file if one exists. Environment variables use the WITHHOLDING_
// prefix with dots replaced by underscores (WITHHOLDING_AUDIT_DRIVER).
// DATABASE_URL is honoured as a fallback for audit.database_url.
func LoadSettings(configFile string) (Settings, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if env := os.Getenv("WITHHOLDING_CONFIG"); env != "" {
		v.SetConfigFile(env)
	} else {
		v.SetConfigName("withholding")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WITHHOLDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if s.Audit.DatabaseURL == "" {
		s.Audit.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("stage", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("rules.path", "")
	v.SetDefault("engine.strict_jurisdictions", false)
	v.SetDefault("audit.driver", AuditDriverSQLite)
	v.SetDefault("audit.database_url", "")
	v.SetDefault("audit.sqlite_path", "withholding-audit.db")
	v.SetDefault("audit.queue_url", "")
	v.SetDefault("audit.max_retries", 3)
	v.SetDefault("audit.initial_interval", "200ms")
	v.SetDefault("audit.timeout", "5s")
}

// Validate checks that the selected audit driver has what it needs.
func (s Settings) Validate() error {
	switch s.Audit.Driver {
	case AuditDriverPostgres:
		if s.Audit.DatabaseURL == "" {
			return fmt.Errorf("audit.database_url is required for the postgres driver")
		}
	case AuditDriverSQLite:
		if s.Audit.SQLitePath == "" {
			return fmt.Errorf("audit.sqlite_path is required for the sqlite driver")
		}
	case AuditDriverSQS:
		if s.Audit.QueueURL == "" {
			return fmt.Errorf("audit.queue_url is required for the sqs driver")
		}
	case AuditDriverMemory:
	default:
		return fmt.Errorf("unknown audit driver %q", s.Audit.Driver)
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Server.Port)
	}
	return nil
}
