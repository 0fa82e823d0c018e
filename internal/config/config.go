package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	Port int `yaml:"port"`

	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
	Policy  PolicyConfig  `yaml:"policy"`

	CORSOrigins []string `yaml:"cors_origins"`
}

type LLMConfig struct {
	Provider string        `yaml:"provider"` // openai | gemini | mock
	Timeout  time.Duration `yaml:"timeout"`

	OpenAIKey     string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	GeminiKey   string `yaml:"gemini_api_key"`
	GeminiModel string `yaml:"gemini_model"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // memory | postgres | sqlite

	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	SQLitePath string `yaml:"sqlite_path"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// PolicyConfig: переключатели контрактов режимов.
type PolicyConfig struct {
	PushAllowClarify bool `yaml:"push_allow_clarify"`
}

func Default() *Config {
	return &Config{
		Port: 8080,
		LLM: LLMConfig{
			Provider:    "openai",
			Timeout:     30 * time.Second,
			OpenAIModel: "gpt-4o-mini",
			GeminiModel: "gemini-2.5-flash",
		},
		Storage: StorageConfig{
			Backend:    StorageMemory,
			DBPort:     5432,
			SQLitePath: "thinkclear.db",
		},
		Auth: AuthConfig{
			SessionTTL: 30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORSOrigins: []string{"*"},
	}
}

// Load: defaults, then the YAML file at path (if any), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("THINKCLEAR_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.GeminiKey, "GEMINI_API_KEY")
	setString(&c.LLM.GeminiModel, "GEMINI_MODEL")

	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.DBHost, "DB_HOST")
	setString(&c.Storage.DBUser, "DB_USER")
	setString(&c.Storage.DBPassword, "DB_PASSWORD")
	setString(&c.Storage.DBName, "DB_NAME")
	setString(&c.Storage.SQLitePath, "SQLITE_PATH")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}

	if err := setInt(&c.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Storage.DBPort, "DB_PORT"); err != nil {
		return err
	}
	if v := os.Getenv("PUSH_ALLOW_CLARIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PUSH_ALLOW_CLARIFY: %w", err)
		}
		c.Policy.PushAllowClarify = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks what cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DBHost == "" || c.Storage.DBName == "" {
			errs = append(errs, errors.New("postgres storage needs DB_HOST and DB_NAME"))
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite storage needs SQLITE_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	switch c.LLM.Provider {
	case "openai", "gemini", "mock":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ConnString is the PostgreSQL DSN.
func (c *Config) ConnString() string {
	s := c.Storage
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		s.DBHost, s.DBPort, s.DBUser, s.DBPassword, s.DBName,
	)
}

// DSN returns the database/sql driver name and data source for the storage
// backend. Memory storage has none.
func (c *Config) DSN() (driver, dsn string) {
	switch c.Storage.Backend {
	case StoragePostgres:
		return "postgres", c.ConnString()
	case StorageSQLite:
		return "sqlite", c.Storage.SQLitePath
	default:
		return "", ""
	}
}
