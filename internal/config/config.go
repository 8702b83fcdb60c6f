package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// StorageConfig selects where edit tokens, participations and form drafts
// are kept.
type StorageConfig struct {
	// Backend is "file" (default) or "postgres".
	Backend     string `yaml:"backend" validate:"oneof=file postgres"`
	Dir         string `yaml:"dir" validate:"required_if=Backend file"`
	DatabaseURL string `yaml:"database_url,omitempty" validate:"required_if=Backend postgres,omitempty,url"`
}

// DiscordConfig enables posting new events to a channel webhook.
type DiscordConfig struct {
	WebhookID    string `yaml:"webhook_id,omitempty" validate:"required_with=WebhookToken,omitempty,numeric"`
	WebhookToken string `yaml:"webhook_token,omitempty" validate:"required_with=WebhookID"`
}

func (d DiscordConfig) Enabled() bool { return d.WebhookID != "" && d.WebhookToken != "" }

type Config struct {
	APIBaseURL         string        `yaml:"api_base_url" validate:"required,url"`
	EmployeeSvcBaseURL string        `yaml:"employee_svc_base_url" validate:"omitempty,url"`
	PublicOrigin       string        `yaml:"public_origin" validate:"required,url"`
	Locale             string        `yaml:"locale" validate:"oneof=nb en"`
	LogLevel           string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogPretty          bool          `yaml:"log_pretty"`
	TimeoutSeconds     int           `yaml:"timeout_seconds" validate:"min=1,max=300"`
	SyncCron           string        `yaml:"sync_cron" validate:"required"`
	Storage            StorageConfig `yaml:"storage"`
	Discord            DiscordConfig `yaml:"discord"`

	// AccessToken is never written to disk. It comes from ARRANGEMENT_TOKEN.
	AccessToken string `yaml:"-"`
}

// RemoteConfig is what the web host publishes under /api/config.
type RemoteConfig struct {
	EmployeeSvcURL string `json:"employeeSvcUrl"`
	Audience       string `json:"audience"`
	IssuerDomain   string `json:"issuerDomain"`
	Scopes         string `json:"scopes"`
}

func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "arrangement")
	}
	return ".arrangement"
}

func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     "https://api.bekk.no/arrangement-svc",
		PublicOrigin:   "https://skjer.bekk.no",
		Locale:         "nb",
		LogLevel:       "info",
		TimeoutSeconds: 15,
		SyncCron:       "*/15 * * * *",
		Storage:        StorageConfig{Backend: BackendFile, Dir: DefaultDir()},
	}
}

// Normalize fills in zero values so older or partial files still load.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.APIBaseURL == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	if c.PublicOrigin == "" {
		c.PublicOrigin = d.PublicOrigin
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	c.EmployeeSvcBaseURL = strings.TrimRight(c.EmployeeSvcBaseURL, "/")
	c.PublicOrigin = strings.TrimRight(c.PublicOrigin, "/")
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.SyncCron == "" {
		c.SyncCron = d.SyncCron
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Backend == BackendFile && c.Storage.Dir == "" {
		c.Storage.Dir = d.Storage.Dir
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, creating it with defaults on first run,
// then applies environment overrides. A .env file in the working directory
// is optional.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	_ = godotenv.Load()

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.APIBaseURL, "ARRANGEMENT_API_URL")
	set(&c.EmployeeSvcBaseURL, "EMPLOYEE_SVC_URL")
	set(&c.PublicOrigin, "ARRANGEMENT_ORIGIN")
	set(&c.AccessToken, "ARRANGEMENT_TOKEN")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.Storage.DatabaseURL, "DATABASE_URL")
	set(&c.Discord.WebhookID, "DISCORD_WEBHOOK_ID")
	set(&c.Discord.WebhookToken, "DISCORD_WEBHOOK_TOKEN")
	if os.Getenv("DATABASE_URL") != "" {
		c.Storage.Backend = BackendPostgres
	}
}

// WithRemote returns a copy using the employee service published by the
// web host. An empty remote value keeps the local one.
func (c Config) WithRemote(r RemoteConfig) *Config {
	if r.EmployeeSvcURL != "" {
		c.EmployeeSvcBaseURL = strings.TrimRight(r.EmployeeSvcURL, "/")
	}
	return &c
}

// Save writes cfg as YAML with 0600 permissions via a temp file and rename.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".arrangement-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
