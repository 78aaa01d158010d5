package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Moderation struct {
		URL     string
		APIKey  string
		Timeout time.Duration
	}
	MaxPageSize int
}

// Load reads config from environment (GALLERY_ prefix) and optional galleryd.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("galleryd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("moderation.timeout", "10s")
	v.SetDefault("max_page_size", 100)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Moderation.URL = v.GetString("moderation.url")
	cfg.Moderation.APIKey = v.GetString("moderation.api_key")
	cfg.MaxPageSize = v.GetInt("max_page_size")

	timeout, err := time.ParseDuration(v.GetString("moderation.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid GALLERY_MODERATION_TIMEOUT: %w", err)
	}
	cfg.Moderation.Timeout = timeout

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("GALLERY_DB_DRIVER is required (mysql, postgres)")
	}
	if cfg.DB.Driver != "mysql" && cfg.DB.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported GALLERY_DB_DRIVER %q (mysql, postgres)", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("GALLERY_DB_DSN is required")
	}
	if cfg.Moderation.URL != "" && cfg.Moderation.APIKey == "" {
		return nil, fmt.Errorf("GALLERY_MODERATION_API_KEY is required when moderation.url is set")
	}

	return cfg, nil
}
