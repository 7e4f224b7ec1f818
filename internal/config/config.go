package config

import (
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

// Durations are plain seconds in yaml: yaml.v2 has no native
// time.Duration support.
type Public struct {
	Port          int    `yaml:"port" validate:"required"`
	LogLevel      string `yaml:"log_level"`
	LogJSON       bool   `yaml:"log_json"`
	JwtTTLSeconds int    `yaml:"jwt_ttl_seconds" validate:"required"`

	ActivationTokenTTLSeconds  int `yaml:"activation_token_ttl_seconds" validate:"required"`
	EmailChangeTokenTTLSeconds int `yaml:"email_change_token_ttl_seconds" validate:"required"`

	SiteInfoRefreshSeconds int `yaml:"site_info_refresh_seconds" validate:"required"`

	DefaultPageSize int `yaml:"default_page_size" validate:"required"`
	MaxPageSize     int `yaml:"max_page_size" validate:"required"`

	SecureCookies  bool     `yaml:"secure_cookies"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Pg     Pg     `yaml:"pg" validate:"required"`
	Email  Email  `yaml:"email" validate:"required"`
	Tmdb   Tmdb   `yaml:"tmdb"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

// Tmdb is optional: without an api key the movie catalog can only be
// filled by hand and sync requests fail with a clear error.
type Tmdb struct {
	ApiKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server" validate:"required"`
	SMTPPort   int    `yaml:"smtp_port" validate:"required"`
	Username   string `yaml:"username" validate:"required"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return time.Duration(c.Public.JwtTTLSeconds) * time.Second
}

func (c *Config) ActivationTokenTTL() time.Duration {
	return time.Duration(c.Public.ActivationTokenTTLSeconds) * time.Second
}

func (c *Config) EmailChangeTokenTTL() time.Duration {
	return time.Duration(c.Public.EmailChangeTokenTTLSeconds) * time.Second
}

func (c *Config) SiteInfoRefreshInterval() time.Duration {
	return time.Duration(c.Public.SiteInfoRefreshSeconds) * time.Second
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(output); err != nil {
		panic("config validation failed: " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder.
// Panics on any missing file or missing required field: a half-configured
// server must not start.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
