package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen         = ":8080"
	DefaultPastDays       = 30
	MaxPastDays           = 365
	DefaultCacheMaxAge    = 900
	DefaultSessionCookie  = "sessionid"
	DefaultReloadSchedule = "@every 1m"
	DefaultCalendarName   = "Vendor maintenance"
	DefaultRemoteCacheTTL = time.Minute
)

// DefaultAllowedTargetKinds es el allow-list inicial de tipos de target para impacts.
var DefaultAllowedTargetKinds = []string{
	"circuits.circuit",
	"dcim.device",
	"dcim.powerfeed",
	"dcim.site",
	"virtualization.virtualmachine",
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	// CacheTTL de respuestas del upstream (ej: "60s"); 0 => default, <0 => sin cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type AuthConfig struct {
	// LoginRequired=false permite lectura anónima del feed.
	LoginRequired bool `yaml:"login_required"`

	// TokenBackend: jwt | db | odin
	TokenBackend string `yaml:"token_backend"`
	JWTSecret    string `yaml:"jwt_secret"`
	JWTIssuer    string `yaml:"jwt_issuer"`

	SessionCookie string `yaml:"session_cookie"`

	// DevMode habilita X-Debug-User-ID como sesión (solo desarrollo).
	DevMode bool `yaml:"dev_mode"`

	AnonymousCapabilities []string `yaml:"anonymous_capabilities"`

	Odin RemoteConfig `yaml:"odin"`
}

type CapabilitiesConfig struct {
	// Backend: static | plansfeatures
	Backend       string       `yaml:"backend"`
	AllowAll      bool         `yaml:"allow_all"`
	PlansFeatures RemoteConfig `yaml:"plans_features"`
}

type ImpactsConfig struct {
	AllowedTargetKinds []string `yaml:"allowed_target_kinds"`
}

type ICalConfig struct {
	PastDaysDefault int    `yaml:"past_days_default"`
	CacheMaxAge     int    `yaml:"cache_max_age"`
	Domain          string `yaml:"domain"`
	CalendarName    string `yaml:"calendar_name"`
}

type ReloadConfig struct {
	AllowlistSchedule string `yaml:"allowlist_schedule"`
}

type Config struct {
	Listen       string             `yaml:"listen"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Auth         AuthConfig         `yaml:"auth"`
	Capabilities CapabilitiesConfig `yaml:"capabilities"`
	Impacts      ImpactsConfig      `yaml:"impacts"`
	ICal         ICalConfig         `yaml:"ical"`
	Reload       ReloadConfig       `yaml:"reload"`
}

// Default devuelve la configuración base (también usada en tests).
func Default() *Config {
	c := &Config{
		Auth: AuthConfig{
			LoginRequired: true,
			TokenBackend:  "jwt",
		},
		Capabilities: CapabilitiesConfig{Backend: "static"},
		ICal:         ICalConfig{PastDaysDefault: DefaultPastDays},
	}
	c.Normalize()
	return c
}

// Normalize completa valores vacíos o fuera de rango.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = DefaultListen
	}
	if c.Log.App == "" {
		c.Log.App = "vendor-notices"
	}

	switch strings.ToLower(strings.TrimSpace(c.Auth.TokenBackend)) {
	case "jwt", "db", "odin":
		c.Auth.TokenBackend = strings.ToLower(strings.TrimSpace(c.Auth.TokenBackend))
	default:
		c.Auth.TokenBackend = "jwt"
	}
	if c.Auth.SessionCookie == "" {
		c.Auth.SessionCookie = DefaultSessionCookie
	}
	if c.Auth.JWTIssuer == "" {
		c.Auth.JWTIssuer = "vendor-notices"
	}
	// Sin login obligatorio, el anónimo necesita al menos leer eventos.
	if !c.Auth.LoginRequired && c.Auth.AnonymousCapabilities == nil {
		c.Auth.AnonymousCapabilities = []string{"events:read"}
	}

	for _, rc := range []*RemoteConfig{&c.Auth.Odin, &c.Capabilities.PlansFeatures} {
		if rc.CacheTTL == 0 {
			rc.CacheTTL = DefaultRemoteCacheTTL
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Capabilities.Backend)) {
	case "plansfeatures":
		c.Capabilities.Backend = "plansfeatures"
	default:
		c.Capabilities.Backend = "static"
	}

	if c.Impacts.AllowedTargetKinds == nil {
		c.Impacts.AllowedTargetKinds = append([]string(nil), DefaultAllowedTargetKinds...)
	}

	if c.ICal.PastDaysDefault < 0 || c.ICal.PastDaysDefault > MaxPastDays {
		c.ICal.PastDaysDefault = DefaultPastDays
	}
	if c.ICal.CacheMaxAge <= 0 {
		c.ICal.CacheMaxAge = DefaultCacheMaxAge
	}
	if c.ICal.CalendarName == "" {
		c.ICal.CalendarName = DefaultCalendarName
	}

	if strings.TrimSpace(c.Reload.AllowlistSchedule) == "" {
		c.Reload.AllowlistSchedule = DefaultReloadSchedule
	}
}

// Load lee el YAML en path (si existe), aplica .env y overrides de entorno.
// Un archivo inexistente no es error: se usan defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	cfg.Normalize()
	return cfg, nil
}

// ReadFile solo parsea el YAML, sin overrides de entorno.
func ReadFile(path string) (*Config, error) {
	cfg := &Config{
		Auth:         AuthConfig{LoginRequired: true},
		ICal:         ICalConfig{PastDaysDefault: DefaultPastDays},
		Capabilities: CapabilitiesConfig{Backend: "static"},
	}
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("PORT"); v != "" && os.Getenv("LISTEN") == "" {
		c.Listen = ":" + v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOGIN_REQUIRED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Auth.LoginRequired = b
		}
	}
	if v := os.Getenv("ICAL_DOMAIN"); v != "" {
		c.ICal.Domain = v
	}
}
