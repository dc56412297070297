// Package config loads noteboard settings from an optional YAML file and the environment.
// The file is read first; environment variables override it.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/securecookie"
	"gopkg.in/yaml.v3"
)

// EnvFile names the environment variable holding the YAML config path.
const EnvFile = "NOTEBOARD_CONFIG"

type Config struct {
	APIHost string `yaml:"api_host"`
	Port    string `yaml:"port"`

	SessionSecret string        `yaml:"session_secret"`
	SecureCookies bool          `yaml:"secure_cookies"`
	ViewTTL       time.Duration `yaml:"view_ttl"`

	ReadTimeout  time.Duration `yaml:"http_read_timeout"`
	WriteTimeout time.Duration `yaml:"http_write_timeout"`
	IdleTimeout  time.Duration `yaml:"http_idle_timeout"`
	APITimeout   time.Duration `yaml:"api_timeout"`

	Push Push `yaml:"push"`

	NewRelic NewRelic `yaml:"new_relic"`

	TokenDir string `yaml:"token_dir"`
}

type Push struct {
	Driver       string        `yaml:"driver"`
	URL          string        `yaml:"url"`
	QueueURL     string        `yaml:"queue_url"`
	WaitTime     time.Duration `yaml:"wait_time"`
	RedisAddr    string        `yaml:"redis_addr"`
	RedisChannel string        `yaml:"redis_channel"`
	Event        string        `yaml:"event"`
}

type NewRelic struct {
	Enabled bool   `yaml:"enabled"`
	AppName string `yaml:"app_name"`
	License string `yaml:"license"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		APIHost:      "http://localhost:5000",
		Port:         "3000",
		ViewTTL:      30 * time.Minute,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		APITimeout:   15 * time.Second,
		Push: Push{
			Driver:    "socketio",
			WaitTime:  20 * time.Second,
			RedisAddr: "localhost:6379",
			Event:     "noteUpdated",
		},
		NewRelic: NewRelic{AppName: "noteboard"},
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv loads the file named by NOTEBOARD_CONFIG (if any) and applies the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv(EnvFile), os.LookupEnv)
}

// Load reads path when non-empty, then applies every variable lookup knows about.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid yaml in %s: %w", path, err)
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	e := env{lookup: lookup}

	// NEXT_PUBLIC_API_HOST is what the browser build of the client read; keep honouring it.
	e.str("NEXT_PUBLIC_API_HOST", &cfg.APIHost)
	e.str("API_HOST", &cfg.APIHost)
	e.str("PORT", &cfg.Port)
	e.str("SESSION_SECRET", &cfg.SessionSecret)
	e.boolean("SECURE_COOKIES", &cfg.SecureCookies)
	e.duration("VIEW_TTL", &cfg.ViewTTL)
	e.duration("HTTP_READ_TIMEOUT", &cfg.ReadTimeout)
	e.duration("HTTP_WRITE_TIMEOUT", &cfg.WriteTimeout)
	e.duration("HTTP_IDLE_TIMEOUT", &cfg.IdleTimeout)
	e.duration("API_TIMEOUT", &cfg.APITimeout)

	e.str("PUSH_DRIVER", &cfg.Push.Driver)
	e.str("PUSH_URL", &cfg.Push.URL)
	e.str("PUSH_QUEUE_URL", &cfg.Push.QueueURL)
	e.duration("PUSH_WAIT_TIME", &cfg.Push.WaitTime)
	e.str("PUSH_REDIS_ADDR", &cfg.Push.RedisAddr)
	e.str("PUSH_REDIS_CHANNEL", &cfg.Push.RedisChannel)
	e.str("PUSH_EVENT", &cfg.Push.Event)

	e.boolean("NEW_RELIC_ENABLED", &cfg.NewRelic.Enabled)
	e.str("NEW_RELIC_APP_NAME", &cfg.NewRelic.AppName)
	e.str("NEW_RELIC_LICENSE", &cfg.NewRelic.License)

	e.str("TOKEN_DIR", &cfg.TokenDir)

	if e.err != nil {
		return cfg, e.err
	}
	return cfg, cfg.Validate()
}

// Validate checks values a typo could break.
func (c Config) Validate() error {
	var errs []error
	if c.APIHost == "" {
		errs = append(errs, errors.New("api host is required"))
	}
	switch c.Push.Driver {
	case "", "none", "socketio", "pubsub", "sqs", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown push driver %q", c.Push.Driver))
	}
	if c.NewRelic.Enabled && c.NewRelic.License == "" {
		errs = append(errs, errors.New("new relic is enabled but NEW_RELIC_LICENSE is empty"))
	}
	return errors.Join(errs...)
}

// SessionKey returns the cookie signing key. An unset secret yields a random key, so sessions do
// not survive a restart.
func (c Config) SessionKey() []byte {
	if c.SessionSecret != "" {
		if key, err := hex.DecodeString(c.SessionSecret); err == nil && len(key) >= 32 {
			return key
		}
		return []byte(c.SessionSecret)
	}
	return securecookie.GenerateRandomKey(32)
}

type env struct {
	lookup LookupFunc
	err    error
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *env) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *env) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *env) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
