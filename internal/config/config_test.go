package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", lookupMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://localhost:5000", cfg.APIHost)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "noteUpdated", cfg.Push.Event)
	assert.Equal(t, "socketio", cfg.Push.Driver)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load("", lookupMap(map[string]string{
		"NEXT_PUBLIC_API_HOST": "http://legacy:5000",
		"PORT":                 "8080",
		"API_TIMEOUT":          "3s",
		"PUSH_DRIVER":          "redis",
		"PUSH_REDIS_ADDR":      "redis:6379",
		"SECURE_COOKIES":       "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://legacy:5000", cfg.APIHost)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "redis", cfg.Push.Driver)
	assert.Equal(t, "redis:6379", cfg.Push.RedisAddr)
	assert.True(t, cfg.SecureCookies)

	cfg, err = Load("", lookupMap(map[string]string{
		"NEXT_PUBLIC_API_HOST": "http://legacy:5000",
		"API_HOST":             "http://api:5000",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://api:5000", cfg.APIHost)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noteboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_host: http://file:5000
port: "4000"
view_ttl: 10m
push:
  driver: pubsub
  url: mem://notes
`), 0600))

	cfg, err := Load(path, lookupMap(map[string]string{"PORT": "5001"}))
	require.NoError(t, err)
	assert.Equal(t, "http://file:5000", cfg.APIHost)
	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.ViewTTL)
	assert.Equal(t, "pubsub", cfg.Push.Driver)
	assert.Equal(t, "mem://notes", cfg.Push.URL)
	assert.Equal(t, "noteUpdated", cfg.Push.Event)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), lookupMap(nil))
	assert.Error(t, err)

	_, err = Load("", lookupMap(map[string]string{"API_TIMEOUT": "soon"}))
	assert.ErrorContains(t, err, "API_TIMEOUT")

	_, err = Load("", lookupMap(map[string]string{"PUSH_DRIVER": "kafka"}))
	assert.ErrorContains(t, err, "kafka")

	_, err = Load("", lookupMap(map[string]string{"NEW_RELIC_ENABLED": "true"}))
	assert.ErrorContains(t, err, "NEW_RELIC_LICENSE")
}

func TestSessionKey(t *testing.T) {
	random := Config{}.SessionKey()
	assert.Len(t, random, 32)
	assert.NotEqual(t, random, Config{}.SessionKey())

	assert.Equal(t, []byte("plain"), Config{SessionSecret: "plain"}.SessionKey())

	hexSecret := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	assert.Len(t, Config{SessionSecret: hexSecret}.SessionKey(), 32)
}
