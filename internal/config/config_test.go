// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/config"
	"github.com/vitrine/vitrine/pkg/errutil"
)

const secret = "0123456789abcdef0123456789abcdef"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VITRINE_SESSION_SECRET", secret)

	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.HTTP.BaseURL)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, config.SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "bcrypt", cfg.Auth.HashAlgorithm)
	assert.Equal(t, auth.DefaultLockoutPolicy, cfg.Auth.Lockout())
	assert.Equal(t, config.EmailProviderLog, cfg.Email.Provider)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "vitrine.yaml", `
http:
  addr: ":9000"
  base_url: https://loja.example.com
session:
  store: redis
  secret: `+secret+`
  ttl: 30m
redis:
  addr: cache:6379
log:
  format: text
`)
	t.Setenv("VITRINE_HTTP_ADDR", ":9100")
	t.Setenv("VITRINE_SESSION_COOKIE_SECURE", "true")
	t.Setenv("VITRINE_REDIS_DB", "2")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	config.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--addr", ":9200"}))

	cfg, err := config.Load(config.LoadOptions{File: path, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, ":9200", cfg.HTTP.Addr, "flag beats env and file")
	assert.Equal(t, "https://loja.example.com", cfg.HTTP.BaseURL, "file beats defaults")
	assert.True(t, cfg.Session.CookieSecure, "env beats defaults")
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr, "unset flags keep lower sources")
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeFile(t, ".env", "VITRINE_SESSION_SECRET="+secret+"\nVITRINE_UPLOADS_DIR=/srv/fotos\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("VITRINE_SESSION_SECRET")
		_ = os.Unsetenv("VITRINE_UPLOADS_DIR")
	})

	cfg, err := config.Load(config.LoadOptions{EnvFiles: []string{path, filepath.Join(t.TempDir(), "missing.env")}})
	require.NoError(t, err)
	assert.Equal(t, "/srv/fotos", cfg.Uploads.Dir)
}

func TestLoad_SchemaRejectsFile(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "http:\n  port: 80\n"},
		{name: "bad enum", yaml: "session:\n  store: memcached\n"},
		{name: "wrong type", yaml: "redis:\n  db: two\n"},
		{name: "bad duration", yaml: "session:\n  ttl: forever\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VITRINE_SESSION_SECRET", secret)
			_, err := config.Load(config.LoadOptions{File: writeFile(t, "c.yaml", tt.yaml)})
			errutil.AssertErrorCode(t, err, "CONFIG_SCHEMA_VIOLATION")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(config.LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml")})
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("VITRINE_SESSION_SECRET", secret)
	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		problem string
	}{
		{name: "short secret", mutate: func(c *config.Config) { c.Session.Secret = "short" }, problem: "session.secret"},
		{name: "unknown store", mutate: func(c *config.Config) { c.Session.Store = "disk" }, problem: "session.store"},
		{
			name:    "redis without addr",
			mutate:  func(c *config.Config) { c.Session.Store = config.SessionStoreRedis; c.Redis.Addr = "" },
			problem: "redis.addr",
		},
		{name: "relative base url", mutate: func(c *config.Config) { c.HTTP.BaseURL = "/loja" }, problem: "http.base_url"},
		{name: "zero ttl", mutate: func(c *config.Config) { c.Session.TTL = 0 }, problem: "session.ttl"},
		{name: "bad algorithm", mutate: func(c *config.Config) { c.Auth.HashAlgorithm = "md5" }, problem: "auth.hash_algorithm"},
		{name: "bcrypt cost", mutate: func(c *config.Config) { c.Auth.BcryptCost = 3 }, problem: "auth.bcrypt_cost"},
		{name: "lockout threshold", mutate: func(c *config.Config) { c.Auth.LockoutThreshold = 0 }, problem: "auth.lockout_threshold"},
		{name: "lockout duration", mutate: func(c *config.Config) { c.Auth.LockoutDuration = 0 }, problem: "auth.lockout_duration"},
		{
			name:    "resend without key",
			mutate:  func(c *config.Config) { c.Email.Provider = config.EmailProviderResend },
			problem: "email.api_key",
		},
		{name: "log format", mutate: func(c *config.Config) { c.Log.Format = "xml" }, problem: "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			assert.ErrorContains(t, err, tt.problem)
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := validConfig(t)
	cfg.HTTP.Addr = ""
	cfg.Uploads.Dir = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "http.addr") && strings.Contains(err.Error(), "uploads.dir"))
}

func TestGenerateSchema(t *testing.T) {
	raw, err := config.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, config.SchemaID, doc["$id"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"http", "database", "session", "redis", "auth", "email", "uploads", "metrics", "log"} {
		assert.Contains(t, props, key)
	}
}

func TestValidateYAML_AcceptsFullFile(t *testing.T) {
	err := config.ValidateYAML([]byte(`
http: {addr: ":8080", base_url: "http://localhost:8080"}
database: {url: "postgres://localhost/vitrine", auto_migrate: false}
session: {store: postgres, secret: "` + secret + `", ttl: 1h, cookie_secure: true}
auth: {hash_algorithm: argon2id, bcrypt_cost: 10, lockout_threshold: 5, lockout_duration: 30m}
email: {provider: resend, api_key: re_x, from_name: Loja, from_address: loja@example.com}
uploads: {dir: ./uploads}
metrics: {addr: ""}
log: {format: json, level: debug}
`))
	assert.NoError(t, err)
}
