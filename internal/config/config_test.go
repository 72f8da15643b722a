package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.NoErr(cfg.Validate())
	is.Equal(cfg.ListenAddr, ":8080")
	is.Equal(cfg.RateLimits().IPLimit, 5)
	is.Equal(cfg.RateLimits().EmailLimit, 3)
	is.Equal(cfg.RateLimits().Window, 60*time.Minute)
	is.Equal(cfg.Email.DailyLimit, 0)
	is.Equal(cfg.DispatchRetention(), 30*24*time.Hour)
}

func TestParseEnv_OverridesDefaults(t *testing.T) {
	is := is.New(t)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("ADMIN_KEY", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example/")
	t.Setenv("RATE_LIMIT_IP_COUNT", "10")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "15")
	t.Setenv("RATE_LIMIT_STRICT", "true")
	t.Setenv("EMAIL_RESEND_API_KEY", "re_123")
	t.Setenv("EMAIL_DAILY_LIMIT", "100")
	t.Setenv("EMAIL_TIMEOUT", "5s")
	t.Setenv("THROTTLE_RPS", "0.5")
	t.Setenv("PHONE_COUNTRY_CODE", "44")
	t.Setenv("PHONE_VALID_FIRST_DIGITS", "7")

	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.NoErr(cfg.Validate())

	is.Equal(cfg.ListenAddr, ":9999")
	is.Equal(cfg.AdminKey, "s3cret")
	is.Equal(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"})
	is.Equal(cfg.RateLimit.IPCount, 10)
	is.Equal(cfg.RateLimit.EmailCount, 3) // untouched
	is.Equal(cfg.RateLimits().Window, 15*time.Minute)
	is.True(cfg.RateLimit.Strict)
	is.Equal(cfg.Email.ResendAPIKey, "re_123")
	is.Equal(cfg.Email.DailyLimit, 100)
	is.Equal(cfg.Email.Timeout, 5*time.Second)
	is.Equal(cfg.Throttle.RPS, 0.5)

	plan, err := cfg.PhonePlan()
	is.NoErr(err)
	phone, err := plan.Normalize("07012345678")
	is.NoErr(err)
	is.Equal(phone, "+447012345678")
}

func TestParseEnv_ResendFallback(t *testing.T) {
	is := is.New(t)
	t.Setenv("RESEND_API_KEY", "re_fallback")

	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.Email.ResendAPIKey, "re_fallback")
}

func TestParseFile_ThenEnv(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	is.NoErr(os.WriteFile(path, []byte(`
listen_addr: ":7000"
admin_key: from-file
email:
  notify_to: ops@example.com
  timeout: 3s
rate_limit:
  email_count: 7
jobs:
  export_snapshot: "@weekly"
`), 0o600))
	t.Setenv("ADMIN_KEY", "from-env")

	cfg := DefaultConfig()
	is.NoErr(cfg.ParseFile(path))
	is.NoErr(cfg.ParseEnv())
	is.NoErr(cfg.Validate())

	is.Equal(cfg.ListenAddr, ":7000")
	is.Equal(cfg.AdminKey, "from-env") // env wins over file
	is.Equal(cfg.Email.NotifyTo, "ops@example.com")
	is.Equal(cfg.Email.Timeout, 3*time.Second)
	is.Equal(cfg.RateLimit.EmailCount, 7)
	is.Equal(cfg.RateLimit.IPCount, 5) // default kept
	is.Equal(cfg.Jobs.ExportSnapshot, "@weekly")
}

func TestLoad_UsesConfigPath(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	is.NoErr(os.WriteFile(path, []byte("export_dir: /var/exports\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	is.NoErr(err)
	is.Equal(cfg.ExportDir, "/var/exports")
}

func TestValidate_RejectsImpossibleValues(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero window", func(c *Config) { c.RateLimit.WindowMinutes = 0 }},
		{"negative ip count", func(c *Config) { c.RateLimit.IPCount = -1 }},
		{"negative proxy count", func(c *Config) { c.TrustedProxyCount = -1 }},
		{"throttle without burst", func(c *Config) { c.Throttle.Burst = 0 }},
		{"zero email timeout", func(c *Config) { c.Email.Timeout = 0 }},
		{"bad phone plan", func(c *Config) { c.Phone.CountryCode = "+44" }},
		{"empty database url", func(c *Config) { c.DatabaseURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ThrottleDisabled(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.Throttle = ThrottleConfig{}
	is.NoErr(cfg.Validate())
}
