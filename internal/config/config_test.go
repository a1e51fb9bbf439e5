package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// managedKeys are cleared before the suite so the host environment cannot
// change defaults.
var managedKeys = []string{
	"PORT", "LOG_LEVEL", "GIN_MODE", "API_BASE_PATH",
	"DB_DRIVER", "DB_PATH", "DB_DSN", "DB_MIGRATE_HOST",
	"ISSUEBADGE_API_URL", "ISSUEBADGE_API_KEY", "ISSUEBADGE_AUTO_ISSUE", "ISSUEBADGE_TIMEOUT",
	"AUTH_JWT_SECRET", "AUTH_ISSUER",
}

func TestMain(m *testing.M) {
	for _, k := range managedKeys {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" || cfg.Port != "8080" || cfg.GinMode != "release" || cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("server defaults unexpected: %+v", cfg)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.Target() != "issuebadge.db" || !cfg.DB.MigrateHost {
		t.Fatalf("db defaults unexpected: %+v", cfg.DB)
	}
	ib := cfg.IssueBadge
	if ib.APIURL != "https://app.issuebadge.com/api/v1" || ib.APIKey != "" || ib.AutoIssue || ib.Timeout != 15*time.Second {
		t.Fatalf("issuebadge defaults unexpected: %+v", ib)
	}
	if cfg.Auth.JWTSecret != "" || cfg.OTEL.ServiceName != "issuebadge-service" {
		t.Fatalf("auth/otel defaults unexpected: %+v %+v", cfg.Auth, cfg.OTEL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("MAX_BODY_BYTES", "oops") // falls back to the default
	t.Setenv("GIN_MODE", "weird")      // normalized to release

	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v2/")

	t.Setenv("DB_DRIVER", "PG")
	t.Setenv("DB_DSN", "postgres://u:p@db/issuebadge")
	t.Setenv("DB_MIGRATE_HOST", "off")

	t.Setenv("ISSUEBADGE_API_URL", "https://sandbox.issuebadge.com/api/v1/")
	t.Setenv("ISSUEBADGE_API_KEY", "  key-123 ")
	t.Setenv("ISSUEBADGE_AUTO_ISSUE", "1")
	t.Setenv("ISSUEBADGE_TIMEOUT", "5s")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_ISSUER", "lms")

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.MaxBodyBytes != 1<<20 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v2" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.DB.Driver != "postgres" || cfg.DB.Target() != "postgres://u:p@db/issuebadge" || cfg.DB.MigrateHost {
		t.Fatalf("db unexpected: %+v", cfg.DB)
	}
	want := IssueBadgeConfig{
		APIURL:    "https://sandbox.issuebadge.com/api/v1",
		APIKey:    "key-123",
		AutoIssue: true,
		Timeout:   5 * time.Second,
	}
	if cfg.IssueBadge != want {
		t.Fatalf("issuebadge unexpected: %+v", cfg.IssueBadge)
	}
	if cfg.Auth != (AuthConfig{JWTSecret: "s3cret", Issuer: "lms"}) {
		t.Fatalf("auth unexpected: %+v", cfg.Auth)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestDBConfig_TargetPrefersDSN(t *testing.T) {
	if got := (DBConfig{Path: "a.db", DSN: "file:b?mode=memory"}).Target(); got != "file:b?mode=memory" {
		t.Fatalf("Target() = %q", got)
	}
	if got := (DBConfig{Path: "a.db"}).Target(); got != "a.db" {
		t.Fatalf("Target() = %q", got)
	}
}

// Each case triggers exactly one validation error.
func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"empty port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"body bytes", map[string]string{"MAX_BODY_BYTES": "-1"}, "MAX_BODY_BYTES"},
		{"db path", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"db driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"postgres dsn", map[string]string{"DB_DRIVER": "postgres"}, "DB_DSN is required"},
		{"api url scheme", map[string]string{"ISSUEBADGE_API_URL": "ftp://x"}, "ISSUEBADGE_API_URL"},
		{"api url relative", map[string]string{"ISSUEBADGE_API_URL": "/api"}, "ISSUEBADGE_API_URL"},
		{"api timeout", map[string]string{"ISSUEBADGE_TIMEOUT": "-1s"}, "ISSUEBADGE_TIMEOUT"},
		{"hsts", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"sampler", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_numbers(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	t.Setenv("F_BAD", "nope")
	t.Setenv("I_VALID", "42")
	t.Setenv("I_BAD", "x")
	t.Setenv("D_VALID", "150ms")
	t.Setenv("D_BAD", "zzz")

	if getfloat("F_VALID", 0) != 3.14 || getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat")
	}
	if getint("I_VALID", 0) != 42 || getint("I_BAD", 7) != 7 {
		t.Fatalf("getint")
	}
	if getdur("D_VALID", time.Second) != 150*time.Millisecond || getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		k := "B_T_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		k := "B_F_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_JUNK", "maybe")
	if !getbool("B_JUNK", true) || getbool("B_JUNK", false) {
		t.Fatalf("getbool should keep the default on unknown values")
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: %#v", got)
	}

	for in, want := range map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
