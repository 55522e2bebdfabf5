package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"ENV_FILE",
	"APP_ENV",
	"LOG_LEVEL",
	"HTTP_ADDR",
	"DB_DRIVER",
	"DB_DSN",
	"SQLITE_PATH",
	"DB_MAX_OPEN_CONNS",
	"DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME",
	"DB_LOG_SQL",
}

// resetEnv blanks every variable LoadFromEnv reads; t.Setenv restores them afterwards.
func resetEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	resetEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", got.Driver, DriverSQLite)
	}
	if got.SQLitePath != "Resources/hawaii.sqlite" {
		t.Errorf("SQLitePath = %q, want %q", got.SQLitePath, "Resources/hawaii.sqlite")
	}
	if got.MaxOpenConns != 4 || got.MaxIdleConns != 4 {
		t.Errorf("pool = (%d, %d), want (4, 4)", got.MaxOpenConns, got.MaxIdleConns)
	}
	if got.ConnMaxLifetime != 0 {
		t.Errorf("ConnMaxLifetime = %v, want 0", got.ConnMaxLifetime)
	}
	if got.LogSQL {
		t.Errorf("LogSQL = true, want false")
	}
}

func TestLoadFromEnv_AppEnv(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		want    string
		wantErr bool
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
		{name: "staging", appEnv: "staging", wantErr: true},
		{name: "uppercase is not folded", appEnv: "DEV", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Driver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dsn     string
		wantErr bool
	}{
		{name: "sqlite3 without dsn", driver: "sqlite3"},
		{name: "sqlite3 with dsn", driver: "sqlite3", dsn: "file:test.db?mode=ro"},
		{name: "pgx with dsn", driver: "pgx", dsn: "postgres://climate@localhost/climate"},
		{name: "pgx without dsn", driver: "pgx", wantErr: true},
		{name: "unknown driver", driver: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEnv(t)
			t.Setenv("DB_DRIVER", tt.driver)
			t.Setenv("DB_DSN", tt.dsn)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.Driver != tt.driver || got.DSN != tt.dsn {
				t.Errorf("Driver, DSN = %q, %q, want %q, %q", got.Driver, got.DSN, tt.driver, tt.dsn)
			}
		})
	}
}

func TestLoadFromEnv_Pool(t *testing.T) {
	t.Run("valid values propagate", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("DB_MAX_OPEN_CONNS", " 8 ")
		t.Setenv("DB_MAX_IDLE_CONNS", "2")
		t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
		t.Setenv("DB_LOG_SQL", "true")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.MaxOpenConns != 8 || got.MaxIdleConns != 2 {
			t.Errorf("pool = (%d, %d), want (8, 2)", got.MaxOpenConns, got.MaxIdleConns)
		}
		if got.ConnMaxLifetime != 5*time.Minute {
			t.Errorf("ConnMaxLifetime = %v, want 5m", got.ConnMaxLifetime)
		}
		if !got.LogSQL {
			t.Errorf("LogSQL = false, want true")
		}
	})

	invalid := []struct {
		key string
		val string
	}{
		{key: "DB_MAX_OPEN_CONNS", val: "many"},
		{key: "DB_MAX_IDLE_CONNS", val: "1.5"},
		{key: "DB_CONN_MAX_LIFETIME", val: "forever"},
		{key: "DB_LOG_SQL", val: "sometimes"},
	}
	for _, tt := range invalid {
		t.Run("invalid "+tt.key, func(t *testing.T) {
			resetEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestLoadFromEnv_EnvFile(t *testing.T) {
	t.Run("seeds unset variables", func(t *testing.T) {
		resetEnv(t)
		// godotenv only fills variables that are absent, not ones set to "".
		for _, k := range []string{"HTTP_ADDR", "SQLITE_PATH"} {
			if err := os.Unsetenv(k); err != nil {
				t.Fatalf("unsetenv %s: %v", k, err)
			}
		}
		t.Setenv("LOG_LEVEL", "warn")

		path := filepath.Join(t.TempDir(), "test.env")
		body := "HTTP_ADDR=127.0.0.1:9999\nSQLITE_PATH=/data/hawaii.sqlite\nLOG_LEVEL=debug\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("ENV_FILE", path)

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.HTTPAddr != "127.0.0.1:9999" {
			t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, "127.0.0.1:9999")
		}
		if got.SQLitePath != "/data/hawaii.sqlite" {
			t.Errorf("SQLitePath = %q, want %q", got.SQLitePath, "/data/hawaii.sqlite")
		}
		if got.LogLevel != slog.LevelWarn {
			t.Errorf("LogLevel = %v, want %v (environment wins over file)", got.LogLevel, slog.LevelWarn)
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))

		if _, err := LoadFromEnv(); err == nil {
			t.Fatalf("LoadFromEnv() error = nil, want non-nil")
		}
	})
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		t.Run(in, func(t *testing.T) {
			got, err := parseLogLevel(in)
			if err == nil {
				t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
			}
			if got != slog.LevelInfo {
				t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
			}
		})
	}
}
