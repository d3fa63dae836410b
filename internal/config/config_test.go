package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing listen addr",
			mutate:  func(c *Config) { c.Server.ListenAddr = "" },
			wantErr: ErrMissingListenAddr,
		},
		{
			name:    "missing upload dir",
			mutate:  func(c *Config) { c.Server.UploadDir = "" },
			wantErr: ErrMissingUploadDir,
		},
		{
			name:    "zero max upload",
			mutate:  func(c *Config) { c.Server.MaxUploadMb = 0 },
			wantErr: ErrInvalidMaxUpload,
		},
		{
			name: "redis enabled without addr",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Addr = ""
			},
			wantErr: ErrMissingRedisAddr,
		},
		{
			name:    "zero report ttl",
			mutate:  func(c *Config) { c.Redis.ReportTTLMinutes = 0 },
			wantErr: ErrInvalidReportTTL,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
		{
			name:    "inverted tiers",
			mutate:  func(c *Config) { c.Analysis.HighValueThreshold = c.Analysis.MidValueThreshold },
			wantErr: ErrInvalidTiers,
		},
		{
			name:    "seasonal share over 100",
			mutate:  func(c *Config) { c.Analysis.SeasonalSharePct = 150 },
			wantErr: ErrInvalidSeasonalShare,
		},
		{
			name:    "zero regular gap",
			mutate:  func(c *Config) { c.Analysis.RegularGapDays = 0 },
			wantErr: ErrInvalidRegularGap,
		},
		{
			name:    "zero reactivation window",
			mutate:  func(c *Config) { c.Analysis.ReactivationWindowDays = 0 },
			wantErr: ErrInvalidReactivation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Analysis.HighValueThreshold != 1000 {
		t.Errorf("HighValueThreshold = %v, want 1000", cfg.Analysis.HighValueThreshold)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	yaml := `
server:
  listen_addr: ":9090"
analysis:
  high_value_threshold: 5000
  mid_value_threshold: 2000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Analysis.HighValueThreshold != 5000 {
		t.Errorf("HighValueThreshold = %v, want 5000", cfg.Analysis.HighValueThreshold)
	}

	// Unset fields keep their defaults.
	if cfg.Redis.ReportTTLMinutes != 60 {
		t.Errorf("ReportTTLMinutes = %v, want default 60", cfg.Redis.ReportTTLMinutes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoad_InvalidFileFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Load() error = %v, want %v", err, ErrInvalidLogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, want :7070", cfg.Server.ListenAddr)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("redis override not applied: %+v", cfg.Redis)
	}
}
