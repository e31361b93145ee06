package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.MaxUploadBytes != 20*1024*1024 {
					t.Errorf("expected 20MiB upload cap, got %d", cfg.MaxUploadBytes)
				}
				if cfg.ReportTTL != 30*time.Minute {
					t.Errorf("expected ReportTTL 30m, got %v", cfg.ReportTTL)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":               "9000",
				"LOG_LEVEL":          "debug",
				"MAX_UPLOAD_MB":      "5",
				"REPORT_TTL_MINUTES": "10",
				"UPLOAD_RATE":        "0.5",
				"UPLOAD_BURST":       "3",
				"ALLOWED_ORIGINS":    "http://example.com,http://test.com",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("expected log level debug, got %s", cfg.LogLevel)
				}
				if cfg.MaxUploadBytes != 5*1024*1024 {
					t.Errorf("expected 5MiB upload cap, got %d", cfg.MaxUploadBytes)
				}
				if cfg.ReportTTL != 10*time.Minute {
					t.Errorf("expected ReportTTL 10m, got %v", cfg.ReportTTL)
				}
				if cfg.UploadRate != 0.5 {
					t.Errorf("expected UploadRate 0.5, got %v", cfg.UploadRate)
				}
				if cfg.UploadBurst != 3 {
					t.Errorf("expected UploadBurst 3, got %d", cfg.UploadBurst)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
			},
		},
		{
			name: "invalid MAX_UPLOAD_MB",
			env: map[string]string{
				"MAX_UPLOAD_MB": "invalid",
			},
			wantErr: true,
		},
		{
			name: "zero REPORT_TTL_MINUTES",
			env: map[string]string{
				"REPORT_TTL_MINUTES": "0",
			},
			wantErr: true,
		},
		{
			name: "negative UPLOAD_RATE",
			env: map[string]string{
				"UPLOAD_RATE": "-1",
			},
			wantErr: true,
		},
		{
			name: "invalid UPLOAD_BURST",
			env: map[string]string{
				"UPLOAD_BURST": "many",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSweepInterval(t *testing.T) {
	os.Clearenv()
	os.Setenv("REPORT_TTL_MINUTES", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.SweepInterval != 15*time.Minute {
		t.Errorf("expected sweep interval 15m, got %v", cfg.SweepInterval)
	}

	// Short TTLs still sweep at least once per minute
	os.Setenv("REPORT_TTL_MINUTES", "2")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("expected sweep interval floor of 1m, got %v", cfg.SweepInterval)
	}
}
