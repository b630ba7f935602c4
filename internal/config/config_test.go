package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Detector.ZScoreThreshold != 2.0 {
		t.Errorf("z-score threshold = %v, want 2.0", cfg.Detector.ZScoreThreshold)
	}
	if cfg.Detector.MinCostThreshold != 10.0 {
		t.Errorf("min cost threshold = %v, want 10.0", cfg.Detector.MinCostThreshold)
	}
	if cfg.Detector.ConfidenceThreshold != 0.8 {
		t.Errorf("confidence threshold = %v, want 0.8", cfg.Detector.ConfidenceThreshold)
	}
	if cfg.Detector.DefaultDaysBack != 30 {
		t.Errorf("default days back = %d, want 30", cfg.Detector.DefaultDaysBack)
	}
	if cfg.Storage.Container != "anomalies" {
		t.Errorf("storage container = %s, want anomalies", cfg.Storage.Container)
	}
	if cfg.Database.Enabled {
		t.Error("database enabled by default, want disabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("Z_SCORE_THRESHOLD", "2.5")
	t.Setenv("DETECTOR_DAYS_BACK", "60")
	t.Setenv("DETECTOR_SUBSCRIPTIONS", "sub-1, sub-2")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("DB_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Detector.ZScoreThreshold != 2.5 {
		t.Errorf("z-score threshold = %v, want 2.5", cfg.Detector.ZScoreThreshold)
	}
	if cfg.Detector.DefaultDaysBack != 60 {
		t.Errorf("default days back = %d, want 60", cfg.Detector.DefaultDaysBack)
	}
	if len(cfg.Detector.Subscriptions) != 2 || cfg.Detector.Subscriptions[1] != "sub-2" {
		t.Errorf("subscriptions = %v, want [sub-1 sub-2]", cfg.Detector.Subscriptions)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if !cfg.Database.Enabled {
		t.Error("database not enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("Z_SCORE_THRESHOLD", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Detector.ZScoreThreshold != 2.0 {
		t.Errorf("z-score threshold = %v, want default 2.0", cfg.Detector.ZScoreThreshold)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Detector: DetectorConfig{
				ZScoreThreshold:     2.0,
				MinCostThreshold:    10.0,
				ConfidenceThreshold: 0.8,
				DefaultDaysBack:     30,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero z-score threshold", mutate: func(c *Config) { c.Detector.ZScoreThreshold = 0 }, wantErr: true},
		{name: "negative min cost", mutate: func(c *Config) { c.Detector.MinCostThreshold = -1 }, wantErr: true},
		{name: "confidence above one", mutate: func(c *Config) { c.Detector.ConfidenceThreshold = 1.5 }, wantErr: true},
		{name: "zero days back", mutate: func(c *Config) { c.Detector.DefaultDaysBack = 0 }, wantErr: true},
		{name: "schedule without subscriptions", mutate: func(c *Config) { c.Detector.Schedule = "0 8 * * *" }, wantErr: true},
		{
			name: "schedule with subscriptions",
			mutate: func(c *Config) {
				c.Detector.Schedule = "0 8 * * *"
				c.Detector.Subscriptions = []string{"sub-1"}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
