package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.WarningThreshold != 5 {
		t.Errorf("warning threshold: got %d, want default 5", cfg.Analysis.WarningThreshold)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("analysis:\n  warning_threshold: 3\n  critical_threshold: 6\n  severe_threshold: 12\nalerting:\n  cooldown_s: 10\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.WarningThreshold != 3 {
		t.Errorf("warning threshold: got %d, want 3", cfg.Analysis.WarningThreshold)
	}
	if cfg.Alerting.Cooldown() != 10*time.Second {
		t.Errorf("cooldown: got %v, want 10s", cfg.Alerting.Cooldown())
	}
	// Untouched sections keep defaults
	if cfg.Camera.TargetFPS != 1 {
		t.Errorf("target fps: got %d, want default 1", cfg.Camera.TargetFPS)
	}
}

func TestValidate_RejectsNonMonotonicThresholds(t *testing.T) {
	cfg := Default()
	cfg.Analysis.WarningThreshold = 10
	cfg.Analysis.CriticalThreshold = 5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for warning > critical")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fps", func(c *Config) { c.Camera.TargetFPS = 0 }},
		{"zero frame skip", func(c *Config) { c.Camera.FrameSkip = 0 }},
		{"quality out of range", func(c *Config) { c.Camera.RecompressQuality = 101 }},
		{"zero yaw threshold", func(c *Config) { c.Vision.YawThreshold = 0 }},
		{"zero events buffer", func(c *Config) { c.Analysis.MaxEventsBuffer = 0 }},
		{"zero history window", func(c *Config) { c.Analysis.HistoryWindowS = 0 }},
		{"negative cooldown", func(c *Config) { c.Alerting.CooldownS = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("%s: expected validation error", tc.name)
			}
		})
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("analysis:\n  warning_threshold: 50\n  critical_threshold: 10\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for non-monotonic thresholds in file")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Analysis.SevereThreshold = 42

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Analysis.SevereThreshold != 42 {
		t.Errorf("severe threshold: got %d, want 42", loaded.Analysis.SevereThreshold)
	}
}
