// Package config loads and validates the driveguard configuration.
//
// Configuration is a strongly-typed structure read from a YAML file.
// Missing file means defaults; an invalid file or an invariant violation
// (e.g. non-monotonic thresholds) is fatal before the detection loop starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete driveguard configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Camera   CameraConfig   `yaml:"camera"`
	Vision   VisionConfig   `yaml:"vision"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Alerting AlertingConfig `yaml:"alerting"`
	Web      WebConfig      `yaml:"web"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CameraConfig contains capture pacing and frame budget settings.
type CameraConfig struct {
	Device    int `yaml:"device"`     // V4L2 device index
	Width     int `yaml:"width"`      // capture width in pixels
	Height    int `yaml:"height"`     // capture height in pixels
	TargetFPS int `yaml:"target_fps"` // paced capture rate
	FrameSkip int `yaml:"frame_skip"` // submit every Nth paced frame

	// Lossy recompression bounds peak memory on small boards.
	Recompress        bool `yaml:"recompress"`
	RecompressQuality int  `yaml:"recompress_quality"` // JPEG quality 1-100

	FrameTimeoutMS int `yaml:"frame_timeout_ms"` // Take() wait before a no-op tick
}

// VisionConfig contains landmark model and classification thresholds.
type VisionConfig struct {
	ModelPath string `yaml:"model_path"` // ONNX face landmark model

	// Head orientation thresholds in degrees.
	YawThreshold   float64 `yaml:"yaw_threshold"`
	PitchThreshold float64 `yaml:"pitch_threshold"`
	RollThreshold  float64 `yaml:"roll_threshold"`

	// Gaze thresholds, normalized to eye-box units.
	GazeXThreshold float64 `yaml:"gaze_x_threshold"`
	GazeYThreshold float64 `yaml:"gaze_y_threshold"`
}

// AnalysisConfig contains distraction scoring thresholds and event log bounds.
type AnalysisConfig struct {
	WarningThreshold  int `yaml:"warning_threshold"`
	CriticalThreshold int `yaml:"critical_threshold"`
	SevereThreshold   int `yaml:"severe_threshold"`

	HistoryWindowS  int `yaml:"history_window_s"` // event log age bound
	MaxEventsBuffer int `yaml:"max_events_buffer"`
}

// AlertingConfig contains alert channel switches and cooldown.
type AlertingConfig struct {
	Enabled bool `yaml:"enabled"`

	VisualEnabled  bool `yaml:"visual_enabled"`
	AudibleEnabled bool `yaml:"audible_enabled"`
	SystemEnabled  bool `yaml:"system_enabled"`

	CooldownS int    `yaml:"cooldown_s"` // per-level repeat-alert gate
	SoundPath string `yaml:"sound_path"` // audible alert sample
}

// WebConfig contains the status dashboard settings.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// MetricsConfig contains the metrics recorder settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
}

// HistoryWindow returns the event log age bound as a duration.
func (a AnalysisConfig) HistoryWindow() time.Duration {
	return time.Duration(a.HistoryWindowS) * time.Second
}

// Cooldown returns the per-level alert cooldown as a duration.
func (a AlertingConfig) Cooldown() time.Duration {
	return time.Duration(a.CooldownS) * time.Second
}

// FrameTimeout returns how long the analysis loop waits for a frame.
func (c CameraConfig) FrameTimeout() time.Duration {
	return time.Duration(c.FrameTimeoutMS) * time.Millisecond
}

// FrameInterval returns the paced capture interval.
func (c CameraConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.TargetFPS)
}

// Default returns the recommended configuration for a 4GB-class board.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Camera: CameraConfig{
			Device:            0,
			Width:             320,
			Height:            240,
			TargetFPS:         1,
			FrameSkip:         1,
			Recompress:        true,
			RecompressQuality: 70,
			FrameTimeoutMS:    500,
		},
		Vision: VisionConfig{
			ModelPath:      "models/face_landmarker.onnx",
			YawThreshold:   20,
			PitchThreshold: 15,
			RollThreshold:  20,
			GazeXThreshold: 0.25,
			GazeYThreshold: 0.25,
		},
		Analysis: AnalysisConfig{
			WarningThreshold:  5,
			CriticalThreshold: 10,
			SevereThreshold:   20,
			HistoryWindowS:    120,
			MaxEventsBuffer:   100,
		},
		Alerting: AlertingConfig{
			Enabled:        true,
			VisualEnabled:  true,
			AudibleEnabled: true,
			SystemEnabled:  true,
			CooldownS:      5,
			SoundPath:      "resources/alert.wav",
		},
		Web: WebConfig{
			Enabled: true,
			Port:    "8090",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			OutputDir: "logs/metrics",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file is not an error: defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration invariants.
// Violations are fatal at startup, never discovered mid-run.
func (c *Config) Validate() error {
	if c.Camera.TargetFPS <= 0 {
		return fmt.Errorf("camera.target_fps must be > 0")
	}
	if c.Camera.FrameSkip <= 0 {
		return fmt.Errorf("camera.frame_skip must be >= 1")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera resolution must be positive")
	}
	if c.Camera.Recompress && (c.Camera.RecompressQuality < 1 || c.Camera.RecompressQuality > 100) {
		return fmt.Errorf("camera.recompress_quality must be in 1..100")
	}

	if c.Vision.YawThreshold <= 0 || c.Vision.PitchThreshold <= 0 || c.Vision.RollThreshold <= 0 {
		return fmt.Errorf("vision thresholds must be positive degrees")
	}
	if c.Vision.GazeXThreshold <= 0 || c.Vision.GazeYThreshold <= 0 {
		return fmt.Errorf("vision gaze thresholds must be positive")
	}

	a := c.Analysis
	if a.WarningThreshold < 1 {
		return fmt.Errorf("analysis.warning_threshold must be >= 1")
	}
	if a.WarningThreshold > a.CriticalThreshold || a.CriticalThreshold > a.SevereThreshold {
		return fmt.Errorf("analysis thresholds must be non-decreasing: warning(%d) <= critical(%d) <= severe(%d)",
			a.WarningThreshold, a.CriticalThreshold, a.SevereThreshold)
	}
	if a.HistoryWindowS <= 0 {
		return fmt.Errorf("analysis.history_window_s must be > 0")
	}
	if a.MaxEventsBuffer < 1 {
		return fmt.Errorf("analysis.max_events_buffer must be >= 1")
	}

	if c.Alerting.CooldownS < 0 {
		return fmt.Errorf("alerting.cooldown_s must be >= 0")
	}

	if c.Web.Enabled && c.Web.Port == "" {
		return fmt.Errorf("web.port required when web.enabled")
	}
	if c.Metrics.Enabled && c.Metrics.OutputDir == "" {
		return fmt.Errorf("metrics.output_dir required when metrics.enabled")
	}

	return nil
}
