package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoder names accepted by scan.decoder
const (
	DecoderFFmpeg = "ffmpeg"
	DecoderGoCV   = "gocv"
)

// DefaultPath is where the CLI looks for the configuration file
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Scan   ScanConfig   `yaml:"scan"`
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
	Batch  BatchConfig  `yaml:"batch"`
}

// ScanConfig contains matching settings
type ScanConfig struct {
	Frames         FramesConfig `yaml:"frames"`
	HitRatio       float64      `yaml:"hit_ratio"`
	ScoreTolerance int          `yaml:"score_tolerance"`
	QuantizeStep   int          `yaml:"quantize_step"`
	Decoder        string       `yaml:"decoder"`
}

// FramesConfig is the default frame range; stop <= 0 scans to the end
type FramesConfig struct {
	Start int `yaml:"start"`
	Stop  int `yaml:"stop"`
	Step  int `yaml:"step"`
}

// FFmpegConfig contains external tool settings
type FFmpegConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig controls where trimmed videos are written
type OutputConfig struct {
	Suffix    string `yaml:"suffix"`
	Overwrite bool   `yaml:"overwrite"`
	DebugDir  string `yaml:"debug_dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// BatchConfig contains directory scan settings
type BatchConfig struct {
	Workers     int      `yaml:"workers"` // 0 picks NumCPU-1
	Extensions  []string `yaml:"extensions"`
	MetricsPort int      `yaml:"metrics_port"` // 0 disables the endpoint
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Frames:         FramesConfig{Start: 0, Stop: -1, Step: 1},
			HitRatio:       0.01,
			ScoreTolerance: 5,
			QuantizeStep:   10,
			Decoder:        DecoderFFmpeg,
		},
		FFmpeg: FFmpegConfig{Path: "ffmpeg"},
		Output: OutputConfig{Suffix: "_vidrop", DebugDir: "tmp"},
		Log:    LogConfig{Level: "info"},
		Batch:  BatchConfig{Extensions: []string{".mp4"}},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that cannot be corrected silently
func (c *Config) Validate() error {
	if c.Scan.Frames.Step < 1 {
		return fmt.Errorf("scan.frames.step must be at least 1, got %d", c.Scan.Frames.Step)
	}
	if c.Scan.Frames.Start < 0 {
		return fmt.Errorf("scan.frames.start must not be negative, got %d", c.Scan.Frames.Start)
	}
	if c.Scan.HitRatio <= 0 || c.Scan.HitRatio >= 1 {
		return fmt.Errorf("scan.hit_ratio must be between 0 and 1, got %g", c.Scan.HitRatio)
	}
	if c.Scan.QuantizeStep < 1 {
		return fmt.Errorf("scan.quantize_step must be at least 1, got %d", c.Scan.QuantizeStep)
	}
	switch strings.ToLower(c.Scan.Decoder) {
	case DecoderFFmpeg, DecoderGoCV:
	default:
		return fmt.Errorf("scan.decoder must be %q or %q, got %q", DecoderFFmpeg, DecoderGoCV, c.Scan.Decoder)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers)
	}
	return nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise
func LoadOrDefault(path string) (*Config, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
