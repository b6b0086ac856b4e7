package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/scraper/internal/config"
)

// ConfigYAMLRepository loads the application configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads the YAML file on top of the base configuration and returns it validated.
// A missing file returns the base configuration.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string, base config.Config) (config.Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if ctx.Err() != nil {
		return config.Config{}, ctx.Err()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	merged := cfg.applyTo(base)
	if err := merged.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return merged, nil
}

// Config represents the YAML structure of the configuration file.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Render    RenderConfig    `yaml:"render"`
	Vision    VisionConfig    `yaml:"vision"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Stages    StagesConfig    `yaml:"stages"`
	HTTP      HTTPConfig      `yaml:"http"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// DatabaseConfig represents the YAML structure for the database configuration.
type DatabaseConfig struct {
	Path   string `yaml:"path"`
	Memory *bool  `yaml:"memory"`
}

// RenderConfig represents the YAML structure for the renderer configuration.
type RenderConfig struct {
	Kind        string        `yaml:"kind"`
	Screenshots *bool         `yaml:"screenshots"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	Chrome      ChromeConfig  `yaml:"chrome"`
}

// ChromeConfig represents the YAML structure for the headless browser configuration.
type ChromeConfig struct {
	Bin           string `yaml:"bin"`
	WindowWidth   int    `yaml:"window_width"`
	WindowHeight  int    `yaml:"window_height"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// VisionConfig represents the YAML structure for the OCR configuration.
type VisionConfig struct {
	Kind     string `yaml:"kind"`
	Bin      string `yaml:"bin"`
	Lang     string `yaml:"lang"`
	FakeText string `yaml:"fake_text"`
}

// ExtractorConfig represents the YAML structure for the content extraction configuration.
type ExtractorConfig struct {
	Kind             string   `yaml:"kind"`
	NLP              *bool    `yaml:"nlp"`
	EntityLabels     []string `yaml:"entity_labels"`
	MaxMainTextChars int      `yaml:"max_main_text_chars"`
}

// ArtifactsConfig represents the YAML structure for the screenshot store configuration.
type ArtifactsConfig struct {
	Kind  string      `yaml:"kind"`
	Dir   string      `yaml:"dir"`
	Minio MinioConfig `yaml:"minio"`
}

// MinioConfig represents the YAML structure for the S3 compatible store configuration.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Secure    *bool  `yaml:"secure"`
}

// StagesConfig represents the YAML structure for the stage timeouts.
type StagesConfig struct {
	RenderTimeout     time.Duration `yaml:"render_timeout"`
	VisionTimeout     time.Duration `yaml:"vision_timeout"`
	ExtractionTimeout time.Duration `yaml:"extraction_timeout"`
}

// HTTPConfig represents the YAML structure for the API server configuration.
type HTTPConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// TracingConfig represents the YAML structure for the tracing configuration.
type TracingConfig struct {
	Exporter    string   `yaml:"exporter"`
	Endpoint    string   `yaml:"endpoint"`
	Insecure    *bool    `yaml:"insecure"`
	SampleRatio *float64 `yaml:"sample_ratio"`
}

// applyTo sets the values present in the file on top of the base configuration.
func (c Config) applyTo(base config.Config) config.Config {
	cfg := base

	setString(&cfg.Database.Path, c.Database.Path)
	setBool(&cfg.Database.Memory, c.Database.Memory)

	setString(&cfg.Render.Kind, c.Render.Kind)
	setBool(&cfg.Render.Screenshots, c.Render.Screenshots)
	setDuration(&cfg.Render.Timeout, c.Render.Timeout)
	setString(&cfg.Render.UserAgent, c.Render.UserAgent)
	setString(&cfg.Render.Chrome.Bin, c.Render.Chrome.Bin)
	setInt(&cfg.Render.Chrome.WindowWidth, c.Render.Chrome.WindowWidth)
	setInt(&cfg.Render.Chrome.WindowHeight, c.Render.Chrome.WindowHeight)
	setInt(&cfg.Render.Chrome.MaxConcurrent, c.Render.Chrome.MaxConcurrent)

	setString(&cfg.Vision.Kind, c.Vision.Kind)
	setString(&cfg.Vision.Bin, c.Vision.Bin)
	setString(&cfg.Vision.Lang, c.Vision.Lang)
	setString(&cfg.Vision.FakeText, c.Vision.FakeText)

	setString(&cfg.Extractor.Kind, c.Extractor.Kind)
	setBool(&cfg.Extractor.NLP, c.Extractor.NLP)
	if len(c.Extractor.EntityLabels) > 0 {
		cfg.Extractor.EntityLabels = c.Extractor.EntityLabels
	}
	setInt(&cfg.Extractor.MaxMainTextChars, c.Extractor.MaxMainTextChars)

	setString(&cfg.Artifacts.Kind, c.Artifacts.Kind)
	setString(&cfg.Artifacts.Dir, c.Artifacts.Dir)
	setString(&cfg.Artifacts.Minio.Endpoint, c.Artifacts.Minio.Endpoint)
	setString(&cfg.Artifacts.Minio.AccessKey, c.Artifacts.Minio.AccessKey)
	setString(&cfg.Artifacts.Minio.SecretKey, c.Artifacts.Minio.SecretKey)
	setString(&cfg.Artifacts.Minio.Bucket, c.Artifacts.Minio.Bucket)
	setBool(&cfg.Artifacts.Minio.Secure, c.Artifacts.Minio.Secure)

	setDuration(&cfg.Stages.RenderTimeout, c.Stages.RenderTimeout)
	setDuration(&cfg.Stages.VisionTimeout, c.Stages.VisionTimeout)
	setDuration(&cfg.Stages.ExtractionTimeout, c.Stages.ExtractionTimeout)

	setString(&cfg.HTTP.ListenAddress, c.HTTP.ListenAddress)

	setString(&cfg.Tracing.Exporter, c.Tracing.Exporter)
	setString(&cfg.Tracing.Endpoint, c.Tracing.Endpoint)
	setBool(&cfg.Tracing.Insecure, c.Tracing.Insecure)
	if c.Tracing.SampleRatio != nil {
		cfg.Tracing.SampleRatio = *c.Tracing.SampleRatio
	}

	return cfg
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
