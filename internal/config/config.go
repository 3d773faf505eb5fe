package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/geom"
)

type Config struct {
	Port           int      `envconfig:"PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`

	OctreeCapacity           int     `envconfig:"OCTREE_CAPACITY" default:"8"`
	HistorySize              int     `envconfig:"HISTORY_SIZE" default:"100"`
	ZoomHistorySize          int     `envconfig:"ZOOM_HISTORY_SIZE" default:"20"`
	SelectionTolerancePixels float64 `envconfig:"SELECTION_TOLERANCE_PX" default:"8"`
	ExtentsPaddingPercent    float64 `envconfig:"EXTENTS_PADDING" default:"5"`
	ViewportWidth            float64 `envconfig:"VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight           float64 `envconfig:"VIEWPORT_HEIGHT" default:"720"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"` // 10MB
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		return nil, fmt.Errorf("invalid viewport %gx%g", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %d", cfg.MaxUploadBytes)
	}
	return &cfg, nil
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// EngineOptions returns the options every session engine is created with.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Viewport = geom.NewRect2(0, 0, c.ViewportWidth, c.ViewportHeight)
	if c.OctreeCapacity > 0 {
		opts.IndexCapacity = c.OctreeCapacity
	}
	if c.HistorySize > 0 {
		opts.HistorySize = c.HistorySize
	}
	if c.ZoomHistorySize > 0 {
		opts.ZoomHistorySize = c.ZoomHistorySize
	}
	if c.SelectionTolerancePixels > 0 {
		opts.SelectionTolerance = c.SelectionTolerancePixels
	}
	if c.ExtentsPaddingPercent >= 0 {
		opts.ExtentsPadding = c.ExtentsPaddingPercent
	}
	return opts
}
