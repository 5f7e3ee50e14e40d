// Package config handles converter configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/tiledconv/pkg/mota"
)

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds conversion settings.
type ConvertConfig struct {
	IDMap        string   `yaml:"idmap"`         // Path to the mota id map; searched for when empty
	TileWidth    int      `yaml:"tile_width"`    // Mota tile size in pixels
	TileHeight   int      `yaml:"tile_height"`   //
	Layers       []string `yaml:"layers"`        // Mota grids to convert, bottom first
	OverlayLayer string   `yaml:"overlay_layer"` // Grid the tileProp overlay applies to
	ObjectLayer  string   `yaml:"object_layer"`  // Name of the generated object group
	OutputDir    string   `yaml:"output_dir"`    // Mota output directory; empty converts in place
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	opts := mota.DefaultOptions()
	return &Config{
		Convert: ConvertConfig{
			TileWidth:    opts.TileWidth,
			TileHeight:   opts.TileHeight,
			Layers:       opts.Layers,
			OverlayLayer: opts.OverlayLayer,
			ObjectLayer:  opts.ObjectLayer,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// MotaOptions returns the mota converter options described by the config.
func (c *Config) MotaOptions() mota.Options {
	return mota.Options{
		TileWidth:    c.Convert.TileWidth,
		TileHeight:   c.Convert.TileHeight,
		Layers:       c.Convert.Layers,
		OverlayLayer: c.Convert.OverlayLayer,
		ObjectLayer:  c.Convert.ObjectLayer,
		OutputDir:    c.Convert.OutputDir,
	}
}
