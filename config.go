package voodoo

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config controls engine construction. The zero value is not usable; start
// from DefaultConfig or LoadConfig.
type Config struct {
	// FrameLoop, when true, lets a host (see Run) drive Frame continuously.
	// When false the caller steps the engine explicitly with Frame, which is
	// how tests get deterministic frames.
	FrameLoop bool `toml:"frame_loop"`

	// Stencils creates the BelowStencil and SeamStencil layers.
	Stencils bool `toml:"stencils"`
	// Seams creates the Seam layer (and SeamStencil when Stencils is set)
	// for models that render both above and below the page.
	Seams bool `toml:"seams"`

	// FOV is the vertical field of view in degrees shared by all cameras.
	FOV float64 `toml:"fov"`
	// ZNear and ZFar are distances from the camera along the view axis.
	ZNear float64 `toml:"z_near"`
	ZFar  float64 `toml:"z_far"`

	// DoubleClickMillis is the longest gap between two clicks on the same
	// trigger that still counts as a double click.
	DoubleClickMillis int `toml:"double_click_ms"`
	// FPSIntervalMillis is how often the FPS counter is recomputed.
	FPSIntervalMillis int `toml:"fps_interval_ms"`

	// Debug turns contract errors into panics and logs per-frame stats.
	Debug bool `toml:"debug"`

	// Viewport is the initial visible page area.
	Viewport Rect `toml:"viewport"`

	// ScreenshotDir receives screenshots queued with Engine.Screenshot.
	ScreenshotDir string `toml:"screenshot_dir"`
	// ScreenshotFormat is "png" or "webp".
	ScreenshotFormat string `toml:"screenshot_format"`

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time `toml:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		FrameLoop:         true,
		Stencils:          true,
		Seams:             true,
		FOV:               45,
		ZNear:             1,
		ZFar:              10000,
		DoubleClickMillis: 500,
		FPSIntervalMillis: 1000,
		Viewport:          Rect{Width: 800, Height: 600},
		ScreenshotDir:     "screenshots",
		ScreenshotFormat:  "png",
		Clock:             time.Now,
	}
}

// LoadConfig parses TOML on top of DefaultConfig and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.FOV <= 0 || c.FOV >= 180:
		return fmt.Errorf("config: fov %v out of range (0, 180): %w", c.FOV, ErrInvalidArgument)
	case c.ZNear <= 0:
		return fmt.Errorf("config: z_near must be positive: %w", ErrInvalidArgument)
	case c.ZFar <= c.ZNear:
		return fmt.Errorf("config: z_far must exceed z_near: %w", ErrInvalidArgument)
	case c.DoubleClickMillis < 0:
		return fmt.Errorf("config: double_click_ms must not be negative: %w", ErrInvalidArgument)
	case c.FPSIntervalMillis <= 0:
		return fmt.Errorf("config: fps_interval_ms must be positive: %w", ErrInvalidArgument)
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("config: viewport must have a positive size: %w", ErrInvalidArgument)
	case c.ScreenshotFormat != "png" && c.ScreenshotFormat != "webp":
		return fmt.Errorf("config: screenshot_format %q is not png or webp: %w", c.ScreenshotFormat, ErrInvalidArgument)
	}
	return nil
}

func (c *Config) doubleClickInterval() time.Duration {
	return time.Duration(c.DoubleClickMillis) * time.Millisecond
}

func (c *Config) fpsInterval() time.Duration {
	return time.Duration(c.FPSIntervalMillis) * time.Millisecond
}
