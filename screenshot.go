package voodoo

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Screenshot queues a labeled screenshot. A host that draws frames (see
// Game) captures it after the next draw and writes it to
// Config.ScreenshotDir in Config.ScreenshotFormat with a timestamped name.
func (e *Engine) Screenshot(label string) error {
	if err := e.checkLive("screenshot"); err != nil {
		return err
	}
	e.screenshotQueue = append(e.screenshotQueue, label)
	return nil
}

// PendingScreenshots returns the number of queued screenshots.
func (e *Engine) PendingScreenshots() int { return len(e.screenshotQueue) }

// flushScreenshots writes img once for every queued label and returns the
// paths written.
func (e *Engine) flushScreenshots(img *image.NRGBA) []string {
	if len(e.screenshotQueue) == 0 {
		return nil
	}
	defer func() { e.screenshotQueue = e.screenshotQueue[:0] }()

	dir := e.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		Logger().Error("screenshot", "dir", dir, "err", err)
		return nil
	}

	stamp := e.now().Format("20060102_150405")
	ext := e.cfg.ScreenshotFormat
	var paths []string
	for _, label := range e.screenshotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", stamp, sanitizeLabel(label), ext))
		var err error
		if ext == "webp" {
			err = writeWebP(path, img)
		} else {
			err = writePNG(path, img)
		}
		if err != nil {
			Logger().Error("screenshot", "path", path, "err", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// writeWebP encodes an image to a lossless WebP file at the given path.
func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
