// Package tesseract implements OCR using the tesseract command line.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"strings"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/vision"
)

// CommandRunner runs a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// VisionConfig is the configuration for the tesseract OCR.
type VisionConfig struct {
	Bin  string
	Lang string
	// TempDir is where cropped regions are written, by default the OS temp dir.
	TempDir    string
	RunCommand CommandRunner
	Logger     log.Logger
}

func (c *VisionConfig) defaults() error {
	if c.Bin == "" {
		c.Bin = "tesseract"
	}
	if c.Lang == "" {
		c.Lang = "eng"
	}
	if c.RunCommand == nil {
		c.RunCommand = runCommand
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "vision.Tesseract"})
	return nil
}

// Vision runs tesseract over local image files.
type Vision struct {
	cfg    VisionConfig
	logger log.Logger
}

// NewVision returns a new tesseract vision.
func NewVision(cfg VisionConfig) (*Vision, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Vision{cfg: cfg, logger: cfg.Logger}, nil
}

// ExtractText runs OCR over the image region.
func (v *Vision) ExtractText(ctx context.Context, imageRef string, region model.Rect) (string, error) {
	if _, err := os.Stat(imageRef); err != nil {
		return "", fmt.Errorf("image file not found: %s: %w", imageRef, vision.ErrVision)
	}

	path := imageRef
	if !region.IsFull() {
		cropped, err := v.crop(imageRef, region)
		if err != nil {
			return "", fmt.Errorf("could not crop image: %w: %w", err, vision.ErrVision)
		}
		defer func() {
			if err := os.Remove(cropped); err != nil {
				v.logger.Warningf("Could not remove cropped image %s: %s", cropped, err)
			}
		}()
		path = cropped
	}

	out, err := v.cfg.RunCommand(ctx, v.cfg.Bin, path, "stdout", "-l", v.cfg.Lang)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("tesseract is not installed or not in PATH: %w", vision.ErrVision)
		}
		return "", fmt.Errorf("ocr failed: %w: %w", err, vision.ErrVision)
	}

	text := strings.TrimSpace(string(out))
	v.logger.Debugf("OCR extracted %d characters from %s", len(text), imageRef)

	return text, nil
}

func (v *Vision) crop(imageRef string, region model.Rect) (string, error) {
	f, err := os.Open(imageRef)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("could not decode image: %w", err)
	}

	rect := image.Rect(region.X0, region.Y0, region.X1, region.Y1).Intersect(img.Bounds())
	if rect.Empty() {
		return "", fmt.Errorf("region %v is outside of the image %v", region, img.Bounds())
	}

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return "", fmt.Errorf("image type %T can't be cropped", img)
	}

	out, err := os.CreateTemp(v.cfg.TempDir, "scraper-region-*.png")
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := png.Encode(out, sub.SubImage(rect)); err != nil {
		_ = os.Remove(out.Name())
		return "", err
	}

	return out.Name(), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	return out, nil
}
