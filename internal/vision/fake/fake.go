// Package fake implements a vision that returns a fixed text.
package fake

import (
	"context"
	"fmt"
	"os"

	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/vision"
)

// Vision returns Text for every existing image.
type Vision struct {
	Text string
}

// ExtractText returns the fixed text.
func (v Vision) ExtractText(ctx context.Context, imageRef string, region model.Rect) (string, error) {
	if _, err := os.Stat(imageRef); err != nil {
		return "", fmt.Errorf("image file not found: %s: %w", imageRef, vision.ErrVision)
	}

	return v.Text, nil
}
