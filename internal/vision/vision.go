package vision

import (
	"context"
	"errors"

	"github.com/slok/scraper/internal/model"
)

// ErrVision is wrapped by every vision failure.
var ErrVision = errors.New("vision error")

// Vision extracts text from images.
type Vision interface {
	// ExtractText returns the text found in the region of the image. A zero region is the full image.
	ExtractText(ctx context.Context, imageRef string, region model.Rect) (string, error)
}
