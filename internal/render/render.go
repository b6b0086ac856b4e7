package render

import (
	"context"
	"errors"

	"github.com/slok/scraper/internal/model"
)

// ErrRenderer is wrapped by every renderer failure.
var ErrRenderer = errors.New("renderer error")

// Renderer loads a URL and returns the rendered page.
type Renderer interface {
	Snapshot(ctx context.Context, url string, opts model.SnapshotOptions) (*model.Snapshot, error)
}
