package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/scraper/internal/extract/html"
	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
)

// ErrExtractor is wrapped by every extraction failure.
var ErrExtractor = errors.New("extractor error")

// Extractor extracts structured content from a rendered page.
type Extractor interface {
	// Extract extracts the content of the HTML, auxiliary texts are processed
	// independently, for example text from OCR.
	Extract(ctx context.Context, html string, auxiliaryTexts []string) (*model.Extraction, error)
}

// TextProcessor cleans texts and finds entities in them.
type TextProcessor interface {
	CleanText(text string) string
	ExtractEntities(text string) []model.Entity
}

// ManagerConfig is the configuration for the extractor manager.
type ManagerConfig struct {
	Parser *html.Parser
	// TextProcessor is optional, without it titles are not cleaned and no entities are extracted.
	TextProcessor TextProcessor
	// MaxMainTextChars limits the main text processed for entities.
	MaxMainTextChars int
	Logger           log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.Parser == nil {
		c.Parser = html.NewParser()
	}
	if c.MaxMainTextChars == 0 {
		c.MaxMainTextChars = 10000
	}
	if c.MaxMainTextChars < 0 {
		return fmt.Errorf("max main text chars can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "extract.Manager"})
	return nil
}

// Manager is the default Extractor, it composes the HTML parser with an optional text processor.
type Manager struct {
	parser       *html.Parser
	processor    TextProcessor
	maxMainChars int
	logger       log.Logger
}

// NewManager returns a new extractor manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.TextProcessor == nil {
		cfg.Logger.Warningf("No text processor configured, titles won't be cleaned and entities won't be extracted")
	}

	return &Manager{
		parser:       cfg.Parser,
		processor:    cfg.TextProcessor,
		maxMainChars: cfg.MaxMainTextChars,
		logger:       cfg.Logger,
	}, nil
}

// Extract satisfies Extractor.
func (m *Manager) Extract(ctx context.Context, rawHTML string, auxiliaryTexts []string) (*model.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", err, ErrExtractor)
	}

	page, err := m.parser.Parse(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("basic HTML parsing failed: %w: %w", err, ErrExtractor)
	}

	ex := &model.Extraction{
		RawTitle:             page.Title,
		CleanedTitle:         page.Title,
		MainTextEntities:     []model.Entity{},
		RegionalTextEntities: [][]model.Entity{},
		Links:                page.Links,
		Markdown:             page.Markdown,
		WordCount:            len(strings.Fields(page.MainText)),
	}

	if m.processor == nil {
		return ex, nil
	}

	ex.CleanedTitle = m.processor.CleanText(page.Title)

	mainText := page.MainText
	if len(mainText) > m.maxMainChars {
		mainText = truncate(mainText, m.maxMainChars)
	}
	ex.MainTextEntities = m.processor.ExtractEntities(m.processor.CleanText(mainText))

	for _, text := range auxiliaryTexts {
		entities := m.processor.ExtractEntities(m.processor.CleanText(text))
		ex.RegionalTextEntities = append(ex.RegionalTextEntities, entities)
	}
	m.logger.Debugf("Extracted %d main entities and %d regions", len(ex.MainTextEntities), len(ex.RegionalTextEntities))

	return ex, nil
}

// truncate cuts at max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	for max > 0 && max < len(s) && s[max]&0xC0 == 0x80 {
		max--
	}
	return s[:max]
}
