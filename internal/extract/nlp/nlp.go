// Package nlp has the text processing used on extracted content: cleaning and
// entity recognition. Named entities (people, places, organizations) come from
// the prose statistical model, pattern entities (URLs, emails, amounts...) from
// regular expressions.
package nlp

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
)

// Entity labels.
const (
	LabelPerson  = "PERSON"
	LabelGPE     = "GPE"
	LabelOrg     = "ORG"
	LabelURL     = "URL"
	LabelEmail   = "EMAIL"
	LabelMoney   = "MONEY"
	LabelPercent = "PERCENT"
	LabelDate    = "DATE"
)

var namedLabels = []string{LabelPerson, LabelGPE, LabelOrg}

type rule struct {
	label string
	re    *regexp.Regexp
}

// Rules in priority order, a span matched by a rule can't be matched by the
// next ones nor by a named entity.
var rules = []rule{
	{label: LabelURL, re: regexp.MustCompile(`https?://[^\s<>"']+`)},
	{label: LabelEmail, re: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{label: LabelMoney, re: regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d+)?|\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|dollars|euros)\b`)},
	{label: LabelPercent, re: regexp.MustCompile(`\b\d+(?:\.\d+)?\s?%`)},
	{label: LabelDate, re: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.? \d{1,2}(?:, \d{4})?\b`)},
}

// Recognizer finds named entities in a text, in order of appearance.
type Recognizer interface {
	Recognize(text string) ([]model.Entity, error)
}

// RecognizerFunc is a helper to use a function as a Recognizer.
type RecognizerFunc func(text string) ([]model.Entity, error)

// Recognize satisfies Recognizer interface.
func (f RecognizerFunc) Recognize(text string) ([]model.Entity, error) { return f(text) }

// ProcessorConfig is the configuration for the text processor.
type ProcessorConfig struct {
	// Labels are the entity labels to recognize, all by default.
	Labels []string
	// Recognizer finds named entities, prose by default.
	Recognizer Recognizer
	Logger     log.Logger
}

func (c *ProcessorConfig) defaults() error {
	for _, l := range c.Labels {
		known := slices.Contains(namedLabels, l) || slices.ContainsFunc(rules, func(r rule) bool { return r.label == l })
		if !known {
			return fmt.Errorf("unknown entity label %q", l)
		}
	}
	if c.Recognizer == nil {
		c.Recognizer = RecognizerFunc(proseRecognize)
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "extract.NLP"})
	return nil
}

// Processor cleans text and recognizes entities.
type Processor struct {
	rules      []rule
	named      map[string]bool
	recognizer Recognizer
	logger     log.Logger
}

// NewProcessor returns a new text processor.
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	enabled := func(label string) bool { return len(cfg.Labels) == 0 || slices.Contains(cfg.Labels, label) }

	p := &Processor{
		named:      map[string]bool{},
		recognizer: cfg.Recognizer,
		logger:     cfg.Logger,
	}
	for _, r := range rules {
		if enabled(r.label) {
			p.rules = append(p.rules, r)
		}
	}
	for _, l := range namedLabels {
		if enabled(l) {
			p.named[l] = true
		}
	}

	return p, nil
}

// CleanText collapses any whitespace run into a single space and trims the text.
func (p *Processor) CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

type span struct {
	start, end int
	label      string
}

// ExtractEntities returns the entities in the text in order of appearance.
func (p *Processor) ExtractEntities(text string) []model.Entity {
	if text == "" {
		return []model.Entity{}
	}

	var spans []span
	for _, r := range p.rules {
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			s := span{start: loc[0], end: loc[1], label: r.label}
			if r.label == LabelURL {
				s.end = s.start + len(strings.TrimRight(text[s.start:s.end], ".,;:!?)"))
			}
			if !overlaps(spans, s) {
				spans = append(spans, s)
			}
		}
	}
	spans = append(spans, p.namedSpans(text, spans)...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	entities := make([]model.Entity, 0, len(spans))
	for _, s := range spans {
		entities = append(entities, model.Entity{Text: text[s.start:s.end], Label: s.label})
	}
	p.logger.Debugf("Extracted %d entities", len(entities))

	return entities
}

// namedSpans locates the recognized named entities in the text, skipping the
// ones taken by a pattern entity or not found verbatim.
func (p *Processor) namedSpans(text string, taken []span) []span {
	if len(p.named) == 0 {
		return nil
	}

	ents, err := p.recognizer.Recognize(text)
	if err != nil {
		p.logger.Warningf("Named entity recognition failed, continuing without: %s", err)
		return nil
	}

	var spans []span
	cursor := 0
	for _, e := range ents {
		if !p.named[e.Label] || e.Text == "" {
			continue
		}
		i := strings.Index(text[cursor:], e.Text)
		if i < 0 {
			continue
		}
		s := span{start: cursor + i, end: cursor + i + len(e.Text), label: e.Label}
		cursor = s.end
		if overlaps(taken, s) || overlaps(spans, s) {
			continue
		}
		spans = append(spans, s)
	}

	return spans
}

func proseRecognize(text string) ([]model.Entity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	ents := doc.Entities()
	entities := make([]model.Entity, 0, len(ents))
	for _, e := range ents {
		entities = append(entities, model.Entity{Text: e.Text, Label: e.Label})
	}

	return entities, nil
}

func overlaps(spans []span, s span) bool {
	for _, o := range spans {
		if s.start < o.end && o.start < s.end {
			return true
		}
	}
	return false
}
