package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/slok/scraper/internal/model"
)

// Classification is how a stage ended.
type Classification int

const (
	// ClassOK means the stage produced its value.
	ClassOK Classification = iota
	// ClassRecoverable means the stage failed but the run continues.
	ClassRecoverable
	// ClassFatal means the stage failed and the run can't produce content.
	ClassFatal
	// ClassSkipped means the stage didn't run.
	ClassSkipped
)

func (c Classification) String() string {
	switch c {
	case ClassOK:
		return "ok"
	case ClassRecoverable:
		return "recoverable"
	case ClassFatal:
		return "fatal"
	case ClassSkipped:
		return "skipped"
	}
	return "unknown"
}

// StageTimeouts bound each stage, zero means no timeout.
type StageTimeouts struct {
	Render     time.Duration
	Vision     time.Duration
	Extraction time.Duration
}

type stageOutcome[T any] struct {
	Value T
	Err   error
	Class Classification
}

func succeeded[T any](v T) stageOutcome[T] { return stageOutcome[T]{Value: v, Class: ClassOK} }

func skipped[T any]() stageOutcome[T] { return stageOutcome[T]{Class: ClassSkipped} }

func failed[T any](class Classification, err error) stageOutcome[T] {
	return stageOutcome[T]{Err: err, Class: class}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *Service) renderStage(ctx context.Context, url string) stageOutcome[*model.Snapshot] {
	ctx, span := s.tracer.Start(ctx, "scrape.render")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.timeouts.Render)
	defer cancel()

	snap, err := s.renderer.Snapshot(ctx, url, model.SnapshotOptions{CaptureScreenshot: s.captureScreenshot})
	if err != nil {
		return endSpan(span, failed[*model.Snapshot](ClassFatal, err))
	}
	if snap == nil || strings.TrimSpace(snap.HTML) == "" {
		// Keep the screenshot so it's cleaned up.
		out := failed[*model.Snapshot](ClassFatal, errEmptyHTML(url))
		out.Value = snap
		return endSpan(span, out)
	}

	span.SetAttributes(
		attribute.Int("html.bytes", len(snap.HTML)),
		attribute.Bool("screenshot", snap.ScreenshotRef != ""),
	)
	return endSpan(span, succeeded(snap))
}

func errEmptyHTML(url string) error {
	return fmt.Errorf("HTML content missing for %s after snapshot", url)
}

func (s *Service) visionStage(ctx context.Context, snap *model.Snapshot) stageOutcome[*string] {
	if !s.hasVision || snap.ScreenshotRef == "" {
		return skipped[*string]()
	}

	ctx, span := s.tracer.Start(ctx, "scrape.vision")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.timeouts.Vision)
	defer cancel()

	text, err := s.vision.ExtractText(ctx, snap.ScreenshotRef, model.Rect{})
	if err != nil {
		return endSpan(span, failed[*string](ClassRecoverable, err))
	}

	// No text found is not an error.
	text = strings.TrimSpace(text)
	if text == "" {
		return endSpan(span, succeeded[*string](nil))
	}
	span.SetAttributes(attribute.Int("ocr.chars", len(text)))

	return endSpan(span, succeeded(&text))
}

func (s *Service) extractStage(ctx context.Context, html string, ocr *string) stageOutcome[*model.Extraction] {
	if !s.hasExtractor {
		return skipped[*model.Extraction]()
	}

	ctx, span := s.tracer.Start(ctx, "scrape.extract")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.timeouts.Extraction)
	defer cancel()

	var aux []string
	if ocr != nil {
		aux = []string{*ocr}
	}

	ex, err := s.extractor.Extract(ctx, html, aux)
	if err != nil {
		return endSpan(span, failed[*model.Extraction](ClassRecoverable, err))
	}
	if ex == nil {
		ex = &model.Extraction{}
	}

	return endSpan(span, succeeded(ex))
}

// TitleParser returns the title of a page.
type TitleParser func(rawHTML string) (string, error)

func (s *Service) fallbackStage(html string) stageOutcome[*model.Extraction] {
	title, err := s.titleParser(html)
	if err != nil {
		return failed[*model.Extraction](ClassRecoverable, err)
	}

	return succeeded(&model.Extraction{RawTitle: title, CleanedTitle: title})
}

func endSpan[T any](span trace.Span, out stageOutcome[T]) stageOutcome[T] {
	span.SetAttributes(attribute.String("stage.class", out.Class.String()))
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	return out
}
