// Package scrape runs the scraping pipeline for a task: render the page, OCR
// its screenshot, extract its content and record exactly one result.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/slok/scraper/internal/artifact"
	"github.com/slok/scraper/internal/extract"
	"github.com/slok/scraper/internal/extract/fallback"
	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
	"github.com/slok/scraper/internal/storage"
	"github.com/slok/scraper/internal/vision"
)

var (
	// ErrTaskNotFound is returned when running an unknown task, it also wraps model.ErrNotFound.
	ErrTaskNotFound = errors.New("task not found")
	// ErrFatalPrecondition is returned when the task can't be resolved or set as running.
	ErrFatalPrecondition = errors.New("fatal precondition")
	// ErrResultPersistence is returned when the result could not be stored.
	ErrResultPersistence = errors.New("result persistence failed")
	// ErrTaskFinalize is returned when the result was stored but the task final status could not be set.
	ErrTaskFinalize = errors.New("task finalize failed")
	// ErrCancelled is returned when the run context was cancelled.
	ErrCancelled = errors.New("run cancelled")
)

// ServiceConfig is the configuration for the scrape service.
type ServiceConfig struct {
	Repository storage.Repository
	Renderer   render.Renderer
	// Vision is optional, without it no OCR is done.
	Vision vision.Vision
	// Extractor is optional, without it only the page title is extracted.
	Extractor extract.Extractor
	// ArtifactStore is optional, without it screenshots are referenced by their temporary path.
	ArtifactStore artifact.Store
	// TitleParser gets the page title when the extraction is skipped or fails,
	// fallback.Title by default.
	TitleParser        TitleParser
	DisableScreenshots bool
	StageTimeouts      StageTimeouts
	Tracer             trace.Tracer
	Logger             log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Renderer == nil {
		return fmt.Errorf("renderer is required")
	}
	if c.StageTimeouts.Render < 0 || c.StageTimeouts.Vision < 0 || c.StageTimeouts.Extraction < 0 {
		return fmt.Errorf("stage timeouts can't be negative")
	}
	if c.TitleParser == nil {
		c.TitleParser = fallback.Title
	}
	if c.Tracer == nil {
		c.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Scrape"})
	return nil
}

// Service orchestrates scraping runs.
type Service struct {
	repo              storage.Repository
	renderer          render.Renderer
	vision            vision.Vision
	extractor         extract.Extractor
	artifacts         artifact.Store
	titleParser       TitleParser
	hasVision         bool
	hasExtractor      bool
	captureScreenshot bool
	timeouts          StageTimeouts
	tracer            trace.Tracer
	logger            log.Logger
}

// NewService creates a new scrape service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{
		repo:              cfg.Repository,
		renderer:          cfg.Renderer,
		vision:            cfg.Vision,
		extractor:         cfg.Extractor,
		artifacts:         cfg.ArtifactStore,
		titleParser:       cfg.TitleParser,
		hasVision:         cfg.Vision != nil,
		hasExtractor:      cfg.Extractor != nil,
		captureScreenshot: !cfg.DisableScreenshots,
		timeouts:          cfg.StageTimeouts,
		tracer:            cfg.Tracer,
		logger:            cfg.Logger,
	}

	if !s.hasVision {
		s.logger.Infof("Vision not configured, OCR disabled")
	}
	if !s.hasExtractor {
		s.logger.Infof("Extractor not configured, only titles will be extracted")
	}

	return s, nil
}

// RunTaskRequest is the request to run the pipeline.
type RunTaskRequest struct {
	// URL is required when TaskID is empty. With a TaskID it's optional
	// and must match the task URL.
	URL string
	// TaskID runs an existing task, when empty a new task is created.
	TaskID string
}

// Report is the outcome of a run.
type Report struct {
	// Task is the task after the run.
	Task model.Task
	// Result is the stored result, nil only if it could not be stored.
	Result *model.Result
	// StageErrors are the per stage errors of the run.
	StageErrors model.StageErrors
}

// RunTask runs the pipeline and returns the stored result.
//
// A result describing a failed scrape is not an error. Errors are returned
// when the task can't be resolved, the result can't be stored, the final task
// status can't be set or the run is cancelled. In the last two the stored
// result is returned too.
func (s *Service) RunTask(ctx context.Context, req RunTaskRequest) (*model.Result, error) {
	report, err := s.Run(ctx, req)
	if report == nil {
		return nil, err
	}
	return report.Result, err
}

// Run is like RunTask but returns the full run report.
func (s *Service) Run(ctx context.Context, req RunTaskRequest) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	ctx, span := s.tracer.Start(ctx, "scrape.RunTask")
	defer span.End()

	task, err := s.resolveTask(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", task.ID), attribute.String("url", task.URL))

	logger := s.logger.WithValues(log.Kv{"task-id": task.ID, "url": task.URL})
	logger.Infof("Task running")

	report, err := s.pipeline(ctx, logger, *task)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return report, err
}

func (s *Service) resolveTask(ctx context.Context, req RunTaskRequest) (*model.Task, error) {
	var task *model.Task
	if req.TaskID == "" {
		if req.URL == "" {
			return nil, fmt.Errorf("%w: url is required: %w", ErrFatalPrecondition, model.ErrNotValid)
		}

		t, err := s.repo.CreateTask(ctx, req.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: could not create task: %w", ErrFatalPrecondition, err)
		}
		task = t
	} else {
		t, err := s.repo.GetTask(ctx, req.TaskID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrTaskNotFound, err)
			}
			return nil, fmt.Errorf("%w: could not get task: %w", ErrFatalPrecondition, err)
		}
		if req.URL != "" && req.URL != t.URL {
			return nil, fmt.Errorf("%w: url %q doesn't match task %s url %q: %w", ErrFatalPrecondition, req.URL, t.ID, t.URL, model.ErrNotValid)
		}
		task = t
	}

	running, err := s.repo.SetTaskStatus(ctx, task.ID, model.TaskStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("%w: could not set task %s as running: %w", ErrFatalPrecondition, task.ID, err)
	}

	return running, nil
}

type runState struct {
	snapshot   *model.Snapshot
	rendered   bool
	ocr        *string
	extraction *model.Extraction
	// screenshotRef is the reference stored on the result.
	screenshotRef string
	// tempScreenshot is removed once the run ends.
	tempScreenshot string
	errs           model.StageErrors
	cancelErr      error
}

// cancelled records the cancellation of the run context, if any.
func (r *runState) cancelled(ctx context.Context) bool {
	if r.cancelErr != nil {
		return true
	}
	if err := ctx.Err(); err != nil {
		r.cancelErr = err
		r.errs.Cancelled = err.Error()
		return true
	}
	return false
}

func (s *Service) pipeline(ctx context.Context, logger log.Logger, task model.Task) (*Report, error) {
	st := &runState{}
	defer s.cleanup(logger, st)

	s.runStages(ctx, logger, task, st)

	// The outcome of the run is always recorded, even if the run was cancelled.
	storeCtx := context.WithoutCancel(ctx)
	nr := s.compileResult(task, st)

	result, err := s.repo.AttachResult(storeCtx, nr)
	if err != nil {
		logger.Errorf("Could not store result: %s", err)
		t, ferr := s.repo.SetTaskStatus(storeCtx, task.ID, model.TaskStatusFailed)
		if ferr != nil {
			logger.Errorf("Could not force task as failed: %s", ferr)
		} else {
			task = *t
		}
		return &Report{Task: task, StageErrors: st.errs}, fmt.Errorf("%w: %w", ErrResultPersistence, err)
	}

	final := model.TaskStatusFailed
	if st.rendered && st.cancelErr == nil {
		final = model.TaskStatusCompleted
	}

	report := &Report{Task: task, Result: result, StageErrors: st.errs}
	t, err := s.repo.SetTaskStatus(storeCtx, task.ID, final)
	if err != nil {
		logger.Errorf("Could not set task final status %s: %s", final, err)
		return report, fmt.Errorf("%w: %w", ErrTaskFinalize, err)
	}
	report.Task = *t

	if st.cancelErr != nil {
		logger.Warningf("Task cancelled")
		return report, fmt.Errorf("%w: %w", ErrCancelled, st.cancelErr)
	}

	logger.Infof("Task %s", final)
	return report, nil
}

func (s *Service) runStages(ctx context.Context, logger log.Logger, task model.Task, st *runState) {
	rendered := s.renderStage(ctx, task.URL)
	if snap := rendered.Value; snap != nil && snap.Temporary && snap.ScreenshotRef != "" {
		st.tempScreenshot = snap.ScreenshotRef
	}
	if rendered.Class == ClassFatal {
		logger.Errorf("Render failed: %s", rendered.Err)
		st.errs.Render = rendered.Err.Error()
	}
	if st.cancelled(ctx) || rendered.Class == ClassFatal {
		return
	}
	st.rendered = true
	st.snapshot = rendered.Value
	st.screenshotRef = st.snapshot.ScreenshotRef

	ocr := s.visionStage(ctx, st.snapshot)
	if st.cancelled(ctx) {
		return
	}
	switch ocr.Class {
	case ClassOK:
		st.ocr = ocr.Value
	case ClassRecoverable:
		logger.Warningf("OCR failed: %s", ocr.Err)
		st.errs.Vision = ocr.Err.Error()
	}

	ex := s.extractStage(ctx, st.snapshot.HTML, st.ocr)
	if st.cancelled(ctx) {
		return
	}
	switch ex.Class {
	case ClassOK:
		st.extraction = ex.Value
	case ClassRecoverable:
		logger.Warningf("Extraction failed, using title fallback: %s", ex.Err)
		st.errs.Extraction = ex.Err.Error()
		st.extraction = s.fallback(logger, st)
	case ClassSkipped:
		st.extraction = s.fallback(logger, st)
	}

	if st.screenshotRef == "" || s.artifacts == nil {
		return
	}
	ref, err := s.artifacts.Save(ctx, task.ID, st.screenshotRef)
	if st.cancelled(ctx) {
		return
	}
	if err != nil {
		logger.Warningf("Could not store screenshot: %s", err)
		st.errs.Artifact = err.Error()
		// Keep the temporary screenshot so the result reference stays valid.
		st.tempScreenshot = ""
		return
	}
	st.screenshotRef = ref
}

func (s *Service) fallback(logger log.Logger, st *runState) *model.Extraction {
	fb := s.fallbackStage(st.snapshot.HTML)
	if fb.Err != nil {
		logger.Warningf("Title fallback failed: %s", fb.Err)
		st.errs.Fallback = fb.Err.Error()
		return &model.Extraction{}
	}
	return fb.Value
}

func (s *Service) compileResult(task model.Task, st *runState) model.NewResult {
	nr := model.NewResult{
		TaskID:    task.ID,
		ErrorInfo: st.errs.ErrorInfo(),
	}

	switch {
	case !st.rendered:
		return nr
	case st.cancelErr != nil:
		nr.OCRText = st.ocr
		return nr
	}

	nr.Data = payload(task.URL, st.extraction)
	nr.OCRText = st.ocr
	if st.screenshotRef != "" {
		ref := st.screenshotRef
		nr.ScreenshotRef = &ref
	}

	return nr
}

// payload is the result data, every key is always present.
func payload(url string, ex *model.Extraction) map[string]any {
	if ex == nil {
		ex = &model.Extraction{}
	}

	mainEntities := ex.MainTextEntities
	if mainEntities == nil {
		mainEntities = []model.Entity{}
	}
	regionalEntities := ex.RegionalTextEntities
	if regionalEntities == nil {
		regionalEntities = [][]model.Entity{}
	}
	links := ex.Links
	if links == nil {
		links = []model.Link{}
	}

	data := map[string]any{
		"url":                    url,
		"title":                  ex.RawTitle,
		"raw_title":              ex.RawTitle,
		"cleaned_title":          ex.CleanedTitle,
		"main_text_entities":     mainEntities,
		"regional_text_entities": regionalEntities,
		"links":                  links,
		"links_count":            len(links),
	}
	if ex.Markdown != "" {
		data["markdown"] = ex.Markdown
	}
	if ex.WordCount > 0 {
		data["word_count"] = ex.WordCount
	}

	return data
}

func (s *Service) cleanup(logger log.Logger, st *runState) {
	if st.tempScreenshot == "" {
		return
	}

	if err := os.Remove(st.tempScreenshot); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warningf("Could not remove temporary screenshot %s: %s", st.tempScreenshot, err)
		return
	}
	logger.Debugf("Temporary screenshot removed: %s", st.tempScreenshot)
}
