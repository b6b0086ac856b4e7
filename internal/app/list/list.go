package list

import (
	"context"
	"fmt"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/storage"
)

const (
	// DefaultPage is the page used when none is requested.
	DefaultPage = 1
	// DefaultSize is the page size used when none is requested.
	DefaultSize = 20
	// MaxSize is the biggest page size allowed.
	MaxSize = 100
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})

	return nil
}

// Service lists tasks in pages.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Page starts at 1, zero means DefaultPage.
	Page int
	// Size is the number of tasks per page, zero means DefaultSize.
	Size int
}

func (r *Request) defaults() error {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.Size == 0 {
		r.Size = DefaultSize
	}

	if r.Page < 1 {
		return fmt.Errorf("page must be 1 or greater: %w", model.ErrNotValid)
	}
	if r.Size < 1 || r.Size > MaxSize {
		return fmt.Errorf("size must be between 1 and %d: %w", MaxSize, model.ErrNotValid)
	}

	return nil
}

// Response is a page of tasks.
type Response struct {
	Tasks []model.Task
	Total int
	Page  int
	Size  int
}

// Run lists a page of tasks, newest first.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	if err := req.defaults(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	skip := (req.Page - 1) * req.Size
	s.logger.Debugf("listing tasks page %d (size %d)", req.Page, req.Size)

	tasks, total, err := s.repo.ListTasks(ctx, skip, req.Size)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	s.logger.Debugf("found %d tasks of %d", len(tasks), total)
	return &Response{
		Tasks: tasks,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}
