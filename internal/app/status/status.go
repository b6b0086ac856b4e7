package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/storage"
)

// ServiceConfig is the configuration for the status service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})

	return nil
}

// Service retrieves a task and its results.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	TaskID string
	// SkipResults only retrieves the task.
	SkipResults bool
}

// Response is a task with its results, newest first.
type Response struct {
	Task    model.Task
	Results []model.Result
}

// Run retrieves the status of a task.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}
	s.logger.Debugf("getting status for task: %s", req.TaskID)

	task, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("task not found: %s: %w", req.TaskID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	resp := &Response{Task: *task, Results: []model.Result{}}
	if req.SkipResults {
		return resp, nil
	}

	results, err := s.repo.GetResultsForTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get task results: %w", err)
	}
	if results != nil {
		resp.Results = results
	}

	s.logger.Debugf("task %s has %d results", task.ID, len(resp.Results))
	return resp, nil
}
