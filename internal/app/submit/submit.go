package submit

import (
	"context"
	"fmt"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/storage"
)

// ServiceConfig is the configuration for the submit service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Submit"})
	return nil
}

// Service creates pending tasks in bulk. Nothing runs them, they are run
// later by their ID.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new submit service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request are the URLs to submit.
type Request struct {
	URLs []string
}

// Response has the created task IDs in the same order as the request URLs.
type Response struct {
	TaskIDs []string
}

// Submit creates one pending task per URL.
//
// All the URLs are validated before creating any task. Creation stops on the
// first storage error, the tasks created until then are kept.
func (s *Service) Submit(ctx context.Context, req Request) (*Response, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("at least one url is required: %w", model.ErrNotValid)
	}
	for _, u := range req.URLs {
		if err := model.ValidateURL(u); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		t, err := s.repo.CreateTask(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("could not create task for %s: %w", u, err)
		}
		ids = append(ids, t.ID)
	}

	s.logger.Infof("Submitted %d tasks", len(ids))
	return &Response{TaskIDs: ids}, nil
}
