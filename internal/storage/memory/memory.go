package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	tasks   map[string]model.Task
	results map[string][]model.Result
	mu      sync.RWMutex
	logger  log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:   make(map[string]model.Task),
		results: make(map[string][]model.Result),
		logger:  cfg.Logger,
	}, nil
}

// CreateTask creates a new pending task.
func (r *Repository) CreateTask(ctx context.Context, url string) (*model.Task, error) {
	if url == "" {
		return nil, fmt.Errorf("url is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	t := model.Task{
		ID:        ulid.Make().String(),
		URL:       url,
		Status:    model.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return &t, nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	return &t, nil
}

// SetTaskStatus updates the task status.
func (r *Repository) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	if err := t.CanTransitionTo(status); err != nil {
		return nil, err
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	r.logger.Debugf("Task %s status updated to %s", id, status)

	return &t, nil
}

// ListTasks returns a page of tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context, skip, limit int) ([]model.Task, int, error) {
	if skip < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("skip and limit can't be negative: %w", model.ErrNotValid)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sortNewestFirst(tasks)

	total := len(tasks)
	if skip >= total {
		return []model.Task{}, total, nil
	}
	end := min(skip+limit, total)

	return tasks[skip:end], total, nil
}

// AttachResult stores a new result for an existing task.
func (r *Repository) AttachResult(ctx context.Context, nr model.NewResult) (*model.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[nr.TaskID]; !ok {
		return nil, fmt.Errorf("parent task %s: %w", nr.TaskID, model.ErrNotFound)
	}

	res := model.Result{
		ID:            ulid.Make().String(),
		TaskID:        nr.TaskID,
		Data:          maps.Clone(nr.Data),
		ErrorInfo:     nr.ErrorInfo,
		ScreenshotRef: nr.ScreenshotRef,
		OCRText:       nr.OCRText,
		CreatedAt:     time.Now().UTC(),
	}
	r.results[nr.TaskID] = append(r.results[nr.TaskID], res)
	r.logger.Debugf("Result %s added for task %s", res.ID, nr.TaskID)

	return &res, nil
}

// GetResult retrieves a result by ID.
func (r *Repository) GetResult(ctx context.Context, id string) (*model.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, results := range r.results {
		for _, res := range results {
			if res.ID == id {
				return &res, nil
			}
		}
	}

	return nil, fmt.Errorf("result %s: %w", id, model.ErrNotFound)
}

// GetResultsForTask returns the results of a task, newest first.
func (r *Repository) GetResultsForTask(ctx context.Context, taskID string) ([]model.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.results[taskID]
	results := make([]model.Result, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		results = append(results, stored[i])
	}

	return results, nil
}

// IDs are ULIDs so they break creation time ties in creation order.
func sortNewestFirst(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}

// Reset removes every task and result.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = make(map[string]model.Task)
	r.results = make(map[string][]model.Result)
	r.logger.Infof("Repository reset")

	return nil
}
