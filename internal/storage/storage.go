package storage

import (
	"context"

	"github.com/slok/scraper/internal/model"
)

// Repository is the interface for task and result persistence.
//
// Every write is its own atomic unit, there are no transactions across calls.
type Repository interface {
	// CreateTask creates a new pending task for the URL.
	CreateTask(ctx context.Context, url string) (*model.Task, error)
	// GetTask returns the task, model.ErrNotFound if missing.
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// SetTaskStatus updates the status and the update timestamp of a task.
	SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error)
	// ListTasks returns a page of tasks (newest first) and the total number of tasks.
	ListTasks(ctx context.Context, skip, limit int) ([]model.Task, int, error)

	// AttachResult stores a new result, model.ErrNotFound if the task does not exist.
	AttachResult(ctx context.Context, r model.NewResult) (*model.Result, error)
	// GetResult returns a result, model.ErrNotFound if missing.
	GetResult(ctx context.Context, id string) (*model.Result, error)
	// GetResultsForTask returns the results of a task, newest first.
	GetResultsForTask(ctx context.Context, taskID string) ([]model.Result, error)
}
