package model

import (
	"fmt"
	"time"
)

// TaskStatus represents the state of a scraping task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task was created but has not run yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the pipeline is executing for the task.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the page was rendered and a result recorded.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the run could not render the page or record its outcome.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if the status ends a run.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

var taskStatuses = []TaskStatus{TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed}

// SourceStatuses returns the statuses a task can be in to move to s.
func (s TaskStatus) SourceStatuses() []TaskStatus {
	sources := []TaskStatus{}
	for _, from := range taskStatuses {
		if (Task{Status: from}).CanTransitionTo(s) == nil {
			sources = append(sources, from)
		}
	}
	return sources
}

// Task is the durable record of one scrape request for a URL.
type Task struct {
	ID        string
	URL       string
	Status    TaskStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransitionTo checks the task state machine.
//
// A finished task can move back to running, that is the start of a new run
// for the same task, its previous results are kept.
func (t Task) CanTransitionTo(next TaskStatus) error {
	if !next.Valid() {
		return fmt.Errorf("unknown task status %q: %w", next, ErrNotValid)
	}

	ok := false
	switch t.Status {
	case TaskStatusPending:
		ok = next == TaskStatusRunning
	case TaskStatusRunning:
		ok = next.IsTerminal()
	case TaskStatusCompleted, TaskStatusFailed:
		ok = next == TaskStatusRunning
	}

	if !ok {
		return fmt.Errorf("task %s can't transition from %s to %s: %w", t.ID, t.Status, next, ErrNotValid)
	}

	return nil
}

// TaskPage is a page of tasks plus the total number of tasks stored.
type TaskPage struct {
	Tasks []Task
	Total int
}
