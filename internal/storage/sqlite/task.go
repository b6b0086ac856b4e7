package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/scraper/internal/model"
)

const taskColumns = `id, url, status, created_at, updated_at`

// CreateTask creates a new pending task.
func (r *Repository) CreateTask(ctx context.Context, url string) (*model.Task, error) {
	if url == "" {
		return nil, fmt.Errorf("url is required: %w", model.ErrNotValid)
	}

	now := time.Now().UTC()
	t := model.Task{
		ID:        ulid.Make().String(),
		URL:       url,
		Status:    model.TaskStatusPending,
		CreatedAt: timeFromUnixMilli(now.UnixMilli()),
		UpdatedAt: timeFromUnixMilli(now.UnixMilli()),
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.URL, t.Status, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return &t, nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &t, nil
}

// SetTaskStatus updates the task status checking the task lifecycle. The
// check and the write are a single statement so concurrent runs never upgrade
// a read into a write.
func (r *Repository) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown task status %q: %w", status, model.ErrNotValid)
	}

	sources := status.SourceStatuses()
	if len(sources) > 0 {
		now := time.Now().UTC().UnixMilli()
		args := []any{status, now, id}
		for _, s := range sources {
			args = append(args, s)
		}
		query := `UPDATE tasks SET status = ?, updated_at = ?
			WHERE id = ? AND status IN (` + placeholders(len(sources)) + `)
			RETURNING ` + taskColumns

		t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
		if err == nil {
			r.logger.Debugf("Task %s status updated to %s", id, status)
			return &t, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("could not update task: %w", err)
		}
	}

	// Nothing updated, find out why.
	current, err := r.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.CanTransitionTo(status); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("task %s changed concurrently: %w", id, model.ErrNotValid)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ListTasks returns a page of tasks, newest first, and the total number of tasks.
func (r *Repository) ListTasks(ctx context.Context, skip, limit int) ([]model.Task, int, error) {
	if skip < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("skip and limit can't be negative: %w", model.ErrNotValid)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("could not count tasks: %w", err)
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, total, nil
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var createdAt, updatedAt int64

	if err := s.Scan(&t.ID, &t.URL, &t.Status, &createdAt, &updatedAt); err != nil {
		return model.Task{}, err
	}
	t.CreatedAt = timeFromUnixMilli(createdAt)
	t.UpdatedAt = timeFromUnixMilli(updatedAt)

	return t, nil
}
