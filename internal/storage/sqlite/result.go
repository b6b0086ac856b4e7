package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/scraper/internal/model"
)

const resultColumns = `id, task_id, data, error_info, screenshot_ref, ocr_text, created_at`

// AttachResult stores a new result for an existing task.
func (r *Repository) AttachResult(ctx context.Context, nr model.NewResult) (*model.Result, error) {
	var data *string
	if nr.Data != nil {
		raw, err := json.Marshal(nr.Data)
		if err != nil {
			return nil, fmt.Errorf("could not marshal result data: %w", err)
		}
		s := string(raw)
		data = &s
	}

	now := time.Now().UTC().UnixMilli()
	id := ulid.Make().String()

	query := `INSERT INTO results (` + resultColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, id, nr.TaskID, data, nr.ErrorInfo, nr.ScreenshotRef, nr.OCRText, now)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, fmt.Errorf("parent task %s: %w", nr.TaskID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not insert result: %w", err)
	}

	r.logger.Debugf("Result %s added for task %s", id, nr.TaskID)

	// Read back so the caller gets exactly what was stored.
	return r.GetResult(ctx, id)
}

// GetResult retrieves a result by ID.
func (r *Repository) GetResult(ctx context.Context, id string) (*model.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE id = ?`

	res, err := scanResult(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("result %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query result: %w", err)
	}

	return &res, nil
}

// GetResultsForTask returns the results of a task, newest first.
func (r *Repository) GetResultsForTask(ctx context.Context, taskID string) ([]model.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE task_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not query results: %w", err)
	}
	defer rows.Close()

	results := []model.Result{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func scanResult(s scanner) (model.Result, error) {
	var res model.Result
	var data, errorInfo, screenshotRef, ocrText sql.NullString
	var createdAt int64

	err := s.Scan(&res.ID, &res.TaskID, &data, &errorInfo, &screenshotRef, &ocrText, &createdAt)
	if err != nil {
		return model.Result{}, err
	}

	if data.Valid {
		if err := json.Unmarshal([]byte(data.String), &res.Data); err != nil {
			return model.Result{}, fmt.Errorf("could not unmarshal result data: %w", err)
		}
	}
	res.ErrorInfo = nullStringPtr(errorInfo)
	res.ScreenshotRef = nullStringPtr(screenshotRef)
	res.OCRText = nullStringPtr(ocrText)
	res.CreatedAt = timeFromUnixMilli(createdAt)

	return res, nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
