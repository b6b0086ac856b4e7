package printer_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/printer"
)

func taskFixture() model.Task {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	return model.Task{
		ID:        "01HQ0000000000000000000000",
		URL:       "https://example.com",
		Status:    model.TaskStatusCompleted,
		CreatedAt: createdAt,
		UpdatedAt: createdAt.Add(time.Second),
	}
}

func resultFixture() model.Result {
	errInfo := "OCR Error: tesseract not installed"
	ref := "s3://scraper-artifacts/01HQ/shot.png"
	return model.Result{
		ID:            "01HR0000000000000000000000",
		TaskID:        "01HQ0000000000000000000000",
		Data:          map[string]any{"title": "Example Domain", "links_count": 1},
		ErrorInfo:     &errInfo,
		ScreenshotRef: &ref,
		CreatedAt:     time.Date(2026, 1, 30, 10, 0, 1, 0, time.UTC),
	}
}

func TestTablePrinterPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintResult(taskFixture(), resultFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Status:     completed")
	assert.Contains(t, out, "Title:      Example Domain")
	assert.Contains(t, out, "Errors:     OCR Error: tesseract not installed")
	assert.Contains(t, out, "Screenshot: s3://scraper-artifacts/01HQ/shot.png")
	assert.Contains(t, out, "  links_count: 1")
}

func TestTablePrinterPrintTaskList(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintTaskList([]model.Task{taskFixture()}, 5)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "01HQ0000000000000000000000")
	assert.Contains(t, out, "Showing 1 of 5 tasks")
}

func TestTablePrinterPrintTaskStatusWithoutResults(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintTaskStatus(taskFixture(), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Results:    none")
}

func TestJSONPrinterPrintTaskStatus(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintTaskStatus(taskFixture(), []model.Result{resultFixture()})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	task := got["task"].(map[string]any)
	assert.Equal(t, "completed", task["status"])
	results := got["results"].([]any)
	require.Len(t, results, 1)
	res := results[0].(map[string]any)
	assert.Equal(t, "OCR Error: tesseract not installed", res["error_info"])
	assert.Nil(t, res["ocr_text"])
}

func TestJSONPrinterPrintSubmitted(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintSubmitted(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_ids": []}`, buf.String())
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}
