package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/scraper/internal/model"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// TaskOutput is the JSON representation of a task.
type TaskOutput struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResultOutput is the JSON representation of a result.
type ResultOutput struct {
	ID            string         `json:"id"`
	TaskID        string         `json:"task_id"`
	Data          map[string]any `json:"data"`
	ErrorInfo     *string        `json:"error_info"`
	ScreenshotRef *string        `json:"screenshot_ref"`
	OCRText       *string        `json:"ocr_text"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewTaskOutput maps a task to its JSON representation.
func NewTaskOutput(t model.Task) TaskOutput {
	return TaskOutput{
		ID:        t.ID,
		URL:       t.URL,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

// NewResultOutput maps a result to its JSON representation.
func NewResultOutput(r model.Result) ResultOutput {
	return ResultOutput{
		ID:            r.ID,
		TaskID:        r.TaskID,
		Data:          r.Data,
		ErrorInfo:     r.ErrorInfo,
		ScreenshotRef: r.ScreenshotRef,
		OCRText:       r.OCRText,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

// NewResultOutputs maps results to their JSON representation, never nil.
func NewResultOutputs(rs []model.Result) []ResultOutput {
	out := make([]ResultOutput, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewResultOutput(r))
	}
	return out
}

type listOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Total int          `json:"total"`
}

type statusOutput struct {
	Task    TaskOutput     `json:"task"`
	Results []ResultOutput `json:"results"`
}

type resultOutput struct {
	Task   TaskOutput   `json:"task"`
	Result ResultOutput `json:"result"`
}

type submittedOutput struct {
	TaskIDs []string `json:"task_ids"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTaskList prints a page of tasks in JSON format.
func (j *JSONPrinter) PrintTaskList(tasks []model.Task, total int) error {
	items := make([]TaskOutput, len(tasks))
	for i, t := range tasks {
		items[i] = NewTaskOutput(t)
	}

	return j.encode(listOutput{Tasks: items, Total: total})
}

// PrintTaskStatus prints a task and its results in JSON format.
func (j *JSONPrinter) PrintTaskStatus(task model.Task, results []model.Result) error {
	return j.encode(statusOutput{Task: NewTaskOutput(task), Results: NewResultOutputs(results)})
}

// PrintResult prints the result of a run in JSON format.
func (j *JSONPrinter) PrintResult(task model.Task, result model.Result) error {
	return j.encode(resultOutput{Task: NewTaskOutput(task), Result: NewResultOutput(result)})
}

// PrintSubmitted prints the submitted task IDs in JSON format.
func (j *JSONPrinter) PrintSubmitted(taskIDs []string) error {
	if taskIDs == nil {
		taskIDs = []string{}
	}
	return j.encode(submittedOutput{TaskIDs: taskIDs})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
