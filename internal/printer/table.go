package printer

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/slok/scraper/internal/model"
)

const maxCellChars = 60

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTaskList prints a page of tasks in a table format.
func (t *TablePrinter) PrintTaskList(tasks []model.Task, total int) error {
	if len(tasks) == 0 {
		fmt.Fprintf(t.writer, "No tasks (total %d)\n", total)
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tSTATUS\tURL\tCREATED")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", task.ID, task.Status, Truncate(task.URL, maxCellChars), TimeAgo(task.CreatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(t.writer, "\nShowing %d of %d tasks\n", len(tasks), total)
	return nil
}

// PrintTaskStatus prints a task and a summary of its results.
func (t *TablePrinter) PrintTaskStatus(task model.Task, results []model.Result) error {
	t.printTask(task)

	if len(results) == 0 {
		fmt.Fprintf(t.writer, "Results:    none\n")
		return nil
	}

	fmt.Fprintf(t.writer, "Results:    %d\n\n", len(results))
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "RESULT\tTITLE\tERRORS\tCREATED")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, Truncate(resultTitle(r), maxCellChars), Truncate(deref(r.ErrorInfo, "-"), maxCellChars), TimeAgo(r.CreatedAt))
	}

	return nil
}

// PrintResult prints the result of a run.
func (t *TablePrinter) PrintResult(task model.Task, result model.Result) error {
	t.printTask(task)
	fmt.Fprintf(t.writer, "Result:     %s\n", result.ID)
	fmt.Fprintf(t.writer, "Title:      %s\n", resultTitle(result))
	fmt.Fprintf(t.writer, "Errors:     %s\n", deref(result.ErrorInfo, "-"))
	fmt.Fprintf(t.writer, "Screenshot: %s\n", deref(result.ScreenshotRef, "-"))
	if result.OCRText != nil {
		fmt.Fprintf(t.writer, "OCR:        %s\n", Truncate(*result.OCRText, maxCellChars))
	}

	if len(result.Data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(result.Data))
	for k := range result.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(t.writer, "\nData:\n")
	for _, k := range keys {
		fmt.Fprintf(t.writer, "  %s: %s\n", k, Truncate(fmt.Sprint(result.Data[k]), maxCellChars))
	}

	return nil
}

// PrintSubmitted prints the submitted task IDs, one per line.
func (t *TablePrinter) PrintSubmitted(taskIDs []string) error {
	for _, id := range taskIDs {
		fmt.Fprintln(t.writer, id)
	}
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func (t *TablePrinter) printTask(task model.Task) {
	fmt.Fprintf(t.writer, "Task:       %s\n", task.ID)
	fmt.Fprintf(t.writer, "URL:        %s\n", task.URL)
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(task.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:    %s\n", FormatTimestamp(task.UpdatedAt))
}

func resultTitle(r model.Result) string {
	if title, ok := r.Data["title"].(string); ok && title != "" {
		return title
	}
	return "-"
}

func deref(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
