package printer

import "github.com/slok/scraper/internal/model"

// Printer knows how to print tasks and results in different formats.
type Printer interface {
	PrintTaskList(tasks []model.Task, total int) error
	PrintTaskStatus(task model.Task, results []model.Result) error
	PrintResult(task model.Task, result model.Result) error
	PrintSubmitted(taskIDs []string) error
	PrintMessage(msg string) error
}
