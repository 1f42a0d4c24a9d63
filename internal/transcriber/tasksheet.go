package transcriber

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Task sheet layout expected by the batch tool: the video URL goes in the
// first data row, the tool writes its completion status five columns over.
const (
	urlCell    = "A2"
	statusCell = "E2"
)

// TaskSheet reads and writes the batch tool's task workbook.
type TaskSheet struct {
	path string
}

// NewTaskSheet wraps the workbook at path.
func NewTaskSheet(path string) *TaskSheet {
	return &TaskSheet{path: path}
}

// Path returns the workbook location.
func (t *TaskSheet) Path() string { return t.path }

// Prime writes the work item URL into the task row and clears any status left
// over from a previous run. Must happen before the tool starts, otherwise a
// stale "Done" reads as instant completion.
func (t *TaskSheet) Prime(url string) error {
	book, err := excelize.OpenFile(t.path)
	if err != nil {
		return fmt.Errorf("open task sheet: %w", err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	if sheet == "" {
		return fmt.Errorf("task sheet %s has no sheets", t.path)
	}
	if err := book.SetCellValue(sheet, urlCell, url); err != nil {
		return fmt.Errorf("write url cell: %w", err)
	}
	if err := book.SetCellValue(sheet, statusCell, ""); err != nil {
		return fmt.Errorf("clear status cell: %w", err)
	}
	if err := book.Save(); err != nil {
		return fmt.Errorf("save task sheet: %w", err)
	}
	return nil
}

// Status reads and parses the status cell. Implements StatusProbe.
func (t *TaskSheet) Status(ctx context.Context) (JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return JobStatus{}, err
	}
	book, err := excelize.OpenFile(t.path)
	if err != nil {
		return JobStatus{}, fmt.Errorf("open task sheet: %w", err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	if sheet == "" {
		return JobStatus{}, fmt.Errorf("task sheet %s has no sheets", t.path)
	}
	value, err := book.GetCellValue(sheet, statusCell)
	if err != nil {
		return JobStatus{}, fmt.Errorf("read status cell: %w", err)
	}
	return ParseCellStatus(value), nil
}
