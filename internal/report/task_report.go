// Package report renders task listings as Excel workbooks for the
// portal's export endpoint.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
)

const sheetName = "Tasks"

var headers = []string{
	"Supplier", "Project", "Task", "Status",
	"Due Date", "Overridden", "Overdue", "Completed At",
}

// TaskReportWriter renders task rows into an Excel workbook
type TaskReportWriter struct {
	logger *zap.Logger
}

// NewTaskReportWriter creates a new task report writer
func NewTaskReportWriter(logger *zap.Logger) *TaskReportWriter {
	return &TaskReportWriter{logger: logger}
}

// Write renders the rows as a single-sheet workbook to w. The overdue
// column is evaluated against the given reference time.
func (t *TaskReportWriter) Write(w io.Writer, rows []entity.TaskRow, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell: %w", err)
		}
	}

	for i, row := range rows {
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format("2006-01-02")
		}

		overdue := row.Status != string(workflow.StatusCompleted) &&
			row.Status != string(workflow.StatusCancelled) &&
			row.EffectiveDueDate.Before(now)

		values := []interface{}{
			row.SupplierName,
			row.ProjectName,
			row.TaskName,
			row.Status,
			row.EffectiveDueDate.Format("2006-01-02"),
			row.Overridden,
			overdue,
			completedAt,
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set cell: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	t.logger.Info("Task report written", zap.Int("rows", len(rows)))
	return nil
}
