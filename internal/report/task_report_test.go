package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

func TestWrite(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	completedAt := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

	rows := []entity.TaskRow{
		{
			SupplierName:     "Acme",
			ProjectName:      "Alpha",
			TaskName:         "PPAP",
			Status:           "completed",
			EffectiveDueDate: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			Overridden:       true,
			CompletedAt:      &completedAt,
		},
		{
			SupplierName:     "Beta Corp",
			ProjectName:      "Alpha",
			TaskName:         "Tooling Audit",
			Status:           "in_progress",
			EffectiveDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	writer := NewTaskReportWriter(zap.NewNop())
	require.NoError(t, writer.Write(&buf, rows, now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{sheetName}, f.GetSheetList())

	cells, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, cells, 3)
	require.Equal(t, headers, cells[0])

	require.Equal(t, "Acme", cells[1][0])
	require.Equal(t, "2026-02-15", cells[1][4])
	require.Equal(t, "TRUE", cells[1][5])
	require.Equal(t, "FALSE", cells[1][6], "completed tasks are never overdue")
	require.Equal(t, "2026-02-20", cells[1][7])

	require.Equal(t, "Tooling Audit", cells[2][2])
	require.Equal(t, "TRUE", cells[2][6], "open task past its due date is overdue")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	writer := NewTaskReportWriter(zap.NewNop())
	require.NoError(t, writer.Write(&buf, nil, time.Now().UTC()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	cells, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, cells, 1, "header only")
}
