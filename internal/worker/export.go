package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"arenabook/internal/database"
	"arenabook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ErrQueueFull is returned when the export queue cannot accept more tasks.
var ErrQueueFull = errors.New("export queue is full")

const dateLayout = "2006-01-02"

// ExportTask describes one schedule export request.
type ExportTask struct {
	StartDate  time.Time
	EndDate    time.Time
	EnqueuedAt time.Time
}

// ScheduleExporter renders the weekly schedule grid to XLSX files in the
// background. Tasks arrive through a bounded channel; a failed render is
// retried with exponential backoff before being dropped.
type ScheduleExporter struct {
	db         *database.DB
	exportPath string
	retry      RetryPolicy
	queue      chan ExportTask
	logger     zerolog.Logger
}

func NewScheduleExporter(db *database.DB, exportPath string, retry RetryPolicy, logger *zerolog.Logger) *ScheduleExporter {
	return &ScheduleExporter{
		db:         db,
		exportPath: exportPath,
		retry:      retry,
		queue:      make(chan ExportTask, models.WorkerQueueSize),
		logger:     logger.With().Str("component", "schedule_exporter").Logger(),
	}
}

// EnqueueScheduleExport queues a render of the given date range. It never
// blocks; when the queue is full the task is rejected so the caller's
// request path stays fast.
func (w *ScheduleExporter) EnqueueScheduleExport(ctx context.Context, startDate, endDate time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	task := ExportTask{StartDate: startDate, EndDate: endDate, EnqueuedAt: time.Now()}
	select {
	case w.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start consumes the queue until ctx is cancelled.
func (w *ScheduleExporter) Start(ctx context.Context) {
	w.logger.Info().Msg("schedule exporter started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("schedule exporter stopping")
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *ScheduleExporter) process(ctx context.Context, task ExportTask) {
	var err error
	for attempt := 1; attempt <= w.retry.MaxRetries+1; attempt++ {
		var path string
		path, err = w.render(ctx, task.StartDate, task.EndDate)
		if err == nil {
			w.logger.Info().
				Str("file_path", path).
				Str("start", task.StartDate.Format(dateLayout)).
				Str("end", task.EndDate.Format(dateLayout)).
				Msg("schedule export written")
			return
		}

		if attempt > w.retry.MaxRetries {
			break
		}
		delay := w.retry.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("export failed, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
	w.logger.Error().Err(err).
		Str("start", task.StartDate.Format(dateLayout)).
		Str("end", task.EndDate.Format(dateLayout)).
		Msg("export dropped after retries")
}

// render writes one XLSX file: spaces down the rows, dates across the
// columns, each cell listing that day's bookings for the space.
func (w *ScheduleExporter) render(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(w.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	daily, err := w.db.GetDailyBookings(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("load bookings: %w", err)
	}
	spaces, err := w.db.GetActiveSpaces(ctx)
	if err != nil {
		return "", fmt.Errorf("load spaces: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Agenda"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Período: %s a %s",
		startDate.Format("02/01/2006"), endDate.Format("02/01/2006")))

	dateCols := w.writeDateHeaders(f, sheetName, startDate, endDate)
	w.writeSpaceHeaders(f, sheetName, spaces)
	w.writeBookingCells(f, sheetName, daily, spaces, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 28)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("agenda_%s_a_%s.xlsx",
		startDate.Format(dateLayout), endDate.Format(dateLayout))
	filePath := filepath.Join(w.exportPath, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return filePath, nil
}

func (w *ScheduleExporter) writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	col := 2
	dateCols := make(map[string]int)
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, d.Format("02/01"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[d.Format(dateLayout)] = col
		col++
	}
	return dateCols
}

func (w *ScheduleExporter) writeSpaceHeaders(f *excelize.File, sheetName string, spaces []*models.Space) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	row := 3
	for _, space := range spaces {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, space.Name)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		row++
	}
}

func (w *ScheduleExporter) writeBookingCells(
	f *excelize.File, sheetName string,
	daily map[string][]*models.Booking,
	spaces []*models.Space,
	dateCols map[string]int,
) {
	dateKeys := make([]string, 0, len(daily))
	for k := range daily {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)

	for _, dateKey := range dateKeys {
		col, ok := dateCols[dateKey]
		if !ok {
			continue
		}

		bySpace := make(map[int64][]*models.Booking)
		for _, b := range daily[dateKey] {
			bySpace[b.SpaceID] = append(bySpace[b.SpaceID], b)
		}

		row := 3
		for _, space := range spaces {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			cellBookings := bySpace[space.ID]

			var value string
			for _, b := range cellBookings {
				label := models.StatusLabels[b.Status]
				value += fmt.Sprintf("%02dh-%02dh %s (%s) [%s]\n", b.StartHour, b.EndHour, b.Title, b.Responsible, label)
			}
			if value == "" {
				value = "Livre"
			}
			_ = f.SetCellValue(sheetName, cell, value)

			if styleID, err := w.cellStyle(f, cellBookings); err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

// cellStyle colors a cell by the strongest status present: red when a
// confirmed booking holds the slot, yellow for pending only, white when free.
func (w *ScheduleExporter) cellStyle(f *excelize.File, bookings []*models.Booking) (int, error) {
	hasConfirmed := false
	hasPending := false
	for _, b := range bookings {
		switch b.Status {
		case models.StatusConfirmed:
			hasConfirmed = true
		case models.StatusPending:
			hasPending = true
		}
	}

	color := "#FFFFFF"
	if hasConfirmed {
		color = "#FFC7CE"
	} else if hasPending {
		color = "#FFEB9C"
	}
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	})
}
