package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"arenabook/internal/database"
	"arenabook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderWritesScheduleGrid(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.SeedSpaces(ctx, []models.Space{
		{Name: "Quadra 1", Type: "court", Active: true, SortOrder: 1},
		{Name: "Piscina", Type: "pool", Active: true, SortOrder: 2},
	}))

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // a Monday
	end := start.AddDate(0, 0, 6)

	require.NoError(t, db.CreateBooking(ctx, &models.Booking{
		PublicID:    "pub-1",
		Title:       "Treino de handebol",
		Type:        models.BookingTypeInternal,
		Responsible: "Marcos Reis",
		SpaceID:     1,
		SpaceName:   "Quadra 1",
		Date:        start,
		StartHour:   18,
		EndHour:     20,
		Status:      models.StatusConfirmed,
	}))

	exportPath := t.TempDir()
	w := NewScheduleExporter(db, exportPath, RetryPolicy{}, &logger)

	filePath, err := w.render(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(exportPath, "agenda_2026-09-07_a_2026-09-13.xlsx"), filePath)

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	// Space names down column A, dates across row 2.
	name, err := f.GetCellValue("Agenda", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Quadra 1", name)

	header, err := f.GetCellValue("Agenda", "B2")
	require.NoError(t, err)
	assert.Equal(t, "07/09", header)

	// Monday cell for Quadra 1 carries the booking, the Piscina cell is free.
	cell, err := f.GetCellValue("Agenda", "B3")
	require.NoError(t, err)
	assert.Contains(t, cell, "Treino de handebol")
	assert.Contains(t, cell, "18h-20h")
	assert.Contains(t, cell, "Confirmado")

	free, err := f.GetCellValue("Agenda", "B4")
	require.NoError(t, err)
	assert.Equal(t, "Livre", free)
}

func TestStartProcessesQueuedTask(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exportPath := t.TempDir()
	w := NewScheduleExporter(db, exportPath, RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	require.NoError(t, w.EnqueueScheduleExport(ctx, start, start.AddDate(0, 0, 6)))

	expected := filepath.Join(exportPath, "agenda_2026-09-07_a_2026-09-13.xlsx")
	require.Eventually(t, func() bool {
		_, err := excelize.OpenFile(expected)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
