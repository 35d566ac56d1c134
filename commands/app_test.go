package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ticket-crawler/config"
	"ticket-crawler/models"
	"ticket-crawler/storage"
	"ticket-crawler/utils"
)

const testEvent = "https://www.viagogo.com/Colorado-Mammoth-Tickets/E-1?quantity=1"

func newTestApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	logger := utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelError)

	store, err := storage.OpenSQLite(ctx, filepath.Join(dir, "events.db"), nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.InsertEvent(ctx, &models.Event{
		EventLink: testEvent, Title: "Colorado Mammoth", Date: "Jan 5, 2025", Time: "7:00 PM",
		Location: "Ball Arena", State: "Colorado", City: "Denver",
	})
	require.NoError(t, err)
	_, err = store.InsertTicket(ctx, &models.Ticket{
		Name: "Section\n118\nRow\n12\nClear view", Price: "$120", EventLink: testEvent,
		Quantity: 2, UniqueID: "id-1", Zone: "Lower Level Sideline Club Seating Area", IsVIP: true,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		ExportPath:            filepath.Join(dir, "export.xlsx"),
		ExportTruncateColumns: []string{"zone"},
		ExportMaxLength:       20,
	}
	return &app{cfg: cfg, logger: logger, store: store}
}

func TestExportXLSX(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.export(context.Background(), "", ""))

	f, err := excelize.OpenFile(a.cfg.ExportPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Events", "Tickets"}, f.GetSheetList())

	rows, err := f.GetRows("Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Section", rows[0][0])
	assert.Equal(t, []string{"118", "12", "Clear view", "Lower Level Sidel...", "yes"}, rows[1][:5])
}

func TestExportCSVWritesTickets(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "tickets.csv")
	require.NoError(t, a.export(context.Background(), out, ""))

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()

	records, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Section", records[0][0])
	assert.Equal(t, testEvent, records[1][len(records[1])-1])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	a := newTestApp(t)
	err := a.export(context.Background(), filepath.Join(t.TempDir(), "out.json"), "")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestReportPrintsTables(t *testing.T) {
	a := newTestApp(t)
	var buf bytes.Buffer
	require.NoError(t, a.report(context.Background(), &buf))

	assert.Contains(t, buf.String(), "Colorado Mammoth")
	assert.Contains(t, buf.String(), "120.00")
}
