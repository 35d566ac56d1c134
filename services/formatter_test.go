package services

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-crawler/models"
	"ticket-crawler/utils"
)

func newTestLogger() *utils.Logger {
	return utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelError)
}

func TestParseTicketName(t *testing.T) {
	tests := []struct {
		name               string
		in                 string
		section, row, view string
	}{
		{"labelled", "Section\n118\nRow\n12\n2 ticket\ns together\nClear view", "118", "12", "Clear view"},
		{"last line is view", "Section\n118\nRow\nB\nAisle seats", "118", "B", "Aisle seats"},
		{"short without view", "Section\n302\nRow\n1", "302", "1", ""},
		{"dangling label", "Row", "", "", ""},
		{"empty", "", "", "", ""},
		{"blank lines ignored", "  Section \n\n 101 \nPartial view  ", "101", "", "Partial view"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section, row, view := ParseTicketName(tt.in)
			assert.Equal(t, tt.section, section)
			assert.Equal(t, tt.row, row)
			assert.Equal(t, tt.view, view)
		})
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "exactly10!", TruncateText("exactly10!", 10))
	assert.Equal(t, "Lower L...", TruncateText("Lower Level Sideline", 10))
	assert.Equal(t, "Zoné...", TruncateText("Zoné Ünïcode", 7))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"$120", 120, true},
		{"$1,250.50", 1250.50, true},
		{"CA$ 90 incl. fees", 90, true},
		{"", 0, false},
		{"Free", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "parsePrice(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "parsePrice(%q)", tt.raw)
	}
}

func TestTicketsSheetLayout(t *testing.T) {
	f := NewFormatter(newTestLogger(), []string{"zone"}, 10)

	sheet := f.TicketsSheet([]*models.Ticket{{
		Name:          "Section\n118\nRow\n12\n2 ticket\ns together\nClear view",
		Price:         "$120",
		EventLink:     "https://www.viagogo.com/E-1?quantity=1",
		Quantity:      2,
		UniqueID:      "abc",
		EventLocation: "Ball Arena",
		Zone:          "Lower Level Sideline",
		IsVIP:         true,
	}})

	assert.Equal(t, "Tickets", sheet.Name)
	assert.Equal(t, []string{"Section", "Row", "View", "zone", "is_vip", "ticket_price", "quantity", "event_location", "event_link"}, sheet.Header)
	assert.NotContains(t, sheet.Header, "unique_id")
	assert.NotContains(t, sheet.Header, "ticket_name")

	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, []string{"118", "12", "Clear view", "Lower L...", "yes", "$120", "2", "Ball Arena", "https://www.viagogo.com/E-1?quantity=1"}, sheet.Rows[0])
}

func TestSheetsOrder(t *testing.T) {
	f := NewFormatter(newTestLogger(), nil, 40)
	sheets := f.Sheets([]*models.Event{{EventLink: "https://x/e", Title: "Show", State: "Colorado"}}, nil)

	require.Len(t, sheets, 2)
	assert.Equal(t, "Events", sheets[0].Name)
	assert.Equal(t, "Tickets", sheets[1].Name)
	require.Len(t, sheets[0].Rows, 1)
	assert.Equal(t, "Show", sheets[0].Rows[0][1])
	assert.Empty(t, sheets[1].Rows)
}
