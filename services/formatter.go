package services

import (
	"regexp"
	"strconv"
	"strings"

	"ticket-crawler/models"
	"ticket-crawler/storage"
	"ticket-crawler/utils"
)

// priceRegexp captures the first numeric amount in a price string
var priceRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)

var eventColumns = []string{
	"event_link", "event_title", "event_date", "event_time", "event_location", "state", "city",
}

// Ticket columns after dropping unique_id and ticket_name: the parsed name
// parts lead and event_link is last.
var ticketColumns = []string{
	"Section", "Row", "View", "zone", "is_vip", "ticket_price", "quantity", "event_location", "event_link",
}

// Formatter turns stored events and tickets into export sheets.
type Formatter struct {
	logger    *utils.Logger
	truncate  map[string]bool
	maxLength int
}

// NewFormatter creates a Formatter that shortens the named columns to
// maxLength characters.
func NewFormatter(logger *utils.Logger, truncateColumns []string, maxLength int) *Formatter {
	cols := make(map[string]bool, len(truncateColumns))
	for _, c := range truncateColumns {
		cols[strings.TrimSpace(c)] = true
	}
	return &Formatter{logger: logger, truncate: cols, maxLength: maxLength}
}

// Sheets builds the Events and Tickets sheets, in that order.
func (f *Formatter) Sheets(events []*models.Event, tickets []*models.Ticket) []storage.Sheet {
	return []storage.Sheet{f.EventsSheet(events), f.TicketsSheet(tickets)}
}

func (f *Formatter) EventsSheet(events []*models.Event) storage.Sheet {
	sheet := storage.Sheet{Name: "Events", Header: eventColumns}
	for _, e := range events {
		sheet.Rows = append(sheet.Rows, f.row(eventColumns, []string{
			e.EventLink, e.Title, e.Date, e.Time, e.Location, e.State, e.City,
		}))
	}
	f.logger.Debug("[export] Events sheet: %d rows", len(sheet.Rows))
	return sheet
}

func (f *Formatter) TicketsSheet(tickets []*models.Ticket) storage.Sheet {
	sheet := storage.Sheet{Name: "Tickets", Header: ticketColumns}
	for _, t := range tickets {
		section, row, view := ParseTicketName(t.Name)
		sheet.Rows = append(sheet.Rows, f.row(ticketColumns, []string{
			section, row, view, t.Zone, yesNo(t.IsVIP),
			t.Price, strconv.Itoa(t.Quantity), t.EventLocation, t.EventLink,
		}))
	}
	f.logger.Debug("[export] Tickets sheet: %d rows", len(sheet.Rows))
	return sheet
}

func (f *Formatter) row(header, values []string) []string {
	for i, col := range header {
		if f.truncate[col] {
			values[i] = TruncateText(values[i], f.maxLength)
		}
	}
	return values
}

// ParseTicketName pulls Section, Row and View out of a stored multi-line
// ticket name. Label lines ("Section", "Row") take the following line as
// their value; a line mentioning "view" is the view. A "... ticket" line and
// its continuation ("s together") are skipped. Without an explicit view, a
// name of five or more lines uses its last line.
func ParseTicketName(name string) (section, row, view string) {
	var lines []string
	for _, l := range strings.Split(name, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	for i := 0; i < len(lines); i++ {
		lower := strings.ToLower(lines[i])
		hasNext := i+1 < len(lines)
		switch {
		case lower == "section" && hasNext:
			section = lines[i+1]
			i++
		case lower == "row" && hasNext:
			row = lines[i+1]
			i++
		case lower == "section", lower == "row":
		case strings.Contains(lower, "view"):
			view = lines[i]
		case strings.Contains(lower, "ticket") && hasNext:
			i++
		}
	}

	if view == "" && len(lines) >= 5 {
		view = lines[len(lines)-1]
	}
	return section, row, view
}

// TruncateText shortens s to max characters, ending in "..." when cut.
func TruncateText(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// parsePrice extracts the numeric amount from price text such as "$1,250.50"
// or "CA$ 90 incl. fees". ok is false when no amount is present.
func parsePrice(raw string) (float64, bool) {
	match := priceRegexp.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
