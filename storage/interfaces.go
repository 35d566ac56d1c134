package storage

import (
	"context"

	"ticket-crawler/models"
)

// InsertResult reports whether a write created a row or hit an existing key.
type InsertResult int

const (
	Inserted InsertResult = iota
	AlreadyExists
)

func (r InsertResult) String() string {
	if r == AlreadyExists {
		return "already_exists"
	}
	return "inserted"
}

// CrawlStore is what the hierarchical crawl needs: incremental events plus
// city checkpoints.
type CrawlStore interface {
	InsertEvent(ctx context.Context, event *models.Event) (InsertResult, error)
	IsCityScraped(ctx context.Context, city, state string) (bool, error)
	MarkCityScraped(ctx context.Context, city, state string) error
	CountScrapedCities(ctx context.Context) (int, error)
	ClearScrapedCities(ctx context.Context) error
}

// TicketStore is what quantity enumeration needs. The tickets table is
// rebuilt from scratch on every run.
type TicketStore interface {
	ResetTicketsTable(ctx context.Context) error
	EventLinks(ctx context.Context) ([]string, error)
	InsertTicket(ctx context.Context, ticket *models.Ticket) (InsertResult, error)
}

// SnapshotReader reads everything persisted, for export and reporting.
type SnapshotReader interface {
	AllEvents(ctx context.Context) ([]*models.Event, error)
	AllTickets(ctx context.Context) ([]*models.Ticket, error)
}

// Sheet is a header plus string rows, ready to be rendered by a SheetWriter.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// SheetWriter is the interface any export backend must satisfy.
type SheetWriter interface {
	WriteSheets(sheets []Sheet) error
	Close() error
}
