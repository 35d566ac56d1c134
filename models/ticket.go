package models

import "github.com/uptrace/bun"

// Ticket is a single offer observed on an event page at a given probe quantity.
// Name is multi-line text with "Section" and "Row" label lines.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	Name          string `bun:"ticket_name"`
	Price         string `bun:"ticket_price"`
	EventLink     string `bun:"event_link,notnull"`
	Quantity      int    `bun:"quantity"`
	UniqueID      string `bun:"unique_id,pk"`
	EventLocation string `bun:"event_location"`
	Zone          string `bun:"zone"`
	IsVIP         bool   `bun:"is_vip"`
}
