package models

import "github.com/uptrace/bun"

// Event is one listing discovered on a city's explore page. EventLink is the
// canonical URL with its quantity parameter normalised to 1.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventLink string `bun:"event_link,pk"`
	Title     string `bun:"event_title"`
	Date      string `bun:"event_date"`
	Time      string `bun:"event_time"`
	Location  string `bun:"event_location"`
	State     string `bun:"state"`
	City      string `bun:"city"`
}

// ScrapedCity marks a city whose event listing has been fully paginated.
type ScrapedCity struct {
	bun.BaseModel `bun:"table:scraped_cities"`

	City  string `bun:"city,pk"`
	State string `bun:"state,pk"`
}
