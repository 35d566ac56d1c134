package models

// CrawlSummary counts what a crawl pass did.
type CrawlSummary struct {
	RunID           string
	States          int
	CitiesVisited   int
	CitiesSkipped   int
	CitiesFailed    int
	EventsInserted  int
	EventsDuplicate int
	EntryErrors     int
	CheckpointReset bool
}

// TicketSummary counts what a quantity-enumeration pass did.
type TicketSummary struct {
	RunID            string
	Events           int
	EventsFailed     int
	EventsWithOffers int
	TicketsInserted  int
	TicketsDuplicate int
	SoldSkipped      int
	ContainerErrors  int
}

// InsightReport holds analytics computed over the persisted events and tickets.
type InsightReport struct {
	TotalEvents       int
	TotalTickets      int
	VIPTickets        int
	PricedTickets     int
	AveragePrice      float64
	MinPrice          float64
	MaxPrice          float64
	CheapestTicket    *Ticket
	PriciestTicket    *Ticket
	EventsByState     map[string]int
	TicketsByEvent    map[string]int
	TopEventsByOffers []EventCount
}

// EventCount pairs an event link with the number of offers stored for it.
type EventCount struct {
	EventLink string
	Title     string
	Tickets   int
}
