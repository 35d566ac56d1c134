package viagogo

// Selectors holds the CSS selectors the crawlers look for. Entry*, Ticket
// name and price selectors are relative to their container element.
type Selectors struct {
	StateLinks    string
	CityLinks     string
	EventEntries  string
	EntryLink     string
	EntryTitle    string
	EntryDateTime string
	EntryLocation string
	LoadMore      string

	EventLocation    string
	NoTickets        string
	TicketContainers string
	TicketName       string
	TicketPrice      string
	Zone             string
	VIPStatus        string
	ClosePanel       string
}

// DefaultSelectors matches the site layout the crawler was written against.
func DefaultSelectors() Selectors {
	return Selectors{
		StateLinks:    "#app > div:nth-of-type(4) > div:nth-of-type(2) > div:nth-of-type(1) > div > ul li a",
		CityLinks:     "#app > div:nth-of-type(4) > div:nth-of-type(2) ul li a",
		EventEntries:  "#explore_tabpanel-0 > div > div:nth-of-type(2) > ul > li",
		EntryLink:     "a",
		EntryTitle:    "a p:nth-of-type(1)",
		EntryDateTime: "a p:nth-of-type(2)",
		EntryLocation: "a p:nth-of-type(3)",
		LoadMore:      "#explore_tabpanel-0 > div > div:nth-of-type(2) > div > div > button",

		EventLocation: "#event-detail-header > div > div > div:nth-of-type(1) > div:nth-of-type(2) > div > div > div:nth-of-type(2) > button",
		NoTickets:     "#stubhub-event-detail-listings-grid > div:nth-of-type(1) > div > div > div:nth-of-type(2) > span",
		TicketContainers: "#listings-container > div, " +
			"body > div:nth-of-type(1) > div:nth-of-type(2) > div:nth-of-type(3) > div > div:nth-of-type(2) > div > div:nth-of-type(3) > div",
		TicketName: ":scope > div > div:nth-of-type(2) > div > div:nth-of-type(1) > div:nth-of-type(1) > div:nth-of-type(1), " +
			":scope > div > div > div:nth-of-type(1) > div:nth-of-type(1) > div:nth-of-type(1)",
		TicketPrice: ":scope > div > div:nth-of-type(2) > div > div:nth-of-type(1) > div:nth-of-type(2) > div:nth-of-type(1) > div:nth-of-type(2), " +
			":scope > div > div > div > div:nth-of-type(2) > div > div:nth-of-type(2)",
		Zone:       "#selected-buyer-listing > div:nth-of-type(2) > div:nth-of-type(1) > div > div:nth-of-type(2) > div:nth-of-type(1) > div:nth-of-type(2) > div:nth-of-type(2)",
		VIPStatus:  "#selected-buyer-listing > div:nth-of-type(2) > div:nth-of-type(5) > div > div:nth-of-type(2) > div > p",
		ClosePanel: "#modal-root > div > div > div",
	}
}
