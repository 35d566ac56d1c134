package viagogo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-crawler/browser/browsertest"
	"ticket-crawler/models"
	"ticket-crawler/services"
	"ticket-crawler/storage"
)

const eventURL = "https://www.viagogo.com/Colorado-Mammoth-Tickets/E-155401221?quantity=1"

func ticketOptions(maxQuantity int) TicketOptions {
	return TicketOptions{MaxQuantity: maxQuantity, GiveUpQuantity: 20}
}

func storeWithEvent(t *testing.T) *storage.SQLStore {
	t.Helper()
	store := newTestStore(t)
	_, err := store.InsertEvent(context.Background(), &models.Event{EventLink: eventURL, Title: "Colorado Mammoth"})
	require.NoError(t, err)
	return store
}

func quantityOf(url string) string {
	_, q, _ := strings.Cut(url, "quantity=")
	q, _, _ = strings.Cut(q, "&")
	return q
}

// offer builds a ticket container whose click opens a detail panel.
func offer(sel Selectors, name, price, zone, vip string) *browsertest.Node {
	return &browsertest.Node{
		Text: name + " " + price,
		Children: map[string][]*browsertest.Node{
			sel.TicketName:  {text(name)},
			sel.TicketPrice: {text(price)},
		},
		OnClick: func(doc *browsertest.Document) error {
			doc.Clear(sel.Zone)
			doc.Clear(sel.VIPStatus)
			doc.Clear(sel.ClosePanel)
			if zone != "" {
				doc.Add(sel.Zone, text(zone))
			}
			doc.Add(sel.VIPStatus, text(vip))
			doc.Add(sel.ClosePanel, &browsertest.Node{})
			return nil
		},
	}
}

func TestScrapeEventGivesUpWhenNothingIsEverListed(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()
	page.Handle("https://www.viagogo.com/Colorado-Mammoth-Tickets/", func(_ string, doc *browsertest.Document) {
		doc.Add(sel.NoTickets, text("No tickets available"))
	})

	s := NewTicketScraper(page, newTestStore(t), quietLogger(), sel, ticketOptions(50))
	res, err := s.ScrapeEvent(context.Background(), eventURL, &models.TicketSummary{})
	require.NoError(t, err)

	assert.False(t, res.AnyTickets)
	assert.Equal(t, 21, res.LastQuantity)
	// One visit for the location, then quantities 1..21.
	visits := page.Visits()
	require.Len(t, visits, 22)
	assert.Equal(t, "21", quantityOf(visits[21]))
}

func TestScrapeEventStopsAtCeiling(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()

	s := NewTicketScraper(page, newTestStore(t), quietLogger(), sel, ticketOptions(5))
	res, err := s.ScrapeEvent(context.Background(), eventURL, &models.TicketSummary{})
	require.NoError(t, err)

	assert.Equal(t, 5, res.LastQuantity)
	assert.Len(t, page.Visits(), 6)
}

func TestScrapeEventStoresOffers(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()
	page.Handle("https://www.viagogo.com/Colorado-Mammoth-Tickets/", func(url string, doc *browsertest.Document) {
		doc.Add(sel.EventLocation, text(" Ball Arena, Denver "))
		if quantityOf(url) != "2" {
			doc.Add(sel.NoTickets, text("No tickets available"))
			return
		}
		doc.Add(sel.TicketContainers,
			offer(sel, "Section 118\nRow 12\n2 tickets together\nClear view", "$120", "Lower Level", "Standard"),
			&browsertest.Node{Text: "Sold out"},
			offer(sel, "Section 302 Row 1", "$480", "", "VIP Club access"),
		)
	})

	store := storeWithEvent(t)
	summary := &models.TicketSummary{}
	s := NewTicketScraper(page, store, quietLogger(), sel, ticketOptions(3))

	res, err := s.ScrapeEvent(context.Background(), eventURL, summary)
	require.NoError(t, err)
	assert.True(t, res.AnyTickets)
	assert.Equal(t, 3, res.LastQuantity)

	assert.Equal(t, 2, summary.TicketsInserted)
	assert.Equal(t, 1, summary.SoldSkipped)
	assert.Equal(t, 3, page.Removes())

	tickets, err := store.AllTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	byID := map[string]*models.Ticket{}
	for _, tk := range tickets {
		byID[tk.UniqueID] = tk
		assert.Equal(t, eventURL, tk.EventLink)
		assert.Equal(t, 2, tk.Quantity)
		assert.Equal(t, "Ball Arena, Denver", tk.EventLocation)
	}

	first := byID[TicketID(eventURL, "Section 118\nRow 12\n2 tickets together\nClear view", "$120", 2, 1)]
	require.NotNil(t, first)
	assert.Equal(t, "Section\n118\nRow\n12\n2 ticket\ns together\nClear view", first.Name)
	section, row, view := services.ParseTicketName(first.Name)
	assert.Equal(t, "118", section)
	assert.Equal(t, "12", row)
	assert.Equal(t, "Clear view", view)
	assert.Equal(t, "$120", first.Price)
	assert.Equal(t, "Lower Level", first.Zone)
	assert.False(t, first.IsVIP)

	third := byID[TicketID(eventURL, "Section 302 Row 1", "$480", 2, 3)]
	require.NotNil(t, third)
	assert.Empty(t, third.Zone)
	assert.True(t, third.IsVIP)
}

func TestScrapeEventRemovesContainerWhenClickFails(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()
	page.Handle("https://www.viagogo.com/Colorado-Mammoth-Tickets/", func(_ string, doc *browsertest.Document) {
		blocked := offer(sel, "Section 118 Row 12", "$120", "", "")
		blocked.OnClick = func(*browsertest.Document) error { return errors.New("element click intercepted") }
		doc.Add(sel.TicketContainers, blocked)
	})

	store := storeWithEvent(t)
	summary := &models.TicketSummary{}
	s := NewTicketScraper(page, store, quietLogger(), sel, ticketOptions(1))

	_, err := s.ScrapeEvent(context.Background(), eventURL, summary)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ContainerErrors)
	assert.Equal(t, 1, page.Removes())

	tickets, err := store.AllTickets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestTicketRunRebuildsTable(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()
	offers := 2
	page.Handle("https://www.viagogo.com/Colorado-Mammoth-Tickets/", func(_ string, doc *browsertest.Document) {
		for i := 0; i < offers; i++ {
			doc.Add(sel.TicketContainers, offer(sel, "Section 118 Row 12", "$120", "Lower Level", ""))
		}
	})

	store := storeWithEvent(t)
	s := NewTicketScraper(page, store, quietLogger(), sel, ticketOptions(1))

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Events)
	assert.Equal(t, 1, summary.EventsWithOffers)
	assert.Equal(t, 2, summary.TicketsInserted, "same offer at two positions is two rows")

	offers = 1
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	tickets, err := store.AllTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestScrapeEventFollowsRerenderedListing(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()
	page.Handle("https://www.viagogo.com/Colorado-Mammoth-Tickets/", func(_ string, doc *browsertest.Document) {
		first := offer(sel, "Section 118\nRow 12", "$120", "Lower Level", "")
		openPanel := first.OnClick
		first.OnClick = func(d *browsertest.Document) error {
			// Opening the panel re-renders the whole listing.
			d.Clear(sel.TicketContainers)
			d.Add(sel.TicketContainers,
				offer(sel, "Section 119\nRow 3", "$95", "Lower Level", ""),
				offer(sel, "Section 120\nRow 7", "$80", "Lower Level", ""),
			)
			return openPanel(d)
		}
		doc.Add(sel.TicketContainers, first)
	})

	store := storeWithEvent(t)
	summary := &models.TicketSummary{}
	s := NewTicketScraper(page, store, quietLogger(), sel, ticketOptions(1))

	_, err := s.ScrapeEvent(context.Background(), eventURL, summary)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TicketsInserted)
	assert.Zero(t, summary.ContainerErrors)

	tickets, err := store.AllTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

func TestScrapeEventSkipsOfferSeenEarlierInPass(t *testing.T) {
	sel := DefaultSelectors()
	page := browsertest.NewPage()
	page.Handle("https://www.viagogo.com/Colorado-Mammoth-Tickets/", func(_ string, doc *browsertest.Document) {
		first := offer(sel, "Section 118\nRow 12", "$120", "Lower Level", "")
		openPanel := first.OnClick
		shown := false
		first.OnClick = func(d *browsertest.Document) error {
			// The same offer is rendered again in the next batch, at the same position.
			if !shown {
				shown = true
				d.Add(sel.TicketContainers, offer(sel, "Section 118\nRow 12", "$120", "Lower Level", ""))
			}
			return openPanel(d)
		}
		doc.Add(sel.TicketContainers, first)
	})

	store := storeWithEvent(t)
	summary := &models.TicketSummary{}
	s := NewTicketScraper(page, store, quietLogger(), sel, ticketOptions(1))

	_, err := s.ScrapeEvent(context.Background(), eventURL, summary)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Removes())
	assert.Equal(t, 1, summary.TicketsInserted)
	assert.Zero(t, summary.TicketsDuplicate, "the repeat never reaches the store")

	tickets, err := store.AllTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}
