package services

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ticket-crawler/models"
	"ticket-crawler/utils"
)

const topEvents = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(events []*models.Event, tickets []*models.Ticket) *models.InsightReport {
	report := &models.InsightReport{
		EventsByState:  make(map[string]int),
		TicketsByEvent: make(map[string]int),
	}

	report.TotalEvents = len(events)
	report.TotalTickets = len(tickets)

	titles := make(map[string]string, len(events))
	for _, e := range events {
		titles[e.EventLink] = e.Title
		if e.State != "" {
			report.EventsByState[e.State]++
		}
	}

	var total float64
	for _, t := range tickets {
		report.TicketsByEvent[t.EventLink]++
		if t.IsVIP {
			report.VIPTickets++
		}

		price, ok := parsePrice(t.Price)
		if !ok {
			s.logger.Debug("[report] Unparseable price %q on %s", t.Price, t.UniqueID)
			continue
		}
		if report.PricedTickets == 0 || price < report.MinPrice {
			report.MinPrice = price
			report.CheapestTicket = t
		}
		if report.PricedTickets == 0 || price > report.MaxPrice {
			report.MaxPrice = price
			report.PriciestTicket = t
		}
		report.PricedTickets++
		total += price
	}

	if report.PricedTickets > 0 {
		report.AveragePrice = round2(total / float64(report.PricedTickets))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	for link, n := range report.TicketsByEvent {
		report.TopEventsByOffers = append(report.TopEventsByOffers, models.EventCount{
			EventLink: link,
			Title:     titles[link],
			Tickets:   n,
		})
	}
	sort.Slice(report.TopEventsByOffers, func(i, j int) bool {
		a, b := report.TopEventsByOffers[i], report.TopEventsByOffers[j]
		if a.Tickets != b.Tickets {
			return a.Tickets > b.Tickets
		}
		return a.EventLink < b.EventLink
	})
	if len(report.TopEventsByOffers) > topEvents {
		report.TopEventsByOffers = report.TopEventsByOffers[:topEvents]
	}

	return report
}

// Print renders the report as tables on w.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	overview := table.NewWriter()
	overview.SetOutputMirror(w)
	overview.SetTitle("Ticket crawl report")
	overview.AppendRows([]table.Row{
		{"Events", r.TotalEvents},
		{"Tickets", r.TotalTickets},
		{"VIP tickets", fmt.Sprintf("%d (%s)", r.VIPTickets, percent(r.VIPTickets, r.TotalTickets))},
	})
	if r.PricedTickets > 0 {
		overview.AppendSeparator()
		overview.AppendRows([]table.Row{
			{"Average price", fmt.Sprintf("%.2f", r.AveragePrice)},
			{"Minimum price", fmt.Sprintf("%.2f", r.MinPrice)},
			{"Maximum price", fmt.Sprintf("%.2f", r.MaxPrice)},
		})
	}
	overview.SetStyle(table.StyleRounded)
	overview.Render()

	if len(r.EventsByState) > 0 {
		type stateCount struct {
			state string
			count int
		}
		var states []stateCount
		for st, n := range r.EventsByState {
			states = append(states, stateCount{st, n})
		}
		sort.Slice(states, func(i, j int) bool {
			if states[i].count != states[j].count {
				return states[i].count > states[j].count
			}
			return states[i].state < states[j].state
		})

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"State", "Events"})
		for _, sc := range states {
			t.AppendRow(table.Row{sc.state, sc.count})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if len(r.TopEventsByOffers) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"#", "Event", "Offers"})
		for i, ec := range r.TopEventsByOffers {
			name := ec.Title
			if name == "" {
				name = ec.EventLink
			}
			t.AppendRow(table.Row{i + 1, text.Trim(name, 50), ec.Tickets})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
