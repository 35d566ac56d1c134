package viagogo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticket-crawler/browser"
	"ticket-crawler/models"
	"ticket-crawler/storage"
	"ticket-crawler/utils"
)

// TicketOptions tunes quantity enumeration.
type TicketOptions struct {
	MaxQuantity    int
	GiveUpQuantity int
	SettleDelay    time.Duration
	RemoveDelay    time.Duration
	PanelWait      time.Duration
	LocationWait   time.Duration
}

// EventResult describes how enumeration of one event ended.
type EventResult struct {
	LastQuantity int
	AnyTickets   bool
}

// TicketScraper probes every stored event at increasing quantities and
// records each ticket offer it sees.
type TicketScraper struct {
	page   browser.Page
	store  storage.TicketStore
	logger *utils.Logger
	sel    Selectors
	opts   TicketOptions
}

// NewTicketScraper creates a TicketScraper over one page session and one store.
func NewTicketScraper(page browser.Page, store storage.TicketStore, logger *utils.Logger, sel Selectors, opts TicketOptions) *TicketScraper {
	return &TicketScraper{page: page, store: store, logger: logger, sel: sel, opts: opts}
}

// Run rebuilds the tickets table and enumerates every stored event. A failing
// event is logged and the run moves on to the next one.
func (s *TicketScraper) Run(ctx context.Context) (*models.TicketSummary, error) {
	summary := &models.TicketSummary{RunID: uuid.NewString()}

	if err := s.store.ResetTicketsTable(ctx); err != nil {
		return summary, err
	}
	links, err := s.store.EventLinks(ctx)
	if err != nil {
		return summary, err
	}
	s.logger.Info("[tickets] Run %s: found %d event(s) in the database", summary.RunID, len(links))

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Events++
		res, err := s.ScrapeEvent(ctx, link, summary)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.EventsFailed++
			s.logger.Error("[tickets] Event %s failed: %v", link, err)
			continue
		}
		if res.AnyTickets {
			summary.EventsWithOffers++
		}
	}

	s.logger.Info("[tickets] Done: %d events, %d with offers, %d failed, %d tickets stored, %d sold skipped",
		summary.Events, summary.EventsWithOffers, summary.EventsFailed,
		summary.TicketsInserted, summary.SoldSkipped)
	return summary, nil
}

// ScrapeEvent runs the quantity state machine for one event: probe q from 1
// until the ceiling, or until the give-up threshold is passed without any
// offer having been seen.
func (s *TicketScraper) ScrapeEvent(ctx context.Context, eventLink string, summary *models.TicketSummary) (EventResult, error) {
	var res EventResult
	s.logger.Info("[tickets] Processing event %s", eventLink)

	location, err := s.eventLocation(ctx, eventLink)
	if err != nil {
		return res, err
	}

	for q := 1; q <= s.opts.MaxQuantity; q++ {
		res.LastQuantity = q
		url, err := UpdateQueryParam(eventLink, "quantity", fmt.Sprint(q))
		if err != nil {
			return res, err
		}
		if err := s.page.Navigate(ctx, url); err != nil {
			return res, fmt.Errorf("open %s: %w", url, err)
		}

		none, err := s.page.FindAll(ctx, s.sel.NoTickets)
		if err != nil {
			return res, fmt.Errorf("find no-tickets indicator: %w", err)
		}
		if len(none) > 0 {
			s.logger.Debug("[tickets] No tickets at quantity %d", q)
			if s.giveUp(res, q) {
				break
			}
			continue
		}

		if err := s.page.Pause(ctx, s.opts.SettleDelay); err != nil {
			return res, err
		}
		containers, err := s.page.FindAll(ctx, s.sel.TicketContainers)
		if err != nil {
			return res, fmt.Errorf("find ticket containers: %w", err)
		}
		if len(containers) == 0 {
			s.logger.Debug("[tickets] No ticket containers at quantity %d", q)
			if s.giveUp(res, q) {
				break
			}
			continue
		}

		res.AnyTickets = true
		s.logger.Debug("[tickets] Found %d container(s) at quantity %d", len(containers), q)
		if err := s.drainContainers(ctx, eventLink, q, location, summary); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *TicketScraper) giveUp(res EventResult, q int) bool {
	if !res.AnyTickets && q > s.opts.GiveUpQuantity {
		s.logger.Info("[tickets] No tickets for any quantity after %d attempts, moving on", s.opts.GiveUpQuantity)
		return true
	}
	return false
}

// eventLocation reads the venue line once per event. Absence is not an error.
func (s *TicketScraper) eventLocation(ctx context.Context, eventLink string) (string, error) {
	if err := s.page.Navigate(ctx, eventLink); err != nil {
		return "", fmt.Errorf("open %s: %w", eventLink, err)
	}
	el, ok, err := s.page.WaitFor(ctx, s.sel.EventLocation, s.opts.LocationWait)
	if err != nil {
		return "", err
	}
	if !ok {
		s.logger.Debug("[tickets] Event location not found, using empty location")
		return "", nil
	}
	text, err := s.page.Text(ctx, el)
	if err != nil {
		s.logger.Debug("[tickets] Event location unreadable: %v", err)
		return "", nil
	}
	return strings.TrimSpace(text), nil
}

// drainContainers processes containers until none are left on the page. Every
// container is removed after it is looked at, whatever the outcome.
func (s *TicketScraper) drainContainers(ctx context.Context, eventLink string, q int, location string, summary *models.TicketSummary) error {
	processed := utils.NewStringSet()

	for {
		containers, err := s.page.FindAll(ctx, s.sel.TicketContainers)
		if err != nil {
			return fmt.Errorf("find ticket containers: %w", err)
		}
		if len(containers) == 0 {
			return nil
		}

		// A stale container has already left the page, which counts as progress.
		gone := 0
		for i, container := range containers {
			if err := s.processContainer(ctx, container, eventLink, q, i+1, location, processed, summary); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				summary.ContainerErrors++
				s.logger.Warn("[tickets] Error extracting ticket info: %v", err)
			}

			err := s.page.Remove(ctx, container)
			switch {
			case err == nil, errors.Is(err, browser.ErrStaleElement):
				gone++
			default:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("[tickets] Could not remove container: %v", err)
			}
			if err := s.page.Pause(ctx, s.opts.RemoveDelay); err != nil {
				return err
			}
		}
		if gone == 0 {
			s.logger.Warn("[tickets] Containers could not be removed, ending pass at quantity %d", q)
			return nil
		}
	}
}

func (s *TicketScraper) processContainer(ctx context.Context, container browser.Element, eventLink string, q, position int, location string, processed *utils.StringSet, summary *models.TicketSummary) error {
	text, err := s.page.Text(ctx, container)
	if err != nil {
		return fmt.Errorf("read container: %w", err)
	}
	if strings.Contains(strings.ToLower(text), "sold") {
		summary.SoldSkipped++
		s.logger.Debug("[tickets] Sold offer at position %d, skipping", position)
		return nil
	}

	rawName, err := s.requiredText(ctx, container, s.sel.TicketName, "ticket name")
	if err != nil {
		return err
	}
	price, err := s.requiredText(ctx, container, s.sel.TicketPrice, "ticket price")
	if err != nil {
		return err
	}

	if err := s.page.Click(ctx, container); err != nil {
		return fmt.Errorf("open offer panel: %w", err)
	}
	zone := s.panelZone(ctx)
	isVIP := s.panelVIP(ctx)
	s.closePanel(ctx)

	id := TicketID(eventLink, rawName, price, q, position)
	if processed.Contains(id) {
		s.logger.Debug("[tickets] Duplicate in this pass, skipping: %s %s q=%d #%d", rawName, price, q, position)
		return nil
	}

	res, err := s.store.InsertTicket(ctx, &models.Ticket{
		Name:          FormatTicketName(rawName),
		Price:         price,
		EventLink:     eventLink,
		Quantity:      q,
		UniqueID:      id,
		EventLocation: location,
		Zone:          zone,
		IsVIP:         isVIP,
	})
	if err != nil {
		return err
	}
	processed.Add(id)
	if res == storage.AlreadyExists {
		summary.TicketsDuplicate++
		s.logger.Debug("[tickets] Duplicate ticket skipped by store: %s", id)
		return nil
	}
	summary.TicketsInserted++
	return nil
}

func (s *TicketScraper) requiredText(ctx context.Context, parent browser.Element, selector, what string) (string, error) {
	el, ok, err := s.page.FindOne(ctx, parent, selector)
	if err != nil {
		return "", fmt.Errorf("find %s: %w", what, err)
	}
	if !ok {
		return "", fmt.Errorf("%s not found", what)
	}
	text, err := s.page.Text(ctx, el)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	return strings.TrimSpace(text), nil
}

func (s *TicketScraper) panelZone(ctx context.Context) string {
	el, ok, err := s.page.WaitFor(ctx, s.sel.Zone, s.opts.PanelWait)
	if err != nil || !ok {
		s.logger.Debug("[tickets] Zone not found, using empty zone")
		return ""
	}
	text, err := s.page.Text(ctx, el)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (s *TicketScraper) panelVIP(ctx context.Context) bool {
	els, err := s.page.FindAll(ctx, s.sel.VIPStatus)
	if err != nil || len(els) == 0 {
		return false
	}
	text, err := s.page.Text(ctx, els[0])
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(text), "vip")
}

func (s *TicketScraper) closePanel(ctx context.Context) {
	el, ok, err := s.page.WaitFor(ctx, s.sel.ClosePanel, s.opts.PanelWait)
	if err != nil || !ok {
		s.logger.Debug("[tickets] Close control not found")
		return
	}
	if err := s.page.Click(ctx, el); err != nil {
		s.logger.Debug("[tickets] Could not close the panel: %v", err)
	}
}
