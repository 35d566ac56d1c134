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

// CrawlOptions tunes the listing crawl.
type CrawlOptions struct {
	CountryURL    string
	LoadMoreWait  time.Duration
	LoadMoreDelay time.Duration
}

// Crawler walks country -> state -> city -> paginated event listing and
// records every event it sees. Finished cities are checkpointed so an
// interrupted crawl resumes at the next unfinished city.
type Crawler struct {
	page   browser.Page
	store  storage.CrawlStore
	logger *utils.Logger
	sel    Selectors
	opts   CrawlOptions
}

// NewCrawler creates a Crawler over one page session and one store.
func NewCrawler(page browser.Page, store storage.CrawlStore, logger *utils.Logger, sel Selectors, opts CrawlOptions) *Crawler {
	return &Crawler{page: page, store: store, logger: logger, sel: sel, opts: opts}
}

// Run performs one full pass. Per-city failures are logged and skipped; only
// failing to read the country page, a store failure at the end of the pass, or
// cancellation is returned. A cancelled pass keeps its checkpoints.
func (c *Crawler) Run(ctx context.Context) (*models.CrawlSummary, error) {
	summary := &models.CrawlSummary{RunID: uuid.NewString()}
	c.logger.Info("[crawl] Run %s: starting crawl from %s", summary.RunID, c.opts.CountryURL)

	states, err := c.stateLinks(ctx)
	if err != nil {
		return summary, err
	}
	summary.States = len(states)
	c.logger.Info("[crawl] Found %d state links", len(states))

	for _, stateHref := range states {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := c.crawlState(ctx, stateHref, summary); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			c.logger.Error("[crawl] State %s failed: %v", stateHref, err)
		}
	}

	n, err := c.store.CountScrapedCities(ctx)
	if err != nil {
		return summary, err
	}
	if n > 0 {
		c.logger.Info("[crawl] Pass complete over %d cities, clearing checkpoints", n)
		if err := c.store.ClearScrapedCities(ctx); err != nil {
			return summary, err
		}
		summary.CheckpointReset = true
	}

	c.logger.Info("[crawl] Run %s done: %d cities visited, %d skipped, %d failed, %d new events, %d duplicates",
		summary.RunID, summary.CitiesVisited, summary.CitiesSkipped, summary.CitiesFailed,
		summary.EventsInserted, summary.EventsDuplicate)
	return summary, nil
}

// stateLinks reads the state links once from the country page.
func (c *Crawler) stateLinks(ctx context.Context) ([]string, error) {
	if err := c.page.Navigate(ctx, c.opts.CountryURL); err != nil {
		return nil, fmt.Errorf("crawl: open country page: %w", err)
	}
	links, err := c.page.FindAll(ctx, c.sel.StateLinks)
	if err != nil {
		return nil, fmt.Errorf("crawl: find state links: %w", err)
	}

	root := siteRoot(c.opts.CountryURL)
	seen := utils.NewStringSet()
	var hrefs []string
	for _, link := range links {
		href, ok, err := c.page.Attribute(ctx, link, "href")
		if err != nil || !ok || strings.TrimSpace(href) == "" {
			continue
		}
		abs, err := resolveLink(c.opts.CountryURL, href)
		if err != nil || abs == root {
			continue
		}
		if !seen.Add(abs) {
			continue
		}
		c.logger.Debug("[crawl] State link: %s", abs)
		hrefs = append(hrefs, abs)
	}
	return hrefs, nil
}

// crawlState visits each city of a state. The city link collection is read
// again before every index access, since visiting a city replaces the page.
func (c *Crawler) crawlState(ctx context.Context, stateHref string, summary *models.CrawlSummary) error {
	state := stateFromURL(stateHref)
	onStatePage := false

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !onStatePage {
			if err := c.page.Navigate(ctx, stateHref); err != nil {
				return fmt.Errorf("crawl: open state page: %w", err)
			}
			onStatePage = true
		}

		links, err := c.page.FindAll(ctx, c.sel.CityLinks)
		if err != nil {
			return fmt.Errorf("crawl: find city links: %w", err)
		}
		if i >= len(links) {
			return nil
		}

		href, ok, err := c.page.Attribute(ctx, links[i], "href")
		if err != nil || !ok || strings.TrimSpace(href) == "" {
			continue
		}
		cityHref, err := resolveLink(stateHref, href)
		if err != nil {
			c.logger.Warn("[crawl] Bad city link %q: %v", href, err)
			continue
		}
		city := cityFromURL(cityHref)

		done, err := c.store.IsCityScraped(ctx, city, state)
		if err != nil {
			summary.CitiesFailed++
			c.logger.Error("[crawl] Checkpoint lookup for %s, %s failed: %v", city, state, err)
			continue
		}
		if done {
			summary.CitiesSkipped++
			c.logger.Info("[crawl] City %s in state %s already scraped, skipping", city, state)
			continue
		}

		onStatePage = false
		summary.CitiesVisited++
		c.logger.Info("[crawl] Processing city %s", cityHref)
		if err := c.crawlCity(ctx, cityHref, city, state, summary); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			summary.CitiesFailed++
			c.logger.Error("[crawl] City %s failed: %v", cityHref, err)
		}
	}
}

// crawlCity runs the load-more pagination loop for one city and checkpoints
// it when the listing is exhausted.
func (c *Crawler) crawlCity(ctx context.Context, cityHref, city, state string, summary *models.CrawlSummary) error {
	if err := c.page.Navigate(ctx, cityHref); err != nil {
		return fmt.Errorf("open city page: %w", err)
	}

	for {
		entries, err := c.page.FindAll(ctx, c.sel.EventEntries)
		if err != nil {
			return fmt.Errorf("find event entries: %w", err)
		}
		if len(entries) == 0 {
			c.logger.Debug("[crawl] No more events to process in %s", city)
			break
		}

		for _, entry := range entries {
			if err := c.saveEntry(ctx, entry, cityHref, city, state, summary); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				summary.EntryErrors++
				c.logger.Warn("[crawl] Error processing event entry: %v", err)
			}
		}

		// Processed entries leave the page so the next cycle only sees new ones.
		for _, entry := range entries {
			if err := c.page.Remove(ctx, entry); err != nil && !errors.Is(err, browser.ErrStaleElement) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("[crawl] Could not remove event entry: %v", err)
			}
		}

		button, ok, err := c.page.WaitFor(ctx, c.sel.LoadMore, c.opts.LoadMoreWait)
		if err != nil {
			return fmt.Errorf("wait for load more: %w", err)
		}
		if !ok {
			c.logger.Debug("[crawl] No load-more control in %s", city)
			break
		}
		if err := c.page.Click(ctx, button); err != nil {
			if errors.Is(err, browser.ErrClickRejected) || errors.Is(err, browser.ErrStaleElement) {
				c.logger.Debug("[crawl] Load more not clickable in %s: %v", city, err)
				break
			}
			return fmt.Errorf("click load more: %w", err)
		}
		if err := c.page.Pause(ctx, c.opts.LoadMoreDelay); err != nil {
			return err
		}
	}

	if err := c.store.MarkCityScraped(ctx, city, state); err != nil {
		return err
	}
	c.logger.Info("[crawl] City %s, %s checkpointed", city, state)
	return nil
}

func (c *Crawler) saveEntry(ctx context.Context, entry browser.Element, cityHref, city, state string, summary *models.CrawlSummary) error {
	event, err := c.extractEvent(ctx, entry, cityHref)
	if err != nil {
		return err
	}
	event.City = city
	event.State = state

	res, err := c.store.InsertEvent(ctx, event)
	if err != nil {
		return err
	}
	if res == storage.AlreadyExists {
		summary.EventsDuplicate++
		c.logger.Debug("[crawl] Duplicate event, skipping: %s", event.EventLink)
		return nil
	}
	summary.EventsInserted++
	c.logger.Debug("[crawl] Event saved: %s (%s)", event.Title, event.EventLink)
	return nil
}

func (c *Crawler) extractEvent(ctx context.Context, entry browser.Element, cityHref string) (*models.Event, error) {
	anchor, ok, err := c.page.FindOne(ctx, entry, c.sel.EntryLink)
	if err != nil {
		return nil, fmt.Errorf("find event link: %w", err)
	}
	if !ok {
		return nil, errors.New("event entry has no link")
	}
	href, ok, err := c.page.Attribute(ctx, anchor, "href")
	if err != nil {
		return nil, fmt.Errorf("read event link: %w", err)
	}
	if !ok || strings.TrimSpace(href) == "" {
		return nil, errors.New("event link has no href")
	}
	abs, err := resolveLink(cityHref, href)
	if err != nil {
		return nil, err
	}
	link, err := UpdateQueryParam(abs, "quantity", "1")
	if err != nil {
		return nil, err
	}

	title, err := c.childText(ctx, entry, c.sel.EntryTitle)
	if err != nil {
		return nil, err
	}
	dateTime, err := c.childText(ctx, entry, c.sel.EntryDateTime)
	if err != nil {
		return nil, err
	}
	location, err := c.childText(ctx, entry, c.sel.EntryLocation)
	if err != nil {
		return nil, err
	}
	date, clock := SplitDateTime(dateTime)

	return &models.Event{
		EventLink: link,
		Title:     title,
		Date:      date,
		Time:      clock,
		Location:  location,
	}, nil
}

// childText reads the text of parent's first match for selector; a missing
// element yields "".
func (c *Crawler) childText(ctx context.Context, parent browser.Element, selector string) (string, error) {
	el, ok, err := c.page.FindOne(ctx, parent, selector)
	if err != nil {
		return "", fmt.Errorf("find %q: %w", selector, err)
	}
	if !ok {
		return "", nil
	}
	text, err := c.page.Text(ctx, el)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}
