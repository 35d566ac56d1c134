package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"ticket-crawler/browser"
	"ticket-crawler/config"
	"ticket-crawler/models"
	"ticket-crawler/scraper/viagogo"
	"ticket-crawler/services"
	"ticket-crawler/storage"
	"ticket-crawler/utils"
)

// app bundles the resources one command invocation holds for its lifetime.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
	store  *storage.SQLStore
}

func newApp(ctx context.Context) (*app, error) {
	var cfg *config.Config
	if envFile != "" {
		cfg = config.Load(envFile)
	} else {
		cfg = config.Load()
	}
	logger := utils.NewLogger(cfg.LogLevel)

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("[store] Using %s database", cfg.DBDriver)
	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("[store] Close failed: %v", err)
	}
}

func (a *app) openBrowser() (*browser.Chrome, error) {
	a.logger.Info("[browser] Starting Chrome (headless=%v)", a.cfg.Headless)
	return browser.NewChrome(browser.ChromeOptions{
		ExecPath:      a.cfg.ChromeBin,
		Headless:      a.cfg.Headless,
		ActionTimeout: a.cfg.ActionTimeout,
	})
}

func (a *app) crawl(ctx context.Context, page browser.Page) (*models.CrawlSummary, error) {
	c := viagogo.NewCrawler(page, a.store, a.logger, viagogo.DefaultSelectors(), viagogo.CrawlOptions{
		CountryURL:    a.cfg.BaseURL,
		LoadMoreWait:  a.cfg.LoadMoreWait,
		LoadMoreDelay: a.cfg.LoadMoreDelay,
	})
	return c.Run(ctx)
}

func (a *app) scrapeTickets(ctx context.Context, page browser.Page) (*models.TicketSummary, error) {
	s := viagogo.NewTicketScraper(page, a.store, a.logger, viagogo.DefaultSelectors(), viagogo.TicketOptions{
		MaxQuantity:    a.cfg.MaxQuantity,
		GiveUpQuantity: a.cfg.GiveUpQuantity,
		SettleDelay:    a.cfg.TicketSettleDelay,
		RemoveDelay:    a.cfg.RemoveDelay,
		PanelWait:      a.cfg.PanelWait,
		LocationWait:   a.cfg.LocationWait,
	})
	return s.Run(ctx)
}

// export writes the spreadsheet to out. format is "xlsx" or "csv"; empty
// picks it from the file extension.
func (a *app) export(ctx context.Context, out, format string) error {
	if out == "" {
		out = a.cfg.ExportPath
	}
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}

	events, err := a.store.AllEvents(ctx)
	if err != nil {
		return err
	}
	tickets, err := a.store.AllTickets(ctx)
	if err != nil {
		return err
	}

	f := services.NewFormatter(a.logger, a.cfg.ExportTruncateColumns, a.cfg.ExportMaxLength)

	var (
		w      storage.SheetWriter
		sheets []storage.Sheet
	)
	switch format {
	case "xlsx":
		w, err = storage.NewXLSXWriter(out)
		sheets = f.Sheets(events, tickets)
	case "csv":
		w, err = storage.NewCSVWriter(out)
		sheets = []storage.Sheet{f.TicketsSheet(tickets)}
	default:
		return fmt.Errorf("export: unsupported format %q", format)
	}
	if err != nil {
		return err
	}

	if err := w.WriteSheets(sheets); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	a.logger.Info("[export] Wrote %d events and %d tickets to %s", len(events), len(tickets), out)
	return nil
}

func (a *app) report(ctx context.Context, w io.Writer) error {
	events, err := a.store.AllEvents(ctx)
	if err != nil {
		return err
	}
	tickets, err := a.store.AllTickets(ctx)
	if err != nil {
		return err
	}
	svc := services.NewInsightService(a.logger)
	svc.Print(w, svc.Generate(events, tickets))
	return nil
}
