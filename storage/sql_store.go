package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ticket-crawler/config"
	"ticket-crawler/models"
	"ticket-crawler/utils"
)

// SQLStore persists events, tickets and city checkpoints through bun, on
// either SQLite or PostgreSQL. Every write is a single auto-committed
// statement.
type SQLStore struct {
	db     *bun.DB
	logger *utils.Logger
}

// Open connects to the store selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*SQLStore, error) {
	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}

	switch cfg.DBDriver {
	case "sqlite", "sqlite3", "":
		return OpenSQLite(ctx, cfg.SQLitePath, retry, logger)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, cfg.DSN(), retry, logger)
	default:
		return nil, fmt.Errorf("store: unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLStore, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One connection keeps writes strictly sequential.
	sqldb.SetMaxOpenConns(1)

	return newSQLStore(ctx, bun.NewDB(sqldb, sqlitedialect.New()), retry, logger)
}

// OpenPostgres connects to PostgreSQL through lib/pq.
func OpenPostgres(ctx context.Context, dsn string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLStore, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}

	return newSQLStore(ctx, bun.NewDB(sqldb, pgdialect.New()), retry, logger)
}

func newSQLStore(ctx context.Context, db *bun.DB, retry *utils.RetryConfig, logger *utils.Logger) (*SQLStore, error) {
	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1, Logger: logger}
	}
	if err := retry.Do(ctx, "store-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &SQLStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*models.Event)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create events: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*models.ScrapedCity)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create scraped_cities: %w", err)
	}
	return s.createTickets(ctx)
}

func (s *SQLStore) createTickets(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*models.Ticket)(nil)).
		IfNotExists().
		ForeignKey(`("event_link") REFERENCES "events" ("event_link")`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create tickets: %w", err)
	}
	return nil
}

// InsertEvent stores e unless its event_link is already present.
func (s *SQLStore) InsertEvent(ctx context.Context, e *models.Event) (InsertResult, error) {
	res, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (event_link) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return Inserted, fmt.Errorf("store: insert event: %w", err)
	}
	return insertResult(res)
}

// InsertTicket stores t unless its unique_id is already present.
func (s *SQLStore) InsertTicket(ctx context.Context, t *models.Ticket) (InsertResult, error) {
	res, err := s.db.NewInsert().
		Model(t).
		On("CONFLICT (unique_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return Inserted, fmt.Errorf("store: insert ticket: %w", err)
	}
	return insertResult(res)
}

func insertResult(res sql.Result) (InsertResult, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return Inserted, fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

func (s *SQLStore) IsCityScraped(ctx context.Context, city, state string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.ScrapedCity)(nil)).
		Where("city = ?", city).
		Where("state = ?", state).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("store: check city: %w", err)
	}
	return exists, nil
}

// MarkCityScraped records the checkpoint; marking twice is a no-op.
func (s *SQLStore) MarkCityScraped(ctx context.Context, city, state string) error {
	_, err := s.db.NewInsert().
		Model(&models.ScrapedCity{City: city, State: state}).
		On("CONFLICT (city, state) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: mark city: %w", err)
	}
	return nil
}

func (s *SQLStore) CountScrapedCities(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*models.ScrapedCity)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: count cities: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ClearScrapedCities(ctx context.Context) error {
	_, err := s.db.NewDelete().Model((*models.ScrapedCity)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: clear cities: %w", err)
	}
	return nil
}

// ResetTicketsTable drops and recreates the tickets table.
func (s *SQLStore) ResetTicketsTable(ctx context.Context) error {
	if _, err := s.db.NewDropTable().Model((*models.Ticket)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("store: drop tickets: %w", err)
	}
	if err := s.createTickets(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// EventLinks returns every persisted event link.
func (s *SQLStore) EventLinks(ctx context.Context) ([]string, error) {
	var links []string
	err := s.db.NewSelect().
		Model((*models.Event)(nil)).
		Column("event_link").
		Scan(ctx, &links)
	if err != nil {
		return nil, fmt.Errorf("store: list event links: %w", err)
	}
	return links, nil
}

func (s *SQLStore) AllEvents(ctx context.Context) ([]*models.Event, error) {
	var events []*models.Event
	err := s.db.NewSelect().
		Model(&events).
		Order("state", "city", "event_link").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: fetch events: %w", err)
	}
	return events, nil
}

func (s *SQLStore) AllTickets(ctx context.Context) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := s.db.NewSelect().
		Model(&tickets).
		Order("event_link", "quantity").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: fetch tickets: %w", err)
	}
	return tickets, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
