package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spacesedan/sentiwatch/internal/models"
)

const ticketsSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    id         SERIAL PRIMARY KEY,
    message    TEXT NOT NULL,
    timestamp  TEXT NOT NULL,
    author     TEXT NOT NULL,
    priority   TEXT NOT NULL DEFAULT ''
)`

// Connect opens a pool and checks connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("[DB] unable to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[DB] unable to reach database: %w", err)
	}

	slog.Info("[DB] Connected to PostgreSQL successfully")
	return pool, nil
}

// PostgresStore keeps tickets in a tickets table with a serial id.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// EnsureSchema creates the tickets table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, ticketsSchema); err != nil {
		return fmt.Errorf("[DB] failed to create tickets table: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, message, timestamp, author, priority FROM tickets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.Message, &t.Timestamp, &t.Author, &t.Priority); err != nil {
			return nil, fmt.Errorf("[DB] failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id int) (models.Ticket, error) {
	var t models.Ticket
	err := s.pool.QueryRow(ctx,
		`SELECT id, message, timestamp, author, priority FROM tickets WHERE id = $1`, id,
	).Scan(&t.ID, &t.Message, &t.Timestamp, &t.Author, &t.Priority)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("[DB] failed to get ticket: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Create(ctx context.Context, n models.NewTicket) (models.Ticket, error) {
	t := n.Build(0, s.now())
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tickets (message, timestamp, author, priority) VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Message, t.Timestamp, t.Author, t.Priority,
	).Scan(&t.ID)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("[DB] failed to insert ticket: %w", err)
	}

	slog.Info("[DB] Ticket saved", slog.Int("ticket_id", t.ID))
	return t, nil
}
