package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spacesedan/sentiwatch/internal/models"
)

// FileStore keeps tickets in a single JSON array on disk. A missing file reads
// as the seed tickets; the first Create writes them out together with the new
// ticket.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) List(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) Get(ctx context.Context, id int) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return models.Ticket{}, err
	}
	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
}

func (s *FileStore) Create(ctx context.Context, n models.NewTicket) (models.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return models.Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return models.Ticket{}, err
	}

	maxID := 0
	for _, t := range tickets {
		maxID = max(maxID, t.ID)
	}

	ticket := n.Build(maxID+1, s.now())
	tickets = append(tickets, ticket)

	if err := s.write(tickets); err != nil {
		return models.Ticket{}, err
	}

	slog.Info("[FileStore] Ticket saved",
		slog.Int("ticket_id", ticket.ID),
		slog.String("path", s.path))
	return ticket, nil
}

func (s *FileStore) load() ([]models.Ticket, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return SeedTickets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore] failed to read tickets: %w", err)
	}

	var tickets []models.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("[FileStore] failed to decode %s: %w", s.path, err)
	}
	return tickets, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *FileStore) write(tickets []models.Ticket) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("[FileStore] failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore] failed to encode tickets: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tickets-*.json")
	if err != nil {
		return fmt.Errorf("[FileStore] failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore] failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[FileStore] failed to replace %s: %w", s.path, err)
	}
	return nil
}
