package db

import (
	"context"
	"errors"
	"sort"

	"github.com/spacesedan/sentiwatch/internal/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository persists support tickets. Implementations are safe for
// concurrent use and assign ids in increasing order.
type TicketRepository interface {
	List(ctx context.Context) ([]models.Ticket, error)
	Get(ctx context.Context, id int) (models.Ticket, error)
	Create(ctx context.Context, ticket models.NewTicket) (models.Ticket, error)
}

// SeedTickets are served when no ticket file exists yet.
func SeedTickets() []models.Ticket {
	return []models.Ticket{
		{
			ID:        1,
			Message:   "The app is crashing frequently after update.",
			Timestamp: "2025-07-18T10:45:00",
			Author:    "User123",
		},
		{
			ID:        2,
			Message:   "Great support, my issue was resolved quickly!",
			Timestamp: "2025-07-18T11:00:00",
			Author:    "User456",
		},
		{
			ID:        3,
			Message:   "I'm having trouble logging in to my account.",
			Timestamp: "2025-07-18T09:30:00",
			Author:    "User789",
		},
	}
}

func sortByID(tickets []models.Ticket) {
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
}
