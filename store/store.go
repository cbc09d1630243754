package store

import (
	"context"

	"ticket-marketplace/models"
)

// Filter narrows a Query to a scope. Zero-value fields are ignored.
type Filter struct {
	OwnerID string
	EventID string
	States  []models.TicketStatus
}

// TicketStore is the persistence capability the marketplace core consumes.
// Implementations must guarantee that concurrent Transact calls on the same
// ticket id serialize, and that a losing caller observes the winner's
// committed value inside its own callback. Soft-deleted tickets are treated
// as absent by every method.
type TicketStore interface {
	// Get returns the ticket or status.ErrTicketNotFound.
	Get(ctx context.Context, ticketID string) (*models.Ticket, error)

	// Put creates or replaces a ticket outside of any transaction scope.
	// Only used for non-concurrent creation; an empty ID is assigned by
	// the store and written back to the ticket.
	Put(ctx context.Context, ticket *models.Ticket) error

	// Transact runs fn inside an atomic read-modify-write on the ticket.
	// fn receives the freshest committed value; returning a ticket commits
	// it, returning an error aborts with that error propagated unchanged.
	Transact(ctx context.Context, ticketID string, fn func(current *models.Ticket) (*models.Ticket, error)) error

	// Query returns the unordered set of non-deleted tickets matching the
	// filter. Ordering is the caller's concern.
	Query(ctx context.Context, filter Filter) ([]*models.Ticket, error)
}
