package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ticket-marketplace/models"
	"ticket-marketplace/status"
)

const CollectionTickets = "tickets"

// PocketBase persists tickets as records in the tickets collection.
// Transact maps to core.App.RunInTransaction, which gives the atomic
// per-document read-modify-write the marketplace relies on.
type PocketBase struct {
	app core.App
}

func NewPocketBase(app core.App) *PocketBase {
	return &PocketBase{app: app}
}

func (s *PocketBase) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	return findTicket(s.app, ticketID)
}

func (s *PocketBase) Put(ctx context.Context, ticket *models.Ticket) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionTickets)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	record := core.NewRecord(collection)
	if ticket.ID != "" {
		record.Set("id", ticket.ID)
	}
	ticketToRecord(ticket, record)

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	ticket.ID = record.Id
	return nil
}

func (s *PocketBase) Transact(ctx context.Context, ticketID string, fn func(current *models.Ticket) (*models.Ticket, error)) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		// Read inside the transaction scope so guards see the freshest
		// committed value, never a caller-supplied snapshot.
		current, err := findTicket(txApp, ticketID)
		if err != nil {
			return err
		}

		updated, err := fn(current)
		if err != nil {
			return err
		}

		record, err := txApp.FindRecordById(CollectionTickets, ticketID)
		if err != nil {
			return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
		}
		ticketToRecord(updated, record)

		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
		}
		return nil
	})
}

func (s *PocketBase) Query(ctx context.Context, filter Filter) ([]*models.Ticket, error) {
	exprs := []dbx.Expression{dbx.NewExp("deleted_at = ''")}
	if filter.OwnerID != "" {
		exprs = append(exprs, dbx.HashExp{"owner_id": filter.OwnerID})
	}
	if filter.EventID != "" {
		exprs = append(exprs, dbx.HashExp{"event_id": filter.EventID})
	}
	if len(filter.States) > 0 {
		states := make([]any, len(filter.States))
		for i, st := range filter.States {
			states[i] = string(st)
		}
		exprs = append(exprs, dbx.In("state", states...))
	}

	records, err := s.app.FindAllRecords(CollectionTickets, exprs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	tickets := make([]*models.Ticket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, recordToTicket(record))
	}
	return tickets, nil
}

func findTicket(app core.App, ticketID string) (*models.Ticket, error) {
	record, err := app.FindRecordById(CollectionTickets, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTicketNotFound
		}
		return nil, fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	ticket := recordToTicket(record)
	if ticket.IsDeleted() {
		return nil, status.ErrTicketNotFound
	}
	return ticket, nil
}

func recordToTicket(record *core.Record) *models.Ticket {
	ticket := &models.Ticket{
		ID:            record.Id,
		EventID:       record.GetString("event_id"),
		OwnerID:       record.GetString("owner_id"),
		TierID:        record.GetString("tier_id"),
		Status:        models.TicketStatus(record.GetString("state")),
		PurchasePrice: decimal.NewFromFloat(record.GetFloat("purchase_price")),
		TransferLock:  record.GetBool("transfer_lock"),
		Version:       record.GetInt("version"),
	}

	if price := record.GetFloat("listing_price"); price != 0 {
		d := decimal.NewFromFloat(price)
		ticket.ListingPrice = &d
	}
	ticket.IssuedAt = recordTime(record, "issued_at")
	ticket.ExpiresAt = recordTime(record, "expires_at")
	ticket.ListedAt = recordTime(record, "listed_at")
	ticket.DeletedAt = recordTime(record, "deleted_at")

	return ticket
}

func ticketToRecord(ticket *models.Ticket, record *core.Record) {
	record.Set("event_id", ticket.EventID)
	record.Set("owner_id", ticket.OwnerID)
	record.Set("tier_id", ticket.TierID)
	record.Set("state", string(ticket.Status))
	record.Set("purchase_price", ticket.PurchasePrice.InexactFloat64())
	record.Set("transfer_lock", ticket.TransferLock)
	record.Set("version", ticket.Version)

	if ticket.ListingPrice != nil {
		record.Set("listing_price", ticket.ListingPrice.InexactFloat64())
	} else {
		record.Set("listing_price", 0)
	}
	setRecordTime(record, "issued_at", ticket.IssuedAt)
	setRecordTime(record, "expires_at", ticket.ExpiresAt)
	setRecordTime(record, "listed_at", ticket.ListedAt)
	setRecordTime(record, "deleted_at", ticket.DeletedAt)
}

func recordTime(record *core.Record, field string) *time.Time {
	dt := record.GetDateTime(field)
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

func setRecordTime(record *core.Record, field string, t *time.Time) {
	if t != nil {
		record.Set(field, *t)
	} else {
		record.Set(field, "")
	}
}
