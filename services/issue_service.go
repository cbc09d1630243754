package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/store"
	"ticket-marketplace/utils"
)

// IssueService creates and retires tickets. Issuance is the only path
// that writes outside a transaction scope: a fresh ticket has no
// concurrent writers.
type IssueService struct {
	store   store.TicketStore
	monitor *monitoring.Monitor
	now     func() time.Time
}

func NewIssueService(st store.TicketStore, monitor *monitoring.Monitor) *IssueService {
	return &IssueService{
		store:   st,
		monitor: monitor,
		now:     time.Now,
	}
}

type IssueTicketParams struct {
	EventID       string          `json:"event_id"`
	OwnerID       string          `json:"owner_id"`
	TierID        string          `json:"tier_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	TransferLock  bool            `json:"transfer_lock"`
}

// IssueTicket creates a ticket in the issued state at version 1.
func (s *IssueService) IssueTicket(ctx context.Context, params IssueTicketParams) (*models.Ticket, error) {
	if params.EventID == "" || params.OwnerID == "" {
		return nil, fmt.Errorf("marketplace: event id and owner id are required")
	}
	if params.PurchasePrice.Sign() < 0 {
		return nil, fmt.Errorf("marketplace: purchase price cannot be negative")
	}

	id, err := utils.GenerateTicketID()
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	ticket := &models.Ticket{
		ID:            id,
		EventID:       params.EventID,
		OwnerID:       params.OwnerID,
		TierID:        params.TierID,
		Status:        models.StatusIssued,
		PurchasePrice: params.PurchasePrice,
		IssuedAt:      &issuedAt,
		ExpiresAt:     params.ExpiresAt,
		TransferLock:  params.TransferLock,
		Version:       1,
	}

	if err := s.store.Put(ctx, ticket); err != nil {
		s.monitor.TrackOperation("issue", "rejected")
		return nil, err
	}

	s.monitor.TrackOperation("issue", "success")
	return ticket, nil
}

// RetireTicket soft-deletes a ticket. Afterwards every marketplace and
// view operation treats it as absent; retiring twice reports not found.
func (s *IssueService) RetireTicket(ctx context.Context, ticketID string) error {
	err := s.store.Transact(ctx, ticketID, func(current *models.Ticket) (*models.Ticket, error) {
		next := current.Clone()
		deletedAt := s.now()
		next.DeletedAt = &deletedAt
		next.Version++
		return next, nil
	})
	if err != nil {
		s.monitor.TrackOperation("retire", "rejected")
		return err
	}

	s.monitor.TrackOperation("retire", "success")
	return nil
}
