package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	StatusIssued      TicketStatus = "issued"
	StatusListed      TicketStatus = "listed"
	StatusTransferred TicketStatus = "transferred"
	StatusRedeemed    TicketStatus = "redeemed"
	StatusRevoked     TicketStatus = "revoked"
)

type Ticket struct {
	ID            string           `json:"id"`
	EventID       string           `json:"event_id"`
	OwnerID       string           `json:"owner_id"`
	TierID        string           `json:"tier_id"`
	Status        TicketStatus     `json:"status"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	ListingPrice  *decimal.Decimal `json:"listing_price,omitempty"`
	IssuedAt      *time.Time       `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	ListedAt      *time.Time       `json:"listed_at,omitempty"`
	TransferLock  bool             `json:"transfer_lock"`
	Version       int              `json:"version"`
	DeletedAt     *time.Time       `json:"deleted_at,omitempty"`
}

func (t *Ticket) IsDeleted() bool {
	return t.DeletedAt != nil
}

func (t *Ticket) IsListed() bool {
	return t.Status == StatusListed
}

// IsExpired reports whether the validity deadline has passed. A ticket
// expiring exactly at now is still valid.
func (t *Ticket) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// IsTerminal reports whether the ticket reached a final lifecycle state.
func (t *Ticket) IsTerminal() bool {
	return t.Status == StatusRedeemed || t.Status == StatusRevoked
}

// Clone returns a deep copy so callers can mutate the result without
// touching the original.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	if t.ListingPrice != nil {
		price := *t.ListingPrice
		clone.ListingPrice = &price
	}
	clone.IssuedAt = copyTime(t.IssuedAt)
	clone.ExpiresAt = copyTime(t.ExpiresAt)
	clone.ListedAt = copyTime(t.ListedAt)
	clone.DeletedAt = copyTime(t.DeletedAt)
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
