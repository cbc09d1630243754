package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_IsExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	noDeadline := Ticket{}
	assert.False(t, noDeadline.IsExpired(now))

	past := now.Add(-time.Second)
	expired := Ticket{ExpiresAt: &past}
	assert.True(t, expired.IsExpired(now))

	// A ticket expiring exactly at now is still valid.
	boundary := Ticket{ExpiresAt: &now}
	assert.False(t, boundary.IsExpired(now))

	future := now.Add(time.Hour)
	valid := Ticket{ExpiresAt: &future}
	assert.False(t, valid.IsExpired(now))
}

func TestTicket_IsTerminal(t *testing.T) {
	assert.True(t, (&Ticket{Status: StatusRedeemed}).IsTerminal())
	assert.True(t, (&Ticket{Status: StatusRevoked}).IsTerminal())
	assert.False(t, (&Ticket{Status: StatusIssued}).IsTerminal())
	assert.False(t, (&Ticket{Status: StatusListed}).IsTerminal())
	assert.False(t, (&Ticket{Status: StatusTransferred}).IsTerminal())
}

func TestTicket_Clone(t *testing.T) {
	price := decimal.NewFromFloat(99.99)
	issuedAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	listedAt := issuedAt.Add(24 * time.Hour)

	original := &Ticket{
		ID:            "t1",
		EventID:       "event-1",
		OwnerID:       "alice",
		Status:        StatusListed,
		PurchasePrice: decimal.NewFromInt(50),
		ListingPrice:  &price,
		IssuedAt:      &issuedAt,
		ListedAt:      &listedAt,
		Version:       2,
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// Mutating the clone must not reach the original.
	clone.OwnerID = "bob"
	newPrice := decimal.NewFromInt(1)
	*clone.ListingPrice = newPrice
	*clone.ListedAt = listedAt.Add(time.Hour)

	assert.Equal(t, "alice", original.OwnerID)
	assert.True(t, original.ListingPrice.Equal(price))
	assert.Equal(t, listedAt, *original.ListedAt)
}

func TestTicket_IsDeleted(t *testing.T) {
	assert.False(t, (&Ticket{}).IsDeleted())

	deletedAt := time.Now()
	assert.True(t, (&Ticket{DeletedAt: &deletedAt}).IsDeleted())
}
