package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/models"
	"ticket-marketplace/status"
)

func TestCanList(t *testing.T) {
	tests := []struct {
		name    string
		ticket  *models.Ticket
		wantErr error
	}{
		{
			name:   "issued unlocked ticket can list",
			ticket: &models.Ticket{Status: models.StatusIssued},
		},
		{
			name:    "transfer lock wins regardless of state",
			ticket:  &models.Ticket{Status: models.StatusIssued, TransferLock: true},
			wantErr: status.ErrListingLocked,
		},
		{
			name:    "locked listed ticket still reports locked",
			ticket:  &models.Ticket{Status: models.StatusListed, TransferLock: true},
			wantErr: status.ErrListingLocked,
		},
		{
			name:    "listed ticket cannot list again",
			ticket:  &models.Ticket{Status: models.StatusListed},
			wantErr: status.ErrInvalidState,
		},
		{
			name:    "transferred ticket cannot list",
			ticket:  &models.Ticket{Status: models.StatusTransferred},
			wantErr: status.ErrInvalidState,
		},
		{
			name:    "redeemed ticket cannot list",
			ticket:  &models.Ticket{Status: models.StatusRedeemed},
			wantErr: status.ErrInvalidState,
		},
		{
			name:    "revoked ticket cannot list",
			ticket:  &models.Ticket{Status: models.StatusRevoked},
			wantErr: status.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanList(tt.ticket)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanCancelListing(t *testing.T) {
	assert.NoError(t, CanCancelListing(&models.Ticket{Status: models.StatusListed}))

	for _, st := range []models.TicketStatus{
		models.StatusIssued,
		models.StatusTransferred,
		models.StatusRedeemed,
		models.StatusRevoked,
	} {
		err := CanCancelListing(&models.Ticket{Status: st})
		assert.ErrorIs(t, err, status.ErrInvalidState, "state %s", st)
	}
}

func TestCanPurchase(t *testing.T) {
	listed := &models.Ticket{Status: models.StatusListed, OwnerID: "alice"}

	assert.NoError(t, CanPurchase(listed, "bob"))
	assert.ErrorIs(t, CanPurchase(listed, "alice"), status.ErrSelfPurchase)

	// Not listed takes precedence over self purchase.
	issued := &models.Ticket{Status: models.StatusIssued, OwnerID: "alice"}
	assert.ErrorIs(t, CanPurchase(issued, "alice"), status.ErrInvalidState)
	assert.ErrorIs(t, CanPurchase(issued, "bob"), status.ErrInvalidState)
}

func TestValidateAskingPrice(t *testing.T) {
	assert.NoError(t, ValidateAskingPrice(decimal.NewFromFloat(0.01)))
	assert.NoError(t, ValidateAskingPrice(decimal.NewFromInt(150)))
	assert.ErrorIs(t, ValidateAskingPrice(decimal.Zero), status.ErrInvalidPrice)
	assert.ErrorIs(t, ValidateAskingPrice(decimal.NewFromFloat(-0.01)), status.ErrInvalidPrice)
}

func TestApplyList(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	original := &models.Ticket{
		ID:      "t1",
		OwnerID: "alice",
		Status:  models.StatusIssued,
		Version: 3,
	}

	price := decimal.NewFromFloat(99.5)
	listed := ApplyList(original, price, now)

	assert.Equal(t, models.StatusListed, listed.Status)
	require.NotNil(t, listed.ListingPrice)
	assert.True(t, listed.ListingPrice.Equal(price))
	require.NotNil(t, listed.ListedAt)
	assert.Equal(t, now, *listed.ListedAt)
	assert.Equal(t, 4, listed.Version)

	// The input ticket is untouched.
	assert.Equal(t, models.StatusIssued, original.Status)
	assert.Nil(t, original.ListingPrice)
	assert.Equal(t, 3, original.Version)
}

func TestApplyCancelListing(t *testing.T) {
	now := time.Now()
	price := decimal.NewFromInt(10)
	listed := &models.Ticket{
		Status:       models.StatusListed,
		ListingPrice: &price,
		ListedAt:     &now,
		Version:      2,
	}

	cancelled := ApplyCancelListing(listed)

	assert.Equal(t, models.StatusIssued, cancelled.Status)
	assert.Nil(t, cancelled.ListingPrice)
	assert.Nil(t, cancelled.ListedAt)
	assert.Equal(t, 3, cancelled.Version)
}

func TestApplyPurchase(t *testing.T) {
	now := time.Now()
	price := decimal.NewFromInt(40)
	listed := &models.Ticket{
		OwnerID:      "alice",
		Status:       models.StatusListed,
		ListingPrice: &price,
		ListedAt:     &now,
		Version:      3,
	}

	sold := ApplyPurchase(listed, "bob")

	assert.Equal(t, models.StatusTransferred, sold.Status)
	assert.Equal(t, "bob", sold.OwnerID)
	assert.Nil(t, sold.ListingPrice)
	assert.Nil(t, sold.ListedAt)
	assert.Equal(t, 4, sold.Version)
	assert.Equal(t, "alice", listed.OwnerID)
}
