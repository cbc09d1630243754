package services

import (
	"time"

	"github.com/shopspring/decimal"

	"ticket-marketplace/models"
	"ticket-marketplace/status"
)

// Pure transition guards for the ticket lifecycle. These never touch
// storage; MarketplaceService re-evaluates them inside the store
// transaction against the freshest read.

// CanList allows listing only for an issued, non-locked ticket. The
// transfer lock wins over the state check so a locked ticket always
// reports ErrListingLocked.
func CanList(t *models.Ticket) error {
	if t.TransferLock {
		return status.ErrListingLocked
	}
	if t.Status != models.StatusIssued {
		return status.ErrInvalidState
	}
	return nil
}

func CanCancelListing(t *models.Ticket) error {
	if t.Status != models.StatusListed {
		return status.ErrInvalidState
	}
	return nil
}

func CanPurchase(t *models.Ticket, buyerID string) error {
	if t.Status != models.StatusListed {
		return status.ErrInvalidState
	}
	if t.OwnerID == buyerID {
		return status.ErrSelfPurchase
	}
	return nil
}

func ValidateAskingPrice(price decimal.Decimal) error {
	if price.Sign() <= 0 {
		return status.ErrInvalidPrice
	}
	return nil
}

// ApplyList produces the listed ticket: issued -> listed, listing fields
// set, version bumped. Caller must have passed CanList.
func ApplyList(t *models.Ticket, price decimal.Decimal, now time.Time) *models.Ticket {
	next := t.Clone()
	next.Status = models.StatusListed
	next.ListingPrice = &price
	next.ListedAt = &now
	next.Version++
	return next
}

// ApplyCancelListing restores the issued state and clears listing fields.
func ApplyCancelListing(t *models.Ticket) *models.Ticket {
	next := t.Clone()
	next.Status = models.StatusIssued
	next.ListingPrice = nil
	next.ListedAt = nil
	next.Version++
	return next
}

// ApplyPurchase hands the ticket to the buyer: listed -> transferred,
// listing fields cleared, new owner, version bumped.
func ApplyPurchase(t *models.Ticket, buyerID string) *models.Ticket {
	next := t.Clone()
	next.Status = models.StatusTransferred
	next.OwnerID = buyerID
	next.ListingPrice = nil
	next.ListedAt = nil
	next.Version++
	return next
}
