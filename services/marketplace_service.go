package services

import (
	"context"
	"errors"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/shopspring/decimal"

	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/status"
	"ticket-marketplace/store"
)

// MarketplaceService orchestrates listing, cancelling and purchasing.
// Every mutation runs inside the store's Transact primitive, with the
// lifecycle guards re-evaluated against the value read inside that
// primitive. That is the whole concurrency story: two buyers racing on
// one ticket serialize at the store, the loser re-reads the transferred
// ticket and its guard fails with ErrInvalidState.
type MarketplaceService struct {
	store   store.TicketStore
	pubnub  *pubnub.PubNub
	monitor *monitoring.Monitor
	cache   *ListingCache
	now     func() time.Time
}

func NewMarketplaceService(st store.TicketStore, pn *pubnub.PubNub, monitor *monitoring.Monitor, cache *ListingCache) *MarketplaceService {
	return &MarketplaceService{
		store:   st,
		pubnub:  pn,
		monitor: monitor,
		cache:   cache,
		now:     time.Now,
	}
}

// ListForSale puts an issued ticket on the marketplace at askingPrice.
// The price is validated before storage is touched.
func (s *MarketplaceService) ListForSale(ctx context.Context, ticketID string, askingPrice decimal.Decimal) error {
	if err := ValidateAskingPrice(askingPrice); err != nil {
		s.monitor.TrackOperation("list", "rejected")
		return err
	}

	var listed *models.Ticket
	err := s.store.Transact(ctx, ticketID, func(current *models.Ticket) (*models.Ticket, error) {
		if err := CanList(current); err != nil {
			return nil, err
		}
		listed = ApplyList(current, askingPrice, s.now())
		return listed, nil
	})
	if err != nil {
		s.monitor.TrackOperation("list", "rejected")
		return err
	}

	s.monitor.TrackOperation("list", "success")
	s.cache.Invalidate(ctx, listed.EventID)
	s.notifyMarketplace(listed.EventID, map[string]any{
		"type":      "ticket_listed",
		"ticket_id": listed.ID,
		"event_id":  listed.EventID,
		"price":     listed.ListingPrice.InexactFloat64(),
	})
	return nil
}

// CancelListing takes a listed ticket off the marketplace and restores it
// to issued.
func (s *MarketplaceService) CancelListing(ctx context.Context, ticketID string) error {
	var cancelled *models.Ticket
	err := s.store.Transact(ctx, ticketID, func(current *models.Ticket) (*models.Ticket, error) {
		if err := CanCancelListing(current); err != nil {
			return nil, err
		}
		cancelled = ApplyCancelListing(current)
		return cancelled, nil
	})
	if err != nil {
		s.monitor.TrackOperation("cancel", "rejected")
		return err
	}

	s.monitor.TrackOperation("cancel", "success")
	s.cache.Invalidate(ctx, cancelled.EventID)
	s.notifyMarketplace(cancelled.EventID, map[string]any{
		"type":      "listing_cancelled",
		"ticket_id": cancelled.ID,
		"event_id":  cancelled.EventID,
	})
	return nil
}

// Purchase transfers a listed ticket to buyerID. The losing side of a
// purchase race gets ErrInvalidState; there is no retry, surfacing the
// conflict is the contract.
func (s *MarketplaceService) Purchase(ctx context.Context, ticketID, buyerID string) error {
	var sold *models.Ticket
	var seller string
	err := s.store.Transact(ctx, ticketID, func(current *models.Ticket) (*models.Ticket, error) {
		if err := CanPurchase(current, buyerID); err != nil {
			return nil, err
		}
		seller = current.OwnerID
		sold = ApplyPurchase(current, buyerID)
		return sold, nil
	})
	if err != nil {
		s.monitor.TrackOperation("purchase", "rejected")
		if errors.Is(err, status.ErrInvalidState) {
			if ticket, getErr := s.store.Get(ctx, ticketID); getErr == nil {
				s.monitor.TrackPurchaseConflict(ticket.EventID)
			}
		}
		return err
	}

	s.monitor.TrackOperation("purchase", "success")
	s.cache.Invalidate(ctx, sold.EventID)
	s.notifyMarketplace(sold.EventID, map[string]any{
		"type":      "ticket_sold",
		"ticket_id": sold.ID,
		"event_id":  sold.EventID,
	})
	s.notifyUser(seller, map[string]any{
		"type":      "ticket_sold",
		"ticket_id": sold.ID,
		"event_id":  sold.EventID,
		"buyer_id":  buyerID,
	})
	return nil
}

// notifyMarketplace publishes to the per-event marketplace channel.
// Delivery is best effort and never affects the operation result.
func (s *MarketplaceService) notifyMarketplace(eventID string, message map[string]any) {
	if s.pubnub == nil {
		return
	}
	s.pubnub.Publish().
		Channel("marketplace-" + eventID).
		Message(message).
		Execute()
}

func (s *MarketplaceService) notifyUser(userID string, message map[string]any) {
	if s.pubnub == nil {
		return
	}
	s.pubnub.Publish().
		Channel("user-" + userID).
		Message(message).
		Execute()
}
