package services

import (
	"context"
	"sort"
	"time"

	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/store"
)

// TicketViews produces the derived, sorted read collections. Each view is
// a pure filter and sort over the store's unordered result; equal sort
// keys keep the store's insertion order (stable sort).
type TicketViews struct {
	store   store.TicketStore
	cache   *ListingCache
	monitor *monitoring.Monitor
	now     func() time.Time
}

func NewTicketViews(st store.TicketStore, cache *ListingCache, monitor *monitoring.Monitor) *TicketViews {
	return &TicketViews{
		store:   st,
		cache:   cache,
		monitor: monitor,
		now:     time.Now,
	}
}

// ActiveTickets returns the user's issued and transferred tickets that
// have not expired, newest first.
func (v *TicketViews) ActiveTickets(ctx context.Context, userID string) ([]*models.Ticket, error) {
	defer v.track("active_tickets", v.now())

	tickets, err := v.store.Query(ctx, store.Filter{
		OwnerID: userID,
		States:  []models.TicketStatus{models.StatusIssued, models.StatusTransferred},
	})
	if err != nil {
		return nil, err
	}

	now := v.now()
	active := tickets[:0]
	for _, t := range tickets {
		if !t.IsExpired(now) {
			active = append(active, t)
		}
	}
	sortByIssuedAtDesc(active)
	return active, nil
}

// ExpiredTickets returns the user's spent tickets: redeemed or revoked
// ones, plus anything whose validity deadline has passed.
func (v *TicketViews) ExpiredTickets(ctx context.Context, userID string) ([]*models.Ticket, error) {
	defer v.track("expired_tickets", v.now())

	tickets, err := v.store.Query(ctx, store.Filter{OwnerID: userID})
	if err != nil {
		return nil, err
	}

	now := v.now()
	expired := tickets[:0]
	for _, t := range tickets {
		if t.IsTerminal() || t.IsExpired(now) {
			expired = append(expired, t)
		}
	}
	sortByIssuedAtDesc(expired)
	return expired, nil
}

// ListedTicketsByUser returns the user's own marketplace listings, most
// recently listed first.
func (v *TicketViews) ListedTicketsByUser(ctx context.Context, userID string) ([]*models.Ticket, error) {
	defer v.track("listed_by_user", v.now())

	tickets, err := v.store.Query(ctx, store.Filter{
		OwnerID: userID,
		States:  []models.TicketStatus{models.StatusListed},
	})
	if err != nil {
		return nil, err
	}

	sortByListedAtDesc(tickets)
	return tickets, nil
}

// AllListedTickets returns every marketplace listing, most recently
// listed first.
func (v *TicketViews) AllListedTickets(ctx context.Context) ([]*models.Ticket, error) {
	defer v.track("all_listed", v.now())

	if cached, ok := v.cache.Get(ctx, listingCacheAllKey); ok {
		return cached, nil
	}

	tickets, err := v.store.Query(ctx, store.Filter{
		States: []models.TicketStatus{models.StatusListed},
	})
	if err != nil {
		return nil, err
	}

	tickets = withListingPrice(tickets)
	sortByListedAtDesc(tickets)
	v.cache.Set(ctx, listingCacheAllKey, tickets)
	return tickets, nil
}

// ListedTicketsByEvent returns an event's marketplace listings, cheapest
// first.
func (v *TicketViews) ListedTicketsByEvent(ctx context.Context, eventID string) ([]*models.Ticket, error) {
	defer v.track("listed_by_event", v.now())

	key := listingCacheEventKey(eventID)
	if cached, ok := v.cache.Get(ctx, key); ok {
		return cached, nil
	}

	tickets, err := v.store.Query(ctx, store.Filter{
		EventID: eventID,
		States:  []models.TicketStatus{models.StatusListed},
	})
	if err != nil {
		return nil, err
	}

	tickets = withListingPrice(tickets)
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].ListingPrice.LessThan(*tickets[j].ListingPrice)
	})
	v.cache.Set(ctx, key, tickets)
	return tickets, nil
}

// TicketsByUser returns every non-deleted ticket the user owns, newest
// first.
func (v *TicketViews) TicketsByUser(ctx context.Context, userID string) ([]*models.Ticket, error) {
	defer v.track("tickets_by_user", v.now())

	tickets, err := v.store.Query(ctx, store.Filter{OwnerID: userID})
	if err != nil {
		return nil, err
	}

	sortByIssuedAtDesc(tickets)
	return tickets, nil
}

func (v *TicketViews) track(view string, start time.Time) {
	v.monitor.TrackViewQuery(view, time.Since(start))
}

func sortByIssuedAtDesc(tickets []*models.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return timeOrZero(tickets[i].IssuedAt).After(timeOrZero(tickets[j].IssuedAt))
	})
}

func sortByListedAtDesc(tickets []*models.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return timeOrZero(tickets[i].ListedAt).After(timeOrZero(tickets[j].ListedAt))
	})
}

// withListingPrice drops listings without a price. The listing invariant
// makes this a no-op for healthy data; it protects the price sort from
// records written by older builds.
func withListingPrice(tickets []*models.Ticket) []*models.Ticket {
	priced := tickets[:0]
	for _, t := range tickets {
		if t.ListingPrice != nil {
			priced = append(priced, t)
		}
	}
	return priced
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
