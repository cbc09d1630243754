package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ticket-marketplace/services"
	"ticket-marketplace/store"
)

type TicketHandler struct {
	store  store.TicketStore
	views  *services.TicketViews
	issuer *services.IssueService
}

func NewTicketHandler(st store.TicketStore, views *services.TicketViews, issuer *services.IssueService) *TicketHandler {
	return &TicketHandler{
		store:  st,
		views:  views,
		issuer: issuer,
	}
}

// IssueTicket - create a ticket in the issued state
func (h *TicketHandler) IssueTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	var req struct {
		EventID       string     `json:"event_id"`
		OwnerID       string     `json:"owner_id"`
		TierID        string     `json:"tier_id"`
		PurchasePrice float64    `json:"purchase_price"`
		ExpiresAt     *time.Time `json:"expires_at"`
		TransferLock  bool       `json:"transfer_lock"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = e.Auth.Id
	}

	ticket, err := h.issuer.IssueTicket(e.Request.Context(), services.IssueTicketParams{
		EventID:       req.EventID,
		OwnerID:       ownerID,
		TierID:        req.TierID,
		PurchasePrice: decimal.NewFromFloat(req.PurchasePrice),
		ExpiresAt:     req.ExpiresAt,
		TransferLock:  req.TransferLock,
	})
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, ticket)
}

// RetireTicket - soft-delete a ticket
func (h *TicketHandler) RetireTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	if err := h.issuer.RetireTicket(e.Request.Context(), ticketID); err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":   "Ticket retired",
		"ticket_id": ticketID,
	})
}

// GetTicket - fetch a single ticket
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	ticket, err := h.store.Get(e.Request.Context(), e.Request.PathValue("ticketId"))
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, ticket)
}

// ActiveTickets - the caller's usable tickets, newest first
func (h *TicketHandler) ActiveTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	tickets, err := h.views.ActiveTickets(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// ExpiredTickets - the caller's spent or lapsed tickets
func (h *TicketHandler) ExpiredTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	tickets, err := h.views.ExpiredTickets(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// MyTickets - everything the caller owns
func (h *TicketHandler) MyTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	tickets, err := h.views.TicketsByUser(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// MyListings - the caller's open marketplace listings
func (h *TicketHandler) MyListings(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	tickets, err := h.views.ListedTicketsByUser(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// AllListings - every open marketplace listing, public
func (h *TicketHandler) AllListings(e *core.RequestEvent) error {
	tickets, err := h.views.AllListedTickets(e.Request.Context())
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// EventListings - an event's open listings, cheapest first, public
func (h *TicketHandler) EventListings(e *core.RequestEvent) error {
	tickets, err := h.views.ListedTicketsByEvent(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}
