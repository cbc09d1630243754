package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ticket-marketplace/security"
	"ticket-marketplace/services"
	"ticket-marketplace/store"
)

type MarketplaceHandler struct {
	store       store.TicketStore
	marketplace *services.MarketplaceService
	limiter     *security.RateLimiter
}

func NewMarketplaceHandler(st store.TicketStore, marketplace *services.MarketplaceService, limiter *security.RateLimiter) *MarketplaceHandler {
	return &MarketplaceHandler{
		store:       st,
		marketplace: marketplace,
		limiter:     limiter,
	}
}

// ListForSale - put one of the caller's tickets on the marketplace
func (h *MarketplaceHandler) ListForSale(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		AskingPrice float64 `json:"asking_price"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.requireOwnership(e, ticketID); err != nil {
		return err
	}

	ctx := e.Request.Context()
	if err := h.marketplace.ListForSale(ctx, ticketID, decimal.NewFromFloat(req.AskingPrice)); err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":   "Ticket listed for sale",
		"ticket_id": ticketID,
	})
}

// CancelListing - take one of the caller's listings off the marketplace
func (h *MarketplaceHandler) CancelListing(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	if err := h.requireOwnership(e, ticketID); err != nil {
		return err
	}

	if err := h.marketplace.CancelListing(e.Request.Context(), ticketID); err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":   "Listing cancelled",
		"ticket_id": ticketID,
	})
}

// Purchase - buy a listed ticket; the buyer is the authenticated user
func (h *MarketplaceHandler) Purchase(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}

	ctx := e.Request.Context()
	if !h.limiter.Allow(ctx, "purchase:"+e.Auth.Id) {
		return apis.NewApiError(http.StatusTooManyRequests, "Too many purchase attempts, slow down", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	if err := h.marketplace.Purchase(ctx, ticketID, e.Auth.Id); err != nil {
		return translateError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":   "Ticket purchased",
		"ticket_id": ticketID,
	})
}

// requireOwnership rejects sellers acting on tickets they do not hold.
// Purchase has no such check: anyone but the owner may buy.
func (h *MarketplaceHandler) requireOwnership(e *core.RequestEvent, ticketID string) error {
	ticket, err := h.store.Get(e.Request.Context(), ticketID)
	if err != nil {
		return translateError(err)
	}
	if ticket.OwnerID != e.Auth.Id {
		return apis.NewForbiddenError("You do not own this ticket", nil)
	}
	return nil
}
