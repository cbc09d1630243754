package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"ticket-marketplace/status"
)

// translateError maps the marketplace error taxonomy onto API errors.
// Infrastructure failures surface as 503 so clients can distinguish them
// from their own mistakes.
func translateError(err error) error {
	switch {
	case errors.Is(err, status.ErrTicketNotFound):
		return apis.NewNotFoundError("Ticket not found", err)
	case errors.Is(err, status.ErrInvalidPrice):
		return apis.NewBadRequestError("Asking price must be greater than zero", err)
	case errors.Is(err, status.ErrSelfPurchase):
		return apis.NewBadRequestError("You already own this ticket", err)
	case errors.Is(err, status.ErrListingLocked):
		return apis.NewForbiddenError("This ticket cannot be resold", err)
	case errors.Is(err, status.ErrInvalidState):
		return apis.NewBadRequestError("Ticket is not in a state that allows this action", err)
	case errors.Is(err, status.ErrStoreUnavailable):
		return apis.NewApiError(http.StatusServiceUnavailable, "Ticket store unavailable", err)
	default:
		return apis.NewBadRequestError("Request failed", err)
	}
}
