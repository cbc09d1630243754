package status

import "errors"

var (
	ErrTicketNotFound   = errors.New("marketplace: ticket not found")
	ErrInvalidState     = errors.New("marketplace: action not allowed in current ticket state")
	ErrListingLocked    = errors.New("marketplace: ticket is transfer locked")
	ErrInvalidPrice     = errors.New("marketplace: asking price must be greater than zero")
	ErrSelfPurchase     = errors.New("marketplace: buyer already owns this ticket")
	ErrStoreUnavailable = errors.New("marketplace: ticket store unavailable")
)
