// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/shopcore/pkg/httpx"
	inventorydomain "github.com/ghuser/shopcore/services/inventory/domain"
	orderdomain "github.com/ghuser/shopcore/services/order/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	var stockErr *orderdomain.StockValidationError
	if errors.As(err, &stockErr) {
		return http.StatusConflict // 409
	}

	switch {
	case errors.Is(err, inventorydomain.ErrItemNotFound),
		errors.Is(err, inventorydomain.ErrReservationNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrLineNotFound),
		errors.Is(err, orderdomain.ErrProductNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, inventorydomain.ErrSKUAlreadyExists),
		errors.Is(err, inventorydomain.ErrDuplicateReservation),
		errors.Is(err, inventorydomain.ErrInsufficientStock),
		errors.Is(err, inventorydomain.ErrConcurrentModification),
		errors.Is(err, orderdomain.ErrOrderNotPending),
		errors.Is(err, orderdomain.ErrInvalidStatusTransition),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, orderdomain.ErrConcurrentModification):
		return http.StatusConflict // 409
	case errors.Is(err, inventorydomain.ErrInvalidSKU),
		errors.Is(err, inventorydomain.ErrInvalidQuantity),
		errors.Is(err, inventorydomain.ErrInvalidMinimumStockLevel),
		errors.Is(err, inventorydomain.ErrInvalidReservationID),
		errors.Is(err, orderdomain.ErrInvalidCustomer),
		errors.Is(err, orderdomain.ErrInvalidOrderLine):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
