package handlers

import (
	"errors"
	"net/http"

	"github.com/ghuser/shopcore/pkg/errhttp"
	"github.com/ghuser/shopcore/pkg/httpx"
	appsvcs "github.com/ghuser/shopcore/services/order/application/services"
	orderdomain "github.com/ghuser/shopcore/services/order/domain"
)

// ConfirmOrderHandler handles POST /orders/{id}/confirm requests.
type ConfirmOrderHandler struct {
	svc *appsvcs.Services
}

// NewConfirmOrderHandler returns a ConfirmOrderHandler backed by the given services.
func NewConfirmOrderHandler(svc *appsvcs.Services) *ConfirmOrderHandler {
	return &ConfirmOrderHandler{svc: svc}
}

// Execute confirms a pending order after validating every line against
// available stock. A failed validation returns the per-line shortfall
// detail instead of the plain error payload.
//
//	@Summary	Confirm order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	StockValidationResponse
//	@Router		/orders/{id}/confirm [post]
func (h *ConfirmOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Confirmation.ConfirmOrder(r.Context(), id)
	if err != nil {
		var stockErr *orderdomain.StockValidationError
		if errors.As(err, &stockErr) {
			resp := StockValidationResponse{
				Error: stockErr.Error(),
				Lines: make([]StockShortfallResponse, len(stockErr.Lines)),
			}
			for i, l := range stockErr.Lines {
				resp.Lines[i] = StockShortfallResponse{
					SKU:       l.SKU,
					Requested: l.Requested,
					Available: l.Available,
				}
			}
			httpx.JSON(w, http.StatusConflict, resp)
			return
		}
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// ShipOrderHandler handles POST /orders/{id}/ship requests.
type ShipOrderHandler struct {
	svc *appsvcs.Services
}

// NewShipOrderHandler returns a ShipOrderHandler backed by the given services.
func NewShipOrderHandler(svc *appsvcs.Services) *ShipOrderHandler {
	return &ShipOrderHandler{svc: svc}
}

// Execute transitions a confirmed order to shipped.
//
//	@Summary	Ship order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/orders/{id}/ship [post]
func (h *ShipOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.Ship(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// DeliverOrderHandler handles POST /orders/{id}/deliver requests.
type DeliverOrderHandler struct {
	svc *appsvcs.Services
}

// NewDeliverOrderHandler returns a DeliverOrderHandler backed by the given services.
func NewDeliverOrderHandler(svc *appsvcs.Services) *DeliverOrderHandler {
	return &DeliverOrderHandler{svc: svc}
}

// Execute transitions a shipped order to delivered.
//
//	@Summary	Deliver order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/orders/{id}/deliver [post]
func (h *DeliverOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.Deliver(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// CancelOrderHandler handles POST /orders/{id}/cancel requests.
type CancelOrderHandler struct {
	svc *appsvcs.Services
}

// NewCancelOrderHandler returns a CancelOrderHandler backed by the given services.
func NewCancelOrderHandler(svc *appsvcs.Services) *CancelOrderHandler {
	return &CancelOrderHandler{svc: svc}
}

// Execute cancels a pending or confirmed order.
//
//	@Summary	Cancel order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/orders/{id}/cancel [post]
func (h *CancelOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.Cancel(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}
