package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/shopcore/pkg/errhttp"
	"github.com/ghuser/shopcore/pkg/httpx"
	pkgvalidator "github.com/ghuser/shopcore/pkg/validator"
	appsvcs "github.com/ghuser/shopcore/services/order/application/services"
	"github.com/ghuser/shopcore/services/order/domain/repositories"
)

// orderID extracts and parses the {id} URL parameter. Writes a 400 and
// returns false on a malformed UUID.
func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid order id")
		return uuid.UUID{}, false
	}
	return id, true
}

// PostOrderHandler handles POST /orders requests.
type PostOrderHandler struct {
	svc *appsvcs.Services
}

// NewPostOrderHandler returns a PostOrderHandler backed by the given services.
func NewPostOrderHandler(svc *appsvcs.Services) *PostOrderHandler {
	return &PostOrderHandler{svc: svc}
}

// Execute creates a new pending order with no lines.
//
//	@Summary		Create order
//	@Description	Creates a pending order for a customer
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Order creation request"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/orders [post]
func (h *PostOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}

	order, err := h.svc.Order.Create(r.Context(), req.CustomerName, req.CustomerEmail, req.ShippingAddress)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

// GetOrderHandler handles GET /orders/{id} requests.
type GetOrderHandler struct {
	svc *appsvcs.Services
}

// NewGetOrderHandler returns a GetOrderHandler backed by the given services.
func NewGetOrderHandler(svc *appsvcs.Services) *GetOrderHandler {
	return &GetOrderHandler{svc: svc}
}

// Execute retrieves an order by ID.
//
//	@Summary	Get order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id} [get]
func (h *GetOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// ListOrdersHandler handles GET /orders requests.
type ListOrdersHandler struct {
	svc *appsvcs.Services
}

// NewListOrdersHandler returns a ListOrdersHandler backed by the given services.
func NewListOrdersHandler(svc *appsvcs.Services) *ListOrdersHandler {
	return &ListOrdersHandler{svc: svc}
}

// Execute lists orders, newest first.
//
//	@Summary	List orders
//	@Tags		orders
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (default 50, max 200)"
//	@Param		offset	query		int	false	"Page offset"
//	@Success	200		{object}	ListOrdersResponse
//	@Router		/orders [get]
func (h *ListOrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	opts := repositories.QueryOpts{Limit: 50}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if opts.Limit > 200 {
		opts.Limit = 200
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		opts.Offset = v
	}

	orders, total, err := h.svc.Order.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListOrdersResponse{
		Orders: make([]OrderResponse, len(orders)),
		Total:  total,
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// AddOrderItemHandler handles POST /orders/{id}/items requests.
type AddOrderItemHandler struct {
	svc *appsvcs.Services
}

// NewAddOrderItemHandler returns an AddOrderItemHandler backed by the given services.
func NewAddOrderItemHandler(svc *appsvcs.Services) *AddOrderItemHandler {
	return &AddOrderItemHandler{svc: svc}
}

// Execute appends or merges a line on a pending order.
//
//	@Summary	Add order item
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Order ID"
//	@Param		request	body		AddOrderItemRequest	true	"Line to add"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/orders/{id}/items [post]
func (h *AddOrderItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AddOrderItemRequest](w, r)
	if !ok {
		return
	}
	price, err := parseUnitPrice(req.UnitPrice)
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "unit_price must be a decimal number")
		return
	}

	order, err := h.svc.Order.AddItem(r.Context(), id, req.SKU, req.ProductName, price, req.Quantity)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// RemoveOrderItemHandler handles DELETE /orders/{id}/items/{sku} requests.
type RemoveOrderItemHandler struct {
	svc *appsvcs.Services
}

// NewRemoveOrderItemHandler returns a RemoveOrderItemHandler backed by the given services.
func NewRemoveOrderItemHandler(svc *appsvcs.Services) *RemoveOrderItemHandler {
	return &RemoveOrderItemHandler{svc: svc}
}

// Execute deletes the line with the given SKU from a pending order.
//
//	@Summary	Remove order item
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Param		sku	path		string	true	"SKU"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/orders/{id}/items/{sku} [delete]
func (h *RemoveOrderItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.RemoveItem(r.Context(), id, chi.URLParam(r, "sku"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}
