package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/shopcore/pkg/errhttp"
	"github.com/ghuser/shopcore/pkg/httpx"
	pkgvalidator "github.com/ghuser/shopcore/pkg/validator"
	appsvcs "github.com/ghuser/shopcore/services/inventory/application/services"
	"github.com/ghuser/shopcore/services/inventory/domain/repositories"
)

// PostInventoryHandler handles POST /inventory requests.
type PostInventoryHandler struct {
	svc *appsvcs.Services
}

// NewPostInventoryHandler returns a PostInventoryHandler backed by the given services.
func NewPostInventoryHandler(svc *appsvcs.Services) *PostInventoryHandler {
	return &PostInventoryHandler{svc: svc}
}

// Execute creates a new inventory item.
//
//	@Summary		Create inventory item
//	@Description	Creates a stock ledger entry for a new SKU
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateInventoryItemRequest	true	"Item creation request"
//	@Success		201		{object}	InventoryItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/inventory [post]
func (h *PostInventoryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateInventoryItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.Create(r.Context(), req.SKU, req.InitialQuantity, req.MinimumStockLevel)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

// GetInventoryHandler handles GET /inventory/{sku} requests.
type GetInventoryHandler struct {
	svc *appsvcs.Services
}

// NewGetInventoryHandler returns a GetInventoryHandler backed by the given services.
func NewGetInventoryHandler(svc *appsvcs.Services) *GetInventoryHandler {
	return &GetInventoryHandler{svc: svc}
}

// Execute retrieves an inventory item by SKU.
//
//	@Summary	Get inventory item
//	@Tags		inventory
//	@Produce	json
//	@Param		sku	path		string	true	"SKU"
//	@Success	200	{object}	InventoryItemResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/{sku} [get]
func (h *GetInventoryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Inventory.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// GetStockLevelHandler handles GET /inventory/{sku}/stock requests.
type GetStockLevelHandler struct {
	svc *appsvcs.Services
}

// NewGetStockLevelHandler returns a GetStockLevelHandler backed by the given services.
func NewGetStockLevelHandler(svc *appsvcs.Services) *GetStockLevelHandler {
	return &GetStockLevelHandler{svc: svc}
}

// Execute retrieves the cached stock level for a SKU.
//
//	@Summary	Get stock level
//	@Tags		inventory
//	@Produce	json
//	@Param		sku	path		string	true	"SKU"
//	@Success	200	{object}	StockLevelResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/{sku}/stock [get]
func (h *GetStockLevelHandler) Execute(w http.ResponseWriter, r *http.Request) {
	level, err := h.svc.Inventory.GetStockLevel(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StockLevelResponse{
		SKU:               level.SKU,
		Quantity:          level.Quantity,
		ReservedQuantity:  level.ReservedQuantity,
		AvailableQuantity: level.AvailableQuantity,
		MinimumStockLevel: level.MinimumStockLevel,
		UpdatedAt:         level.UpdatedAt,
	})
}

// ListInventoryHandler handles GET /inventory requests.
type ListInventoryHandler struct {
	svc *appsvcs.Services
}

// NewListInventoryHandler returns a ListInventoryHandler backed by the given services.
func NewListInventoryHandler(svc *appsvcs.Services) *ListInventoryHandler {
	return &ListInventoryHandler{svc: svc}
}

// Execute lists inventory items ordered by SKU.
//
//	@Summary	List inventory items
//	@Tags		inventory
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (default 50, max 200)"
//	@Param		offset	query		int	false	"Page offset"
//	@Success	200		{object}	ListInventoryResponse
//	@Router		/inventory [get]
func (h *ListInventoryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	opts := parseQueryOpts(r)
	items, total, err := h.svc.Inventory.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListInventoryResponse{
		Items: make([]InventoryItemResponse, len(items)),
		Total: total,
	}
	for i, item := range items {
		resp.Items[i] = toItemResponse(item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func parseQueryOpts(r *http.Request) repositories.QueryOpts {
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
	return opts
}
