package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/shopcore/pkg/errhttp"
	"github.com/ghuser/shopcore/pkg/httpx"
	pkgvalidator "github.com/ghuser/shopcore/pkg/validator"
	appsvcs "github.com/ghuser/shopcore/services/inventory/application/services"
)

// IncreaseStockHandler handles POST /inventory/{sku}/increase requests.
type IncreaseStockHandler struct {
	svc *appsvcs.Services
}

// NewIncreaseStockHandler returns an IncreaseStockHandler backed by the given services.
func NewIncreaseStockHandler(svc *appsvcs.Services) *IncreaseStockHandler {
	return &IncreaseStockHandler{svc: svc}
}

// Execute adds stock to an item.
//
//	@Summary	Increase stock
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		sku		path		string				true	"SKU"
//	@Param		request	body		AdjustStockRequest	true	"Adjustment"
//	@Success	200		{object}	InventoryItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/{sku}/increase [post]
func (h *IncreaseStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[AdjustStockRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.IncreaseStock(r.Context(), chi.URLParam(r, "sku"), req.Quantity, req.Reason)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// DecreaseStockHandler handles POST /inventory/{sku}/decrease requests.
type DecreaseStockHandler struct {
	svc *appsvcs.Services
}

// NewDecreaseStockHandler returns a DecreaseStockHandler backed by the given services.
func NewDecreaseStockHandler(svc *appsvcs.Services) *DecreaseStockHandler {
	return &DecreaseStockHandler{svc: svc}
}

// Execute removes stock from an item. The check is against the on-hand
// quantity, not the available quantity.
//
//	@Summary	Decrease stock
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		sku		path		string				true	"SKU"
//	@Param		request	body		AdjustStockRequest	true	"Adjustment"
//	@Success	200		{object}	InventoryItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/{sku}/decrease [post]
func (h *DecreaseStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[AdjustStockRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.DecreaseStock(r.Context(), chi.URLParam(r, "sku"), req.Quantity, req.Reason)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// SetMinimumStockLevelHandler handles PUT /inventory/{sku}/minimum requests.
type SetMinimumStockLevelHandler struct {
	svc *appsvcs.Services
}

// NewSetMinimumStockLevelHandler returns a SetMinimumStockLevelHandler backed by the given services.
func NewSetMinimumStockLevelHandler(svc *appsvcs.Services) *SetMinimumStockLevelHandler {
	return &SetMinimumStockLevelHandler{svc: svc}
}

// Execute replaces the low-stock threshold for an item.
//
//	@Summary	Set minimum stock level
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		sku		path		string						true	"SKU"
//	@Param		request	body		SetMinimumStockLevelRequest	true	"New threshold"
//	@Success	200		{object}	InventoryItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/{sku}/minimum [put]
func (h *SetMinimumStockLevelHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SetMinimumStockLevelRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.SetMinimumStockLevel(r.Context(), chi.URLParam(r, "sku"), req.MinimumStockLevel)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
