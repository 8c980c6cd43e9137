package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/shopcore/pkg/errhttp"
	"github.com/ghuser/shopcore/pkg/httpx"
	pkgvalidator "github.com/ghuser/shopcore/pkg/validator"
	appsvcs "github.com/ghuser/shopcore/services/inventory/application/services"
)

// ReserveStockHandler handles POST /inventory/{sku}/reservations requests.
type ReserveStockHandler struct {
	svc *appsvcs.Services
}

// NewReserveStockHandler returns a ReserveStockHandler backed by the given services.
func NewReserveStockHandler(svc *appsvcs.Services) *ReserveStockHandler {
	return &ReserveStockHandler{svc: svc}
}

// Execute places a hold on available stock.
//
//	@Summary	Reserve stock
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		sku		path		string				true	"SKU"
//	@Param		request	body		ReserveStockRequest	true	"Reservation"
//	@Success	201		{object}	InventoryItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/{sku}/reservations [post]
func (h *ReserveStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ReserveStockRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.Reserve(r.Context(), chi.URLParam(r, "sku"), req.Quantity, req.ReservationID, req.ExpiresAt)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

// ReleaseReservationHandler handles DELETE /inventory/{sku}/reservations/{reservationId}.
type ReleaseReservationHandler struct {
	svc *appsvcs.Services
}

// NewReleaseReservationHandler returns a ReleaseReservationHandler backed by the given services.
func NewReleaseReservationHandler(svc *appsvcs.Services) *ReleaseReservationHandler {
	return &ReleaseReservationHandler{svc: svc}
}

// Execute releases an active reservation without touching on-hand stock.
//
//	@Summary	Release reservation
//	@Tags		inventory
//	@Produce	json
//	@Param		sku				path		string	true	"SKU"
//	@Param		reservationId	path		string	true	"Reservation ID"
//	@Success	200				{object}	InventoryItemResponse
//	@Failure	404				{object}	ErrorResponse
//	@Router		/inventory/{sku}/reservations/{reservationId} [delete]
func (h *ReleaseReservationHandler) Execute(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Inventory.Release(r.Context(), chi.URLParam(r, "sku"), chi.URLParam(r, "reservationId"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// ConfirmReservationHandler handles POST /inventory/{sku}/reservations/{reservationId}/confirm.
type ConfirmReservationHandler struct {
	svc *appsvcs.Services
}

// NewConfirmReservationHandler returns a ConfirmReservationHandler backed by the given services.
func NewConfirmReservationHandler(svc *appsvcs.Services) *ConfirmReservationHandler {
	return &ConfirmReservationHandler{svc: svc}
}

// Execute converts an active reservation into a permanent stock decrement.
//
//	@Summary	Confirm reservation
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		sku				path		string						true	"SKU"
//	@Param		reservationId	path		string						true	"Reservation ID"
//	@Param		request			body		ConfirmReservationRequest	true	"Confirmation"
//	@Success	200				{object}	InventoryItemResponse
//	@Failure	404				{object}	ErrorResponse
//	@Failure	409				{object}	ErrorResponse
//	@Router		/inventory/{sku}/reservations/{reservationId}/confirm [post]
func (h *ConfirmReservationHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ConfirmReservationRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.ConfirmReservation(r.Context(), chi.URLParam(r, "sku"), chi.URLParam(r, "reservationId"), req.Reason)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// PurgeExpiredReservationsHandler handles POST /inventory/{sku}/reservations/purge-expired.
type PurgeExpiredReservationsHandler struct {
	svc *appsvcs.Services
}

// NewPurgeExpiredReservationsHandler returns a PurgeExpiredReservationsHandler backed by the given services.
func NewPurgeExpiredReservationsHandler(svc *appsvcs.Services) *PurgeExpiredReservationsHandler {
	return &PurgeExpiredReservationsHandler{svc: svc}
}

// Execute removes every expired reservation from an item. Idempotent.
//
//	@Summary	Purge expired reservations
//	@Tags		inventory
//	@Produce	json
//	@Param		sku	path		string	true	"SKU"
//	@Success	200	{object}	PurgeExpiredResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/{sku}/reservations/purge-expired [post]
func (h *PurgeExpiredReservationsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	_, purged, err := h.svc.Inventory.PurgeExpiredReservations(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PurgeExpiredResponse{Purged: purged})
}
