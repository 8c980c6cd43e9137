package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/shopcore/services/inventory/domain/models"
)

// CreateInventoryItemRequest is the request body for POST /inventory.
type CreateInventoryItemRequest struct {
	SKU               string `json:"sku"                 validate:"required,min=1,max=64" example:"WIDGET-1"`
	InitialQuantity   int    `json:"initial_quantity"    validate:"gte=0"                 example:"100"`
	MinimumStockLevel int    `json:"minimum_stock_level" validate:"gte=0"                 example:"10"`
} // @name CreateInventoryItemRequest

// AdjustStockRequest is the request body for stock increase/decrease.
type AdjustStockRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0" example:"25"`
	Reason   string `json:"reason"   validate:"max=255"       example:"restock"`
} // @name AdjustStockRequest

// SetMinimumStockLevelRequest is the request body for PUT /inventory/{sku}/minimum.
type SetMinimumStockLevelRequest struct {
	MinimumStockLevel int `json:"minimum_stock_level" validate:"gte=0" example:"10"`
} // @name SetMinimumStockLevelRequest

// ReserveStockRequest is the request body for POST /inventory/{sku}/reservations.
// A nil expires_at creates a hold that never expires on its own.
type ReserveStockRequest struct {
	ReservationID string     `json:"reservation_id" validate:"required,min=1,max=128" example:"order-42"`
	Quantity      int        `json:"quantity"       validate:"required,gt=0"          example:"30"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
} // @name ReserveStockRequest

// ConfirmReservationRequest is the request body for reservation confirmation.
type ConfirmReservationRequest struct {
	Reason string `json:"reason" validate:"max=255" example:"order fulfilled"`
} // @name ConfirmReservationRequest

// ReservationResponse is one reservation entry on an item.
type ReservationResponse struct {
	ID         string     `json:"id"         example:"order-42"`
	Quantity   int        `json:"quantity"   example:"30"`
	ReservedAt time.Time  `json:"reserved_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
} // @name ReservationResponse

// InventoryItemResponse is the full item representation.
type InventoryItemResponse struct {
	ID                uuid.UUID             `json:"id"                  example:"123e4567-e89b-12d3-a456-426614174000"`
	SKU               string                `json:"sku"                 example:"WIDGET-1"`
	Quantity          int                   `json:"quantity"            example:"100"`
	ReservedQuantity  int                   `json:"reserved_quantity"   example:"30"`
	AvailableQuantity int                   `json:"available_quantity"  example:"70"`
	MinimumStockLevel int                   `json:"minimum_stock_level" example:"10"`
	OutOfStock        bool                  `json:"out_of_stock"        example:"false"`
	BelowMinimum      bool                  `json:"below_minimum"       example:"false"`
	Version           int                   `json:"version"             example:"3"`
	CreatedAt         time.Time             `json:"created_at"`
	ModifiedAt        *time.Time            `json:"modified_at,omitempty"`
	Reservations      []ReservationResponse `json:"reservations"`
} // @name InventoryItemResponse

// StockLevelResponse is the lightweight cached stock view.
type StockLevelResponse struct {
	SKU               string    `json:"sku"                 example:"WIDGET-1"`
	Quantity          int       `json:"quantity"            example:"100"`
	ReservedQuantity  int       `json:"reserved_quantity"   example:"30"`
	AvailableQuantity int       `json:"available_quantity"  example:"70"`
	MinimumStockLevel int       `json:"minimum_stock_level" example:"10"`
	UpdatedAt         time.Time `json:"updated_at"`
} // @name StockLevelResponse

// ListInventoryResponse is the paginated list payload.
type ListInventoryResponse struct {
	Items []InventoryItemResponse `json:"items"`
	Total int                     `json:"total" example:"42"`
} // @name ListInventoryResponse

// PurgeExpiredResponse reports how many reservations a purge removed.
type PurgeExpiredResponse struct {
	Purged int `json:"purged" example:"2"`
} // @name PurgeExpiredResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"inventory item not found"`
} // @name ErrorResponse

func toItemResponse(item *models.InventoryItem) InventoryItemResponse {
	reservations := item.Reservations()
	out := InventoryItemResponse{
		ID:                item.ID,
		SKU:               item.SKU.String(),
		Quantity:          item.Quantity,
		ReservedQuantity:  item.ReservedQuantity(),
		AvailableQuantity: item.AvailableQuantity(),
		MinimumStockLevel: item.MinimumStockLevel,
		OutOfStock:        item.IsOutOfStock(),
		BelowMinimum:      item.IsBelowMinimum(),
		Version:           item.Version,
		CreatedAt:         item.CreatedAt,
		ModifiedAt:        item.ModifiedAt,
		Reservations:      make([]ReservationResponse, len(reservations)),
	}
	for i, r := range reservations {
		out.Reservations[i] = ReservationResponse{
			ID:         r.ID,
			Quantity:   r.Quantity,
			ReservedAt: r.ReservedAt,
			ExpiresAt:  r.ExpiresAt,
		}
	}
	return out
}
