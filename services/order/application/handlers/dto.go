package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/shopcore/services/order/domain/models"
)

// CreateOrderRequest is the request body for POST /orders.
type CreateOrderRequest struct {
	CustomerName    string `json:"customer_name"    validate:"required,min=1,max=255" example:"Ada Lovelace"`
	CustomerEmail   string `json:"customer_email"   validate:"required,email"         example:"ada@example.com"`
	ShippingAddress string `json:"shipping_address" validate:"required,min=1,max=512" example:"12 Analytical Way"`
} // @name CreateOrderRequest

// AddOrderItemRequest is the request body for POST /orders/{id}/items.
// Unit price is a decimal string to avoid float rounding on money.
type AddOrderItemRequest struct {
	SKU         string `json:"sku"          validate:"required,min=1,max=64"  example:"WIDGET-1"`
	ProductName string `json:"product_name" validate:"required,min=1,max=255" example:"Widget"`
	UnitPrice   string `json:"unit_price"   validate:"required"               example:"9.99"`
	Quantity    int    `json:"quantity"     validate:"required,gt=0"          example:"3"`
} // @name AddOrderItemRequest

// OrderLineResponse is one product position on an order.
type OrderLineResponse struct {
	SKU         string `json:"sku"          example:"WIDGET-1"`
	ProductName string `json:"product_name" example:"Widget"`
	UnitPrice   string `json:"unit_price"   example:"9.99"`
	Quantity    int    `json:"quantity"     example:"3"`
} // @name OrderLineResponse

// OrderResponse is the full order representation.
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"               example:"123e4567-e89b-12d3-a456-426614174000"`
	CustomerName    string              `json:"customer_name"    example:"Ada Lovelace"`
	CustomerEmail   string              `json:"customer_email"   example:"ada@example.com"`
	ShippingAddress string              `json:"shipping_address" example:"12 Analytical Way"`
	Status          string              `json:"status"           example:"pending"`
	TotalAmount     string              `json:"total_amount"     example:"29.97"`
	Version         int                 `json:"version"          example:"2"`
	CreatedAt       time.Time           `json:"created_at"`
	ModifiedAt      *time.Time          `json:"modified_at,omitempty"`
	Lines           []OrderLineResponse `json:"lines"`
} // @name OrderResponse

// ListOrdersResponse is the paginated list payload, newest first.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total" example:"42"`
} // @name ListOrdersResponse

// StockShortfallResponse is one line that failed stock validation.
type StockShortfallResponse struct {
	SKU       string `json:"sku"       example:"WIDGET-1"`
	Requested int    `json:"requested" example:"5"`
	Available int    `json:"available" example:"2"`
} // @name StockShortfallResponse

// StockValidationResponse is returned when confirmation fails stock checks.
type StockValidationResponse struct {
	Error string                   `json:"error" example:"insufficient stock for order"`
	Lines []StockShortfallResponse `json:"lines"`
} // @name StockValidationResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"order not found"`
} // @name ErrorResponse

func toOrderResponse(order *models.Order) OrderResponse {
	lines := order.Lines()
	out := OrderResponse{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount().String(),
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		ModifiedAt:      order.ModifiedAt,
		Lines:           make([]OrderLineResponse, len(lines)),
	}
	for i, l := range lines {
		out.Lines[i] = OrderLineResponse{
			SKU:         l.SKU,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice.String(),
			Quantity:    l.Quantity,
		}
	}
	return out
}

func parseUnitPrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
