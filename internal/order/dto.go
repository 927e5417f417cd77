package order

import "github.com/shopspring/decimal"

// CreateOrderItem is one line of a checkout.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID       string           `json:"product_id" binding:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity        int              `json:"quantity" binding:"required,gt=0" example:"2"`
	PriceAtPurchase *decimal.Decimal `json:"price_at_purchase,omitempty" swaggertype:"string" example:"249.99"`
}

// CreateOrderRequest is the checkout payload. The owner is the caller.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	OrderNumber       string            `json:"order_number,omitempty" example:"ORD-1718000000000-a1b2c3"`
	TotalAmount       decimal.Decimal   `json:"total_amount" swaggertype:"string" example:"499.98"`
	TaxAmount         decimal.Decimal   `json:"tax_amount" swaggertype:"string" example:"0"`
	ShippingCost      decimal.Decimal   `json:"shipping_cost" swaggertype:"string" example:"0"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount" swaggertype:"string" example:"0"`
	ShippingAddressID *string           `json:"shipping_address_id,omitempty"`
	BillingAddressID  *string           `json:"billing_address_id,omitempty"`
	Notes             *string           `json:"notes,omitempty"`
	Items             []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
}

func (r CreateOrderRequest) Input(userID string) CreateInput {
	items := make([]ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity, PriceAtPurchase: it.PriceAtPurchase})
	}
	return CreateInput{
		UserID:            userID,
		OrderNumber:       r.OrderNumber,
		TotalAmount:       r.TotalAmount,
		TaxAmount:         r.TaxAmount,
		ShippingCost:      r.ShippingCost,
		DiscountAmount:    r.DiscountAmount,
		ShippingAddressID: r.ShippingAddressID,
		BillingAddressID:  r.BillingAddressID,
		Notes:             r.Notes,
		Items:             items,
	}
}

// UpdateStatusRequest changes the workflow state of an order.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status         string  `json:"status" binding:"required" example:"confirmed"`
	TrackingNumber *string `json:"tracking_number,omitempty" example:"TRK-0042"`
}

// AssignDeliveryRequest names the delivery man taking the order.
// swagger:model AssignDeliveryRequest
type AssignDeliveryRequest struct {
	DeliveryManID string `json:"delivery_man_id" binding:"required" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
}

// StockErrorResponse is returned when items fail validation.
// swagger:model StockErrorResponse
type StockErrorResponse struct {
	Error       string       `json:"error" example:"Insufficient stock for one or more items"`
	StockIssues []StockIssue `json:"stock_issues"`
}
