package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	OrderNumber       string          `json:"order_number"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	ShippingAddressID *string         `json:"shipping_address_id,omitempty"`
	BillingAddressID  *string         `json:"billing_address_id,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	Status            Status          `json:"status"`
	DeliveryManID     *string         `json:"delivery_man_id,omitempty"`
	AssignedAt        *time.Time      `json:"assigned_at,omitempty"`
	TrackingNumber    *string         `json:"tracking_number,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type Item struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// StockLevel is the slice of a product row the order workflow reads.
type StockLevel struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

type ItemInput struct {
	ProductID       string
	Quantity        int
	PriceAtPurchase *decimal.Decimal
}

type CreateInput struct {
	UserID            string
	OrderNumber       string
	TotalAmount       decimal.Decimal
	TaxAmount         decimal.Decimal
	ShippingCost      decimal.Decimal
	DiscountAmount    decimal.Decimal
	ShippingAddressID *string
	BillingAddressID  *string
	Notes             *string
	Items             []ItemInput
}

type CreateResult struct {
	Order            *Order            `json:"order"`
	Items            []Item            `json:"items"`
	LowStockWarnings []LowStockWarning `json:"low_stock_warnings"`
}

type StatusInput struct {
	OrderID        string
	Status         string
	TrackingNumber *string
	// Authorize runs once the order row is locked, so the check sees the
	// current owner and delivery assignment. Nil allows the change.
	Authorize func(o *Order, target Status) error
}

type StatusResult struct {
	Order         *Order `json:"order"`
	StockRestored bool   `json:"stock_restored"`
}

type DeleteResult struct {
	Deleted       bool `json:"deleted"`
	StockRestored bool `json:"stock_restored"`
}

type ListFilter struct {
	UserID             string
	DeliveryManID      string
	Status             Status
	OnlyUnassigned     bool
	DeliveryPriorities bool // assigned, in_transit, delivered first
	Limit              int
	Offset             int
}
