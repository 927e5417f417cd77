package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNoItems         = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be greater than zero")
	ErrDuplicateItem   = errors.New("each product may appear only once per order")
	ErrNegativeAmount  = errors.New("monetary amounts must not be negative")
	ErrUnknownUser     = errors.New("user not found")
	ErrNotDeliveryMan  = errors.New("user is not a delivery man")
	ErrTerminalOrder   = errors.New("order is delivered or cancelled")
	ErrForbidden       = errors.New("forbidden")
	ErrDuplicateNumber = errors.New("order number already exists")
)

const (
	IssueProductNotFound   = "Product not found"
	IssueInsufficientStock = "Insufficient stock"
)

type StockIssue struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Issue       string `json:"issue"`
}

type LowStockWarning struct {
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	RemainingAfterOrder int    `json:"remaining_after_order"`
}

// StockError carries every problem found while validating an order's items.
type StockError struct {
	Issues []StockIssue
}

func (e *StockError) Error() string {
	ids := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		ids = append(ids, is.ProductID)
	}
	return fmt.Sprintf("stock validation failed for %s", strings.Join(ids, ", "))
}

// StockConflictError means the conditioned decrement matched no row: another
// order consumed the stock between validation and commit.
type StockConflictError struct {
	ProductID string
	Requested int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock for product %s changed while placing the order (requested %d)", e.ProductID, e.Requested)
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}
