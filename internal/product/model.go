package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeRing     Type = "ring"
	TypeNecklace Type = "necklace"
	TypeBracelet Type = "bracelet"
	TypeEarring  Type = "earring"
	TypePendant  Type = "pendant"
	TypeOther    Type = "other"
)

var ErrInvalidType = errors.New("invalid product type")

// ParseType maps an empty value to TypeOther.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case "":
		return TypeOther, nil
	case TypeRing, TypeNecklace, TypeBracelet, TypeEarring, TypePendant, TypeOther:
		return t, nil
	}
	return "", ErrInvalidType
}

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            Type            `json:"type"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price" swaggertype:"string"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ImageURL        *string         `json:"image_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q      string    `json:"q,omitempty"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name            string           `json:"name" binding:"required" example:"Sapphire Halo Ring"`
	Type            string           `json:"type" binding:"omitempty,oneof=ring necklace bracelet earring pendant other" example:"ring"`
	Description     string           `json:"description" example:"1.2ct blue sapphire, 18k white gold"`
	Price           *decimal.Decimal `json:"price" binding:"required" swaggertype:"string" example:"1899.00"`
	QuantityInStock int              `json:"quantity_in_stock" binding:"gte=0" example:"4"`
	ImageURL        *string          `json:"image_url,omitempty"`
}

// Product builds a catalog row from the request.
func (r CreateProductRequest) Product(id string) (*Product, error) {
	t, err := ParseType(r.Type)
	if err != nil {
		return nil, err
	}
	if r.Price == nil || r.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if r.QuantityInStock < 0 {
		return nil, ErrNegativeStock
	}
	return &Product{
		ID:              id,
		Name:            r.Name,
		Type:            t,
		Description:     r.Description,
		Price:           *r.Price,
		QuantityInStock: r.QuantityInStock,
		ImageURL:        r.ImageURL,
	}, nil
}

// UpdateProductRequest payload of partial update. Omitted fields are kept.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name            *string          `json:"name,omitempty"`
	Type            *string          `json:"type,omitempty" binding:"omitempty,oneof=ring necklace bracelet earring pendant other"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	QuantityInStock *int             `json:"quantity_in_stock,omitempty" binding:"omitempty,gte=0"`
	ImageURL        *string          `json:"image_url,omitempty"`
}

// Apply copies the supplied fields onto p.
func (u UpdateProductRequest) Apply(p *Product) error {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Type != nil {
		t, err := ParseType(*u.Type)
		if err != nil {
			return err
		}
		p.Type = t
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		if u.Price.IsNegative() {
			return ErrNegativePrice
		}
		p.Price = *u.Price
	}
	if u.QuantityInStock != nil {
		if *u.QuantityInStock < 0 {
			return ErrNegativeStock
		}
		p.QuantityInStock = *u.QuantityInStock
	}
	if u.ImageURL != nil {
		p.ImageURL = u.ImageURL
	}
	return nil
}
