package user

import (
	"time"

	"github.com/albaqer/gemstone-ecom/internal/auth"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest creates a customer account.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string  `json:"password" binding:"required,min=8" example:"s3cretpass"`
	FullName string  `json:"full_name" binding:"required" example:"Jane Doe"`
	Phone    *string `json:"phone,omitempty" example:"+1 555 0100"`
}

// LoginRequest exchanges credentials for a token.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token.
// swagger:model LoginResponse
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ChangeRoleRequest sets a user's role.
// swagger:model ChangeRoleRequest
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin manager delivery_man" example:"delivery_man"`
}
