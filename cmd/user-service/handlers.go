package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	"github.com/albaqer/gemstone-ecom/internal/user"
)

// accounts is the slice of user.Service the HTTP layer needs.
type accounts interface {
	Register(ctx context.Context, in user.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, in user.LoginRequest) (*user.LoginResponse, error)
	DeliveryMen(ctx context.Context) ([]user.User, error)
	ChangeRole(ctx context.Context, id, role string) (*user.User, error)
}

func registerRoutes(r gin.IRouter, svc accounts, tokens httpx.TokenParser) {
	r.POST("/users/register", registerHandler(svc))
	r.POST("/users/login", loginHandler(svc))

	g := r.Group("/users", httpx.Authenticate(tokens))
	g.GET("/delivery-men", httpx.RequireRole(auth.RoleManager, auth.RoleAdmin), deliveryMenHandler(svc))
	g.PUT("/:id/role", httpx.RequireRole(auth.RoleAdmin), changeRoleHandler(svc))
}

func registerHandler(svc accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		u, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				httpx.RespondError(c, http.StatusConflict, "POST /users/register", err)
				return
			}
			httpx.RespondError(c, http.StatusInternalServerError, "POST /users/register", err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func loginHandler(svc accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		res, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				httpx.RespondError(c, http.StatusUnauthorized, "POST /users/login", err)
				return
			}
			httpx.RespondError(c, http.StatusInternalServerError, "POST /users/login", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func deliveryMenHandler(svc accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.DeliveryMen(c.Request.Context())
		if err != nil {
			httpx.RespondError(c, http.StatusInternalServerError, "GET /users/delivery-men", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func changeRoleHandler(svc accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.ChangeRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		u, err := svc.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
		switch {
		case errors.Is(err, user.ErrNotFound):
			httpx.RespondError(c, http.StatusNotFound, "PUT /users/:id/role", err)
		case errors.Is(err, auth.ErrUnknownRole):
			httpx.RespondError(c, http.StatusBadRequest, "PUT /users/:id/role", err)
		case err != nil:
			httpx.RespondError(c, http.StatusInternalServerError, "PUT /users/:id/role", err)
		default:
			c.JSON(http.StatusOK, u)
		}
	}
}
