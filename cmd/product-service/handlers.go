package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	prod "github.com/albaqer/gemstone-ecom/internal/product"
)

func registerRoutes(r gin.IRouter, repo prod.Repository, tokens httpx.TokenParser, reportThreshold int) {
	r.GET("/products", listOnlyHandler(repo))
	r.GET("/products/search", searchHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))

	admin := r.Group("/products", httpx.Authenticate(tokens), httpx.RequireRole(auth.RoleAdmin))
	admin.POST("", createProductHandler(repo))
	admin.PUT("/:id", updateProductHandler(repo))
	admin.DELETE("/:id", deleteProductHandler(repo))
	admin.GET("/inventory/low-stock", lowStockHandler(repo, reportThreshold))
}

func pageQuery(c *gin.Context) prod.Query {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return prod.Query{Limit: limit, Offset: offset}.Normalize()
}

func badRequest(c *gin.Context, err error) bool {
	if errors.Is(err, prod.ErrInvalidType) || errors.Is(err, prod.ErrNegativePrice) || errors.Is(err, prod.ErrNegativeStock) {
		c.JSON(http.StatusBadRequest, prod.HTTPError{Error: err.Error()})
		return true
	}
	return false
}

// GET /products (pagination only)
func listOnlyHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := pageQuery(c)
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.RespondError(c, http.StatusInternalServerError, "GET /products", err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

// GET /products/search?q= (at least 2 characters)
func searchHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.TrimSpace(c.Query("q"))
		if len([]rune(term)) < 2 {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "q must have at least 2 characters"})
			return
		}
		q := pageQuery(c)
		q.Q = term
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.RespondError(c, http.StatusInternalServerError, "GET /products/search", err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Q: term, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, prod.ErrNotFound) {
				c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
				return
			}
			httpx.RespondError(c, http.StatusInternalServerError, "GET /products/:id", err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		p, err := req.Product(uuid.NewString())
		if err != nil {
			if !badRequest(c, err) {
				httpx.RespondError(c, http.StatusInternalServerError, "POST /products", err)
			}
			return
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.RespondError(c, http.StatusInternalServerError, "POST /products", err)
			return
		}
		log.Info().Str("product_id", p.ID).Int("quantity_in_stock", p.QuantityInStock).Msg("product created")
		c.JSON(http.StatusCreated, p)
	}
}

// PUT /products/:id applies only the fields present in the body.
func updateProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		ctx := c.Request.Context()
		p, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, prod.ErrNotFound) {
				c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
				return
			}
			httpx.RespondError(c, http.StatusInternalServerError, "PUT /products/:id", err)
			return
		}
		if err := req.Apply(p); err != nil {
			if !badRequest(c, err) {
				httpx.RespondError(c, http.StatusInternalServerError, "PUT /products/:id", err)
			}
			return
		}
		if err := repo.Update(ctx, p); err != nil {
			if errors.Is(err, prod.ErrNotFound) {
				c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
				return
			}
			httpx.RespondError(c, http.StatusInternalServerError, "PUT /products/:id", err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deleteProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.RespondError(c, http.StatusInternalServerError, "DELETE /products/:id", err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /products/inventory/low-stock?threshold=
func lowStockHandler(repo prod.Repository, def int) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := def
		if raw := c.Query("threshold"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "threshold must be a positive integer"})
				return
			}
			threshold = n
		}
		rep, err := prod.Report(c.Request.Context(), repo, threshold)
		if err != nil {
			httpx.RespondError(c, http.StatusInternalServerError, "GET /products/inventory/low-stock", err)
			return
		}
		log.Info().Int("threshold", rep.Summary.Threshold).Int("total", rep.Summary.TotalLowStockProducts).
			Int("out_of_stock", rep.Summary.OutOfStockCount).Msg("low stock report")
		c.JSON(http.StatusOK, rep)
	}
}
