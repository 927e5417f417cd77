package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	"github.com/albaqer/gemstone-ecom/internal/order"
)

func registerRoutes(r gin.IRouter, svc *order.Service, tokens httpx.TokenParser) {
	managers := httpx.RequireRole(auth.RoleAdmin, auth.RoleManager)

	g := r.Group("/orders", httpx.Authenticate(tokens))
	g.POST("", createOrderHandler(svc))
	g.GET("/all", managers, listAllOrdersHandler(svc))
	g.GET("/my-orders", myOrdersHandler(svc))
	g.GET("/delivery/my-deliveries", httpx.RequireRole(auth.RoleDeliveryMan), myDeliveriesHandler(svc))
	g.GET("/manager/pending", managers, pendingAssignmentHandler(svc))
	g.GET("/manager/delivery-man/:id", managers, deliveryManOrdersHandler(svc))
	g.GET("/:id", getOrderHandler(svc))
	g.GET("/:id/items", getOrderItemsHandler(svc))
	g.GET("/:id/status", getOrderStatusHandler(svc))
	g.PUT("/:id/status", httpx.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleDeliveryMan), updateOrderStatusHandler(svc))
	g.DELETE("/:id", httpx.RequireRole(auth.RoleAdmin), deleteOrderHandler(svc))
	g.PUT("/:id/assign-delivery", managers, assignDeliveryHandler(svc))
	g.PUT("/:id/unassign-delivery", managers, unassignDeliveryHandler(svc))
}

// writeError maps service errors to status codes and bodies.
func writeError(c *gin.Context, route string, err error) {
	var (
		se *order.StockError
		ce *order.StockConflictError
		te *order.TransitionError
	)
	switch {
	case errors.As(err, &se):
		log.Warn().Str("rid", httpx.RequestIDFrom(c)).Str("route", route).Int("issues", len(se.Issues)).Msg("stock validation failed")
		c.AbortWithStatusJSON(http.StatusBadRequest, order.StockErrorResponse{
			Error:       "Cannot create order: insufficient stock for some items",
			StockIssues: se.Issues,
		})
	case errors.As(err, &ce):
		log.Warn().Str("rid", httpx.RequestIDFrom(c)).Str("route", route).Str("product_id", ce.ProductID).Msg("stock conflict")
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ce.Error(), "product_id": ce.ProductID})
	case errors.As(err, &te):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":            te.Error(),
			"current_status":   te.From,
			"attempted_status": te.To,
		})
	case errors.Is(err, order.ErrNotFound):
		httpx.RespondError(c, http.StatusNotFound, route, err)
	case errors.Is(err, order.ErrForbidden):
		httpx.RespondError(c, http.StatusForbidden, route, err)
	case errors.Is(err, order.ErrTerminalOrder), errors.Is(err, order.ErrDuplicateNumber):
		httpx.RespondError(c, http.StatusConflict, route, err)
	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrDuplicateItem),
		errors.Is(err, order.ErrNegativeAmount),
		errors.Is(err, order.ErrUnknownUser),
		errors.Is(err, order.ErrNotDeliveryMan):
		httpx.RespondError(c, http.StatusBadRequest, route, err)
	default:
		httpx.RespondError(c, http.StatusInternalServerError, route, err)
	}
}

func page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// createOrderHandler godoc
// @Summary      Create order
// @Description  Validates stock for every item, then inserts the order and takes the stock in one transaction.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      order.CreateOrderRequest  true  "order payload"
// @Success      201      {object}  order.CreateResult
// @Failure      400      {object}  order.StockErrorResponse
// @Failure      409      {object}  product.HTTPError
// @Router       /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := httpx.ActorFrom(c)
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		res, err := svc.Create(c.Request.Context(), req.Input(a.ID))
		if err != nil {
			writeError(c, "POST /orders", err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// listAllOrdersHandler godoc
// @Summary  List all orders
// @Tags     orders
// @Security BearerAuth
// @Produce  json
// @Param    limit   query  int  false  "page size"
// @Param    offset  query  int  false  "offset"
// @Success  200  {array}  order.Order
// @Router   /orders/all [get]
func listAllOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)
		out, err := svc.ListAll(c.Request.Context(), limit, offset)
		if err != nil {
			writeError(c, "GET /orders/all", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// myOrdersHandler godoc
// @Summary  List caller's orders
// @Tags     orders
// @Security BearerAuth
// @Produce  json
// @Success  200  {array}  order.Order
// @Router   /orders/my-orders [get]
func myOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := httpx.ActorFrom(c)
		limit, offset := page(c)
		out, err := svc.ListByUser(c.Request.Context(), a.ID, limit, offset)
		if err != nil {
			writeError(c, "GET /orders/my-orders", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// myDeliveriesHandler godoc
// @Summary  List orders assigned to the caller
// @Tags     delivery
// @Security BearerAuth
// @Produce  json
// @Success  200  {array}  order.Order
// @Router   /orders/delivery/my-deliveries [get]
func myDeliveriesHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := httpx.ActorFrom(c)
		limit, offset := page(c)
		out, err := svc.ListByDeliveryMan(c.Request.Context(), a.ID, limit, offset)
		if err != nil {
			writeError(c, "GET /orders/delivery/my-deliveries", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// pendingAssignmentHandler godoc
// @Summary  List confirmed orders awaiting a delivery man
// @Tags     delivery
// @Security BearerAuth
// @Produce  json
// @Success  200  {array}  order.Order
// @Router   /orders/manager/pending [get]
func pendingAssignmentHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)
		out, err := svc.ListAwaitingAssignment(c.Request.Context(), limit, offset)
		if err != nil {
			writeError(c, "GET /orders/manager/pending", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deliveryManOrdersHandler godoc
// @Summary  List orders of one delivery man
// @Tags     delivery
// @Security BearerAuth
// @Produce  json
// @Param    id  path  string  true  "delivery man id"
// @Success  200  {array}  order.Order
// @Failure  400  {object}  product.HTTPError
// @Router   /orders/manager/delivery-man/{id} [get]
func deliveryManOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)
		out, err := svc.DeliveryManOrders(c.Request.Context(), c.Param("id"), limit, offset)
		if err != nil {
			writeError(c, "GET /orders/manager/delivery-man/:id", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// visibleOrder loads an order and checks the caller may read it.
func visibleOrder(c *gin.Context, svc *order.Service) (*order.Order, error) {
	a, _ := httpx.ActorFrom(c)
	o, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !auth.CanViewOrder(a, o.UserID, o.DeliveryManID) {
		return nil, order.ErrForbidden
	}
	return o, nil
}

// getOrderHandler godoc
// @Summary  Get order
// @Tags     orders
// @Security BearerAuth
// @Produce  json
// @Param    id  path  string  true  "order id"
// @Success  200  {object}  order.Order
// @Failure  404  {object}  product.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := visibleOrder(c, svc)
		if err != nil {
			writeError(c, "GET /orders/:id", err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// getOrderItemsHandler godoc
// @Summary  Get order items
// @Tags     orders
// @Security BearerAuth
// @Produce  json
// @Param    id  path  string  true  "order id"
// @Success  200  {array}  order.Item
// @Router   /orders/{id}/items [get]
func getOrderItemsHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := visibleOrder(c, svc)
		if err != nil {
			writeError(c, "GET /orders/:id/items", err)
			return
		}
		items, err := svc.Items(c.Request.Context(), o.ID)
		if err != nil {
			writeError(c, "GET /orders/:id/items", err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// getOrderStatusHandler godoc
// @Summary  Get order status (cached)
// @Tags     orders
// @Security BearerAuth
// @Produce  json
// @Param    id  path  string  true  "order id"
// @Success  200  {object}  order.StatusView
// @Router   /orders/{id}/status [get]
func getOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := httpx.ActorFrom(c)
		v, err := svc.Status(c.Request.Context(), c.Param("id"))
		if err == nil && !auth.CanViewOrder(a, v.UserID, v.DeliveryManID) {
			err = order.ErrForbidden
		}
		if err != nil {
			writeError(c, "GET /orders/:id/status", err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// updateOrderStatusHandler godoc
// @Summary      Change order status
// @Description  Forward-only workflow; cancelling returns the stock. Delivery men may only set in_transit or delivered on their own orders.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "order id"
// @Param        payload  body      order.UpdateStatusRequest  true  "target status"
// @Success      200      {object}  order.StatusResult
// @Failure      400      {object}  product.HTTPError
// @Failure      404      {object}  product.HTTPError
// @Router       /orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := httpx.ActorFrom(c)
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		res, err := svc.UpdateStatus(c.Request.Context(), order.StatusInput{
			OrderID:        c.Param("id"),
			Status:         req.Status,
			TrackingNumber: req.TrackingNumber,
			Authorize: func(o *order.Order, target order.Status) error {
				if !auth.CanUpdateStatus(a, o.DeliveryManID, string(target)) {
					return order.ErrForbidden
				}
				return nil
			},
		})
		if err != nil {
			writeError(c, "PUT /orders/:id/status", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// deleteOrderHandler godoc
// @Summary  Delete order, restoring stock unless cancelled
// @Tags     orders
// @Security BearerAuth
// @Produce  json
// @Param    id  path  string  true  "order id"
// @Success  200  {object}  order.DeleteResult
// @Failure  404  {object}  product.HTTPError
// @Router   /orders/{id} [delete]
func deleteOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, "DELETE /orders/:id", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// assignDeliveryHandler godoc
// @Summary  Assign a delivery man
// @Tags     delivery
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id       path      string                       true  "order id"
// @Param    payload  body      order.AssignDeliveryRequest  true  "delivery man"
// @Success  200      {object}  order.Order
// @Failure  409      {object}  product.HTTPError
// @Router   /orders/{id}/assign-delivery [put]
func assignDeliveryHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.AssignDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.RespondValidation(c, err)
			return
		}
		o, err := svc.AssignDelivery(c.Request.Context(), c.Param("id"), req.DeliveryManID)
		if err != nil {
			writeError(c, "PUT /orders/:id/assign-delivery", err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// unassignDeliveryHandler godoc
// @Summary  Unassign the delivery man
// @Tags     delivery
// @Security BearerAuth
// @Produce  json
// @Param    id  path  string  true  "order id"
// @Success  200  {object}  order.Order
// @Router   /orders/{id}/unassign-delivery [put]
func unassignDeliveryHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.UnassignDelivery(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, "PUT /orders/:id/unassign-delivery", err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
