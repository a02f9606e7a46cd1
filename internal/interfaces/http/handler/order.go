package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/portal/backend/internal/application/order"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/interfaces/http/dto"
)

// OrderHandler exposes the order lifecycle over HTTP
type OrderHandler struct {
	BaseHandler
	lifecycle *apporder.LifecycleService
}

// NewOrderHandler creates the order handler
func NewOrderHandler(lifecycle *apporder.LifecycleService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		lifecycle:   lifecycle,
	}
}

// RegisterRoutes mounts the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/related", h.GetRelatedOrders)
		orders.POST("/:id/capture", h.CapturePayment)
		orders.POST("/:id/split", h.SplitOrder)
	}
}

// ListOrders returns the user's orders, newest first
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		h.BadRequest(c, shared.NewDomainError("INVALID_INPUT", "invalid user id"))
		return
	}

	page := pagination(c)
	results, total, err := h.lifecycle.ListOrders(c.Request.Context(), userID, page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, dto.ListResponse{Items: results, Total: total, Page: page.Page, Size: page.Limit()})
}

// GetOrder returns one order
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.lifecycle.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// GetRelatedOrders returns the order's whole family
func (h *OrderHandler) GetRelatedOrders(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.lifecycle.GetRelatedOrders(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// CapturePayment settles the authorized payment on shipment
func (h *OrderHandler) CapturePayment(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.lifecycle.CapturePayment(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// SplitOrder carves the backordered quantities into a new order
func (h *OrderHandler) SplitOrder(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	var input apporder.SplitOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.lifecycle.SplitOrder(c.Request.Context(), id, input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

func (h *OrderHandler) orderID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "invalid order id")
	}
	return id, nil
}
