package controllers

import (
	"context"
	"net/http"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/middlewares"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
)

// OrderServiceAPI defines the interface for order service operations
type OrderServiceAPI interface {
	List(ctx context.Context) ([]models.OrderSummary, error)
	Get(ctx context.Context, id string) (*models.OrderDetail, error)
	ListByUser(ctx context.Context, userID string) ([]models.OrderDetail, error)
	Create(ctx context.Context, req services.CreateOrderRequest) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	TotalSales(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderController struct {
	service OrderServiceAPI
}

func NewOrderController(s OrderServiceAPI) *OrderController {
	return &OrderController{service: s}
}

func (ctrl *OrderController) GetOrders(c *gin.Context) {
	orders, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

// GetOrder returns one order. Non-admin callers only see their own orders.
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctrl.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !canAccess(c, order.Order.User.Hex()) {
		fail(c, apperrors.Forbidden("Access denied"))
		return
	}
	respond(c, http.StatusOK, order)
}

// CreateOrder places an order. Non-admin callers may only order for
// themselves.
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	if !canAccess(c, req.User) {
		fail(c, apperrors.Forbidden("orders can only be placed for your own account"))
		return
	}

	order, err := ctrl.service.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	order, err := ctrl.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	if err := ctrl.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "the order is deleted!")
}

func (ctrl *OrderController) GetTotalSales(c *gin.Context) {
	total, err := ctrl.service.TotalSales(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"totalsales": total})
}

func (ctrl *OrderController) GetOrderCount(c *gin.Context) {
	count, err := ctrl.service.Count(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"orderCount": count})
}

// GetUserOrders lists a user's orders. Non-admin callers only see their own.
func (ctrl *OrderController) GetUserOrders(c *gin.Context) {
	userID := c.Param("userid")
	if !canAccess(c, userID) {
		fail(c, apperrors.Forbidden("Access denied"))
		return
	}

	orders, err := ctrl.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

// canAccess reports whether the caller may act on resources owned by ownerID.
func canAccess(c *gin.Context, ownerID string) bool {
	callerID, isAdmin := middlewares.Caller(c)
	return isAdmin || (callerID != "" && callerID == ownerID)
}
