package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tabletap/models"
	"tabletap/repositories"
	"tabletap/services"
)

// PlaceOrderRequest defines the request body (JSON) for a diner submitting
// their cart for a table.
type PlaceOrderRequest struct {
	TableNumber int                 `json:"table_number" binding:"required,gt=0"`
	Items       []services.CartItem `json:"items" binding:"required,min=1,dive"`
}

type QuoteRequest struct {
	Items []services.CartItem `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest defines the request body for staff moving an
// order through its lifecycle.
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

type OrderHandler struct {
	service *services.OrderService
	orders  *repositories.OrderRepository
}

func NewOrderHandler(service *services.OrderService, orders *repositories.OrderRepository) *OrderHandler {
	return &OrderHandler{service: service, orders: orders}
}

// PlaceOrder handles a diner submitting their cart. Depending on the
// table's state the cart becomes a new order or is merged into the open
// one, reflected in the response status and "outcome" field.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User authentication details not found"})
		return
	}

	order, outcome, err := h.service.PlaceOrder(c.Request.Context(), claims.UserID, req.TableNumber, req.Items)
	if err != nil {
		h.writeOrderError(c, err, "Failed to place order")
		return
	}

	status := http.StatusCreated
	if outcome == services.PlacementUpdated {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"outcome": outcome, "order": order})
}

// Quote prices the current cart without placing an order.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.service.Quote(req.Items)
	if err != nil {
		h.writeOrderError(c, err, "Failed to quote order")
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User authentication details not found"})
		return
	}

	status := models.OrderStatus(c.Query("status"))
	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	orders, err := h.orders.FindByUser(claims.UserID, status)
	if err != nil {
		log.Printf("Failed to get orders for user %d: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User authentication details not found"})
		return
	}

	order, ok := h.findOrder(c)
	if !ok {
		return
	}

	// A diner can only see their own orders; leak nothing about others.
	if order.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// TableAvailability reports whether a table can start a fresh order.
func (h *OrderHandler) TableAvailability(c *gin.Context) {
	tableNumber, err := strconv.Atoi(c.Param("table_number"))
	if err != nil || tableNumber <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table number"})
		return
	}

	available, err := h.service.TableAvailable(tableNumber)
	if err != nil {
		log.Printf("Failed to check availability for table %d: %v", tableNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check table availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"table_number": tableNumber, "available": available})
}

// ListOrders is the admin dashboard read with optional status and table
// filters.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	tableNumber := 0
	if tableStr := c.Query("table"); tableStr != "" {
		n, err := strconv.Atoi(tableStr)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table number"})
			return
		}
		tableNumber = n
	}

	orders, err := h.orders.FindAll(status, tableNumber)
	if err != nil {
		log.Printf("Failed to get orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.findOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), uint(id), req.Status)
	if err != nil {
		h.writeOrderError(c, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, order)
}

// SalesReport serves the admin reports screen.
func (h *OrderHandler) SalesReport(c *gin.Context) {
	report, err := h.orders.SalesReport()
	if err != nil {
		log.Printf("Failed to build sales report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *OrderHandler) findOrder(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return nil, false
	}

	order, err := h.orders.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return nil, false
		}
		log.Printf("Failed to get order %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return nil, false
	}
	return order, true
}

func (h *OrderHandler) writeOrderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidTable),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMenuItemNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID, or item is unavailable"})
	case errors.Is(err, services.ErrOrderNotModifiable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	default:
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
