package handlers

import (
	"io"
	"log"

	"github.com/gin-gonic/gin"

	"tabletap/events"
	"tabletap/repositories"
)

type StreamHandler struct {
	hub    *events.Hub
	orders *repositories.OrderRepository
}

func NewStreamHandler(hub *events.Hub, orders *repositories.OrderRepository) *StreamHandler {
	return &StreamHandler{hub: hub, orders: orders}
}

// LiveOrders streams the admin dashboard over SSE. The full current order
// list is sent once on connect and again after every order mutation, so the
// dashboard never has to reconcile deltas. The subscription is cancelled
// when the client disconnects.
func (h *StreamHandler) LiveOrders(c *gin.Context) {
	sub := h.hub.Subscribe(8)
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if !h.sendSnapshot(c) {
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return false
			}
			return h.sendSnapshot(c)
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *StreamHandler) sendSnapshot(c *gin.Context) bool {
	orders, err := h.orders.FindAll("", 0)
	if err != nil {
		log.Printf("Failed to load orders for live stream: %v", err)
		c.SSEvent("error", gin.H{"error": "Failed to load orders"})
		c.Writer.Flush()
		return false
	}
	c.SSEvent("orders", orders)
	c.Writer.Flush()
	return true
}
