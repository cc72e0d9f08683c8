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
)

type CreateMenuItemRequest struct {
	Name         string `json:"name" binding:"required"`
	PriceInCents int64  `json:"price_in_cents" binding:"required,gt=0"`
	ImageURL     string `json:"image_url"`
	Available    *bool  `json:"available"`
}

type UpdateMenuItemRequest struct {
	Name         *string `json:"name"`
	PriceInCents *int64  `json:"price_in_cents" binding:"omitempty,gt=0"`
	ImageURL     *string `json:"image_url"`
	Available    *bool   `json:"available"`
}

type MenuHandler struct {
	menu *repositories.MenuRepository
}

func NewMenuHandler(menu *repositories.MenuRepository) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// ListMenu is the diner-facing menu: only items currently available.
func (h *MenuHandler) ListMenu(c *gin.Context) {
	items, err := h.menu.FindAll(true)
	if err != nil {
		log.Printf("Failed to get menu items: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAllMenu is the admin view, including items switched off.
func (h *MenuHandler) ListAllMenu(c *gin.Context) {
	items, err := h.menu.FindAll(false)
	if err != nil {
		log.Printf("Failed to get menu items: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	item, ok := h.findMenuItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var request CreateMenuItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	available := true
	if request.Available != nil {
		available = *request.Available
	}

	menuItem := &models.MenuItem{
		Name:         request.Name,
		PriceInCents: request.PriceInCents,
		ImageURL:     request.ImageURL,
		Available:    available,
	}

	if err := h.menu.Create(menuItem); err != nil {
		log.Printf("Failed to create menu item: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, menuItem)
}

func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	item, ok := h.findMenuItem(c)
	if !ok {
		return
	}

	var request UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build map for updates to handle partial updates correctly with pointers
	updates := make(map[string]interface{})
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.PriceInCents != nil {
		updates["price_in_cents"] = *request.PriceInCents
	}
	if request.ImageURL != nil {
		updates["image_url"] = *request.ImageURL
	}
	if request.Available != nil {
		updates["available"] = *request.Available
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	if err := h.menu.UpdateFields(item, updates); err != nil {
		log.Printf("Failed to update menu item %d: %v", item.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	item, ok := h.findMenuItem(c)
	if !ok {
		return
	}

	if err := h.menu.Delete(item); err != nil {
		log.Printf("Failed to delete menu item %d: %v", item.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted menu item"})
}

func (h *MenuHandler) findMenuItem(c *gin.Context) (*models.MenuItem, bool) {
	id, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item id"})
		return nil, false
	}

	item, err := h.menu.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return nil, false
		}
		log.Printf("Failed to get menu item %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu item"})
		return nil, false
	}
	return item, true
}
