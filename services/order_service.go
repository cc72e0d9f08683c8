package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tabletap/events"
	"tabletap/models"
	"tabletap/repositories"
)

// ServiceFeeInCents is the fixed surcharge added to every order total,
// independent of item count.
const ServiceFeeInCents int64 = 10000

var (
	ErrEmptyCart          = errors.New("order must contain at least one item")
	ErrInvalidTable       = errors.New("table number must be greater than zero")
	ErrInvalidQuantity    = errors.New("item quantity must be greater than zero")
	ErrMenuItemNotFound   = errors.New("menu item not found or unavailable")
	ErrOrderNotModifiable = errors.New("order is closed and cannot be modified")
	ErrInvalidStatus      = errors.New("invalid order status")
)

// CartItem is one pending line of a diner's cart. Price and name are not
// trusted from the client; they are resolved from the menu at placement.
type CartItem struct {
	MenuItemID uint  `json:"menu_item_id" binding:"required"`
	Quantity   int64 `json:"quantity" binding:"required,gt=0"`
}

// PlacementOutcome tags what PlaceOrder did: created a fresh order for the
// table, or merged the cart into the table's open order.
type PlacementOutcome string

const (
	PlacementCreated PlacementOutcome = "created"
	PlacementUpdated PlacementOutcome = "updated"
)

type OrderService struct {
	orders    *repositories.OrderRepository
	menu      *repositories.MenuRepository
	publisher events.Publisher
}

func NewOrderService(orders *repositories.OrderRepository, menu *repositories.MenuRepository, publisher events.Publisher) *OrderService {
	return &OrderService{orders: orders, menu: menu, publisher: publisher}
}

// PlaceOrder enforces the one-open-order-per-table rule. With no open order
// on the table it creates one; with an open order it merges the cart into
// it, summing quantities per menu item. The availability check and the
// write run in one transaction so two simultaneous placements cannot both
// create an order for the same table.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, tableNumber int, cart []CartItem) (*models.Order, PlacementOutcome, error) {
	if len(cart) == 0 {
		return nil, "", ErrEmptyCart
	}
	if tableNumber <= 0 {
		return nil, "", ErrInvalidTable
	}

	newItems, err := s.resolveCart(cart)
	if err != nil {
		return nil, "", err
	}

	var (
		placed  *models.Order
		outcome PlacementOutcome
	)
	err = s.orders.Transaction(func(tx *repositories.OrderRepository) error {
		existing, err := tx.FindOpenByTable(tableNumber)
		if err != nil {
			return fmt.Errorf("failed to check table availability: %w", err)
		}

		if existing == nil {
			order := &models.Order{
				TableNumber:        tableNumber,
				UserID:             userID,
				OrderItems:         newItems,
				TotalAmountInCents: OrderTotalInCents(newItems),
				Status:             models.OrderStatusCreated,
			}
			if err := tx.Create(order); err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}
			placed, outcome = order, PlacementCreated
			return nil
		}

		// The open-order query excludes closed statuses, so this guard
		// should never fire; it keeps a stale row from being mutated if
		// the query ever changes.
		if existing.Status.Closed() {
			return ErrOrderNotModifiable
		}

		existing.OrderItems = MergeOrderItems(existing.OrderItems, newItems)
		existing.TotalAmountInCents = OrderTotalInCents(existing.OrderItems)
		if err := tx.Update(existing); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		placed, outcome = existing, PlacementUpdated
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	eventType := events.OrderCreated
	if outcome == PlacementUpdated {
		eventType = events.OrderUpdated
	}
	s.publish(ctx, events.OrderEvent{
		Type:        eventType,
		OrderID:     placed.ID,
		TableNumber: placed.TableNumber,
		Status:      placed.Status,
	})

	return placed, outcome, nil
}

// TableAvailable reports whether a table has no open order.
func (s *OrderService) TableAvailable(tableNumber int) (bool, error) {
	if tableNumber <= 0 {
		return false, ErrInvalidTable
	}
	open, err := s.orders.FindOpenByTable(tableNumber)
	if err != nil {
		return false, err
	}
	return open == nil, nil
}

// UpdateStatus transitions an order to a new status. Closed orders are
// immutable, so PAID and CANCELLED are terminal.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Closed() {
		return nil, ErrOrderNotModifiable
	}

	if err := s.orders.UpdateStatus(order.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status

	s.publish(ctx, events.OrderEvent{
		Type:        events.OrderStatusChanged,
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Status:      order.Status,
	})

	return order, nil
}

// QuoteLine is one priced row of a cart preview.
type QuoteLine struct {
	MenuItemID      uint   `json:"menu_item_id"`
	MenuItemName    string `json:"menu_item_name"`
	PriceInCents    int64  `json:"price_in_cents"`
	Quantity        int64  `json:"quantity"`
	SubtotalInCents int64  `json:"subtotal_in_cents"`
}

// OrderQuote is what the cart screen shows before submission. Nothing is
// persisted.
type OrderQuote struct {
	Items             []QuoteLine `json:"items"`
	SubtotalInCents   int64       `json:"subtotal_in_cents"`
	ServiceFeeInCents int64       `json:"service_fee_in_cents"`
	TotalInCents      int64       `json:"total_in_cents"`
}

// Quote prices a cart against the current menu without placing anything.
func (s *OrderService) Quote(cart []CartItem) (*OrderQuote, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	items, err := s.resolveCart(cart)
	if err != nil {
		return nil, err
	}

	quote := &OrderQuote{ServiceFeeInCents: ServiceFeeInCents}
	for _, item := range items {
		quote.Items = append(quote.Items, QuoteLine{
			MenuItemID:      item.MenuItemID,
			MenuItemName:    item.MenuItemName,
			PriceInCents:    item.PriceInCentsAtOrder,
			Quantity:        item.Quantity,
			SubtotalInCents: item.SubtotalInCents(),
		})
		quote.SubtotalInCents += item.SubtotalInCents()
	}
	quote.TotalInCents = quote.SubtotalInCents + quote.ServiceFeeInCents
	return quote, nil
}

// resolveCart turns cart lines into order items, copying name and unit
// price from the menu. Unknown or unavailable menu items reject the whole
// cart; duplicate cart lines for one menu item collapse into one.
func (s *OrderService) resolveCart(cart []CartItem) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(cart))
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, line.MenuItemID)
	}

	menuItems, err := s.menu.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	byID := make(map[uint]models.MenuItem, len(menuItems))
	for _, item := range menuItems {
		byID[item.ID] = item
	}

	var resolved []models.OrderItem
	for _, line := range cart {
		menuItem, ok := byID[line.MenuItemID]
		if !ok || !menuItem.Available {
			return nil, ErrMenuItemNotFound
		}
		resolved = MergeOrderItems(resolved, []models.OrderItem{{
			MenuItemID:          menuItem.ID,
			MenuItemName:        menuItem.Name,
			PriceInCentsAtOrder: menuItem.PriceInCents,
			Quantity:            line.Quantity,
		}})
	}
	return resolved, nil
}

// MergeOrderItems folds incoming lines into existing ones. Lines are keyed
// by menu item id: a colliding key sums quantities and keeps the existing
// unit price, a new key appends. The inputs are not mutated; merging an
// empty incoming list returns the existing lines unchanged.
func MergeOrderItems(existing, incoming []models.OrderItem) []models.OrderItem {
	merged := make([]models.OrderItem, len(existing))
	copy(merged, existing)

	index := make(map[uint]int, len(merged))
	for i, item := range merged {
		index[item.MenuItemID] = i
	}

	for _, item := range incoming {
		if i, ok := index[item.MenuItemID]; ok {
			merged[i].Quantity += item.Quantity
		} else {
			index[item.MenuItemID] = len(merged)
			merged = append(merged, item)
		}
	}
	return merged
}

// OrderTotalInCents sums line subtotals and adds the service fee once.
func OrderTotalInCents(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.SubtotalInCents()
	}
	return total + ServiceFeeInCents
}

func (s *OrderService) publish(ctx context.Context, event events.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("Failed to publish order event %s for order %d: %v", event.Type, event.OrderID, err)
	}
}
