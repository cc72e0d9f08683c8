package repositories

import (
	"errors"

	"gorm.io/gorm"

	"tabletap/models"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Transaction runs fn against a transaction-scoped repository. Placement
// uses this so the open-order check and the following write commit or roll
// back together.
func (r *OrderRepository) Transaction(fn func(tx *OrderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{db: tx})
	})
}

func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *OrderRepository) FindByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("OrderItems").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOpenByTable returns the open order (CREATED or PREPARING) for a
// table, or nil when the table is available. Closed orders never match, so
// a table with only PAID or CANCELLED history reads as free.
func (r *OrderRepository) FindOpenByTable(tableNumber int) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("OrderItems").
		Where("table_number = ? AND status IN ?", tableNumber,
			[]models.OrderStatus{models.OrderStatusCreated, models.OrderStatusPreparing}).
		Order("created_at ASC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindByTable(tableNumber int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("OrderItems").
		Where("table_number = ?", tableNumber).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (r *OrderRepository) FindByUser(userID uint, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.Preload("OrderItems").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// FindAll is the dashboard read: every order, newest first, with optional
// status and table filters.
func (r *OrderRepository) FindAll(status models.OrderStatus, tableNumber int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.Preload("OrderItems")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if tableNumber > 0 {
		query = query.Where("table_number = ?", tableNumber)
	}
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Update persists a merged order: the order row's total, plus every line
// item. Save inserts items without an ID and updates the rest, which is
// exactly what a merge produces.
func (r *OrderRepository) Update(order *models.Order) error {
	err := r.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("total_amount_in_cents", order.TotalAmountInCents).Error
	if err != nil {
		return err
	}
	for i := range order.OrderItems {
		order.OrderItems[i].OrderID = order.ID
		if err := r.db.Save(&order.OrderItems[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

// SalesReport aggregates the numbers the admin report screen shows.
type SalesReport struct {
	TotalOrders    int64                        `json:"total_orders"`
	PaidOrders     int64                        `json:"paid_orders"`
	RevenueInCents int64                        `json:"revenue_in_cents"`
	ByStatus       map[models.OrderStatus]int64 `json:"by_status"`
}

func (r *OrderRepository) SalesReport() (*SalesReport, error) {
	report := &SalesReport{ByStatus: make(map[models.OrderStatus]int64)}

	if err := r.db.Model(&models.Order{}).Count(&report.TotalOrders).Error; err != nil {
		return nil, err
	}

	// Revenue counts only money actually collected.
	type revenueRow struct {
		Count int64
		Total int64
	}
	var rev revenueRow
	err := r.db.Model(&models.Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount_in_cents), 0) AS total").
		Where("status = ?", models.OrderStatusPaid).
		Scan(&rev).Error
	if err != nil {
		return nil, err
	}
	report.PaidOrders = rev.Count
	report.RevenueInCents = rev.Total

	type statusRow struct {
		Status models.OrderStatus
		Count  int64
	}
	var rows []statusRow
	err = r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		report.ByStatus[row.Status] = row.Count
	}

	return report, nil
}
