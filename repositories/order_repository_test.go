package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tabletap/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.MenuItem{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func seedOrder(t *testing.T, repo *OrderRepository, table int, userID uint, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		TableNumber: table,
		UserID:      userID,
		Status:      status,
		OrderItems: []models.OrderItem{
			{MenuItemID: 1, MenuItemName: "Nasi Goreng", PriceInCentsAtOrder: 30000, Quantity: 1},
		},
		TotalAmountInCents: 40000,
	}
	require.NoError(t, repo.Create(order))
	return order
}

func TestFindOpenByTable(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	open, err := repo.FindOpenByTable(5)
	require.NoError(t, err)
	assert.Nil(t, open, "an empty table has no open order")

	seedOrder(t, repo, 5, 1, models.OrderStatusPaid)
	seedOrder(t, repo, 5, 1, models.OrderStatusCancelled)

	open, err = repo.FindOpenByTable(5)
	require.NoError(t, err)
	assert.Nil(t, open, "closed orders do not block the table")

	created := seedOrder(t, repo, 5, 2, models.OrderStatusPreparing)

	open, err = repo.FindOpenByTable(5)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, created.ID, open.ID)
	assert.NotEmpty(t, open.OrderItems, "items are loaded with the order")
}

func TestFindByUserAndFindAllFilters(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	seedOrder(t, repo, 1, 10, models.OrderStatusCreated)
	seedOrder(t, repo, 2, 10, models.OrderStatusPaid)
	seedOrder(t, repo, 3, 20, models.OrderStatusCreated)

	mine, err := repo.FindByUser(10, "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	paid, err := repo.FindByUser(10, models.OrderStatusPaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, 2, paid[0].TableNumber)

	all, err := repo.FindAll("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	created, err := repo.FindAll(models.OrderStatusCreated, 0)
	require.NoError(t, err)
	assert.Len(t, created, 2)

	tableThree, err := repo.FindAll("", 3)
	require.NoError(t, err)
	require.Len(t, tableThree, 1)
	assert.Equal(t, uint(20), tableThree[0].UserID)

	none, err := repo.FindByUser(99, "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none, "no rows yields an empty slice, not nil")
}

func TestUpdatePersistsMergedItems(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	order := seedOrder(t, repo, 4, 1, models.OrderStatusCreated)

	order.OrderItems[0].Quantity = 3
	order.OrderItems = append(order.OrderItems, models.OrderItem{
		MenuItemID:          5,
		MenuItemName:        "Es Teh",
		PriceInCentsAtOrder: 5000,
		Quantity:            2,
	})
	order.TotalAmountInCents = 3*30000 + 2*5000 + 10000

	require.NoError(t, repo.Update(order))

	reloaded, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.OrderItems, 2)
	assert.Equal(t, int64(3), reloaded.OrderItems[0].Quantity)
	assert.Equal(t, "Es Teh", reloaded.OrderItems[1].MenuItemName)
	assert.Equal(t, int64(110000), reloaded.TotalAmountInCents)
}

func TestUpdateStatus(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	order := seedOrder(t, repo, 6, 1, models.OrderStatusCreated)

	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusPreparing))

	reloaded, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, reloaded.Status)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	err := repo.Transaction(func(tx *OrderRepository) error {
		seedOrder(t, tx, 8, 1, models.OrderStatusCreated)
		return assert.AnError
	})
	require.Error(t, err)

	all, err := repo.FindByTable(8)
	require.NoError(t, err)
	assert.Empty(t, all, "a failed transaction leaves nothing behind")
}

func TestSalesReport(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	first := seedOrder(t, repo, 1, 1, models.OrderStatusPaid)
	second := seedOrder(t, repo, 2, 1, models.OrderStatusPaid)
	seedOrder(t, repo, 3, 2, models.OrderStatusCreated)
	seedOrder(t, repo, 4, 2, models.OrderStatusCancelled)

	report, err := repo.SalesReport()
	require.NoError(t, err)

	assert.Equal(t, int64(4), report.TotalOrders)
	assert.Equal(t, int64(2), report.PaidOrders)
	assert.Equal(t, first.TotalAmountInCents+second.TotalAmountInCents, report.RevenueInCents)
	assert.Equal(t, int64(2), report.ByStatus[models.OrderStatusPaid])
	assert.Equal(t, int64(1), report.ByStatus[models.OrderStatusCreated])
	assert.Equal(t, int64(1), report.ByStatus[models.OrderStatusCancelled])
}
