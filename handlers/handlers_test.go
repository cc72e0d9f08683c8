package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tabletap/events"
	"tabletap/models"
	"tabletap/repositories"
	"tabletap/services"
	"tabletap/utils"
)

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	menu   *repositories.MenuRepository
	orders *repositories.OrderRepository
	hub    *events.Hub
}

// newTestApp wires the same routes main does, against an in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.MenuItem{}, &models.Order{}, &models.OrderItem{}))

	userRepo := repositories.NewUserRepository(db)
	menuRepo := repositories.NewMenuRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	hub := events.NewHub()
	t.Cleanup(hub.Close)

	authService := services.NewAuthService(userRepo)
	orderService := services.NewOrderService(orderRepo, menuRepo, events.Fanout{hub})

	authHandler := NewAuthHandler(authService)
	menuHandler := NewMenuHandler(menuRepo)
	orderHandler := NewOrderHandler(orderService, orderRepo)

	router := gin.New()
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/menu", menuHandler.ListMenu)

	diner := router.Group("/diner", AuthMiddleware())
	diner.POST("/orders", orderHandler.PlaceOrder)
	diner.POST("/orders/quote", orderHandler.Quote)
	diner.GET("/orders", orderHandler.GetMyOrders)
	diner.GET("/orders/:order_id", orderHandler.GetMyOrder)
	diner.GET("/tables/:table_number/availability", orderHandler.TableAvailability)

	admin := router.Group("/admin", AuthMiddleware(), RequireRole(models.UserRoleAdmin))
	admin.POST("/menu", menuHandler.CreateMenuItem)
	admin.GET("/menu", menuHandler.ListAllMenu)
	admin.PUT("/menu/:item_id", menuHandler.UpdateMenuItem)
	admin.DELETE("/menu/:item_id", menuHandler.DeleteMenuItem)
	admin.GET("/orders", orderHandler.ListOrders)
	admin.PUT("/orders/:order_id/status", orderHandler.UpdateOrderStatus)
	admin.GET("/reports/sales", orderHandler.SalesReport)

	return &testApp{router: router, db: db, menu: menuRepo, orders: orderRepo, hub: hub}
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) seedMenuItem(t *testing.T, name string, price int64) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{Name: name, PriceInCents: price, Available: true}
	require.NoError(t, a.menu.Create(item))
	return item
}

func dinerToken(t *testing.T, userID uint) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, models.UserRoleUser)
	require.NoError(t, err)
	return token
}

func adminToken(t *testing.T, userID uint) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, models.UserRoleAdmin)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}
