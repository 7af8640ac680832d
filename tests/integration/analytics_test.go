package integration

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/models"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

func TestDashboardStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	farmer := createTestUser(t, db, models.RoleFarmer, "Farmer Stat", "stat-farmer@example.com")
	customer := createTestUser(t, db, models.RoleCustomer, "Customer Stat", "stat-customer@example.com")
	createTestUser(t, db, models.RoleAdmin, "Admin Stat", "stat-admin@example.com")

	product := createTestProduct(t, db, farmer, "Spinach", "Vegetables", 30, 40)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		CustomerID: customer.ID,
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 2, Price: decimal.NewFromInt(30), Unit: "kg"},
		},
		Address:     "5 Market Lane",
		PhoneNumber: "9876543210",
		PaymentMode: models.PaymentModeCOD,
		DeliveryFee: decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	stats, err := store.GetDashboardStats(ctx, db)
	if err != nil {
		t.Fatalf("Dashboard stats: %v", err)
	}

	if stats.TotalFarmers != 1 {
		t.Errorf("Expected 1 farmer, got %d", stats.TotalFarmers)
	}
	if stats.TotalCustomers != 1 {
		t.Errorf("Expected 1 customer, got %d", stats.TotalCustomers)
	}
	if stats.TotalAdmins != 1 {
		t.Errorf("Expected 1 admin, got %d", stats.TotalAdmins)
	}
	if stats.ActiveProducts != 1 {
		t.Errorf("Expected 1 product, got %d", stats.ActiveProducts)
	}
	if stats.TotalOrders != 1 {
		t.Errorf("Expected 1 order, got %d", stats.TotalOrders)
	}
	if stats.WeeklyOrders != 1 {
		t.Errorf("Expected 1 weekly order, got %d", stats.WeeklyOrders)
	}
	if stats.PendingModeration != 1 {
		t.Errorf("Expected 1 pending order, got %d", stats.PendingModeration)
	}
	// Revenue only counts delivered orders; nothing is delivered yet.
	if !stats.TotalRevenue.IsZero() {
		t.Errorf("Expected zero revenue before delivery, got %s", stats.TotalRevenue)
	}

	if _, err := store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusDelivered); err != nil {
		t.Fatalf("Deliver order: %v", err)
	}

	stats, err = store.GetDashboardStats(ctx, db)
	if err != nil {
		t.Fatalf("Dashboard stats: %v", err)
	}
	if !stats.TotalRevenue.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Expected revenue 80 after delivery, got %s", stats.TotalRevenue)
	}
	if stats.PendingModeration != 0 {
		t.Errorf("Expected no pending orders, got %d", stats.PendingModeration)
	}
}

func TestPhoneOrderStatsToday(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	farmer := createTestUser(t, db, models.RoleFarmer, "Farmer Tele", "tele@example.com")

	for _, total := range []int64{100, 60} {
		amount := decimal.NewFromInt(total)
		_, err := store.CreatePhoneOrder(ctx, db, store.CreatePhoneOrderRequest{
			CustomerName:    "Walk-in Caller",
			CustomerPhone:   "9000000001",
			CustomerAddress: "7 Call Street",
			FarmerID:        farmer.ID,
			FarmerPhone:     farmer.Phone,
			Items: []store.OrderItemRequest{
				{Quantity: 1, Price: amount, Unit: "kg"},
			},
			TotalAmount: &amount,
		})
		if err != nil {
			t.Fatalf("Create phone order: %v", err)
		}
	}

	stats, err := store.GetPhoneOrderStats(ctx, db)
	if err != nil {
		t.Fatalf("Phone order stats: %v", err)
	}

	if stats.OrdersCreated != 2 {
		t.Errorf("Expected 2 phone orders today, got %d", stats.OrdersCreated)
	}
	if !stats.TotalValue.Equal(decimal.NewFromInt(160)) {
		t.Errorf("Expected total value 160, got %s", stats.TotalValue)
	}
	if !stats.AvgOrderSize.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Expected average 80, got %s", stats.AvgOrderSize)
	}
}

func TestWeeklyOrdersCountsToday(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	farmer := createTestUser(t, db, models.RoleFarmer, "Farmer Week", "week@example.com")
	customer := createTestUser(t, db, models.RoleCustomer, "Customer Week", "week-c@example.com")
	product := createTestProduct(t, db, farmer, "Okra", "Vegetables", 45, 30)

	_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		CustomerID: customer.ID,
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1, Price: decimal.NewFromInt(45), Unit: "kg"},
		},
		Address:     "9 Week Road",
		PhoneNumber: "9876543210",
		PaymentMode: models.PaymentModeCOD,
		DeliveryFee: decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	weekly, err := store.GetWeeklyOrders(ctx, db)
	if err != nil {
		t.Fatalf("Weekly orders: %v", err)
	}
	if len(weekly) != 7 {
		t.Fatalf("Expected 7 day buckets, got %d", len(weekly))
	}
	if weekly[0].Day != "Mon" {
		t.Errorf("Expected week to start on Mon, got %s", weekly[0].Day)
	}

	var total int64
	for _, day := range weekly {
		total += day.Orders
	}
	if total != 1 {
		t.Errorf("Expected today's order counted once across the week, got %d", total)
	}
}

func TestAnalyticsCategorySales(t *testing.T) {
	db, cleanup := cleanupAnalyticsFixture(t)
	defer cleanup()

	ctx := context.Background()

	data, err := store.GetAnalyticsData(ctx, db)
	if err != nil {
		t.Fatalf("Analytics data: %v", err)
	}

	if len(data.SalesData) != 2 {
		t.Fatalf("Expected 2 sales categories, got %d", len(data.SalesData))
	}
	// Vegetables 150 vs Fruits 50, sorted by sales descending.
	if data.SalesData[0].Category != "Vegetables" {
		t.Errorf("Expected Vegetables first, got %s", data.SalesData[0].Category)
	}
	if !data.SalesData[0].Sales.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected Vegetables sales 150, got %s", data.SalesData[0].Sales)
	}
	if data.SalesData[0].Percentage != 75 {
		t.Errorf("Expected Vegetables at 75%%, got %d", data.SalesData[0].Percentage)
	}
	if data.SalesData[1].Percentage != 25 {
		t.Errorf("Expected Fruits at 25%%, got %d", data.SalesData[1].Percentage)
	}

	if data.TotalOrders != 2 {
		t.Errorf("Expected 2 total orders, got %d", data.TotalOrders)
	}
	if len(data.MonthlyGrowth) != 6 {
		t.Errorf("Expected 6 monthly buckets, got %d", len(data.MonthlyGrowth))
	}
}

// cleanupAnalyticsFixture seeds one farmer, one customer and two regular
// orders: 150 of Vegetables and 50 of Fruits (line-item values, before the
// delivery fee).
func cleanupAnalyticsFixture(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	db, cleanup := setupTestDB(t)
	ctx := context.Background()

	farmer := createTestUser(t, db, models.RoleFarmer, "Farmer Ana", "ana@example.com")
	customer := createTestUser(t, db, models.RoleCustomer, "Customer Ben", "ben@example.com")

	veg := createTestProduct(t, db, farmer, "Carrots", "Vegetables", 50, 40)
	fruit := createTestProduct(t, db, farmer, "Bananas", "Fruits", 50, 40)

	orders := []store.CreateOrderRequest{
		{
			CustomerID: customer.ID,
			Items: []store.OrderItemRequest{
				{ProductID: veg.ID, Quantity: 3, Price: decimal.NewFromInt(50), Unit: "kg"},
			},
			Address:     "1 Fixture Street",
			PhoneNumber: "9876543210",
			PaymentMode: models.PaymentModeCOD,
			DeliveryFee: decimal.NewFromInt(20),
		},
		{
			CustomerID: customer.ID,
			Items: []store.OrderItemRequest{
				{ProductID: fruit.ID, Quantity: 1, Price: decimal.NewFromInt(50), Unit: "kg"},
			},
			Address:     "1 Fixture Street",
			PhoneNumber: "9876543210",
			PaymentMode: models.PaymentModeCOD,
			DeliveryFee: decimal.NewFromInt(20),
		},
	}
	for _, req := range orders {
		if _, err := store.CreateOrder(ctx, db, req); err != nil {
			t.Fatalf("Seed order: %v", err)
		}
	}

	return db, cleanup
}
