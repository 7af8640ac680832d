package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/models"
)

type DashboardStats struct {
	TotalFarmers      int64           `json:"totalFarmers"`
	TotalCustomers    int64           `json:"totalCustomers"`
	TotalAdmins       int64           `json:"totalAdmins"`
	ActiveProducts    int64           `json:"activeProducts"`
	TotalOrders       int64           `json:"totalOrders"`
	WeeklyOrders      int64           `json:"weeklyOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	PendingModeration int64           `json:"pendingModeration"`
}

type CategorySales struct {
	Category   string          `json:"category"`
	Sales      decimal.Decimal `json:"sales"`
	Percentage int64           `json:"percentage"`
}

type MonthlyBucket struct {
	Month   string          `json:"month"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type AnalyticsData struct {
	SalesData     []CategorySales `json:"salesData"`
	MonthlyGrowth []MonthlyBucket `json:"monthlyGrowth"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalUsers    int64           `json:"totalUsers"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
	OrdersGrowth  string          `json:"ordersGrowth"`
	RevenueGrowth string          `json:"revenueGrowth"`
	UsersGrowth   string          `json:"usersGrowth"`
	AvgGrowth     string          `json:"avgGrowth"`
}

type PhoneOrderStats struct {
	OrdersCreated int64           `json:"ordersCreated"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	AvgOrderSize  decimal.Decimal `json:"avgOrderSize"`
}

type ActivityItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
}

type WeeklyOrderCount struct {
	Day    string `json:"day"`
	Orders int64  `json:"orders"`
}

func countOrders(ctx context.Context, db *sql.DB, where string, args ...interface{}) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func sumOrderRevenue(ctx context.Context, db *sql.DB, where string, args ...interface{}) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders `+where, args...).Scan(&revenue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum order revenue: %w", err)
	}
	return revenue, nil
}

// GetDashboardStats computes the admin dashboard rollup from current
// collection state; nothing is cached.
func GetDashboardStats(ctx context.Context, db *sql.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalFarmers, err = CountUsersByRole(ctx, db, models.RoleFarmer); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = CountUsersByRole(ctx, db, models.RoleCustomer); err != nil {
		return nil, err
	}
	if stats.TotalAdmins, err = CountUsersByRole(ctx, db, models.RoleAdmin); err != nil {
		return nil, err
	}
	if stats.ActiveProducts, err = CountProducts(ctx, db); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = countOrders(ctx, db, ""); err != nil {
		return nil, err
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	if stats.WeeklyOrders, err = countOrders(ctx, db, "WHERE created_at >= $1", sevenDaysAgo); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = sumOrderRevenue(ctx, db, "WHERE status = $1", models.OrderStatusDelivered); err != nil {
		return nil, err
	}
	if stats.PendingModeration, err = countOrders(ctx, db, "WHERE status = $1", models.OrderStatusPending); err != nil {
		return nil, err
	}

	return stats, nil
}

func categorySales(ctx context.Context, db *sql.DB) ([]CategorySales, error) {
	query := `
		SELECT COALESCE(NULLIF(p.category, ''), 'Others'), SUM(oi.price * oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.order_type <> 'phone'
		GROUP BY 1
		ORDER BY 2 DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("category sales: %w", err)
	}
	defer rows.Close()

	var sales []CategorySales
	total := decimal.Zero
	for rows.Next() {
		var cs CategorySales
		if err := rows.Scan(&cs.Category, &cs.Sales); err != nil {
			return nil, fmt.Errorf("scan category sales: %w", err)
		}
		total = total.Add(cs.Sales)
		sales = append(sales, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if total.IsPositive() {
		for i := range sales {
			sales[i].Percentage = sales[i].Sales.Div(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		}
	}

	return sales, nil
}

func growthPercent(current, previous decimal.Decimal) string {
	if !previous.IsPositive() {
		return "0"
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).StringFixed(1)
}

// GetAnalyticsData assembles the admin analytics view: category-wise sales
// over regular orders, six monthly buckets of order counts and revenue,
// platform totals and month-over-month growth figures.
func GetAnalyticsData(ctx context.Context, db *sql.DB) (*AnalyticsData, error) {
	data := &AnalyticsData{}
	var err error

	if data.SalesData, err = categorySales(ctx, db); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		count, err := countOrders(ctx, db, "WHERE created_at >= $1 AND created_at < $2", monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		revenue, err := sumOrderRevenue(ctx, db, "WHERE created_at >= $1 AND created_at < $2", monthStart, monthEnd)
		if err != nil {
			return nil, err
		}

		data.MonthlyGrowth = append(data.MonthlyGrowth, MonthlyBucket{
			Month:   monthStart.Format("Jan"),
			Orders:  count,
			Revenue: revenue,
		})
	}

	if data.TotalUsers, err = CountUsers(ctx, db); err != nil {
		return nil, err
	}
	if data.TotalOrders, err = countOrders(ctx, db, ""); err != nil {
		return nil, err
	}
	if data.TotalRevenue, err = sumOrderRevenue(ctx, db, "WHERE status = $1", models.OrderStatusDelivered); err != nil {
		return nil, err
	}
	if data.TotalOrders > 0 {
		data.AvgOrderValue = data.TotalRevenue.Div(decimal.NewFromInt(data.TotalOrders))
	}

	last := data.MonthlyGrowth[5]
	prev := data.MonthlyGrowth[4]
	data.OrdersGrowth = growthPercent(decimal.NewFromInt(last.Orders), decimal.NewFromInt(prev.Orders))
	data.RevenueGrowth = growthPercent(last.Revenue, prev.Revenue)

	lastMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	prevMonthStart := lastMonthStart.AddDate(0, -1, 0)
	usersLastMonth, err := CountUsersCreatedBetween(ctx, db, lastMonthStart, lastMonthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	usersPrevMonth, err := CountUsersCreatedBetween(ctx, db, prevMonthStart, lastMonthStart)
	if err != nil {
		return nil, err
	}
	data.UsersGrowth = growthPercent(decimal.NewFromInt(usersLastMonth), decimal.NewFromInt(usersPrevMonth))

	lastAvg := decimal.Zero
	if last.Orders > 0 {
		lastAvg = last.Revenue.Div(decimal.NewFromInt(last.Orders))
	}
	prevAvg := decimal.Zero
	if prev.Orders > 0 {
		prevAvg = prev.Revenue.Div(decimal.NewFromInt(prev.Orders))
	}
	data.AvgGrowth = growthPercent(lastAvg, prevAvg)

	return data, nil
}

// GetPhoneOrderStats covers today's admin-entered orders only.
func GetPhoneOrderStats(ctx context.Context, db *sql.DB) (*PhoneOrderStats, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &PhoneOrderStats{}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		 FROM orders
		 WHERE order_type = 'phone' AND created_at >= $1 AND created_at < $2`,
		dayStart, dayEnd).Scan(&stats.OrdersCreated, &stats.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("phone order stats: %w", err)
	}

	if stats.OrdersCreated > 0 {
		stats.AvgOrderSize = stats.TotalValue.Div(decimal.NewFromInt(stats.OrdersCreated))
	}

	return stats, nil
}

// GetRecentActivity merges last-24h orders, product additions and user
// registrations into one feed, newest first, capped at four entries.
func GetRecentActivity(ctx context.Context, db *sql.DB) ([]ActivityItem, error) {
	since := time.Now().Add(-24 * time.Hour)
	now := time.Now()

	var activity []ActivityItem

	orders, err := listRecentOrders(ctx, db, since, 10)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		name := order.CustomerDisplayName
		if name == "" {
			if order.OrderType == models.OrderTypePhone {
				name = "Phone customer"
			} else {
				name = "Unknown customer"
			}
		}
		activity = append(activity, ActivityItem{
			ID:        fmt.Sprintf("order-%d", order.ID),
			Type:      "order",
			Message:   fmt.Sprintf("New %s order #%d from %s", order.OrderType, order.ID, name),
			Time:      fmt.Sprintf("%d minutes ago", int(now.Sub(order.CreatedAt).Minutes())),
			Timestamp: order.CreatedAt,
		})
	}

	products, err := ListRecentProducts(ctx, db, since, 5)
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		activity = append(activity, ActivityItem{
			ID:        fmt.Sprintf("product-%d", product.ID),
			Type:      "farmer",
			Message:   fmt.Sprintf("%s added %s", product.FarmerName, product.Name),
			Time:      fmt.Sprintf("%d minutes ago", int(now.Sub(product.CreatedAt).Minutes())),
			Timestamp: product.CreatedAt,
		})
	}

	users, err := ListRecentUsers(ctx, db, since, 5)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		activity = append(activity, ActivityItem{
			ID:        fmt.Sprintf("user-%d", user.ID),
			Type:      string(user.Role),
			Message:   fmt.Sprintf("New %s registration: %s", user.Role, user.Name),
			Time:      fmt.Sprintf("%d minutes ago", int(now.Sub(user.CreatedAt).Minutes())),
			Timestamp: user.CreatedAt,
		})
	}

	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})

	if len(activity) > 4 {
		activity = activity[:4]
	}

	return activity, nil
}

func listRecentOrders(ctx context.Context, db *sql.DB, since time.Time, limit int) ([]models.Order, error) {
	query := `
		SELECT o.id, o.order_type, o.customer_id, o.farmer_id, o.farmer_phone_number, o.phone_number, o.address,
		       o.total_amount, o.status, o.payment_mode, o.order_image, o.customer_name, o.customer_phone,
		       o.customer_address, o.customer_city, o.customer_state, o.customer_pincode,
		       o.farmer_phone, o.farmer_address, o.notes, o.created_at, o.updated_at,
		       COALESCE(c.name, o.customer_name)
		FROM orders o
		LEFT JOIN users c ON c.id = o.customer_id
		WHERE o.created_at >= $1
		ORDER BY o.created_at DESC
		LIMIT $2`

	rows, err := db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	defer rows.Close()

	return collectOrdersWithName(rows, func(o *models.Order, name string) { o.CustomerDisplayName = name })
}

// GetWeeklyOrders buckets order counts per day of the current week, Monday
// through Sunday.
func GetWeeklyOrders(ctx context.Context, db *sql.DB) ([]WeeklyOrderCount, error) {
	now := time.Now()
	weekday := int(now.Weekday())
	// time.Weekday is Sunday-based; shift so the week starts on Monday.
	offset := (weekday + 6) % 7
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -offset)

	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	weekly := make([]WeeklyOrderCount, 0, 7)

	for i := 0; i < 7; i++ {
		dayStart := weekStart.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		count, err := countOrders(ctx, db, "WHERE created_at >= $1 AND created_at < $2", dayStart, dayEnd)
		if err != nil {
			return nil, err
		}

		weekly = append(weekly, WeeklyOrderCount{Day: days[i], Orders: count})
	}

	return weekly, nil
}
