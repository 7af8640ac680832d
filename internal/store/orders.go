package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/database"
	"github.com/CodeWizard18/AgriConnect/internal/models"
)

// ValidationError lists every failing field, not just the first one.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Fields, "; ")
}

type OrderItemRequest struct {
	ProductID int64           `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
}

type CreateOrderRequest struct {
	CustomerID  int64
	Items       []OrderItemRequest
	Address     string
	PhoneNumber string
	PaymentMode models.PaymentMode
	DeliveryFee decimal.Decimal
}

type CreatePhoneOrderRequest struct {
	CustomerID      *int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerCity    string
	CustomerState   string
	CustomerPincode string
	FarmerID        int64
	FarmerPhone     string
	FarmerAddress   string
	OrderImage      string
	Items           []OrderItemRequest
	Notes           string
	TotalAmount     *decimal.Decimal
}

// ItemsTotal is the line-item sum: Σ price × quantity.
func ItemsTotal(items []OrderItemRequest) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

var statusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:   0,
	models.OrderStatusPacked:    1,
	models.OrderStatusDelivered: 2,
}

// CanTransition enforces the forward-only chain pending → packed → delivered.
// Re-applying the current status is allowed and is a no-op for callers.
func CanTransition(from, to models.OrderStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

func validateRegularOrder(req CreateOrderRequest) *ValidationError {
	var fields []string

	if len(req.Items) == 0 {
		fields = append(fields, "items must not be empty")
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			fields = append(fields, fmt.Sprintf("items[%d].product is required", i))
		}
		if item.Quantity <= 0 {
			fields = append(fields, fmt.Sprintf("items[%d].quantity must be a positive integer", i))
		}
		if item.Price.IsNegative() {
			fields = append(fields, fmt.Sprintf("items[%d].price must not be negative", i))
		}
	}
	if req.Address == "" {
		fields = append(fields, "address is required")
	}
	if req.PhoneNumber == "" {
		fields = append(fields, "phoneNumber is required")
	}
	switch req.PaymentMode {
	case models.PaymentModeCOD, models.PaymentModeUPI, models.PaymentModeCard:
	default:
		fields = append(fields, "paymentMode must be one of COD, UPI, CARD")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

const orderColumns = `id, order_type, customer_id, farmer_id, farmer_phone_number, phone_number, address,
	 total_amount, status, payment_mode, order_image, customer_name, customer_phone, customer_address,
	 customer_city, customer_state, customer_pincode, farmer_phone, farmer_address, notes,
	 created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.OrderType,
		&order.CustomerID,
		&order.FarmerID,
		&order.FarmerPhoneNumber,
		&order.PhoneNumber,
		&order.Address,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMode,
		&order.OrderImage,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerAddress,
		&order.CustomerCity,
		&order.CustomerState,
		&order.CustomerPincode,
		&order.FarmerPhone,
		&order.FarmerAddress,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder persists a customer checkout. The owning farmer and their phone
// number are snapshotted from the ordered products at creation time; every
// line item must belong to the same farmer. Line-item prices are stored as
// submitted and stock is not decremented.
func CreateOrder(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	if verr := validateRegularOrder(req); verr != nil {
		return nil, verr
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var farmerID int64
		var farmerPhone string
		err := tx.QueryRowContext(ctx,
			`SELECT farmer_id, farmer_phone FROM products WHERE id = $1`,
			req.Items[0].ProductID).Scan(&farmerID, &farmerPhone)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("resolve farmer from product %d: %w", req.Items[0].ProductID, err)
		}

		for _, item := range req.Items[1:] {
			var itemFarmerID int64
			err := tx.QueryRowContext(ctx,
				`SELECT farmer_id FROM products WHERE id = $1`,
				item.ProductID).Scan(&itemFarmerID)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("check product %d: %w", item.ProductID, err)
			}
			if itemFarmerID != farmerID {
				return database.ErrFarmerMismatch
			}
		}

		totalAmount := ItemsTotal(req.Items).Add(req.DeliveryFee)

		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_type, customer_id, farmer_id, farmer_phone_number, phone_number,
			                     address, total_amount, status, payment_mode, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			 RETURNING id`,
			models.OrderTypeRegular, req.CustomerID, farmerID, farmerPhone, req.PhoneNumber,
			req.Address, totalAmount, models.OrderStatusPending, req.PaymentMode).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := insertOrderItems(ctx, tx, orderID, req.Items); err != nil {
			return err
		}

		order, err = scanOrder(tx.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	order.Items, err = loadOrderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func validatePhoneOrder(req CreatePhoneOrderRequest) *ValidationError {
	var fields []string

	if req.CustomerName == "" {
		fields = append(fields, "customerName is required")
	}
	if req.CustomerPhone == "" {
		fields = append(fields, "customerPhone is required")
	}
	if req.CustomerAddress == "" {
		fields = append(fields, "customerAddress is required")
	}
	if req.FarmerID <= 0 {
		fields = append(fields, "farmerId is required")
	}
	if len(req.Items) == 0 {
		fields = append(fields, "selectedProducts must not be empty")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			fields = append(fields, fmt.Sprintf("selectedProducts[%d].quantity must be a positive integer", i))
		}
		if item.Price.IsNegative() {
			fields = append(fields, fmt.Sprintf("selectedProducts[%d].price must not be negative", i))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreatePhoneOrder persists an admin-entered order taken over the phone. The
// customer reference is optional so non-registered callers can be served.
// The total is the supplied override or else the computed line-item sum.
func CreatePhoneOrder(ctx context.Context, db *sql.DB, req CreatePhoneOrderRequest) (*models.Order, error) {
	if verr := validatePhoneOrder(req); verr != nil {
		return nil, verr
	}

	var order *models.Order

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND role = 'farmer')`,
			req.FarmerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check farmer exists: %w", err)
		}
		if !exists {
			return database.ErrFarmerNotFound
		}

		totalAmount := ItemsTotal(req.Items)
		if req.TotalAmount != nil {
			totalAmount = *req.TotalAmount
		}

		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_type, customer_id, farmer_id, total_amount, status, payment_mode,
			                     order_image, customer_name, customer_phone, customer_address,
			                     customer_city, customer_state, customer_pincode,
			                     farmer_phone, farmer_address, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
			 RETURNING id`,
			models.OrderTypePhone, req.CustomerID, req.FarmerID, totalAmount,
			models.OrderStatusPending, models.PaymentModeCOD,
			req.OrderImage, req.CustomerName, req.CustomerPhone, req.CustomerAddress,
			req.CustomerCity, req.CustomerState, req.CustomerPincode,
			req.FarmerPhone, req.FarmerAddress, req.Notes).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create phone order: %w", err)
		}

		if err := insertOrderItems(ctx, tx, orderID, req.Items); err != nil {
			return err
		}

		order, err = scanOrder(tx.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	order.Items, err = loadOrderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderItemRequest) error {
	for _, item := range items {
		var productID interface{}
		if item.ProductID > 0 {
			productID = item.ProductID
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price, unit, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			orderID, productID, item.Quantity, item.Price, item.Unit)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func loadOrderItems(ctx context.Context, db *sql.DB, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, COALESCE(oi.product_id, 0), COALESCE(p.name, ''), COALESCE(p.category, ''),
		       oi.quantity, oi.price, oi.unit, oi.created_at
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Category,
			&item.Quantity,
			&item.Price,
			&item.Unit,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	order.Items, err = loadOrderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListCustomerOrders returns the caller's own orders plus unlinked phone
// orders whose customer name matches the caller's profile name. The name
// match only applies when no customer id was recorded at intake; linked
// phone orders are matched by id like any other order.
func ListCustomerOrders(ctx context.Context, db *sql.DB, customerID int64, customerName string) ([]models.Order, error) {
	query := `
		SELECT o.id, o.order_type, o.customer_id, o.farmer_id, o.farmer_phone_number, o.phone_number, o.address,
		       o.total_amount, o.status, o.payment_mode, o.order_image, o.customer_name, o.customer_phone,
		       o.customer_address, o.customer_city, o.customer_state, o.customer_pincode,
		       o.farmer_phone, o.farmer_address, o.notes, o.created_at, o.updated_at,
		       f.name
		FROM orders o
		JOIN users f ON f.id = o.farmer_id
		WHERE o.customer_id = $1
		   OR (o.order_type = 'phone' AND o.customer_id IS NULL AND o.customer_name = $2)
		ORDER BY o.created_at DESC`

	rows, err := db.QueryContext(ctx, query, customerID, customerName)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrdersWithName(rows, func(o *models.Order, name string) { o.FarmerName = name })
	if err != nil {
		return nil, err
	}

	return populateItems(ctx, db, orders)
}

// ListFarmerOrders returns orders addressed to the farmer, with the
// customer's display name joined in (phone orders fall back to the
// customer name taken at intake).
func ListFarmerOrders(ctx context.Context, db *sql.DB, farmerID int64) ([]models.Order, error) {
	query := `
		SELECT o.id, o.order_type, o.customer_id, o.farmer_id, o.farmer_phone_number, o.phone_number, o.address,
		       o.total_amount, o.status, o.payment_mode, o.order_image, o.customer_name, o.customer_phone,
		       o.customer_address, o.customer_city, o.customer_state, o.customer_pincode,
		       o.farmer_phone, o.farmer_address, o.notes, o.created_at, o.updated_at,
		       COALESCE(c.name, o.customer_name)
		FROM orders o
		LEFT JOIN users c ON c.id = o.customer_id
		WHERE o.farmer_id = $1
		ORDER BY o.created_at DESC`

	rows, err := db.QueryContext(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("list farmer orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrdersWithName(rows, func(o *models.Order, name string) { o.CustomerDisplayName = name })
	if err != nil {
		return nil, err
	}

	return populateItems(ctx, db, orders)
}

func collectOrdersWithName(rows *sql.Rows, assign func(*models.Order, string)) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		order := &models.Order{}
		var name string
		err := rows.Scan(
			&order.ID,
			&order.OrderType,
			&order.CustomerID,
			&order.FarmerID,
			&order.FarmerPhoneNumber,
			&order.PhoneNumber,
			&order.Address,
			&order.TotalAmount,
			&order.Status,
			&order.PaymentMode,
			&order.OrderImage,
			&order.CustomerName,
			&order.CustomerPhone,
			&order.CustomerAddress,
			&order.CustomerCity,
			&order.CustomerState,
			&order.CustomerPincode,
			&order.FarmerPhone,
			&order.FarmerAddress,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
			&name,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		assign(order, name)
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func populateItems(ctx context.Context, db *sql.DB, orders []models.Order) ([]models.Order, error) {
	for i := range orders {
		items, err := loadOrderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateOrderStatus moves an order along the pending → packed → delivered
// chain. Setting the current status again is an idempotent no-op; moving
// backwards is rejected.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, id int64, status models.OrderStatus) (*models.Order, error) {
	if _, ok := statusRank[status]; !ok {
		return nil, &ValidationError{Fields: []string{"status must be one of pending, packed, delivered"}}
	}

	order, err := GetOrder(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}
	if !CanTransition(order.Status, status) {
		return nil, database.ErrStatusRegression
	}

	updated, err := scanOrder(db.QueryRowContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+orderColumns,
		status, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	updated.Items = order.Items
	return updated, nil
}
