package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/database"
	"github.com/CodeWizard18/AgriConnect/internal/models"
)

type CreateProductRequest struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Unit        string
	Stock       int
	Description string
	Image       string
	Pincode     string
	City        string
	State       string
	FarmerID    int64
	FarmerPhone string
}

type UpdateProductRequest struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Unit        string
	Stock       int
	Description string
	Image       string
	Pincode     string
	City        string
	State       string
}

func CreateProduct(ctx context.Context, db *sql.DB, req CreateProductRequest) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (name, category, price, unit, stock, description, image,
		                      pincode, city, state, farmer_id, farmer_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, name, category, price, unit, stock, description, image,
		          pincode, city, state, farmer_id, farmer_phone, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		req.Name, req.Category, req.Price, req.Unit, req.Stock, req.Description, req.Image,
		req.Pincode, req.City, req.State, req.FarmerID, req.FarmerPhone).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Unit,
		&product.Stock,
		&product.Description,
		&product.Image,
		&product.Pincode,
		&product.City,
		&product.State,
		&product.FarmerID,
		&product.FarmerPhone,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, category, price, unit, stock, description, image,
		       pincode, city, state, farmer_id, farmer_phone, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Unit,
		&product.Stock,
		&product.Description,
		&product.Image,
		&product.Pincode,
		&product.City,
		&product.State,
		&product.FarmerID,
		&product.FarmerPhone,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ListProducts returns the public catalog with the owning farmer's name and
// email joined in for display.
func ListProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	query := `
		SELECT p.id, p.name, p.category, p.price, p.unit, p.stock, p.description, p.image,
		       p.pincode, p.city, p.state, p.farmer_id, p.farmer_phone, p.created_at, p.updated_at,
		       u.name, u.email
		FROM products p
		JOIN users u ON u.id = p.farmer_id
		ORDER BY p.created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Unit,
			&product.Stock,
			&product.Description,
			&product.Image,
			&product.Pincode,
			&product.City,
			&product.State,
			&product.FarmerID,
			&product.FarmerPhone,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.FarmerName,
			&product.FarmerEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func ListFarmerProducts(ctx context.Context, db *sql.DB, farmerID int64) ([]models.Product, error) {
	query := `
		SELECT id, name, category, price, unit, stock, description, image,
		       pincode, city, state, farmer_id, farmer_phone, created_at, updated_at
		FROM products
		WHERE farmer_id = $1
		ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("list farmer products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Unit,
			&product.Stock,
			&product.Description,
			&product.Image,
			&product.Pincode,
			&product.City,
			&product.State,
			&product.FarmerID,
			&product.FarmerPhone,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// UpdateProduct is owner-scoped: a farmer can only edit their own listing.
// Edits never touch order line items created before the change.
func UpdateProduct(ctx context.Context, db *sql.DB, id, farmerID int64, req UpdateProductRequest) (*models.Product, error) {
	product := &models.Product{}

	query := `
		UPDATE products
		SET name = $1, category = $2, price = $3, unit = $4, stock = $5,
		    description = $6, image = $7, pincode = $8, city = $9, state = $10,
		    updated_at = NOW()
		WHERE id = $11 AND farmer_id = $12
		RETURNING id, name, category, price, unit, stock, description, image,
		          pincode, city, state, farmer_id, farmer_phone, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		req.Name, req.Category, req.Price, req.Unit, req.Stock,
		req.Description, req.Image, req.Pincode, req.City, req.State,
		id, farmerID).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Unit,
		&product.Stock,
		&product.Description,
		&product.Image,
		&product.Pincode,
		&product.City,
		&product.State,
		&product.FarmerID,
		&product.FarmerPhone,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a listing. A zero farmerID bypasses the owner check
// and is reserved for admin moderation.
func DeleteProduct(ctx context.Context, db *sql.DB, id, farmerID int64) error {
	query := `DELETE FROM products WHERE id = $1 AND ($2 = 0 OR farmer_id = $2)`

	result, err := db.ExecContext(ctx, query, id, farmerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func CountProducts(ctx context.Context, db *sql.DB) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func ListRecentProducts(ctx context.Context, db *sql.DB, since time.Time, limit int) ([]models.Product, error) {
	query := `
		SELECT p.id, p.name, p.category, p.price, p.unit, p.stock, p.description, p.image,
		       p.pincode, p.city, p.state, p.farmer_id, p.farmer_phone, p.created_at, p.updated_at,
		       u.name, u.email
		FROM products p
		JOIN users u ON u.id = p.farmer_id
		WHERE p.created_at >= $1
		ORDER BY p.created_at DESC
		LIMIT $2`

	rows, err := db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Unit,
			&product.Stock,
			&product.Description,
			&product.Image,
			&product.Pincode,
			&product.City,
			&product.State,
			&product.FarmerID,
			&product.FarmerPhone,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.FarmerName,
			&product.FarmerEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
