package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	Pincode      string     `json:"pincode,omitempty"`
	City         string     `json:"city,omitempty"`
	State        string     `json:"state,omitempty"`
	OTP          string     `json:"-"`
	OTPExpires   *time.Time `json:"-"`
	IsVerified   bool       `json:"isVerified"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Stock       int             `json:"stock"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Pincode     string          `json:"pincode,omitempty"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	FarmerID    int64           `json:"farmer"`
	FarmerName  string          `json:"farmerName,omitempty"`
	FarmerEmail string          `json:"farmerEmail,omitempty"`
	FarmerPhone string          `json:"farmerPhoneNumber"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type OrderType string

const (
	OrderTypeRegular OrderType = "regular"
	OrderTypePhone   OrderType = "phone"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusDelivered OrderStatus = "delivered"
)

type PaymentMode string

const (
	PaymentModeCOD  PaymentMode = "COD"
	PaymentModeUPI  PaymentMode = "UPI"
	PaymentModeCard PaymentMode = "CARD"
)

// Order covers both variants: a regular order carries a registered customer,
// delivery address and phone number; a phone order carries the customer*
// contact fields and may have no registered customer at all.
type Order struct {
	ID                  int64           `json:"id"`
	OrderType           OrderType       `json:"orderType"`
	CustomerID          *int64          `json:"customer,omitempty"`
	CustomerDisplayName string          `json:"customerDisplayName,omitempty"`
	FarmerID            int64           `json:"farmer"`
	FarmerName          string          `json:"farmerName,omitempty"`
	FarmerPhoneNumber   string          `json:"farmerPhoneNumber,omitempty"`
	PhoneNumber         string          `json:"phoneNumber,omitempty"`
	Address             string          `json:"address,omitempty"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	Status              OrderStatus     `json:"status"`
	PaymentMode         PaymentMode     `json:"paymentMode"`
	Items               []OrderItem     `json:"items,omitempty"`

	// Phone order fields.
	OrderImage      string `json:"orderImage,omitempty"`
	CustomerName    string `json:"customerName,omitempty"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	CustomerAddress string `json:"customerAddress,omitempty"`
	CustomerCity    string `json:"customerCity,omitempty"`
	CustomerState   string `json:"customerState,omitempty"`
	CustomerPincode string `json:"customerPincode,omitempty"`
	FarmerPhone     string `json:"farmerPhone,omitempty"`
	FarmerAddress   string `json:"farmerAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem snapshots price and unit at order time; later product edits do
// not change it.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"product"`
	ProductName string          `json:"productName,omitempty"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Message struct {
	ID            int64     `json:"id"`
	SenderID      int64     `json:"sender"`
	SenderName    string    `json:"senderName,omitempty"`
	RecipientID   int64     `json:"recipient"`
	RecipientName string    `json:"recipientName,omitempty"`
	Body          string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}
