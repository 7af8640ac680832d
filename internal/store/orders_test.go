package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeWizard18/AgriConnect/internal/models"
)

func TestItemsTotal(t *testing.T) {
	items := []OrderItemRequest{
		{ProductID: 1, Quantity: 5, Price: decimal.NewFromInt(25)},
		{ProductID: 2, Quantity: 10, Price: decimal.NewFromInt(20)},
	}

	total := ItemsTotal(items)
	assert.True(t, total.Equal(decimal.NewFromInt(205)), "expected 205, got %s", total)

	fee := decimal.NewFromInt(20)
	assert.True(t, total.Add(fee).Equal(decimal.NewFromInt(225)))
}

func TestItemsTotalEmpty(t *testing.T) {
	assert.True(t, ItemsTotal(nil).IsZero())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusPacked, true},
		{models.OrderStatusPacked, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusPending, true},
		{models.OrderStatusDelivered, models.OrderStatusDelivered, true},
		{models.OrderStatusPacked, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusPacked, false},
		{models.OrderStatusPending, models.OrderStatus("cancelled"), false},
		{models.OrderStatus(""), models.OrderStatusPacked, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "transition %s -> %s", tc.from, tc.to)
	}
}

func TestValidateRegularOrderListsEveryField(t *testing.T) {
	verr := validateRegularOrder(CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: 0, Quantity: 0, Price: decimal.NewFromInt(-1)},
		},
	})
	require.NotNil(t, verr)

	// One failing item contributes three field messages, address,
	// phoneNumber and paymentMode contribute one each.
	assert.Len(t, verr.Fields, 6)
	assert.Contains(t, verr.Error(), "address is required")
}

func TestValidateRegularOrderEmptyItems(t *testing.T) {
	verr := validateRegularOrder(CreateOrderRequest{
		Address:     "12 Farm Road",
		PhoneNumber: "9876543210",
		PaymentMode: models.PaymentModeCOD,
	})
	require.NotNil(t, verr)
	assert.Equal(t, []string{"items must not be empty"}, verr.Fields)
}

func TestValidateRegularOrderOK(t *testing.T) {
	verr := validateRegularOrder(CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(30)},
		},
		Address:     "12 Farm Road",
		PhoneNumber: "9876543210",
		PaymentMode: models.PaymentModeUPI,
	})
	assert.Nil(t, verr)
}

func TestValidatePhoneOrder(t *testing.T) {
	verr := validatePhoneOrder(CreatePhoneOrderRequest{})
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "customerName is required")
	assert.Contains(t, verr.Fields, "customerPhone is required")
	assert.Contains(t, verr.Fields, "customerAddress is required")
	assert.Contains(t, verr.Fields, "farmerId is required")
	assert.Contains(t, verr.Fields, "selectedProducts must not be empty")

	verr = validatePhoneOrder(CreatePhoneOrderRequest{
		CustomerName:    "Ravi",
		CustomerPhone:   "9876543210",
		CustomerAddress: "4 Market Lane",
		FarmerID:        1,
		Items: []OrderItemRequest{
			{Quantity: 1, Price: decimal.NewFromInt(60)},
		},
	})
	assert.Nil(t, verr)
}
