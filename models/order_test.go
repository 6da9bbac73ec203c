package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTransitions(t *testing.T) {
	assert.Equal(t, []OrderStatus{OrderStatusCompleted}, AllowedTransitions(OrderStatusPending))
	assert.Empty(t, AllowedTransitions(OrderStatusCompleted))
	assert.Empty(t, AllowedTransitions(OrderStatus("shipped")))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusCompleted))
	assert.False(t, CanTransition(OrderStatusCompleted, OrderStatusPending))
	assert.False(t, CanTransition(OrderStatusCompleted, OrderStatusCompleted))
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusPending))
	assert.True(t, ValidOrderStatus(OrderStatusCompleted))
	assert.False(t, ValidOrderStatus(OrderStatus("shipped")))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCash))
	assert.True(t, ValidPaymentMethod(PaymentMethodGCash))
	assert.True(t, ValidPaymentMethod(PaymentMethodCard))
	assert.False(t, ValidPaymentMethod(PaymentMethod("barter")))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: 10.00}
	assert.Equal(t, 30.00, item.Subtotal())
}
