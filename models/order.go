package models

import "time"

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "pending"   // order placed, awaiting fulfilment
	OrderStatusCompleted OrderStatus = "completed" // fulfilled, terminal

	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodGCash PaymentMethod = "gcash"
	PaymentMethodCard  PaymentMethod = "card"
)

// statusTransitions is the allowed-transition table. Kept as data so a
// richer workflow (processing, cancelled, ...) only needs more entries here.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusCompleted},
	OrderStatusCompleted: {},
}

// ValidOrderStatus reports whether s names a defined status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

// AllowedTransitions returns the statuses reachable from the current one.
func AllowedTransitions(current OrderStatus) []OrderStatus {
	next, ok := statusTransitions[current]
	if !ok {
		return []OrderStatus{}
	}
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodGCash, PaymentMethodCard:
		return true
	}
	return false
}

type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	OrderRef        string        `gorm:"uniqueIndex" json:"order_ref"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total           float64       `json:"total"`
	Status          OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	DeliveryAddress string        `gorm:"not null" json:"delivery_address"`
	ContactNumber   string        `gorm:"not null" json:"contact_number"`
	Message         string        `json:"message"`
	PaymentMethod   PaymentMethod `gorm:"type:VARCHAR(20);default:'cash'" json:"payment_method"`
	CreatedAt       time.Time     `json:"created_at"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `gorm:"index" json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"` // unit price at order time
}

// Subtotal is the line total at the snapshotted unit price.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderStatusLog records every accepted status transition for auditing.
type OrderStatusLog struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:VARCHAR(20)" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:VARCHAR(20)" json:"to_status"`
	ActorID    uint        `json:"actor_id"`
	CreatedAt  time.Time   `json:"created_at"`
}
