package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    uint       `gorm:"uniqueIndex" json:"user_id"` // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem snapshots product fields at the time of the last add/update.
// Snapshots are display hints only; checkout re-validates against the
// products table.
type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index" json:"cart_id"`
	ProductID    uint      `gorm:"index" json:"product_id"`
	ProductName  string    `json:"name"`
	ProductImage string    `json:"image"`
	ProductPrice float64   `json:"price"`
	ProductStock int       `json:"stock"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}
