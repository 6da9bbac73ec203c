// Package stock holds the only two legal mutators of product stock.
// Checkout, order deletion and order-item edits all route through Reserve
// and Release so the non-negative invariant lives in one place.
package stock

import (
	"errors"
	"fmt"

	"github.com/RoelVilladiego02/ecommerce-api/models"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InsufficientStockError names the offending product so handlers can
// surface it to the client.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Reserve atomically checks stock >= qty and decrements it. The check and
// the decrement are a single guarded UPDATE, so two concurrent reservations
// against the same product cannot jointly oversell regardless of isolation
// level. Call inside the transaction that creates the order rows.
func Reserve(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   qty,
			Available:   product.Stock,
		}
	}
	return nil
}

// Release returns qty units to the product's stock. Used when an order
// item is removed or a pending order is deleted.
func Release(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
