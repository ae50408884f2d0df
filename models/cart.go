package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinCartQuantity = 1
	MaxCartQuantity = 5
)

// CartItem is one line of a user's cart. A user holds at most one line per medicine.
type CartItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"not null;uniqueIndex:idx_cart_user_medicine" json:"-"`
	MedicineID uint            `gorm:"not null;uniqueIndex:idx_cart_user_medicine" json:"medicineId"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	ImageURL   *string         `json:"imageUrl,omitempty"`
	AddedAt    time.Time       `json:"addedAt"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums price*quantity over the items; an empty cart totals zero.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func ValidCartQuantity(q int) bool {
	return q >= MinCartQuantity && q <= MaxCartQuantity
}
