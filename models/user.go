package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a shopping-app customer, keyed by the Firebase uid.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address is a saved shipping address; a user has at most one default.
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"-"`
	Label     string    `json:"label"`
	FullName  string    `gorm:"not null" json:"fullName"`
	Phone     string    `gorm:"not null" json:"phone"`
	Address   string    `gorm:"not null" json:"address"`
	City      string    `gorm:"not null" json:"city"`
	State     string    `gorm:"not null" json:"state"`
	Pincode   string    `gorm:"not null" json:"pincode"`
	IsDefault bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WishlistItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"not null;uniqueIndex:idx_wishlist_user_medicine" json:"-"`
	MedicineID uint            `gorm:"not null;uniqueIndex:idx_wishlist_user_medicine" json:"medicineId"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ImageURL   *string         `json:"imageUrl,omitempty"`
	AddedAt    time.Time       `json:"addedAt"`
}
