package models

import "time"

type Category struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string  `gorm:"uniqueIndex;not null" json:"name"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// Banner is a home-screen promotional image.
type Banner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Seller{},
		&Category{},
		&Banner{},
		&Medicine{},
		&CartItem{},
		&WishlistItem{},
		&Address{},
		&Order{},
		&OrderItem{},
	}
}
