package models

import "time"

// Seller owns medicines and fulfils orders from the web dashboard.
// New sellers wait for platform approval before they can log in.
type Seller struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	StoreName string    `gorm:"not null" json:"storeName"`
	Phone     string    `json:"phone"`
	Approved  bool      `gorm:"not null;default:false;index" json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
