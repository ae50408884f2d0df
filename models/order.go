package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "pending"   // placed, awaiting the seller
	OrderStatusCompleted OrderStatus = "completed" // shipped by the seller
	OrderStatusCancelled OrderStatus = "cancelled" // cancelled by the customer while pending

	PaymentStatusPending PaymentStatus = "pending"

	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// CanTransitionTo reports whether an order may move from s to next.
// Only pending orders move; completed and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusCompleted || next == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

type CustomerDetails struct {
	Name  string `gorm:"column:customer_name;not null" json:"name"`
	Phone string `gorm:"column:customer_phone;not null" json:"phone"`
}

type ShippingAddress struct {
	Address string `gorm:"column:ship_address;not null" json:"address"`
	City    string `gorm:"column:ship_city;not null" json:"city"`
	State   string `gorm:"column:ship_state;not null" json:"state"`
	Pincode string `gorm:"column:ship_pincode;not null" json:"pincode"`
}

type Payment struct {
	Method   PaymentMethod   `gorm:"column:payment_method;type:varchar(10);not null" json:"method"`
	Subtotal decimal.Decimal `gorm:"column:payment_subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Shipping decimal.Decimal `gorm:"column:payment_shipping;type:numeric(12,2);not null" json:"shipping"`
	Total    decimal.Decimal `gorm:"column:payment_total;type:numeric(12,2);not null" json:"total"`
	Status   PaymentStatus   `gorm:"column:payment_status;type:varchar(20);not null" json:"status"`
}

// Order is the immutable-item snapshot created at checkout.
type Order struct {
	ID                 uint            `gorm:"primaryKey" json:"-"`
	OrderID            string          `gorm:"uniqueIndex;not null" json:"orderId"`
	UserID             string          `gorm:"not null;index;uniqueIndex:idx_order_idempotency" json:"userId"`
	IdempotencyKey     *string         `gorm:"uniqueIndex:idx_order_idempotency" json:"-"`
	Items              []OrderItem     `gorm:"foreignKey:OrderRef;constraint:OnDelete:CASCADE" json:"items"`
	CustomerDetails    CustomerDetails `gorm:"embedded" json:"customerDetails"`
	ShippingAddress    ShippingAddress `gorm:"embedded" json:"shippingAddress"`
	Payment            Payment         `gorm:"embedded" json:"payment"`
	Status             OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	ShippedAt          *time.Time      `json:"shippedAt,omitempty"`
	ExpectedDeliveryAt *time.Time      `json:"expectedDeliveryAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
}

// OrderItem is frozen at checkout; later medicine edits never touch it.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	OrderRef   uint            `gorm:"index;not null" json:"-"`
	MedicineID uint            `gorm:"not null" json:"medicineId"`
	SellerID   string          `gorm:"not null;index" json:"sellerId"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	ImageURL   *string         `json:"imageUrl,omitempty"`
}

// SellerIDs returns the distinct sellers with items in the order.
func (o Order) SellerIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, it := range o.Items {
		if !seen[it.SellerID] {
			seen[it.SellerID] = true
			ids = append(ids, it.SellerID)
		}
	}
	return ids
}
