// Package events publishes domain events to a message broker after the
// database change that produced them has committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status_changed"
	TopicPasswordReset      = "auth.password_reset"
)

// Publisher sends a JSON payload to topic. key groups related messages
// (an order id, a user id) so brokers can keep them ordered.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

type OrderPlaced struct {
	OrderID   string          `json:"orderId"`
	UserID    string          `json:"userId"`
	SellerIDs []string        `json:"sellerIds"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OrderStatusChanged struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

type PasswordReset struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

func encode(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) error { return nil }
func (Noop) Close() error { return nil }
