package events

import (
	"context"
	"time"
)

const (
	TopicUsers    = "user_events"
	TopicProducts = "product_events"
	TopicOrders   = "order_events"
)

const (
	UserRegistered     = "user_registered"
	UserDeleted        = "user_deleted"
	ProductCreated     = "product_created"
	ProductUpdated     = "product_updated"
	ProductDeleted     = "product_deleted"
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type UserEvent struct {
	Type   string    `json:"type"`
	UserID uint      `json:"userID"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	At     time.Time `json:"at"`
}

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID uint      `json:"productID"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Category  string    `json:"category,omitempty"`
	At        time.Time `json:"at"`
}

type OrderEvent struct {
	Type     string    `json:"type"`
	OrderID  uint      `json:"orderID"`
	UserID   uint      `json:"userID"`
	Status   string    `json:"status"`
	Sum      float64   `json:"sum"`
	Products []uint    `json:"products,omitempty"`
	At       time.Time `json:"at"`
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }
