package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Mayank561/ECOMMERCE-API/common/logger"
	"go.uber.org/zap"
)

const (
	EventOrderCreated = "order.created"
	EventOrderDeleted = "order.deleted"
)

// OrderEvent is the payload published when an order is created or deleted.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	TotalPrice float64   `json:"totalPrice"`
	ItemCount  int       `json:"itemCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishEvent sends the event if a publisher is configured. Failures are
// logged and never returned.
func publishEvent(ctx context.Context, p EventPublisher, event OrderEvent) {
	if p == nil {
		return
	}
	log := logger.FromContext(ctx)
	body, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	if err := p.Publish(ctx, event.Type, body); err != nil {
		log.Warn("event publish failed", zap.String("type", event.Type), zap.String("order_id", event.OrderID), zap.Error(err))
	}
}
