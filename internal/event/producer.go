package event

import (
	"context"
	"log/slog"

	"github.com/hatbazar/storefront/internal/cart"
	"github.com/hatbazar/storefront/internal/domain"
	pkgkafka "github.com/hatbazar/storefront/pkg/kafka"
)

// Kafka topics for cart domain events.
const (
	TopicCartUpdated = "hatbazar.cart.updated"
	TopicCartCleared = "hatbazar.cart.cleared"
)

const (
	aggregateTypeCart = "cart"
	source            = "storefront"
)

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  float64           `json:"subtotal"`
}

// CartClearedData is the payload of a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a cart event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// CartSubscriber adapts the producer into a cart store subscriber. Cart
// mutations are user-facing and must never fail because the broker is down,
// so publish errors are logged and dropped.
func (p *Producer) CartSubscriber() cart.Subscriber {
	return func(ctx context.Context, snap cart.Snapshot) {
		if err := p.publish(ctx, snap); err != nil {
			p.logger.WarnContext(ctx, "cart event not published",
				slog.String("session_id", snap.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (p *Producer) publish(ctx context.Context, snap cart.Snapshot) error {
	if len(snap.Items) == 0 {
		ev, err := pkgkafka.NewEvent(TopicCartCleared, snap.SessionID, aggregateTypeCart, source,
			CartClearedData{SessionID: snap.SessionID})
		if err != nil {
			return err
		}
		return p.kafka.Publish(ctx, TopicCartCleared, ev)
	}

	ev, err := pkgkafka.NewEvent(TopicCartUpdated, snap.SessionID, aggregateTypeCart, source,
		CartUpdatedData{
			SessionID: snap.SessionID,
			Items:     snap.Items,
			ItemCount: snap.ItemCount,
			Subtotal:  snap.Subtotal,
		})
	if err != nil {
		return err
	}
	return p.kafka.Publish(ctx, TopicCartUpdated, ev)
}
