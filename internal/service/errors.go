package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/metrics"
	"github.com/Skotchmaster/sole_searcher/internal/models"
)

var (
	ErrValidation         = errors.New("validation")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
)

const (
	TopicUserEvents    = "user_events"
	TopicProductEvents = "product_events"
	TopicCartEvents    = "cart_events"
)

// EventPublisher is satisfied by *mykafka.Producer. A nil publisher disables
// events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// SessionListener is told about every change of the active user. u is nil
// after logout.
type SessionListener interface {
	SessionChanged(ctx context.Context, u *models.User)
}

func publish(ctx context.Context, p EventPublisher, topic string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}

// storageFailed records a swallowed storage error. In-memory state stays
// authoritative.
func storageFailed(ctx context.Context, store, op string, err error) {
	metrics.StorageFailuresTotal.WithLabelValues(store, op).Inc()
	logging.FromContext(ctx).Warn("storage_"+op+"_failed", "store", store, "error", err)
}
