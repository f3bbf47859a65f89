// Package events publishes domain events produced by the scheduler.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// RecurringExecuted is emitted after a recurring rule has materialized a
// transaction and the change is committed.
type RecurringExecuted struct {
	RecurringID   string     `json:"recurring_id"`
	UserID        string     `json:"user_id"`
	TransactionID string     `json:"transaction_id"`
	Occurrence    int        `json:"occurrence"`
	Amount        int64      `json:"amount"`
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	ExecutedAt    time.Time  `json:"executed_at"`
	NextExecution *time.Time `json:"next_execution,omitempty"`
	IsActive      bool       `json:"is_active"`
	Manual        bool       `json:"manual"`
}

// ToJSON encodes the event body.
func (e *RecurringExecuted) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to interested consumers. Implementations must be
// safe for concurrent use.
type Publisher interface {
	PublishRecurringExecuted(ctx context.Context, e *RecurringExecuted) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// PublishRecurringExecuted does nothing.
func (NopPublisher) PublishRecurringExecuted(context.Context, *RecurringExecuted) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
