package domain

import (
	"context"
	"time"
)

const RoutingKeyStreakChanged = "habit.streak.changed"

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type StreakChangedEvent struct {
	HabitID    int64     `json:"habit_id"`
	UserID     int64     `json:"user_id"`
	Frequency  string    `json:"frequency"`
	Previous   int       `json:"previous"`
	Current    int       `json:"current"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
