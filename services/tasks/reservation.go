package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

const TypeReservationConfirmed = "reservation:confirmed"

// ReservationPayload is the body of a reservation:confirmed task.
type ReservationPayload struct {
	OfferingID  string    `json:"offeringId"`
	AccountID   string    `json:"accountId"`
	PublisherID string    `json:"publisherId"`
	BookedAt    time.Time `json:"bookedAt"`
}

func NewReservationConfirmedTask(offering models.Offering) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReservationPayload{
		OfferingID:  offering.ID,
		AccountID:   offering.ReservedBy,
		PublisherID: offering.PublisherID,
		BookedAt:    offering.BookedAt,
	})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReservationConfirmed, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}
	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier publishes reservation confirmations to the task queue.
type QueueNotifier struct {
	Client Enqueuer
}

func (n *QueueNotifier) ReservationConfirmed(ctx context.Context, offering models.Offering) error {
	task, opts, err := NewReservationConfirmedTask(offering)
	if err != nil {
		return fmt.Errorf("build reservation task: %w", err)
	}
	if _, err := n.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue reservation task: %w", err)
	}
	return nil
}
