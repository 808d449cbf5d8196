package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	offeringRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/offering"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/tasks"
)

// ConfirmationWorker consumes reservation:confirmed tasks.
type ConfirmationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewConfirmationWorker builds the worker; Start runs it in the background.
func NewConfirmationWorker(opts asynq.RedisClientOpt, offerings offeringRepo.OfferingRepository, logger *zap.Logger) *ConfirmationWorker {
	srv := asynq.NewServer(
		opts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReservationConfirmed, HandleReservationConfirmed(offerings, logger))

	return &ConfirmationWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker, retrying startup with a linear backoff.
func (w *ConfirmationWorker) Start() {
	go func() {
		w.logger.Info("Starting reservation confirmation worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Warn("Failed to start confirmation worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("Confirmation worker gave up; reservations will not be confirmed asynchronously")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown stops fetching new tasks and waits for in-flight ones.
func (w *ConfirmationWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleReservationConfirmed checks that the stored offering still matches the
// payload and records the confirmation.
func HandleReservationConfirmed(offerings offeringRepo.OfferingRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReservationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reservation payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		offering, err := offerings.FindByID(ctx, p.OfferingID)
		if err != nil {
			return err
		}
		if offering == nil {
			logger.Warn("Confirmed offering no longer exists", zap.String("offeringID", p.OfferingID))
			return nil
		}
		if !offering.Booked || offering.ReservedBy != p.AccountID {
			logger.Error("Reservation confirmation does not match stored offering",
				zap.String("offeringID", p.OfferingID),
				zap.String("payloadAccountID", p.AccountID),
				zap.String("storedAccountID", offering.ReservedBy))
			return fmt.Errorf("offering %s reserved by %q: %w", p.OfferingID, offering.ReservedBy, asynq.SkipRetry)
		}

		logger.Info("Reservation confirmed",
			zap.String("offeringID", offering.ID),
			zap.String("accountID", offering.ReservedBy),
			zap.String("publisherID", offering.PublisherID),
			zap.Time("bookedAt", offering.BookedAt))
		return nil
	}
}
