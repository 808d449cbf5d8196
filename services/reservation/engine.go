// Package reservation owns the open to booked transition of an offering.
package reservation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	accountRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/account"
	offeringRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/offering"
	"github.com/S204-Inatel-2025-2/AgendaFacil/metrics"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// Notifier is told about every successful reservation. Failures are logged
// and never undo the booking.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, offering models.Offering) error
}

type ReservationService interface {
	Reserve(ctx context.Context, offeringID, accountID string) (*models.Offering, error)
	ListOpen(ctx context.Context) ([]models.Offering, error)
}

// Engine is the only writer of Offering.Booked and Offering.ReservedBy.
type Engine struct {
	Offerings offeringRepo.OfferingRepository
	Accounts  accountRepo.AccountRepository
	Locker    utils.Locker
	Notifier  Notifier
	Metrics   metrics.Recorder
	Logger    *zap.Logger
}

var _ ReservationService = (*Engine)(nil)

func lockKey(offeringID string) string { return "offering:" + offeringID }

func (e *Engine) recorder() metrics.Recorder {
	if e.Metrics == nil {
		return metrics.Nop{}
	}
	return e.Metrics
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Reserve books offeringID for accountID. Checks run in a fixed order:
// offering exists, offering is open, account exists. The per-offering lock
// serialises callers in this process; MarkBooked's conditional update keeps
// the single-winner guarantee across processes.
func (e *Engine) Reserve(ctx context.Context, offeringID, accountID string) (*models.Offering, error) {
	booked, err := e.reserve(ctx, offeringID, accountID)
	switch {
	case err == nil:
		e.recorder().RecordReservation(metrics.OutcomeSuccess)
	case errors.Is(err, models.ErrAlreadyBooked):
		e.recorder().RecordReservation(metrics.OutcomeAlreadyBooked)
	case errors.Is(err, models.ErrNotFound):
		e.recorder().RecordReservation(metrics.OutcomeNotFound)
	default:
		e.recorder().RecordReservation(metrics.OutcomeError)
	}
	if err != nil {
		return nil, err
	}

	e.logger().Info("Offering reserved",
		zap.String("offeringID", booked.ID), zap.String("accountID", accountID))
	if e.Notifier != nil {
		if err := e.Notifier.ReservationConfirmed(ctx, *booked); err != nil {
			e.logger().Warn("Failed to enqueue reservation confirmation",
				zap.String("offeringID", booked.ID), zap.Error(err))
		}
	}
	return booked, nil
}

func (e *Engine) reserve(ctx context.Context, offeringID, accountID string) (*models.Offering, error) {
	unlock, err := e.Locker.Lock(ctx, lockKey(offeringID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock offering %s: %w", offeringID, err)
	}
	defer unlock()

	offering, err := e.Offerings.FindByID(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offering: %w", err)
	}
	if offering == nil {
		return nil, fmt.Errorf("offering %s: %w", offeringID, models.ErrNotFound)
	}
	if offering.Booked {
		return nil, fmt.Errorf("offering %s: %w", offeringID, models.ErrAlreadyBooked)
	}

	account, err := e.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}

	return e.Offerings.MarkBooked(ctx, offeringID, account.ID)
}

func (e *Engine) ListOpen(ctx context.Context) ([]models.Offering, error) {
	offerings, err := e.Offerings.FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open offerings: %w", err)
	}
	return offerings, nil
}
