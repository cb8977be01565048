package repository

import (
	"car-rental/internal/data/entity"
	"car-rental/pkg/database"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CancellationRepository interface {
	Create(ctx context.Context, cancellation *entity.Cancellation) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Cancellation, error)
}

type cancellationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCancellationRepository(db database.PgxIface, log *zap.Logger) CancellationRepository {
	return &cancellationRepository{
		db:  db,
		log: log.With(zap.String("repository", "cancellation")),
	}
}

func (r *cancellationRepository) Create(ctx context.Context, cancellation *entity.Cancellation) error {
	query := `
		INSERT INTO cancellations (id, booking_id, cancelled_by_id, reason,
		                          cancellation_fee, refund_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		cancellation.ID,
		cancellation.BookingID,
		cancellation.CancelledByID,
		cancellation.Reason,
		cancellation.CancellationFee,
		cancellation.RefundAmount,
		cancellation.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create cancellation",
			zap.Error(err),
			zap.String("booking_id", cancellation.BookingID.String()),
		)
		return fmt.Errorf("create cancellation for booking %s: %w", cancellation.BookingID.String(), err)
	}

	return nil
}

func (r *cancellationRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Cancellation, error) {
	query := `
		SELECT id, booking_id, cancelled_by_id, reason, cancellation_fee,
		       refund_amount, created_at
		FROM cancellations
		WHERE booking_id = $1
	`

	var cancellation entity.Cancellation
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&cancellation.ID,
		&cancellation.BookingID,
		&cancellation.CancelledByID,
		&cancellation.Reason,
		&cancellation.CancellationFee,
		&cancellation.RefundAmount,
		&cancellation.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cancellation by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find cancellation by booking ID %s: %w", bookingID.String(), err)
	}

	return &cancellation, nil
}
