package repository

import (
	"car-rental/internal/data/entity"
	"car-rental/pkg/database"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// reserveLockTimeout membatasi berapa lama reservasi nunggu row lock
// vehicle sebelum nyerah dengan SQLSTATE 55P03.
const reserveLockTimeout = 3 * time.Second

// ReserveGuard dipanggil di dalam transaksi reservasi, setelah row vehicle
// ter-lock dan booking occupying sudah diambil. Return error = rollback.
// Keputusan bentrok atau tidak ada di guard, bukan di repository.
type ReserveGuard func(vehicle *entity.Vehicle, occupying []*entity.Booking) error

type BookingRepository interface {
	// CRUD
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByBookingRef(ctx context.Context, bookingRef string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int, status *string) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID, status *string) (int64, error)
	FindByVehicleID(ctx context.Context, vehicleID uuid.UUID, statuses []entity.BookingStatus) ([]*entity.Booking, error)

	// Overlap lookup, lock-free (untuk availability check read-only)
	FindOverlapping(ctx context.Context, q entity.OverlapQuery) ([]*entity.Booking, error)

	// Status & payment updates
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error
	HasCompletedBooking(ctx context.Context, userID, vehicleID uuid.UUID) (bool, error)

	// Guarded writes. Semua check-then-write untuk satu vehicle
	// diserialisasi lewat row lock di sini.
	CreateReserved(ctx context.Context, booking *entity.Booking, guard ReserveGuard) error
	UpdateRangeReserved(ctx context.Context, booking *entity.Booking, guard ReserveGuard) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_ref, user_id, vehicle_id, start_date, end_date, status,
	       payment_status, daily_rate, total_days, subtotal, discount_amount,
	       deposit_amount, total_amount, customer_name, customer_email, customer_phone,
	       pickup_location, return_location, special_requests,
	       confirmed_at, started_at, completed_at, cancelled_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanBooking(s scanner, booking *entity.Booking) error {
	return s.Scan(
		&booking.ID,
		&booking.BookingRef,
		&booking.UserID,
		&booking.VehicleID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.DailyRate,
		&booking.TotalDays,
		&booking.Subtotal,
		&booking.DiscountAmount,
		&booking.DepositAmount,
		&booking.TotalAmount,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.PickupLocation,
		&booking.ReturnLocation,
		&booking.SpecialRequests,
		&booking.ConfirmedAt,
		&booking.StartedAt,
		&booking.CompletedAt,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	_, err := r.db.Exec(ctx, insertBookingQuery, insertBookingArgs(booking)...)
	if err != nil {
		if isExclusionViolation(err) {
			return &entity.ConflictError{}
		}
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_ref", booking.BookingRef),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingRef, err)
	}

	return nil
}

const insertBookingQuery = `
	INSERT INTO bookings (id, booking_ref, user_id, vehicle_id, start_date, end_date, status,
	                     payment_status, daily_rate, total_days, subtotal, discount_amount,
	                     deposit_amount, total_amount, customer_name, customer_email,
	                     customer_phone, pickup_location, return_location, special_requests,
	                     created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	        $17, $18, $19, $20, $21, $22)
`

func insertBookingArgs(booking *entity.Booking) []interface{} {
	return []interface{}{
		booking.ID,
		booking.BookingRef,
		booking.UserID,
		booking.VehicleID,
		booking.StartDate,
		booking.EndDate,
		booking.Status,
		booking.PaymentStatus,
		booking.DailyRate,
		booking.TotalDays,
		booking.Subtotal,
		booking.DiscountAmount,
		booking.DepositAmount,
		booking.TotalAmount,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.PickupLocation,
		booking.ReturnLocation,
		booking.SpecialRequests,
		booking.CreatedAt,
		booking.UpdatedAt,
	}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking entity.Booking
	err := scanBooking(r.db.QueryRow(ctx, query, id), &booking)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByBookingRef(ctx context.Context, bookingRef string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_ref = $1`

	var booking entity.Booking
	err := scanBooking(r.db.QueryRow(ctx, query, bookingRef), &booking)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ref",
			zap.Error(err),
			zap.String("booking_ref", bookingRef),
		)
		return nil, fmt.Errorf("find booking by ref %s: %w", bookingRef, err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int, status *string) ([]*entity.Booking, error) {
	// Build query dengan optional status filter
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1`)

	args := []interface{}{userID}
	argCount := 2

	if status != nil && *status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY start_date DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID, status *string) (int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM bookings WHERE user_id = $1`)

	args := []interface{}{userID}

	if status != nil && *status != "" {
		queryBuilder.WriteString(" AND status = $2")
		args = append(args, *status)
	}

	var count int64
	err := r.db.QueryRow(ctx, queryBuilder.String(), args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user %s: %w", userID.String(), err)
	}

	return count, nil
}

// FindByVehicleID returns a vehicle's bookings ordered by start date,
// optionally dibatasi ke status tertentu.
func (r *bookingRepository) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID, statuses []entity.BookingStatus) ([]*entity.Booking, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + bookingColumns + ` FROM bookings WHERE vehicle_id = $1`)

	args := []interface{}{vehicleID}

	if len(statuses) > 0 {
		queryBuilder.WriteString(" AND status = ANY($2)")
		args = append(args, statusStrings(statuses))
	}

	queryBuilder.WriteString(" ORDER BY start_date ASC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find bookings by vehicle",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return nil, fmt.Errorf("find bookings by vehicle %s: %w", vehicleID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// FindOverlapping mengambil booking yang MUNGKIN bentrok dengan range di
// query. SQL cuma mempersempit kandidat pakai predikat half-open
// (start_date < end AND end_date > start); keputusan final overlap tetap
// di domain layer.
func (r *bookingRepository) FindOverlapping(ctx context.Context, q entity.OverlapQuery) ([]*entity.Booking, error) {
	return r.findOverlapping(ctx, r.db, q)
}

func (r *bookingRepository) findOverlapping(ctx context.Context, runner rowQuerier, q entity.OverlapQuery) ([]*entity.Booking, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + bookingColumns + ` FROM bookings`)
	queryBuilder.WriteString(` WHERE vehicle_id = $1 AND status = ANY($2)`)
	queryBuilder.WriteString(` AND start_date < $3 AND end_date > $4`)

	args := []interface{}{q.VehicleID, statusStrings(q.Statuses), q.Range.End, q.Range.Start}

	if q.ExcludeBookingID != nil {
		queryBuilder.WriteString(" AND id <> $5")
		args = append(args, *q.ExcludeBookingID)
	}

	queryBuilder.WriteString(" ORDER BY start_date ASC")

	rows, err := runner.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find overlapping bookings",
			zap.Error(err),
			zap.String("vehicle_id", q.VehicleID.String()),
		)
		return nil, fmt.Errorf("find overlapping bookings for vehicle %s: %w", q.VehicleID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	// Stamp timestamp lifecycle yang sesuai sekalian
	query := `
		UPDATE bookings
		SET status = $2,
		    updated_at = NOW(),
		    confirmed_at = CASE WHEN $2 = 'confirmed' THEN NOW() ELSE confirmed_at END,
		    started_at   = CASE WHEN $2 = 'active'    THEN NOW() ELSE started_at END,
		    completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, bookingID, string(status))
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking status %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, bookingID, string(status))
	if err != nil {
		r.log.Error("Failed to update booking payment status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_status", string(status)),
		)
		return fmt.Errorf("update booking payment status %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) HasCompletedBooking(ctx context.Context, userID, vehicleID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND vehicle_id = $2 AND status = 'completed'
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, vehicleID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check completed booking",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return false, fmt.Errorf("check completed booking: %w", err)
	}

	return exists, nil
}

// CreateReserved inserts a booking setelah lolos guard, dengan row lock di
// vehicle supaya dua request konkuren tidak bisa sama-sama lolos check.
func (r *bookingRepository) CreateReserved(ctx context.Context, booking *entity.Booking, guard ReserveGuard) error {
	q := entity.OverlapQuery{
		VehicleID: booking.VehicleID,
		Range:     booking.Range(),
		Statuses:  entity.OccupyingStatuses(),
	}

	return r.reserveTx(ctx, q, guard, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertBookingQuery, insertBookingArgs(booking)...); err != nil {
			if isExclusionViolation(err) {
				// Constraint di store nangkep race yang lolos; guard
				// sudah memutuskan available, jadi tetap conflict.
				return &entity.ConflictError{}
			}
			return fmt.Errorf("insert booking %s: %w", booking.BookingRef, err)
		}
		return nil
	})
}

// UpdateRangeReserved moves an existing booking to a new range (plus
// pricing turunannya) lewat jalur guarded yang sama dengan create.
// Booking yang dikirim sudah membawa range baru; dirinya di-exclude dari
// pencarian bentrok.
func (r *bookingRepository) UpdateRangeReserved(ctx context.Context, booking *entity.Booking, guard ReserveGuard) error {
	q := entity.OverlapQuery{
		VehicleID:        booking.VehicleID,
		Range:            booking.Range(),
		Statuses:         entity.OccupyingStatuses(),
		ExcludeBookingID: &booking.ID,
	}

	return r.reserveTx(ctx, q, guard, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET start_date = $2, end_date = $3, total_days = $4,
			    subtotal = $5, total_amount = $6, updated_at = $7
			WHERE id = $1
		`

		result, err := tx.Exec(ctx, query,
			booking.ID,
			booking.StartDate,
			booking.EndDate,
			booking.TotalDays,
			booking.Subtotal,
			booking.TotalAmount,
			booking.UpdatedAt,
		)
		if err != nil {
			if isExclusionViolation(err) {
				return &entity.ConflictError{}
			}
			return fmt.Errorf("update booking range %s: %w", booking.ID.String(), err)
		}

		if result.RowsAffected() == 0 {
			return fmt.Errorf("booking %s not found", booking.ID.String())
		}
		return nil
	})
}

// reserveTx is the critical section: BEGIN -> lock vehicle row ->
// ambil occupying -> guard -> persist -> COMMIT.
func (r *bookingRepository) reserveTx(ctx context.Context, q entity.OverlapQuery, guard ReserveGuard, persist func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Jangan nunggu lock selamanya, kasih batas lalu lapor retryable
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", reserveLockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, timeout); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	vehicle, err := r.lockVehicle(ctx, tx, q.VehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return fmt.Errorf("vehicle %s not found", q.VehicleID.String())
	}

	occupying, err := r.findOverlapping(ctx, tx, q)
	if err != nil {
		return err
	}

	if err := guard(vehicle, occupying); err != nil {
		return err
	}

	if err := persist(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserve tx: %w", err)
	}

	return nil
}

// lockVehicle takes the per-vehicle row lock that serializes reservations
func (r *bookingRepository) lockVehicle(ctx context.Context, tx pgx.Tx, vehicleID uuid.UUID) (*entity.Vehicle, error) {
	query := `
		SELECT id, owner_id, make, model, year, plate_number, color, body_type,
		       fuel_type, transmission, seating_capacity, features, daily_rate,
		       deposit_amount, mileage_limit, status, is_active, pickup_location,
		       rating, created_at, updated_at, deleted_at
		FROM vehicles
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var vehicle entity.Vehicle
	err := tx.QueryRow(ctx, query, vehicleID).Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.PlateNumber,
		&vehicle.Color,
		&vehicle.BodyType,
		&vehicle.FuelType,
		&vehicle.Transmission,
		&vehicle.SeatingCapacity,
		&vehicle.Features,
		&vehicle.DailyRate,
		&vehicle.DepositAmount,
		&vehicle.MileageLimit,
		&vehicle.Status,
		&vehicle.IsActive,
		&vehicle.PickupLocation,
		&vehicle.Rating,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
		&vehicle.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if isLockTimeout(err) {
		r.log.Warn("Reserve lock timeout",
			zap.String("vehicle_id", vehicleID.String()),
		)
		return nil, fmt.Errorf("lock vehicle %s: %w", vehicleID.String(), entity.ErrLockTimeout)
	}
	if err != nil {
		r.log.Error("Failed to lock vehicle row",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return nil, fmt.Errorf("lock vehicle %s: %w", vehicleID.String(), err)
	}

	return &vehicle, nil
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func statusStrings(statuses []entity.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// isExclusionViolation matches the bookings_no_overlap exclusion
// constraint (SQLSTATE 23P01)
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// isLockTimeout matches SQLSTATE 55P03 (lock_not_available)
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
