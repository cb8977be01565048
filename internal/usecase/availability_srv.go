package usecase

import (
	"context"
	"fmt"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService adalah satu-satunya pintu untuk tanya dan klaim
// tanggal kendaraan. CheckAvailability itu advisory (lock-free, hasilnya
// bisa basi begitu dibaca), Reserve dan Reschedule yang otoritatif.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, vehicleID string, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)
	Reserve(ctx context.Context, booking *entity.Booking) error
	Reschedule(ctx context.Context, booking *entity.Booking) error
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(
	repo *repository.Repository,
	log *zap.Logger,
) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, vehicleID string, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	// 1. Validasi input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Check availability validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID format %s: %w", vehicleID, err)
	}

	rng, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	// 2. Vehicle harus ada dan bookable
	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, fmt.Errorf("vehicle %s not found", vehicleID)
	}

	if !vehicle.IsBookable() {
		result := &entity.AvailabilityResult{
			Available: false,
			Reason:    entity.ReasonVehicleUnavailable,
		}
		resp := response.AvailabilityToResponse(vehicleID, rng, result)
		return &resp, nil
	}

	var exclude *uuid.UUID
	if req.ExcludeBookingID != nil && *req.ExcludeBookingID != "" {
		excludeID, err := uuid.Parse(*req.ExcludeBookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid booking ID format %s: %w", *req.ExcludeBookingID, err)
		}
		exclude = &excludeID
	}

	// 3. Cari booking occupying yang mungkin bentrok
	candidates, err := s.repo.Booking.FindOverlapping(ctx, entity.OverlapQuery{
		VehicleID:        id,
		Range:            rng,
		Statuses:         entity.OccupyingStatuses(),
		ExcludeBookingID: exclude,
	})
	if err != nil {
		s.log.Error("Failed to find overlapping bookings",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}

	// 4. Keputusan overlap tetap di domain, bukan di query
	conflicts := overlapping(rng, candidates)

	result := &entity.AvailabilityResult{Available: len(conflicts) == 0}
	if len(conflicts) > 0 {
		result.Reason = entity.ReasonDatesConflict
		result.Conflicts = conflicts
	}

	s.log.Info("Availability checked",
		zap.String("vehicle_id", vehicleID),
		zap.String("range", rng.String()),
		zap.Bool("available", result.Available),
		zap.Int("conflicts", len(conflicts)),
	)

	resp := response.AvailabilityToResponse(vehicleID, rng, result)
	return &resp, nil
}

// Reserve menyimpan booking baru lewat jalur guarded di repository.
// Keputusan boleh-tidaknya (vehicle bookable, tidak ada overlap) diambil
// oleh guard di dalam transaksi yang megang lock vehicle.
func (s *availabilityService) Reserve(ctx context.Context, booking *entity.Booking) error {
	err := s.repo.Booking.CreateReserved(ctx, booking, reserveGuard(booking.Range()))
	if err != nil {
		s.logReserveFailure("reserve", booking, err)
		return err
	}

	s.log.Info("Dates reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("vehicle_id", booking.VehicleID.String()),
		zap.String("range", booking.Range().String()),
	)

	return nil
}

// Reschedule memindahkan booking yang sudah ada ke range baru. Booking yang
// dikirim sudah membawa range dan pricing baru; di pencarian bentrok dia
// di-exclude supaya tidak bentrok dengan dirinya sendiri.
func (s *availabilityService) Reschedule(ctx context.Context, booking *entity.Booking) error {
	err := s.repo.Booking.UpdateRangeReserved(ctx, booking, reserveGuard(booking.Range()))
	if err != nil {
		s.logReserveFailure("reschedule", booking, err)
		return err
	}

	s.log.Info("Booking rescheduled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("vehicle_id", booking.VehicleID.String()),
		zap.String("range", booking.Range().String()),
	)

	return nil
}

// ==================== HELPER METHODS ====================

func (s *availabilityService) logReserveFailure(op string, booking *entity.Booking, err error) {
	// Conflict dan lock timeout itu outcome normal di bawah kontensi,
	// bukan error sistem
	if entity.IsConflict(err) || entity.IsLockTimeout(err) || entity.IsVehicleUnavailable(err) {
		s.log.Warn("Reservation rejected",
			zap.String("op", op),
			zap.String("vehicle_id", booking.VehicleID.String()),
			zap.String("range", booking.Range().String()),
			zap.Error(err),
		)
		return
	}

	s.log.Error("Reservation failed",
		zap.String("op", op),
		zap.String("vehicle_id", booking.VehicleID.String()),
		zap.Error(err),
	)
}

// reserveGuard memutuskan boleh-tidaknya reservasi dari dalam critical
// section repository. Vehicle dan occupying datang dari transaksi yang
// sama yang megang row lock, jadi keputusan di sini tidak bisa balapan
// dengan reservasi lain.
func reserveGuard(rng entity.DateRange) repository.ReserveGuard {
	return func(vehicle *entity.Vehicle, occupying []*entity.Booking) error {
		if !vehicle.IsBookable() {
			return entity.ErrVehicleUnavailable
		}

		if conflicts := overlapping(rng, occupying); len(conflicts) > 0 {
			return &entity.ConflictError{Conflicts: conflicts}
		}

		return nil
	}
}

// overlapping re-checks kandidat dari store terhadap aturan half-open.
// Query store sudah menyaring, tapi keputusan akhir tetap di domain.
func overlapping(rng entity.DateRange, bookings []*entity.Booking) []*entity.Booking {
	var conflicts []*entity.Booking
	for _, b := range bookings {
		if rng.Overlaps(b.Range()) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// parseRange menerjemahkan sepasang tanggal request jadi DateRange
func parseRange(startDate, endDate string) (entity.DateRange, error) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return entity.DateRange{}, fmt.Errorf("invalid start date %s: %w", startDate, err)
	}

	end, err := utils.ParseDate(endDate)
	if err != nil {
		return entity.DateRange{}, fmt.Errorf("invalid end date %s: %w", endDate, err)
	}

	return entity.NewDateRange(start, end)
}
