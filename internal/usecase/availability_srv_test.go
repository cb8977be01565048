package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeVehicleRepo serves one vehicle from memory. Method lain dari interface
// tidak dipakai di test ini, embedded nil interface bakal panic kalau kepanggil.
type fakeVehicleRepo struct {
	repository.VehicleRepository
	vehicle *entity.Vehicle
}

func (f *fakeVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	if f.vehicle != nil && f.vehicle.ID == id {
		return f.vehicle, nil
	}
	return nil, nil
}

// fakeBookingRepo emulates the guarded reservation contract: satu mutex per
// store menggantikan row lock, guard dipanggil di dalam critical section
// dengan occupying yang fresh.
type fakeBookingRepo struct {
	repository.BookingRepository
	mu       sync.Mutex
	vehicle  *entity.Vehicle
	bookings []*entity.Booking
}

func (f *fakeBookingRepo) overlappingLocked(q entity.OverlapQuery) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range f.bookings {
		if b.VehicleID != q.VehicleID {
			continue
		}
		if q.ExcludeBookingID != nil && b.ID == *q.ExcludeBookingID {
			continue
		}
		occupying := false
		for _, s := range q.Statuses {
			if b.Status == s {
				occupying = true
				break
			}
		}
		if !occupying {
			continue
		}
		if b.StartDate.Before(q.Range.End) && b.EndDate.After(q.Range.Start) {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeBookingRepo) FindOverlapping(ctx context.Context, q entity.OverlapQuery) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlappingLocked(q), nil
}

func (f *fakeBookingRepo) CreateReserved(ctx context.Context, booking *entity.Booking, guard repository.ReserveGuard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.vehicle == nil || f.vehicle.ID != booking.VehicleID {
		return fmt.Errorf("vehicle %s not found", booking.VehicleID)
	}

	occupying := f.overlappingLocked(entity.OverlapQuery{
		VehicleID: booking.VehicleID,
		Range:     booking.Range(),
		Statuses:  entity.OccupyingStatuses(),
	})

	if err := guard(f.vehicle, occupying); err != nil {
		return err
	}

	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeBookingRepo) UpdateRangeReserved(ctx context.Context, booking *entity.Booking, guard repository.ReserveGuard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.vehicle == nil || f.vehicle.ID != booking.VehicleID {
		return fmt.Errorf("vehicle %s not found", booking.VehicleID)
	}

	occupying := f.overlappingLocked(entity.OverlapQuery{
		VehicleID:        booking.VehicleID,
		Range:            booking.Range(),
		Statuses:         entity.OccupyingStatuses(),
		ExcludeBookingID: &booking.ID,
	})

	if err := guard(f.vehicle, occupying); err != nil {
		return err
	}

	for i, b := range f.bookings {
		if b.ID == booking.ID {
			f.bookings[i] = booking
			return nil
		}
	}
	return fmt.Errorf("booking %s not found", booking.ID)
}

func testVehicle() *entity.Vehicle {
	v := &entity.Vehicle{
		Make:     "Toyota",
		Model:    "Avanza",
		Year:     2022,
		Status:   entity.VehicleStatusAvailable,
		IsActive: true,
	}
	v.ID = uuid.New()
	return v
}

func newAvailabilityFixture(vehicle *entity.Vehicle) (AvailabilityService, *fakeBookingRepo) {
	bookingRepo := &fakeBookingRepo{vehicle: vehicle}
	repo := &repository.Repository{
		Vehicle: &fakeVehicleRepo{vehicle: vehicle},
		Booking: bookingRepo,
	}
	return NewAvailabilityService(repo, zap.NewNop()), bookingRepo
}

func seedBooking(vehicleID uuid.UUID, status entity.BookingStatus, start, end string) *entity.Booking {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	b := &entity.Booking{
		VehicleID: vehicleID,
		UserID:    uuid.New(),
		StartDate: s,
		EndDate:   e,
		Status:    status,
	}
	b.ID = uuid.New()
	return b
}

func TestCheckAvailabilityFreeRange(t *testing.T) {
	vehicle := testVehicle()
	svc, _ := newAvailabilityFixture(vehicle)

	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-01",
		EndDate:   "2024-02-05",
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !resp.Available {
		t.Fatalf("expected available, got reason %q", resp.Reason)
	}
	if len(resp.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(resp.Conflicts))
	}
}

func TestCheckAvailabilityDatesConflict(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)
	bookingRepo.bookings = append(bookingRepo.bookings,
		seedBooking(vehicle.ID, entity.BookingStatusConfirmed, "2024-02-03", "2024-02-07"))

	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-01",
		EndDate:   "2024-02-05",
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if resp.Available {
		t.Fatal("expected unavailable for overlapping range")
	}
	if resp.Reason != string(entity.ReasonDatesConflict) {
		t.Fatalf("expected reason dates_conflict, got %q", resp.Reason)
	}
	if len(resp.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(resp.Conflicts))
	}
	if resp.Conflicts[0].StartDate != "2024-02-03" {
		t.Fatalf("expected conflict start 2024-02-03, got %s", resp.Conflicts[0].StartDate)
	}
}

func TestCheckAvailabilityBackToBackIsFree(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)
	bookingRepo.bookings = append(bookingRepo.bookings,
		seedBooking(vehicle.ID, entity.BookingStatusActive, "2024-02-01", "2024-02-03"))

	// Mobil kembali tanggal 3, request mulai tanggal 3. Harus available.
	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-03",
		EndDate:   "2024-02-05",
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !resp.Available {
		t.Fatalf("expected back-to-back range available, got reason %q", resp.Reason)
	}
}

func TestCheckAvailabilityShiftedDayConflicts(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)
	bookingRepo.bookings = append(bookingRepo.bookings,
		seedBooking(vehicle.ID, entity.BookingStatusConfirmed, "2024-02-01", "2024-02-03"))

	// Mulai sehari sebelum mobil kembali, nabrak hari terakhir booking lama.
	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-02",
		EndDate:   "2024-02-04",
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if resp.Available {
		t.Fatal("expected conflict for range overlapping the last rental day")
	}
	if len(resp.Conflicts) != 1 || resp.Conflicts[0].StartDate != "2024-02-01" {
		t.Fatalf("expected the existing Feb 1 booking as the only conflict, got %+v", resp.Conflicts)
	}
}

func TestCheckAvailabilityIgnoresReleasedBookings(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)
	bookingRepo.bookings = append(bookingRepo.bookings,
		seedBooking(vehicle.ID, entity.BookingStatusCancelled, "2024-02-01", "2024-02-10"),
		seedBooking(vehicle.ID, entity.BookingStatusCompleted, "2024-02-01", "2024-02-10"))

	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-02",
		EndDate:   "2024-02-06",
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !resp.Available {
		t.Fatalf("cancelled/completed bookings should not block dates, got reason %q", resp.Reason)
	}
}

func TestCheckAvailabilityExcludesRequestedBooking(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)

	existing := seedBooking(vehicle.ID, entity.BookingStatusConfirmed, "2024-02-01", "2024-02-05")
	bookingRepo.bookings = append(bookingRepo.bookings, existing)

	// Range baru nyenggol range lama booking itu sendiri
	excludeID := existing.ID.String()
	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate:        "2024-02-03",
		EndDate:          "2024-02-08",
		ExcludeBookingID: &excludeID,
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !resp.Available {
		t.Fatalf("expected own booking to be excluded, got reason %q", resp.Reason)
	}

	// Tanpa exclude, range yang sama bentrok
	resp, err = svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-03",
		EndDate:   "2024-02-08",
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if resp.Available {
		t.Fatal("expected conflict without exclusion")
	}
}

func TestCheckAvailabilityVehicleNotBookable(t *testing.T) {
	vehicle := testVehicle()
	vehicle.Status = entity.VehicleStatusMaintenance
	svc, _ := newAvailabilityFixture(vehicle)

	resp, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-01",
		EndDate:   "2024-02-05",
	})
	if err != nil {
		t.Fatalf("unavailable vehicle is a result, not an error: %v", err)
	}
	if resp.Available {
		t.Fatal("expected unavailable for vehicle in maintenance")
	}
	if resp.Reason != string(entity.ReasonVehicleUnavailable) {
		t.Fatalf("expected reason vehicle_unavailable, got %q", resp.Reason)
	}
}

func TestCheckAvailabilityRejectsBadInput(t *testing.T) {
	vehicle := testVehicle()
	svc, _ := newAvailabilityFixture(vehicle)

	// End sebelum start
	if _, err := svc.CheckAvailability(context.Background(), vehicle.ID.String(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-05",
		EndDate:   "2024-02-01",
	}); err == nil {
		t.Fatal("expected error for reversed range")
	}

	// Vehicle tidak dikenal
	if _, err := svc.CheckAvailability(context.Background(), uuid.NewString(), &request.CheckAvailabilityRequest{
		StartDate: "2024-02-01",
		EndDate:   "2024-02-05",
	}); err == nil {
		t.Fatal("expected error for unknown vehicle")
	}
}

func TestReserveRejectsOverlap(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)
	bookingRepo.bookings = append(bookingRepo.bookings,
		seedBooking(vehicle.ID, entity.BookingStatusPending, "2024-02-03", "2024-02-07"))

	overlap := seedBooking(vehicle.ID, entity.BookingStatusPending, "2024-02-05", "2024-02-09")
	err := svc.Reserve(context.Background(), overlap)
	if !entity.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(bookingRepo.bookings) != 1 {
		t.Fatalf("rejected reservation must not be stored, have %d bookings", len(bookingRepo.bookings))
	}

	adjacent := seedBooking(vehicle.ID, entity.BookingStatusPending, "2024-02-07", "2024-02-09")
	if err := svc.Reserve(context.Background(), adjacent); err != nil {
		t.Fatalf("adjacent range should reserve cleanly: %v", err)
	}
}

func TestReserveRejectsUnbookableVehicle(t *testing.T) {
	vehicle := testVehicle()
	vehicle.IsActive = false
	svc, _ := newAvailabilityFixture(vehicle)

	err := svc.Reserve(context.Background(), seedBooking(vehicle.ID, entity.BookingStatusPending, "2024-02-01", "2024-02-05"))
	if !entity.IsVehicleUnavailable(err) {
		t.Fatalf("expected ErrVehicleUnavailable, got %v", err)
	}
}

func TestConcurrentReserveExactlyOneWins(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)

	const workers = 16
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := seedBooking(vehicle.ID, entity.BookingStatusPending, "2024-02-01", "2024-02-05")
			results <- svc.Reserve(context.Background(), b)
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case entity.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != workers-1 {
		t.Fatalf("expected %d conflicts, got %d", workers-1, conflicts)
	}
	if len(bookingRepo.bookings) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(bookingRepo.bookings))
	}
}

func TestRescheduleExcludesSelf(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)

	booking := seedBooking(vehicle.ID, entity.BookingStatusConfirmed, "2024-02-01", "2024-02-05")
	bookingRepo.bookings = append(bookingRepo.bookings, booking)

	// Geser ke range yang masih nyenggol range lamanya sendiri, harus boleh
	moved := *booking
	moved.StartDate = time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	moved.EndDate = time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC)

	if err := svc.Reschedule(context.Background(), &moved); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	stored := bookingRepo.bookings[0]
	if !stored.StartDate.Equal(moved.StartDate) || !stored.EndDate.Equal(moved.EndDate) {
		t.Fatalf("expected stored range to move, got [%s, %s)", stored.StartDate, stored.EndDate)
	}
}

func TestRescheduleRejectsOverlapWithOthers(t *testing.T) {
	vehicle := testVehicle()
	svc, bookingRepo := newAvailabilityFixture(vehicle)

	booking := seedBooking(vehicle.ID, entity.BookingStatusConfirmed, "2024-02-01", "2024-02-03")
	other := seedBooking(vehicle.ID, entity.BookingStatusConfirmed, "2024-02-05", "2024-02-08")
	bookingRepo.bookings = append(bookingRepo.bookings, booking, other)

	moved := *booking
	moved.StartDate = time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC)
	moved.EndDate = time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC)

	err := svc.Reschedule(context.Background(), &moved)
	if !entity.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}
