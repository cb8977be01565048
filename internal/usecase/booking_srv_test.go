package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/events"
	"car-rental/internal/payment"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FindByID balikin salinan, mirip row scan dari database. Mutasi lewat
// Transition di service tidak tembus ke store tanpa UpdateStatus.
func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			found := *b
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID != bookingID {
			continue
		}
		b.Status = status
		now := time.Now()
		switch status {
		case entity.BookingStatusConfirmed:
			b.ConfirmedAt = &now
		case entity.BookingStatusActive:
			b.StartedAt = &now
		case entity.BookingStatusCompleted:
			b.CompletedAt = &now
		case entity.BookingStatusCancelled:
			b.CancelledAt = &now
		}
		return nil
	}
	return fmt.Errorf("booking %s not found", bookingID)
}

func (f *fakeBookingRepo) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == bookingID {
			b.PaymentStatus = status
			return nil
		}
	}
	return fmt.Errorf("booking %s not found", bookingID)
}

func (f *fakeVehicleRepo) UpdateStatus(ctx context.Context, vehicleID uuid.UUID, status entity.VehicleStatus) error {
	if f.vehicle != nil && f.vehicle.ID == vehicleID {
		f.vehicle.Status = status
	}
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	payments []*entity.Payment
}

func (f *fakePaymentRepo) Create(ctx context.Context, pmt *entity.Payment) error {
	stored := *pmt
	f.payments = append(f.payments, &stored)
	return nil
}

func (f *fakePaymentRepo) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status entity.PaymentStatus, transactionID *string) error {
	for _, p := range f.payments {
		if p.ID == paymentID {
			p.Status = status
			p.TransactionID = transactionID
			if status == entity.PaymentStatusPaid {
				now := time.Now()
				p.PaidAt = &now
			}
			return nil
		}
	}
	return fmt.Errorf("payment %s not found", paymentID)
}

func (f *fakePaymentRepo) SumPaidByBookingID(ctx context.Context, bookingID uuid.UUID) (float64, error) {
	var total float64
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.Status == entity.PaymentStatusPaid {
			total += p.Amount
		}
	}
	return total, nil
}

func (f *fakePaymentRepo) FindLatestPaidByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	for i := len(f.payments) - 1; i >= 0; i-- {
		if f.payments[i].BookingID == bookingID && f.payments[i].Status == entity.PaymentStatusPaid {
			return f.payments[i], nil
		}
	}
	return nil, nil
}

type fakePaymentMethodRepo struct {
	repository.PaymentMethodRepository
	methods map[uuid.UUID]*entity.PaymentMethod
}

func (f *fakePaymentMethodRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	return f.methods[id], nil
}

type fakeCancellationRepo struct {
	repository.CancellationRepository
	cancellations []*entity.Cancellation
}

func (f *fakeCancellationRepo) Create(ctx context.Context, cancellation *entity.Cancellation) error {
	f.cancellations = append(f.cancellations, cancellation)
	return nil
}

// fakeGateway mencatat semua charge dan refund. Set declineReason untuk
// simulasi kartu ditolak, chargeErr untuk gateway down.
type fakeGateway struct {
	declineReason string
	chargeErr     error
	charges       []payment.ChargeRequest
	refunds       []float64
}

func (g *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.charges = append(g.charges, req)
	if g.declineReason != "" {
		return &payment.ChargeResult{Succeeded: false, FailureReason: g.declineReason}, nil
	}
	return &payment.ChargeResult{
		TransactionID: "pi_test_" + uuid.NewString(),
		Succeeded:     true,
	}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	g.refunds = append(g.refunds, amount)
	return "re_test_" + uuid.NewString(), nil
}

type bookingFixture struct {
	svc           BookingService
	vehicle       *entity.Vehicle
	renter        *entity.User
	owner         *entity.User
	admin         *entity.User
	bookings      *fakeBookingRepo
	payments      *fakePaymentRepo
	cancellations *fakeCancellationRepo
	methods       *fakePaymentMethodRepo
	gateway       *fakeGateway
}

func testUser(name string) *entity.User {
	u := &entity.User{
		Username: name,
		Email:    name + "@example.com",
		FullName: name,
		Role:     entity.RoleCustomer,
		IsActive: true,
	}
	u.ID = uuid.New()
	return u
}

// Vehicle milik owner, rate 50 per hari, deposit 100. Booking 4 hari
// dengan angka ini: subtotal 200, total 300.
func newBookingFixture() *bookingFixture {
	owner := testUser("owner")
	renter := testUser("renter")
	admin := testUser("admin")
	admin.Role = entity.RoleAdmin

	vehicle := testVehicle()
	vehicle.OwnerID = owner.ID
	vehicle.DailyRate = 50
	vehicle.DepositAmount = 100
	vehicle.PickupLocation = "Jakarta Selatan"

	bookingRepo := &fakeBookingRepo{vehicle: vehicle}
	paymentRepo := &fakePaymentRepo{}
	cancellationRepo := &fakeCancellationRepo{}
	methodRepo := &fakePaymentMethodRepo{methods: map[uuid.UUID]*entity.PaymentMethod{}}

	repo := &repository.Repository{
		User: &fakeUserRepo{users: map[uuid.UUID]*entity.User{
			owner.ID:  owner,
			renter.ID: renter,
			admin.ID:  admin,
		}},
		Vehicle:       &fakeVehicleRepo{vehicle: vehicle},
		Booking:       bookingRepo,
		Payment:       paymentRepo,
		PaymentMethod: methodRepo,
		Cancellation:  cancellationRepo,
	}

	config := &utils.Config{}
	config.Booking.MaxRentalDays = 30
	config.Stripe.Currency = "usd"

	gateway := &fakeGateway{}
	availability := NewAvailabilityService(repo, zap.NewNop())

	return &bookingFixture{
		svc:           NewBookingService(repo, config, availability, gateway, events.NewNoopPublisher(), zap.NewNop()),
		vehicle:       vehicle,
		renter:        renter,
		owner:         owner,
		admin:         admin,
		bookings:      bookingRepo,
		payments:      paymentRepo,
		cancellations: cancellationRepo,
		methods:       methodRepo,
		gateway:       gateway,
	}
}

// seed menaruh booking atas nama renter langsung di store, setup tanpa
// lewat jalur reservasi.
func (fx *bookingFixture) seed(status entity.BookingStatus, start time.Time, days int) *entity.Booking {
	subtotal := fx.vehicle.DailyRate * float64(days)
	b := &entity.Booking{
		BookingRef:    utils.GenerateBookingRef(),
		UserID:        fx.renter.ID,
		VehicleID:     fx.vehicle.ID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, days),
		Status:        status,
		DailyRate:     fx.vehicle.DailyRate,
		TotalDays:     days,
		Subtotal:      subtotal,
		DepositAmount: fx.vehicle.DepositAmount,
		TotalAmount:   subtotal + fx.vehicle.DepositAmount,
		PaymentStatus: entity.PaymentStatusPending,
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	fx.bookings.bookings = append(fx.bookings.bookings, b)
	return b
}

func (fx *bookingFixture) seedPaid(bookingID uuid.UUID, amount float64) {
	tx := "pi_test_seeded"
	now := time.Now()
	p := &entity.Payment{
		BookingID:       bookingID,
		PaymentMethodID: uuid.New(),
		Amount:          amount,
		Currency:        "usd",
		Status:          entity.PaymentStatusPaid,
		TransactionID:   &tx,
		PaidAt:          &now,
	}
	p.ID = uuid.New()
	fx.payments.payments = append(fx.payments.payments, p)
}

func (fx *bookingFixture) paymentMethod(active bool) *entity.PaymentMethod {
	pm := &entity.PaymentMethod{Name: "Credit Card", Code: "credit_card", IsActive: active}
	pm.ID = uuid.New()
	fx.methods.methods[pm.ID] = pm
	return pm
}

func futureDay(days int) time.Time {
	return entity.DayOf(time.Now()).AddDate(0, 0, days)
}

func TestCancellationPolicyTiers(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	booking := &entity.Booking{
		StartDate:     start,
		Subtotal:      200,
		DepositAmount: 100,
	}

	tests := []struct {
		name       string
		now        time.Time
		fee        float64
		refundable float64
	}{
		{"three days before", start.Add(-72 * time.Hour), 0, 300},
		{"exactly 48 hours", start.Add(-48 * time.Hour), 0, 300},
		{"36 hours before", start.Add(-36 * time.Hour), 100, 200},
		{"exactly 24 hours", start.Add(-24 * time.Hour), 100, 200},
		{"six hours before", start.Add(-6 * time.Hour), 200, 100},
		{"after start", start.Add(2 * time.Hour), 200, 100},
	}

	for _, tc := range tests {
		fee, refundable := cancellationPolicy(booking, tc.now)
		if fee != tc.fee {
			t.Errorf("%s: expected fee %.0f, got %.0f", tc.name, tc.fee, fee)
		}
		if refundable != tc.refundable {
			t.Errorf("%s: expected refundable %.0f, got %.0f", tc.name, tc.refundable, refundable)
		}
	}
}

func TestCreateBookingPricingSnapshot(t *testing.T) {
	fx := newBookingFixture()

	resp, err := fx.svc.CreateBooking(context.Background(), fx.renter.ID.String(), &request.CreateBookingRequest{
		VehicleID: fx.vehicle.ID.String(),
		StartDate: futureDay(7).Format(utils.DateLayout),
		EndDate:   futureDay(10).Format(utils.DateLayout),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if resp.Status != entity.BookingStatusPending {
		t.Errorf("expected status pending, got %s", resp.Status)
	}
	if resp.TotalDays != 3 {
		t.Errorf("expected 3 days, got %d", resp.TotalDays)
	}
	if resp.Subtotal != 150 {
		t.Errorf("expected subtotal 150, got %.2f", resp.Subtotal)
	}
	if resp.TotalAmount != 250 {
		t.Errorf("expected total 250 including deposit, got %.2f", resp.TotalAmount)
	}
	if resp.PickupLocation != fx.vehicle.PickupLocation {
		t.Errorf("expected vehicle pickup location %q, got %q", fx.vehicle.PickupLocation, resp.PickupLocation)
	}

	if len(fx.bookings.bookings) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(fx.bookings.bookings))
	}
	stored := fx.bookings.bookings[0]
	if stored.CustomerName != fx.renter.FullName {
		t.Errorf("expected customer snapshot %q, got %q", fx.renter.FullName, stored.CustomerName)
	}
	if stored.BookingRef == "" {
		t.Error("expected booking ref to be generated")
	}
}

func TestCreateBookingRejectsBadRanges(t *testing.T) {
	fx := newBookingFixture()
	ctx := context.Background()

	// Mulai kemarin
	if _, err := fx.svc.CreateBooking(ctx, fx.renter.ID.String(), &request.CreateBookingRequest{
		VehicleID: fx.vehicle.ID.String(),
		StartDate: futureDay(-1).Format(utils.DateLayout),
		EndDate:   futureDay(2).Format(utils.DateLayout),
	}); err == nil || !strings.Contains(err.Error(), "past") {
		t.Fatalf("expected past date rejection, got %v", err)
	}

	// Lebih panjang dari MaxRentalDays
	if _, err := fx.svc.CreateBooking(ctx, fx.renter.ID.String(), &request.CreateBookingRequest{
		VehicleID: fx.vehicle.ID.String(),
		StartDate: futureDay(1).Format(utils.DateLayout),
		EndDate:   futureDay(40).Format(utils.DateLayout),
	}); err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected rental length rejection, got %v", err)
	}

	if len(fx.bookings.bookings) != 0 {
		t.Fatalf("rejected bookings must not be stored, have %d", len(fx.bookings.bookings))
	}
}

func TestCreateBookingRejectsUnbookableVehicle(t *testing.T) {
	fx := newBookingFixture()
	fx.vehicle.Status = entity.VehicleStatusMaintenance

	_, err := fx.svc.CreateBooking(context.Background(), fx.renter.ID.String(), &request.CreateBookingRequest{
		VehicleID: fx.vehicle.ID.String(),
		StartDate: futureDay(7).Format(utils.DateLayout),
		EndDate:   futureDay(10).Format(utils.DateLayout),
	})
	if !entity.IsVehicleUnavailable(err) {
		t.Fatalf("expected ErrVehicleUnavailable, got %v", err)
	}
}

func TestCreateBookingConflictPassesThrough(t *testing.T) {
	fx := newBookingFixture()
	fx.seed(entity.BookingStatusConfirmed, futureDay(5), 4)

	_, err := fx.svc.CreateBooking(context.Background(), fx.renter.ID.String(), &request.CreateBookingRequest{
		VehicleID: fx.vehicle.ID.String(),
		StartDate: futureDay(7).Format(utils.DateLayout),
		EndDate:   futureDay(11).Format(utils.DateLayout),
	})
	if !entity.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	var conflictErr *entity.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected *entity.ConflictError, got %T", err)
	}
	if len(conflictErr.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict attached, got %d", len(conflictErr.Conflicts))
	}

	if len(fx.bookings.bookings) != 1 {
		t.Fatalf("conflicting booking must not be stored, have %d", len(fx.bookings.bookings))
	}
}

func TestConfirmBookingOnlyOwnerOrAdmin(t *testing.T) {
	fx := newBookingFixture()
	ctx := context.Background()
	booking := fx.seed(entity.BookingStatusPending, futureDay(5), 3)

	// Renter tidak bisa konfirmasi bookingnya sendiri
	if _, err := fx.svc.ConfirmBooking(ctx, booking.ID.String(), fx.renter.ID.String()); err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected renter to be denied, got %v", err)
	}

	// Orang luar juga tidak
	if _, err := fx.svc.ConfirmBooking(ctx, booking.ID.String(), uuid.NewString()); err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected stranger to be denied, got %v", err)
	}

	resp, err := fx.svc.ConfirmBooking(ctx, booking.ID.String(), fx.owner.ID.String())
	if err != nil {
		t.Fatalf("ConfirmBooking by owner: %v", err)
	}
	if resp.Status != entity.BookingStatusConfirmed {
		t.Errorf("expected status confirmed, got %s", resp.Status)
	}
	if booking.Status != entity.BookingStatusConfirmed {
		t.Errorf("expected stored status confirmed, got %s", booking.Status)
	}
	if booking.ConfirmedAt == nil {
		t.Error("expected confirmed_at to be stamped")
	}
}

func TestStartRentalNotBeforeStartDate(t *testing.T) {
	fx := newBookingFixture()
	ctx := context.Background()

	early := fx.seed(entity.BookingStatusConfirmed, futureDay(5), 3)
	_, err := fx.svc.StartRental(ctx, early.ID.String(), fx.owner.ID.String())
	if err == nil || !strings.Contains(err.Error(), "cannot start before") {
		t.Fatalf("expected early handover rejection, got %v", err)
	}
	if early.Status != entity.BookingStatusConfirmed {
		t.Errorf("expected status unchanged, got %s", early.Status)
	}

	// Hari pertama sewa, serah terima jalan
	today := fx.seed(entity.BookingStatusConfirmed, futureDay(0), 3)
	resp, err := fx.svc.StartRental(ctx, today.ID.String(), fx.owner.ID.String())
	if err != nil {
		t.Fatalf("StartRental on first rental day: %v", err)
	}
	if resp.Status != entity.BookingStatusActive {
		t.Errorf("expected status active, got %s", resp.Status)
	}
	if fx.vehicle.Status != entity.VehicleStatusRented {
		t.Errorf("expected vehicle marked rented, got %s", fx.vehicle.Status)
	}
}

func TestCompleteRentalReleasesVehicle(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusActive, futureDay(-2), 3)
	fx.vehicle.Status = entity.VehicleStatusRented

	// Admin juga boleh menutup rental
	resp, err := fx.svc.CompleteRental(context.Background(), booking.ID.String(), fx.admin.ID.String())
	if err != nil {
		t.Fatalf("CompleteRental: %v", err)
	}
	if resp.Status != entity.BookingStatusCompleted {
		t.Errorf("expected status completed, got %s", resp.Status)
	}
	if fx.vehicle.Status != entity.VehicleStatusAvailable {
		t.Errorf("expected vehicle released, got %s", fx.vehicle.Status)
	}
}

func TestRescheduleRecomputesPricing(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusConfirmed, futureDay(5), 3)

	resp, err := fx.svc.RescheduleBooking(context.Background(), booking.ID.String(), fx.renter.ID.String(), &request.RescheduleBookingRequest{
		StartDate: futureDay(5).Format(utils.DateLayout),
		EndDate:   futureDay(10).Format(utils.DateLayout),
	})
	if err != nil {
		t.Fatalf("RescheduleBooking: %v", err)
	}
	if resp.TotalDays != 5 {
		t.Errorf("expected 5 days after reschedule, got %d", resp.TotalDays)
	}
	if resp.Subtotal != 250 {
		t.Errorf("expected subtotal 250, got %.2f", resp.Subtotal)
	}
	if resp.TotalAmount != 350 {
		t.Errorf("expected total 350, got %.2f", resp.TotalAmount)
	}

	stored := fx.bookings.bookings[0]
	if stored.TotalDays != 5 {
		t.Errorf("expected stored days 5, got %d", stored.TotalDays)
	}
}

func TestRescheduleOnlyBeforeRentalStarts(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusActive, futureDay(-1), 5)

	_, err := fx.svc.RescheduleBooking(context.Background(), booking.ID.String(), fx.renter.ID.String(), &request.RescheduleBookingRequest{
		StartDate: futureDay(3).Format(utils.DateLayout),
		EndDate:   futureDay(6).Format(utils.DateLayout),
	})
	if err == nil || !strings.Contains(err.Error(), "cannot reschedule") {
		t.Fatalf("expected active booking reschedule rejection, got %v", err)
	}
}

func TestCancelBookingRefundCappedByPaid(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusConfirmed, futureDay(10), 4)
	fx.seedPaid(booking.ID, 150)

	reason := "change of plans"
	resp, err := fx.svc.CancelBooking(context.Background(), booking.ID.String(), fx.renter.ID.String(), &request.CancelBookingRequest{Reason: &reason})
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if resp.Status != entity.BookingStatusCancelled {
		t.Errorf("expected status cancelled, got %s", resp.Status)
	}

	if len(fx.cancellations.cancellations) != 1 {
		t.Fatalf("expected 1 cancellation record, got %d", len(fx.cancellations.cancellations))
	}
	cancellation := fx.cancellations.cancellations[0]
	if cancellation.CancellationFee != 0 {
		t.Errorf("expected no fee more than 48h out, got %.2f", cancellation.CancellationFee)
	}
	// Entitlement 300 (subtotal + deposit) tapi baru dibayar 150
	if cancellation.RefundAmount != 150 {
		t.Errorf("expected refund capped at 150, got %.2f", cancellation.RefundAmount)
	}
	if cancellation.Reason == nil || *cancellation.Reason != reason {
		t.Error("expected cancellation reason to be recorded")
	}

	if len(fx.gateway.refunds) != 1 || fx.gateway.refunds[0] != 150 {
		t.Fatalf("expected gateway refund of 150, got %v", fx.gateway.refunds)
	}
	if fx.payments.payments[0].Status != entity.PaymentStatusRefunded {
		t.Errorf("expected payment marked refunded, got %s", fx.payments.payments[0].Status)
	}
}

func TestCancelBookingLastMinuteForfeitsSubtotal(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusConfirmed, futureDay(0), 4)
	fx.seedPaid(booking.ID, 300)

	_, err := fx.svc.CancelBooking(context.Background(), booking.ID.String(), fx.renter.ID.String(), &request.CancelBookingRequest{})
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	cancellation := fx.cancellations.cancellations[0]
	if cancellation.CancellationFee != 200 {
		t.Errorf("expected full subtotal fee 200, got %.2f", cancellation.CancellationFee)
	}
	// Deposit tetap kembali
	if cancellation.RefundAmount != 100 {
		t.Errorf("expected deposit refund 100, got %.2f", cancellation.RefundAmount)
	}
}

func TestCancelActiveBookingReleasesVehicle(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusActive, futureDay(-1), 5)
	fx.vehicle.Status = entity.VehicleStatusRented

	if _, err := fx.svc.CancelBooking(context.Background(), booking.ID.String(), fx.renter.ID.String(), &request.CancelBookingRequest{}); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if booking.Status != entity.BookingStatusCancelled {
		t.Errorf("expected stored status cancelled, got %s", booking.Status)
	}
	if fx.vehicle.Status != entity.VehicleStatusAvailable {
		t.Errorf("expected vehicle released after cancelling active rental, got %s", fx.vehicle.Status)
	}
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusCompleted, futureDay(-10), 3)

	_, err := fx.svc.CancelBooking(context.Background(), booking.ID.String(), fx.renter.ID.String(), &request.CancelBookingRequest{})
	if !entity.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if booking.Status != entity.BookingStatusCompleted {
		t.Errorf("expected status unchanged, got %s", booking.Status)
	}
	if len(fx.cancellations.cancellations) != 0 {
		t.Errorf("expected no cancellation record, got %d", len(fx.cancellations.cancellations))
	}
}

func TestProcessPaymentPartialThenFull(t *testing.T) {
	fx := newBookingFixture()
	ctx := context.Background()
	booking := fx.seed(entity.BookingStatusConfirmed, futureDay(5), 4)
	method := fx.paymentMethod(true)

	resp, err := fx.svc.ProcessPayment(ctx, fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       booking.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          100,
	})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if resp.Status != entity.PaymentStatusPaid {
		t.Errorf("expected payment paid, got %s", resp.Status)
	}
	if booking.PaymentStatus != entity.PaymentStatusPartial {
		t.Errorf("expected booking partial after 100 of 300, got %s", booking.PaymentStatus)
	}

	// Sisa tagihan
	if _, err := fx.svc.ProcessPayment(ctx, fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       booking.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          200,
	}); err != nil {
		t.Fatalf("ProcessPayment remainder: %v", err)
	}
	if booking.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("expected booking fully paid, got %s", booking.PaymentStatus)
	}

	if len(fx.gateway.charges) != 2 {
		t.Fatalf("expected 2 charges, got %d", len(fx.gateway.charges))
	}
	if fx.gateway.charges[0].Currency != "usd" {
		t.Errorf("expected configured currency usd, got %s", fx.gateway.charges[0].Currency)
	}

	// Sudah lunas, bayar lagi ditolak
	if _, err := fx.svc.ProcessPayment(ctx, fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       booking.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          50,
	}); err == nil || !strings.Contains(err.Error(), "already fully paid") {
		t.Fatalf("expected fully paid rejection, got %v", err)
	}
}

func TestProcessPaymentRejectsOverpayment(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusConfirmed, futureDay(5), 4)
	method := fx.paymentMethod(true)

	_, err := fx.svc.ProcessPayment(context.Background(), fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       booking.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          400,
	})
	if err == nil || !strings.Contains(err.Error(), "exceeds outstanding balance") {
		t.Fatalf("expected overpayment rejection, got %v", err)
	}
	if len(fx.gateway.charges) != 0 {
		t.Errorf("expected no charge attempted, got %d", len(fx.gateway.charges))
	}
}

func TestProcessPaymentDeclined(t *testing.T) {
	fx := newBookingFixture()
	booking := fx.seed(entity.BookingStatusConfirmed, futureDay(5), 4)
	method := fx.paymentMethod(true)
	fx.gateway.declineReason = "card_declined"

	_, err := fx.svc.ProcessPayment(context.Background(), fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       booking.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          300,
	})
	if err == nil || !strings.Contains(err.Error(), "declined") {
		t.Fatalf("expected decline error, got %v", err)
	}

	if len(fx.payments.payments) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(fx.payments.payments))
	}
	if fx.payments.payments[0].Status != entity.PaymentStatusFailed {
		t.Errorf("expected payment marked failed, got %s", fx.payments.payments[0].Status)
	}
	if booking.PaymentStatus != entity.PaymentStatusFailed {
		t.Errorf("expected booking payment failed on first decline, got %s", booking.PaymentStatus)
	}
}

func TestProcessPaymentGuards(t *testing.T) {
	fx := newBookingFixture()
	ctx := context.Background()
	method := fx.paymentMethod(true)

	// Belum dikonfirmasi owner, belum ada tagihan
	pending := fx.seed(entity.BookingStatusPending, futureDay(5), 4)
	if _, err := fx.svc.ProcessPayment(ctx, fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       pending.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          100,
	}); err == nil || !strings.Contains(err.Error(), "cannot process payment") {
		t.Fatalf("expected pending booking rejection, got %v", err)
	}

	confirmed := fx.seed(entity.BookingStatusConfirmed, futureDay(10), 4)

	// Bukan booking miliknya
	if _, err := fx.svc.ProcessPayment(ctx, fx.owner.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       confirmed.ID.String(),
		PaymentMethodID: method.ID.String(),
		Amount:          100,
	}); err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected foreign booking rejection, got %v", err)
	}

	// Metode pembayaran nonaktif
	inactive := fx.paymentMethod(false)
	if _, err := fx.svc.ProcessPayment(ctx, fx.renter.ID.String(), &request.ProcessPaymentRequest{
		BookingID:       confirmed.ID.String(),
		PaymentMethodID: inactive.ID.String(),
		Amount:          100,
	}); err == nil || !strings.Contains(err.Error(), "not active") {
		t.Fatalf("expected inactive method rejection, got %v", err)
	}
}
