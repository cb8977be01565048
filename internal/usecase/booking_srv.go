package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/events"
	"car-rental/internal/payment"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cancellation policy tiers, dihitung dari jarak waktu ke start date
const (
	fullRefundHours = 48
	halfRefundHours = 24
)

type BookingService interface {
	// Booking flow (butuh auth)
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest, status *string) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, bookingID, actorID string) (*response.BookingDetailResponse, error)
	RescheduleBooking(ctx context.Context, bookingID, actorID string, req *request.RescheduleBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, actorID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)

	// Lifecycle, dijalankan pemilik vehicle (atau admin)
	ConfirmBooking(ctx context.Context, bookingID, actorID string) (*response.BookingResponse, error)
	StartRental(ctx context.Context, bookingID, actorID string) (*response.BookingResponse, error)
	CompleteRental(ctx context.Context, bookingID, actorID string) (*response.BookingResponse, error)

	// Payment
	ProcessPayment(ctx context.Context, userID string, req *request.ProcessPaymentRequest) (*response.PaymentResponse, error)
	GetPaymentMethods(ctx context.Context) ([]*response.PaymentMethodResponse, error)
}

type bookingService struct {
	repo         *repository.Repository // grouping semua booking-related repos
	config       *utils.Config
	availability AvailabilityService
	gateway      payment.Gateway
	publisher    events.Publisher
	log          *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	config *utils.Config,
	availability AvailabilityService,
	gateway payment.Gateway,
	publisher events.Publisher,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:         repo,
		config:       config,
		availability: availability,
		gateway:      gateway,
		publisher:    publisher,
		log:          log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// Parse IDs
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID format %s: %w", req.VehicleID, err)
	}

	// Parse and validate the requested range
	rng, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if rng.Start.Before(entity.DayOf(time.Now())) {
		return nil, fmt.Errorf("cannot book dates in the past")
	}

	if max := s.config.Booking.MaxRentalDays; max > 0 && rng.Days() > max {
		return nil, fmt.Errorf("rental length %d days exceeds maximum %d days", rng.Days(), max)
	}

	// Get user for contact snapshot
	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil || user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	// Get vehicle for pricing snapshot
	vehicle, err := s.repo.Vehicle.FindByID(ctx, vehicleID)
	if err != nil || vehicle == nil {
		return nil, fmt.Errorf("vehicle %s not found", req.VehicleID)
	}

	// Fail fast sebelum masuk critical section; guard di repository yang
	// jadi penentu akhir
	if !vehicle.IsBookable() {
		return nil, entity.ErrVehicleUnavailable
	}

	pickupLocation := vehicle.PickupLocation
	if req.PickupLocation != nil && *req.PickupLocation != "" {
		pickupLocation = *req.PickupLocation
	}

	returnLocation := pickupLocation
	if req.ReturnLocation != nil && *req.ReturnLocation != "" {
		returnLocation = *req.ReturnLocation
	}

	customerPhone := ""
	if user.Phone != nil {
		customerPhone = *user.Phone
	}

	// Pricing snapshot dari vehicle saat ini
	totalDays := rng.Days()
	subtotal := vehicle.DailyRate * float64(totalDays)

	now := time.Now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingRef:      utils.GenerateBookingRef(),
		UserID:          userUUID,
		VehicleID:       vehicleID,
		StartDate:       rng.Start,
		EndDate:         rng.End,
		Status:          entity.BookingStatusPending,
		DailyRate:       vehicle.DailyRate,
		TotalDays:       totalDays,
		Subtotal:        subtotal,
		DiscountAmount:  0,
		DepositAmount:   vehicle.DepositAmount,
		TotalAmount:     subtotal + vehicle.DepositAmount,
		PaymentStatus:   entity.PaymentStatusPending,
		CustomerName:    user.FullName,
		CustomerEmail:   user.Email,
		CustomerPhone:   customerPhone,
		PickupLocation:  pickupLocation,
		ReturnLocation:  returnLocation,
		SpecialRequests: req.SpecialRequests,
	}

	// Klaim tanggal lewat jalur guarded. ConflictError / ErrLockTimeout /
	// ErrVehicleUnavailable diteruskan apa adanya ke handler.
	if err := s.availability.Reserve(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_ref", booking.BookingRef),
		zap.String("user_id", userID),
		zap.String("vehicle_id", req.VehicleID),
		zap.String("range", rng.String()),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	go s.publishEvent(events.EventBookingCreated, booking)

	resp := response.BookingToResponse(booking, vehicleDisplayName(vehicle))
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest, status *string) (*response.PaginatedResponse[response.BookingResponse], error) {
	// Parse user ID
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	if status != nil {
		switch entity.BookingStatus(*status) {
		case entity.BookingStatusPending, entity.BookingStatusConfirmed, entity.BookingStatusActive,
			entity.BookingStatusCompleted, entity.BookingStatusCancelled:
		default:
			return nil, fmt.Errorf("invalid status filter %s", *status)
		}
	}

	limit := req.Limit()
	offset := req.Offset()

	// Get bookings
	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, offset, limit, status)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	// Get total count
	total, err := s.repo.Booking.CountByUserID(ctx, userUUID, status)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	// Convert to response
	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		vehicle, _ := s.repo.Vehicle.FindByID(ctx, booking.VehicleID)
		bookingResponses[i] = response.BookingToResponse(booking, vehicleDisplayName(vehicle))
	}

	s.log.Info("User bookings retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(bookings)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID, actorID string) (*response.BookingDetailResponse, error) {
	// Parse booking ID
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.canAccessBooking(ctx, booking, actorID); err != nil {
		return nil, err
	}

	return s.buildBookingDetail(ctx, booking), nil
}

func (s *bookingService) RescheduleBooking(ctx context.Context, bookingID, actorID string, req *request.RescheduleBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reschedule booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.canAccessBooking(ctx, booking, actorID); err != nil {
		return nil, err
	}

	// Pindah tanggal cuma masuk akal sebelum rental jalan
	if booking.Status != entity.BookingStatusPending && booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("booking status is %s, cannot reschedule", booking.Status)
	}

	rng, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if rng.Start.Before(entity.DayOf(time.Now())) {
		return nil, fmt.Errorf("cannot book dates in the past")
	}

	if max := s.config.Booking.MaxRentalDays; max > 0 && rng.Days() > max {
		return nil, fmt.Errorf("rental length %d days exceeds maximum %d days", rng.Days(), max)
	}

	// Salinan dengan range baru plus pricing turunannya; booking asli baru
	// diganti kalau klaim tanggal berhasil
	updated := *booking
	updated.StartDate = rng.Start
	updated.EndDate = rng.End
	updated.TotalDays = rng.Days()
	updated.Subtotal = updated.DailyRate * float64(updated.TotalDays)
	updated.TotalAmount = updated.Subtotal + updated.DepositAmount - updated.DiscountAmount
	updated.UpdatedAt = time.Now()

	if err := s.availability.Reschedule(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info("Booking rescheduled",
		zap.String("booking_id", bookingID),
		zap.String("booking_ref", updated.BookingRef),
		zap.String("old_range", booking.Range().String()),
		zap.String("new_range", rng.String()),
	)

	go s.publishEvent(events.EventBookingRescheduled, &updated)

	return s.buildBookingResponse(ctx, &updated), nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, actorID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Cancel booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", actorID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.canAccessBooking(ctx, booking, actorID); err != nil {
		return nil, err
	}

	wasActive := booking.Status == entity.BookingStatusActive

	// Transition table yang menentukan boleh cancel atau tidak
	now := time.Now()
	if err := booking.Transition(entity.BookingStatusCancelled, now); err != nil {
		return nil, err
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	// Fee dan refund sesuai policy, dibatasi jumlah yang benar-benar dibayar
	fee, refundable := cancellationPolicy(booking, now)

	totalPaid, err := s.repo.Payment.SumPaidByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Warn("Failed to sum paid amount, skipping refund",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		totalPaid = 0
	}

	refundAmount := math.Min(refundable, totalPaid)

	cancellation := &entity.Cancellation{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		BookingID:       booking.ID,
		CancelledByID:   actorUUID,
		Reason:          req.Reason,
		CancellationFee: fee,
		RefundAmount:    refundAmount,
	}

	if err := s.repo.Cancellation.Create(ctx, cancellation); err != nil {
		// Booking sudah cancelled, jangan gagalkan requestnya
		s.log.Error("Failed to record cancellation",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
	}

	if refundAmount > 0 {
		s.refundPayment(ctx, booking, refundAmount)
	}

	// Booking active berarti unit lagi keluar; balikin statusnya
	if wasActive {
		if err := s.repo.Vehicle.UpdateStatus(ctx, booking.VehicleID, entity.VehicleStatusAvailable); err != nil {
			s.log.Warn("Failed to release vehicle status",
				zap.Error(err),
				zap.String("vehicle_id", booking.VehicleID.String()),
			)
		}
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("booking_ref", booking.BookingRef),
		zap.String("cancelled_by", actorID),
		zap.Float64("cancellation_fee", fee),
		zap.Float64("refund_amount", refundAmount),
	)

	go s.publishEvent(events.EventBookingCancelled, booking)

	return s.buildBookingResponse(ctx, booking), nil
}

// ==================== LIFECYCLE METHODS ====================

func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID, actorID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.canManageRental(ctx, booking, actorID); err != nil {
		return nil, err
	}

	if err := booking.Transition(entity.BookingStatusConfirmed, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed); err != nil {
		return nil, fmt.Errorf("confirm booking %s: %w", bookingID, err)
	}

	s.log.Info("Booking confirmed",
		zap.String("booking_id", bookingID),
		zap.String("booking_ref", booking.BookingRef),
		zap.String("confirmed_by", actorID),
	)

	go s.publishEvent(events.EventBookingConfirmed, booking)

	return s.buildBookingResponse(ctx, booking), nil
}

func (s *bookingService) StartRental(ctx context.Context, bookingID, actorID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.canManageRental(ctx, booking, actorID); err != nil {
		return nil, err
	}

	// Serah terima paling cepat di hari pertama sewa
	if entity.DayOf(time.Now()).Before(booking.StartDate) {
		return nil, fmt.Errorf("rental cannot start before %s", booking.StartDate.Format(utils.DateLayout))
	}

	if err := booking.Transition(entity.BookingStatusActive, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusActive); err != nil {
		return nil, fmt.Errorf("start rental %s: %w", bookingID, err)
	}

	// Status rented cuma bookkeeping, bukan penentu availability
	if err := s.repo.Vehicle.UpdateStatus(ctx, booking.VehicleID, entity.VehicleStatusRented); err != nil {
		s.log.Warn("Failed to mark vehicle rented",
			zap.Error(err),
			zap.String("vehicle_id", booking.VehicleID.String()),
		)
	}

	s.log.Info("Rental started",
		zap.String("booking_id", bookingID),
		zap.String("booking_ref", booking.BookingRef),
		zap.String("started_by", actorID),
	)

	go s.publishEvent(events.EventBookingStarted, booking)

	return s.buildBookingResponse(ctx, booking), nil
}

func (s *bookingService) CompleteRental(ctx context.Context, bookingID, actorID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.canManageRental(ctx, booking, actorID); err != nil {
		return nil, err
	}

	if err := booking.Transition(entity.BookingStatusCompleted, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCompleted); err != nil {
		return nil, fmt.Errorf("complete rental %s: %w", bookingID, err)
	}

	if err := s.repo.Vehicle.UpdateStatus(ctx, booking.VehicleID, entity.VehicleStatusAvailable); err != nil {
		s.log.Warn("Failed to release vehicle status",
			zap.Error(err),
			zap.String("vehicle_id", booking.VehicleID.String()),
		)
	}

	s.log.Info("Rental completed",
		zap.String("booking_id", bookingID),
		zap.String("booking_ref", booking.BookingRef),
		zap.String("completed_by", actorID),
	)

	go s.publishEvent(events.EventBookingCompleted, booking)

	return s.buildBookingResponse(ctx, booking), nil
}

// ==================== PAYMENT METHODS ====================

func (s *bookingService) ProcessPayment(ctx context.Context, userID string, req *request.ProcessPaymentRequest) (*response.PaymentResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Process payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// Parse IDs
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	paymentMethodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment method ID format %s: %w", req.PaymentMethodID, err)
	}

	// Get booking
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("booking %s not found", req.BookingID)
	}

	// Check if booking belongs to user
	if booking.UserID != userUUID {
		return nil, fmt.Errorf("unauthorized to process payment for this booking")
	}

	// Tagihan baru boleh dibayar setelah owner konfirmasi
	if booking.Status != entity.BookingStatusConfirmed && booking.Status != entity.BookingStatusActive {
		return nil, fmt.Errorf("booking status is %s, cannot process payment", booking.Status)
	}

	totalPaid, err := s.repo.Payment.SumPaidByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to sum paid amount",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
		)
		return nil, fmt.Errorf("sum paid amount: %w", err)
	}

	outstanding := booking.TotalAmount - totalPaid
	if outstanding <= 0 {
		return nil, fmt.Errorf("booking %s is already fully paid", booking.BookingRef)
	}

	if req.Amount > outstanding {
		return nil, fmt.Errorf("payment amount %.2f exceeds outstanding balance %.2f", req.Amount, outstanding)
	}

	// Check payment method
	paymentMethod, err := s.repo.PaymentMethod.FindByID(ctx, paymentMethodID)
	if err != nil || paymentMethod == nil {
		return nil, fmt.Errorf("payment method %s not found", req.PaymentMethodID)
	}

	if !paymentMethod.IsActive {
		return nil, fmt.Errorf("payment method %s is not active", paymentMethod.Name)
	}

	// Create payment row dulu, status pending
	now := time.Now()
	pmt := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:       booking.ID,
		PaymentMethodID: paymentMethodID,
		Amount:          req.Amount,
		Currency:        s.config.Stripe.Currency,
		Status:          entity.PaymentStatusPending,
	}

	if err := s.repo.Payment.Create(ctx, pmt); err != nil {
		s.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
		)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	// Charge lewat gateway. Reference per payment row, jadi retry dengan
	// row yang sama tidak double charge.
	token := ""
	if req.PaymentToken != nil {
		token = *req.PaymentToken
	}

	result, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		Amount:       req.Amount,
		Currency:     pmt.Currency,
		Reference:    pmt.ID.String(),
		Description:  fmt.Sprintf("Car rental %s", booking.BookingRef),
		PaymentToken: token,
	})
	if err != nil {
		if updErr := s.repo.Payment.UpdateStatus(ctx, pmt.ID, entity.PaymentStatusFailed, nil); updErr != nil {
			s.log.Warn("Failed to mark payment failed", zap.Error(updErr))
		}
		s.log.Error("Failed to charge payment",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
			zap.String("payment_id", pmt.ID.String()),
		)
		return nil, fmt.Errorf("charge payment: %w", err)
	}

	var txID *string
	if result.TransactionID != "" {
		txID = &result.TransactionID
	}

	if !result.Succeeded {
		if updErr := s.repo.Payment.UpdateStatus(ctx, pmt.ID, entity.PaymentStatusFailed, txID); updErr != nil {
			s.log.Warn("Failed to mark payment failed", zap.Error(updErr))
		}
		if totalPaid == 0 {
			if updErr := s.repo.Booking.UpdatePaymentStatus(ctx, booking.ID, entity.PaymentStatusFailed); updErr != nil {
				s.log.Warn("Failed to mark booking payment failed", zap.Error(updErr))
			}
		}

		s.log.Warn("Payment declined",
			zap.String("booking_id", req.BookingID),
			zap.String("payment_id", pmt.ID.String()),
			zap.String("reason", result.FailureReason),
		)
		return nil, fmt.Errorf("payment was declined: %s", result.FailureReason)
	}

	if err := s.repo.Payment.UpdateStatus(ctx, pmt.ID, entity.PaymentStatusPaid, txID); err != nil {
		// Uang sudah kepotong di gateway, jangan balas error ke client
		s.log.Error("Failed to mark payment paid",
			zap.Error(err),
			zap.String("payment_id", pmt.ID.String()),
			zap.String("transaction_id", result.TransactionID),
		)
	}

	// Lunas atau masih partial
	bookingPaymentStatus := entity.PaymentStatusPartial
	if totalPaid+req.Amount >= booking.TotalAmount {
		bookingPaymentStatus = entity.PaymentStatusPaid
	}
	if err := s.repo.Booking.UpdatePaymentStatus(ctx, booking.ID, bookingPaymentStatus); err != nil {
		s.log.Warn("Failed to update booking payment status", zap.Error(err))
	}
	booking.PaymentStatus = bookingPaymentStatus

	pmt.Status = entity.PaymentStatusPaid
	pmt.TransactionID = txID
	pmt.PaidAt = &now

	s.log.Info("Payment processed",
		zap.String("payment_id", pmt.ID.String()),
		zap.String("booking_id", req.BookingID),
		zap.String("payment_method", paymentMethod.Name),
		zap.Float64("amount", req.Amount),
		zap.String("transaction_id", result.TransactionID),
		zap.String("booking_payment_status", string(bookingPaymentStatus)),
	)

	go s.publishEvent(events.EventPaymentReceived, booking)

	paymentResp := response.PaymentToResponse(pmt, paymentMethod)
	return &paymentResp, nil
}

func (s *bookingService) GetPaymentMethods(ctx context.Context) ([]*response.PaymentMethodResponse, error) {
	paymentMethods, err := s.repo.PaymentMethod.FindAllActive(ctx)
	if err != nil {
		s.log.Error("Failed to get payment methods", zap.Error(err))
		return nil, fmt.Errorf("get payment methods: %w", err)
	}

	paymentMethodResponses := make([]*response.PaymentMethodResponse, len(paymentMethods))
	for i, pm := range paymentMethods {
		pmResp := response.PaymentMethodToResponse(pm)
		paymentMethodResponses[i] = &pmResp
	}

	s.log.Info("Payment methods retrieved", zap.Int("count", len(paymentMethods)))
	return paymentMethodResponses, nil
}

// ==================== HELPER METHODS ====================

// cancellationPolicy menghitung fee dan entitlement refund dari jarak
// waktu ke start date:
//
//	>= 48 jam: subtotal kembali penuh
//	24-48 jam: subtotal kembali 50%
//	<  24 jam: subtotal hangus
//
// Deposit selalu kembali. Fee = porsi subtotal yang tidak dikembalikan.
func cancellationPolicy(booking *entity.Booking, now time.Time) (fee, refundable float64) {
	hoursUntil := booking.StartDate.Sub(now).Hours()

	var refundedSubtotal float64
	switch {
	case hoursUntil >= fullRefundHours:
		refundedSubtotal = booking.Subtotal
	case hoursUntil >= halfRefundHours:
		refundedSubtotal = booking.Subtotal * 0.5
	default:
		refundedSubtotal = 0
	}

	fee = booking.Subtotal - refundedSubtotal
	refundable = refundedSubtotal + booking.DepositAmount
	return fee, refundable
}

// refundPayment mengembalikan dana lewat gateway, best effort. Kalau gagal,
// cancellation tetap tercatat dan refund diproses manual dari log.
func (s *bookingService) refundPayment(ctx context.Context, booking *entity.Booking, amount float64) {
	paid, err := s.repo.Payment.FindLatestPaidByBookingID(ctx, booking.ID)
	if err != nil || paid == nil || paid.TransactionID == nil {
		s.log.Warn("No refundable payment found",
			zap.String("booking_id", booking.ID.String()),
			zap.Float64("amount", amount),
		)
		return
	}

	refundID, err := s.gateway.Refund(ctx, *paid.TransactionID, amount)
	if err != nil {
		s.log.Error("Failed to refund payment",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("transaction_id", *paid.TransactionID),
			zap.Float64("amount", amount),
		)
		return
	}

	// Transaction id asli dipertahankan, refund id cukup di log
	if err := s.repo.Payment.UpdateStatus(ctx, paid.ID, entity.PaymentStatusRefunded, paid.TransactionID); err != nil {
		s.log.Warn("Failed to mark payment refunded", zap.Error(err))
	}

	if err := s.repo.Booking.UpdatePaymentStatus(ctx, booking.ID, entity.PaymentStatusRefunded); err != nil {
		s.log.Warn("Failed to mark booking refunded", zap.Error(err))
	}
	booking.PaymentStatus = entity.PaymentStatusRefunded

	s.log.Info("Payment refunded",
		zap.String("booking_id", booking.ID.String()),
		zap.String("refund_id", refundID),
		zap.Float64("amount", amount),
	)
}

// publishEvent mengirim lifecycle event tanpa menahan request. Dipanggil
// lewat goroutine; gagal publish cuma di-warn karena state di database
// tetap source of truth.
func (s *bookingService) publishEvent(eventType string, booking *entity.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := events.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		BookingRef: booking.BookingRef,
		VehicleID:  booking.VehicleID,
		UserID:     booking.UserID,
		Status:     string(booking.Status),
		OccurredAt: time.Now(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("event", eventType),
			zap.String("booking_ref", booking.BookingRef),
		)
	}
}

// canAccessBooking: renter, pemilik vehicle, atau admin
func (s *bookingService) canAccessBooking(ctx context.Context, booking *entity.Booking, actorID string) error {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", actorID, err)
	}

	if booking.UserID == actorUUID {
		return nil
	}

	vehicle, _ := s.repo.Vehicle.FindByID(ctx, booking.VehicleID)
	if vehicle != nil && vehicle.OwnerID == actorUUID {
		return nil
	}

	actor, _ := s.repo.User.FindByID(ctx, actorUUID)
	if actor != nil && actor.Role == entity.RoleAdmin {
		return nil
	}

	return fmt.Errorf("unauthorized to access this booking")
}

// canManageRental: cuma pemilik vehicle atau admin (yang pegang unitnya)
func (s *bookingService) canManageRental(ctx context.Context, booking *entity.Booking, actorID string) error {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", actorID, err)
	}

	vehicle, _ := s.repo.Vehicle.FindByID(ctx, booking.VehicleID)
	if vehicle != nil && vehicle.OwnerID == actorUUID {
		return nil
	}

	actor, _ := s.repo.User.FindByID(ctx, actorUUID)
	if actor != nil && actor.Role == entity.RoleAdmin {
		return nil
	}

	return fmt.Errorf("unauthorized to manage this rental")
}

func (s *bookingService) buildBookingResponse(ctx context.Context, booking *entity.Booking) *response.BookingResponse {
	vehicle, _ := s.repo.Vehicle.FindByID(ctx, booking.VehicleID)
	resp := response.BookingToResponse(booking, vehicleDisplayName(vehicle))
	return &resp
}

func (s *bookingService) buildBookingDetail(ctx context.Context, booking *entity.Booking) *response.BookingDetailResponse {
	vehicle, _ := s.repo.Vehicle.FindByID(ctx, booking.VehicleID)

	detail := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking, vehicleDisplayName(vehicle)),
		CustomerName:    booking.CustomerName,
		CustomerEmail:   booking.CustomerEmail,
		CustomerPhone:   booking.CustomerPhone,
		SpecialRequests: booking.SpecialRequests,
		ConfirmedAt:     booking.ConfirmedAt,
		StartedAt:       booking.StartedAt,
		CompletedAt:     booking.CompletedAt,
		CancelledAt:     booking.CancelledAt,
	}

	if vehicle != nil {
		vehicleResp := response.VehicleToResponse(vehicle, 0)
		detail.Vehicle = &vehicleResp
	}

	payments, _ := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	for _, p := range payments {
		method, _ := s.repo.PaymentMethod.FindByID(ctx, p.PaymentMethodID)
		detail.Payments = append(detail.Payments, response.PaymentToResponse(p, method))
	}

	if booking.Status == entity.BookingStatusCancelled {
		cancellation, _ := s.repo.Cancellation.FindByBookingID(ctx, booking.ID)
		if cancellation != nil {
			cancellationResp := response.CancellationToResponse(cancellation)
			detail.Cancellation = &cancellationResp
		}
	}

	return detail
}

func vehicleDisplayName(vehicle *entity.Vehicle) string {
	if vehicle == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %d", vehicle.Make, vehicle.Model, vehicle.Year)
}
