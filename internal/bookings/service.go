package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourly/internal/activities"
	"tourly/internal/notifications"
	"tourly/internal/profiles"
	"tourly/internal/shared/utils/response"
	"tourly/pkg/logger"
	"tourly/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

const GuestIDPrefix = "guest_"

var (
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNotOwner          = errors.New("booking belongs to another customer")
	ErrNotPayable        = errors.New("only pending bookings can be paid")
	ErrPaymentsDisabled  = errors.New("payments are not configured")
	ErrSignInRequired    = errors.New("customer_id belongs to a registered account, sign in to book with it")
)

// ActivityReader is satisfied by activities.Service
type ActivityReader interface {
	GetActivity(ctx context.Context, idOrSlug string) (*activities.Activity, error)
}

// Notifier is satisfied by notifications.Service
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, msg notifications.BookingConfirmation) error
}

// PaymentIntentCreator opens a processor-side payment tagged with the booking reference
type PaymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, bookingReference string, amount float64, currency, receiptEmail string) (id, clientSecret string, err error)
}

type Service interface {
	CreateBooking(ctx context.Context, authUserID string, req CreateBookingRequest) ActionResult
	GetByReference(ctx context.Context, reference string) (*Booking, error)
	GetForContact(ctx context.Context, reference, email string) (*Booking, error)
	ListByCustomer(ctx context.Context, customerID string, query ListQuery) (*PaginatedBookings, error)
	ListBookings(ctx context.Context, query ListQuery) (*PaginatedBookings, error)
	UpdateStatus(ctx context.Context, reference string, to Status) (*Booking, error)
	CancelOwn(ctx context.Context, customerID, reference string) (*Booking, error)
	CreatePaymentIntent(ctx context.Context, reference, email string) (*PaymentIntentResponse, error)
}

type Options struct {
	DefaultCurrency string
	References      *ReferenceGenerator
	Activities      ActivityReader
	Notifier        Notifier
	Payments        PaymentIntentCreator
}

type service struct {
	repo            Repository
	resolver        *profiles.Resolver
	validate        *validator.Validate
	references      *ReferenceGenerator
	activities      ActivityReader
	notifier        Notifier
	payments        PaymentIntentCreator
	defaultCurrency string
	log             *logger.Logger
	now             func() time.Time
}

func NewService(repo Repository, resolver *profiles.Resolver, opts Options, log *logger.Logger) Service {
	if opts.References == nil {
		opts.References = NewReferenceGenerator("")
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "EUR"
	}
	return &service{
		repo:            repo,
		resolver:        resolver,
		validate:        validator.New(),
		references:      opts.References,
		activities:      opts.Activities,
		notifier:        opts.Notifier,
		payments:        opts.Payments,
		defaultCurrency: opts.DefaultCurrency,
		log:             log.WithComponent("bookings"),
		now:             time.Now,
	}
}

// CreateBooking resolves the customer's profile and writes a pending booking in
// one transaction. Every failure is reported in the result, never returned.
func (s *service) CreateBooking(ctx context.Context, authUserID string, req CreateBookingRequest) ActionResult {
	result := s.createBooking(ctx, authUserID, req)
	if result.IsSuccess {
		metrics.BookingsCreated.WithLabelValues(metrics.OutcomeSuccess).Inc()
	} else {
		metrics.BookingsCreated.WithLabelValues(metrics.OutcomeFailure).Inc()
	}
	return result
}

func (s *service) createBooking(ctx context.Context, authUserID string, req CreateBookingRequest) ActionResult {
	if err := s.validate.Struct(req); err != nil {
		return failure(failureValidation, "Validation failed: "+response.SummarizeValidation(err))
	}

	party := req.PartySize()
	if party < 1 {
		return failure(failureValidation, "Validation failed: at least one participant is required")
	}
	if req.TotalParticipants != 0 && req.TotalParticipants != party {
		return failure(failureValidation, "Validation failed: total_participants must equal adults + children + seniors")
	}

	customerID := strings.TrimSpace(authUserID)
	if customerID == "" {
		customerID = strings.TrimSpace(req.CustomerID)
	}
	if customerID == "" {
		customerID = GuestIDPrefix + shortuuid.New()
	}

	var activity *activities.Activity
	if s.activities != nil {
		a, err := s.activities.GetActivity(ctx, req.ActivityID)
		if err != nil {
			if errors.Is(err, activities.ErrActivityNotFound) {
				return failure(failureNotFound, "activity not found")
			}
			return failure(failureInternal, err.Error())
		}
		if !a.IsActive {
			return failure(failureConflict, "activity is not available for booking")
		}
		if !a.Accepts(party) {
			return failure(failureValidation, fmt.Sprintf("party of %d exceeds the activity limit of %d", party, a.MaxParticipants))
		}
		activity = a
	}

	reference := strings.TrimSpace(req.BookingReference)
	if reference == "" {
		generated, err := s.references.Next()
		if err != nil {
			return failure(failureInternal, err.Error())
		}
		reference = generated
	}

	booking := &Booking{
		ID:                  uuid.New(),
		BookingReference:    reference,
		ActivityID:          req.ActivityID,
		CustomerID:          customerID,
		BookingDate:         req.BookingDate,
		BookingTime:         req.BookingTime,
		Adults:              req.Adults,
		Children:            req.Children,
		Seniors:             req.Seniors,
		TotalParticipants:   party,
		Subtotal:            req.Subtotal,
		TotalAmount:         req.TotalAmount,
		Currency:            s.currencyFor(req, activity),
		CustomerName:        strings.TrimSpace(req.CustomerName),
		CustomerEmail:       strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:       strings.TrimSpace(req.CustomerPhone),
		SpecialRequirements: req.SpecialRequirements,
		Status:              StatusPending,
	}
	priceBooking(booking, activity)

	contact := profiles.LeadContact{
		CustomerID: customerID,
		FullName:   booking.CustomerName,
		Email:      booking.CustomerEmail,
		Phone:      booking.CustomerPhone,
	}

	var profileErr error
	err := s.repo.WithinTransaction(ctx, func(tx TxRepository) error {
		profile, _, err := s.resolver.Resolve(ctx, tx.Profiles(), contact)
		if err != nil {
			profileErr = err
			return err
		}
		// Anonymous callers may only book against guest identities
		if strings.TrimSpace(authUserID) == "" && profile.IsRegistered() {
			return ErrSignInRequired
		}
		return tx.Create(ctx, booking)
	})
	if err != nil {
		s.log.LogBookingFailed(ctx, reference, customerID, err)
		switch {
		case profileErr != nil:
			return failure(failureInternal, "Failed to create customer profile: "+profileErr.Error())
		case errors.Is(err, ErrSignInRequired):
			return failure(failureForbidden, ErrSignInRequired.Error())
		case errors.Is(err, ErrDuplicateReference):
			return failure(failureConflict, ErrDuplicateReference.Error())
		default:
			return failure(failureInternal, err.Error())
		}
	}

	s.log.LogBookingCreated(ctx, booking.BookingReference, booking.ActivityID, booking.CustomerID)
	s.sendConfirmation(ctx, booking, activity)

	return ActionResult{IsSuccess: true, Message: "Booking created successfully", Data: booking}
}

func (s *service) currencyFor(req CreateBookingRequest, activity *activities.Activity) string {
	switch {
	case req.Currency != "":
		return strings.ToUpper(req.Currency)
	case activity != nil && activity.Currency != "":
		return activity.Currency
	default:
		return s.defaultCurrency
	}
}

// priceBooking fills amounts the client left at zero
func priceBooking(b *Booking, activity *activities.Activity) {
	if b.Subtotal == 0 && b.TotalAmount == 0 && activity != nil {
		b.Subtotal = float64(b.Adults)*activity.PriceAdult +
			float64(b.Children)*activity.PriceChild +
			float64(b.Seniors)*activity.PriceSenior
	}
	if b.TotalAmount == 0 {
		b.TotalAmount = b.Subtotal
	}
}

func (s *service) sendConfirmation(ctx context.Context, b *Booking, activity *activities.Activity) {
	if s.notifier == nil {
		return
	}

	title := b.ActivityID
	if activity != nil {
		title = activity.Title
	}

	err := s.notifier.SendBookingConfirmation(ctx, notifications.BookingConfirmation{
		BookingReference: b.BookingReference,
		CustomerID:       b.CustomerID,
		CustomerName:     b.CustomerName,
		CustomerEmail:    b.CustomerEmail,
		ActivityTitle:    title,
		BookingDate:      b.BookingDate,
		BookingTime:      b.BookingTime,
		Participants:     b.TotalParticipants,
		TotalAmount:      b.TotalAmount,
		Currency:         b.Currency,
		Status:           string(b.Status),
	})
	if err != nil {
		s.log.ErrorWithContext(ctx, "failed to send booking confirmation", err, map[string]interface{}{
			"booking_reference": b.BookingReference,
		})
	}
}

func (s *service) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	return s.repo.GetByReference(ctx, reference)
}

// GetForContact hides bookings whose lead email does not match
func (s *service) GetForContact(ctx context.Context, reference, email string) (*Booking, error) {
	booking, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if email == "" || !strings.EqualFold(strings.TrimSpace(email), booking.CustomerEmail) {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func normalizePage(q *ListQuery) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

func (s *service) ListByCustomer(ctx context.Context, customerID string, query ListQuery) (*PaginatedBookings, error) {
	normalizePage(&query)
	bookings, total, err := s.repo.ListByCustomer(ctx, customerID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return paginated(bookings, total, query), nil
}

func (s *service) ListBookings(ctx context.Context, query ListQuery) (*PaginatedBookings, error) {
	normalizePage(&query)
	bookings, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return paginated(bookings, total, query), nil
}

func paginated(bookings []Booking, total int64, q ListQuery) *PaginatedBookings {
	if bookings == nil {
		bookings = []Booking{}
	}
	return &PaginatedBookings{
		Bookings:   bookings,
		TotalCount: total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: CalculateTotalPages(total, q.Limit),
	}
}

func (s *service) UpdateStatus(ctx context.Context, reference string, to Status) (*Booking, error) {
	booking, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, booking, to)
}

func (s *service) CancelOwn(ctx context.Context, customerID, reference string) (*Booking, error) {
	booking, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, ErrNotOwner
	}
	// Repeat cancels are a no-op
	if booking.IsCancelled() {
		return booking, nil
	}
	return s.transition(ctx, booking, StatusCancelled)
}

func (s *service) transition(ctx context.Context, booking *Booking, to Status) (*Booking, error) {
	from := booking.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, booking.ID, from, to, now); err != nil {
		return nil, err
	}

	booking.Status = to
	booking.UpdatedAt = now
	if to == StatusCancelled {
		booking.CancelledAt = &now
	}

	s.log.LogBookingStatusChanged(ctx, booking.BookingReference, string(from), string(to))
	return booking, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, reference, email string) (*PaymentIntentResponse, error) {
	if s.payments == nil {
		return nil, ErrPaymentsDisabled
	}

	booking, err := s.GetForContact(ctx, reference, email)
	if err != nil {
		return nil, err
	}
	if !booking.IsPending() {
		return nil, ErrNotPayable
	}

	id, secret, err := s.payments.CreatePaymentIntent(ctx, booking.BookingReference, booking.TotalAmount, booking.Currency, booking.CustomerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.repo.SetPaymentIntent(ctx, booking.ID, id); err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		BookingReference: booking.BookingReference,
		PaymentIntentID:  id,
		ClientSecret:     secret,
		Amount:           booking.TotalAmount,
		Currency:         booking.Currency,
	}, nil
}
