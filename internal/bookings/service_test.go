package bookings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"tourly/internal/activities"
	"tourly/internal/notifications"
	"tourly/internal/profiles"
	"tourly/internal/shared/middleware"
	"tourly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepository stages transactional writes and applies them only on commit
type memRepository struct {
	profiles    map[string]*profiles.Profile
	bookings    map[string]*Booking
	profileErr  error
	createErr   error
	createCalls int
}

func newMemRepository() *memRepository {
	return &memRepository{profiles: map[string]*profiles.Profile{}, bookings: map[string]*Booking{}}
}

type memTx struct {
	parent   *memRepository
	profiles []*profiles.Profile
	bookings []*Booking
}

func (t *memTx) Profiles() profiles.Writer { return t }

func (t *memTx) InsertIfAbsent(_ context.Context, p *profiles.Profile) (bool, error) {
	if t.parent.profileErr != nil {
		return false, t.parent.profileErr
	}
	if _, ok := t.parent.profiles[p.ID]; ok {
		return false, nil
	}
	t.profiles = append(t.profiles, p)
	return true, nil
}

func (t *memTx) GetByID(_ context.Context, id string) (*profiles.Profile, error) {
	if p, ok := t.parent.profiles[id]; ok {
		return p, nil
	}
	for _, p := range t.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, profiles.ErrProfileNotFound
}

func (t *memTx) Create(_ context.Context, b *Booking) error {
	t.parent.createCalls++
	if t.parent.createErr != nil {
		return t.parent.createErr
	}
	if _, ok := t.parent.bookings[b.BookingReference]; ok {
		return ErrDuplicateReference
	}
	t.bookings = append(t.bookings, b)
	return nil
}

func (m *memRepository) WithinTransaction(_ context.Context, fn func(tx TxRepository) error) error {
	tx := &memTx{parent: m}
	if err := fn(tx); err != nil {
		return err
	}
	for _, p := range tx.profiles {
		m.profiles[p.ID] = p
	}
	for _, b := range tx.bookings {
		m.bookings[b.BookingReference] = b
	}
	return nil
}

func (m *memRepository) GetByReference(_ context.Context, ref string) (*Booking, error) {
	b, ok := m.bookings[ref]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memRepository) ListByCustomer(_ context.Context, customerID string, _ ListQuery) ([]Booking, int64, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRepository) List(_ context.Context, q ListQuery) ([]Booking, int64, error) {
	var out []Booking
	for _, b := range m.bookings {
		if q.Status == "" || string(b.Status) == q.Status {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRepository) byID(id uuid.UUID) *Booking {
	for _, b := range m.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (m *memRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	b := m.byID(id)
	if b == nil || b.Status != from {
		return ErrStatusConflict
	}
	b.Status = to
	if to == StatusCancelled {
		b.CancelledAt = &at
	}
	return nil
}

func (m *memRepository) SetPaymentIntent(_ context.Context, id uuid.UUID, intentID string) error {
	b := m.byID(id)
	if b == nil {
		return ErrBookingNotFound
	}
	b.PaymentIntentID = intentID
	return nil
}

type fakeActivities struct {
	activity *activities.Activity
}

func (f *fakeActivities) GetActivity(_ context.Context, id string) (*activities.Activity, error) {
	if f.activity == nil || f.activity.ID != id {
		return nil, activities.ErrActivityNotFound
	}
	return f.activity, nil
}

type fakeNotifier struct {
	sent []notifications.BookingConfirmation
	err  error
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, msg notifications.BookingConfirmation) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeGateway struct {
	calls    int
	lastRef  string
	lastCost float64
}

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, ref string, amount float64, _, _ string) (string, string, error) {
	f.calls++
	f.lastRef = ref
	f.lastCost = amount
	return "pi_123", "pi_123_secret_abc", nil
}

func newTestService(repo *memRepository, opts Options) Service {
	return NewService(repo, profiles.NewResolver(logger.Discard()), opts, logger.Discard())
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		CustomerID:       "guest_456",
		BookingReference: "MLC-2024-001",
		ActivityID:       "act_123",
		BookingDate:      "2024-07-15",
		BookingTime:      "10:00",
		Adults:           2,
		Children:         1,
		Subtotal:         180,
		TotalAmount:      180,
		Currency:         "eur",
		CustomerName:     "Maria Garcia",
		CustomerEmail:    "maria@example.com",
		CustomerPhone:    "+34 600 000 000",
	}
}

func TestCreateBookingNewGuestProfile(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})

	result := svc.CreateBooking(context.Background(), "", validRequest())

	require.True(t, result.IsSuccess, result.Message)
	assert.Equal(t, "Booking created successfully", result.Message)
	assert.Equal(t, http.StatusCreated, result.HTTPStatus())

	profile := repo.profiles["guest_456"]
	require.NotNil(t, profile)
	assert.Equal(t, "Maria", profile.FirstName)
	assert.Equal(t, "Garcia", profile.LastName)
	assert.Equal(t, profiles.ProfileTypeGuest, profile.ProfileType)

	booking := repo.bookings["MLC-2024-001"]
	require.NotNil(t, booking)
	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, "act_123", booking.ActivityID)
	assert.Equal(t, "guest_456", booking.CustomerID)
	assert.Equal(t, 3, booking.TotalParticipants)
	assert.Equal(t, "EUR", booking.Currency)
	assert.Equal(t, booking, result.Data)
}

func TestCreateBookingExistingProfileIsUntouched(t *testing.T) {
	repo := newMemRepository()
	existing := &profiles.Profile{ID: "guest_456", FirstName: "Maria", LastName: "G.", Email: "old@example.com"}
	repo.profiles["guest_456"] = existing
	svc := newTestService(repo, Options{})

	result := svc.CreateBooking(context.Background(), "", validRequest())

	require.True(t, result.IsSuccess)
	assert.Same(t, existing, repo.profiles["guest_456"])
	assert.Equal(t, "old@example.com", repo.profiles["guest_456"].Email)
	assert.Equal(t, "MLC-2024-001", result.Data.BookingReference)
	assert.Equal(t, StatusPending, result.Data.Status)
	// the booking keeps what the customer typed
	assert.Equal(t, "maria@example.com", result.Data.CustomerEmail)
}

func TestCreateBookingSingleNameGetsGuestSurname(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	req := validRequest()
	req.CustomerName = "Cher"

	result := svc.CreateBooking(context.Background(), "", req)

	require.True(t, result.IsSuccess)
	assert.Equal(t, "Cher", repo.profiles["guest_456"].FirstName)
	assert.Equal(t, profiles.DefaultLastName, repo.profiles["guest_456"].LastName)
}

func TestCreateBookingProfileFailureWritesNoBooking(t *testing.T) {
	repo := newMemRepository()
	repo.profileErr = errors.New("connection reset")
	svc := newTestService(repo, Options{})

	result := svc.CreateBooking(context.Background(), "", validRequest())

	assert.False(t, result.IsSuccess)
	assert.Nil(t, result.Data)
	assert.Contains(t, result.Message, "connection reset")
	assert.Zero(t, repo.createCalls)
	assert.Empty(t, repo.bookings)
}

func TestCreateBookingInsertFailureRollsBack(t *testing.T) {
	repo := newMemRepository()
	repo.createErr = errors.New(`null value in column "booking_date" violates not-null constraint`)
	svc := newTestService(repo, Options{})

	result := svc.CreateBooking(context.Background(), "", validRequest())

	assert.False(t, result.IsSuccess)
	assert.Nil(t, result.Data)
	assert.Equal(t, repo.createErr.Error(), result.Message)
	assert.Empty(t, repo.profiles)
	assert.Equal(t, http.StatusUnprocessableEntity, result.HTTPStatus())
}

func TestCreateBookingDuplicateReference(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	require.True(t, svc.CreateBooking(context.Background(), "", validRequest()).IsSuccess)

	result := svc.CreateBooking(context.Background(), "", validRequest())

	assert.False(t, result.IsSuccess)
	assert.Nil(t, result.Data)
	assert.Equal(t, "booking reference already exists", result.Message)
	assert.Equal(t, http.StatusConflict, result.HTTPStatus())
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
		want   string
	}{
		{"missing email", func(r *CreateBookingRequest) { r.CustomerEmail = "" }, "customer_email"},
		{"bad email", func(r *CreateBookingRequest) { r.CustomerEmail = "maria" }, "customer_email"},
		{"bad date", func(r *CreateBookingRequest) { r.BookingDate = "15/07/2024" }, "booking_date"},
		{"negative money", func(r *CreateBookingRequest) { r.TotalAmount = -1 }, "total_amount"},
		{"empty party", func(r *CreateBookingRequest) { r.Adults, r.Children = 0, 0 }, "participant"},
		{"total mismatch", func(r *CreateBookingRequest) { r.TotalParticipants = 5 }, "total_participants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository()
			svc := newTestService(repo, Options{})
			req := validRequest()
			tt.mutate(&req)

			result := svc.CreateBooking(context.Background(), "", req)

			assert.False(t, result.IsSuccess)
			assert.Nil(t, result.Data)
			assert.True(t, strings.HasPrefix(result.Message, "Validation failed: "), result.Message)
			assert.Contains(t, result.Message, tt.want)
			assert.Equal(t, http.StatusBadRequest, result.HTTPStatus())
			assert.Empty(t, repo.profiles)
		})
	}
}

func TestCreateBookingGeneratesIdentifiers(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{References: NewReferenceGenerator("MLC")})
	req := validRequest()
	req.CustomerID = ""
	req.BookingReference = ""

	result := svc.CreateBooking(context.Background(), "", req)

	require.True(t, result.IsSuccess)
	assert.Regexp(t, regexp.MustCompile(`^MLC-\d{4}-[A-Z2-9]{6}$`), result.Data.BookingReference)
	assert.True(t, strings.HasPrefix(result.Data.CustomerID, GuestIDPrefix))
	assert.Contains(t, repo.profiles, result.Data.CustomerID)
}

func TestCreateBookingUsesAuthenticatedIdentity(t *testing.T) {
	repo := newMemRepository()
	repo.profiles["user-1"] = &profiles.Profile{ID: "user-1", ProfileType: profiles.ProfileTypeRegistered}
	svc := newTestService(repo, Options{})

	result := svc.CreateBooking(context.Background(), "user-1", validRequest())

	require.True(t, result.IsSuccess)
	assert.Equal(t, "user-1", result.Data.CustomerID)
	assert.Equal(t, profiles.ProfileTypeRegistered, repo.profiles["user-1"].ProfileType)
	assert.NotContains(t, repo.profiles, "guest_456")
}

func TestCreateBookingAnonymousCannotUseRegisteredProfile(t *testing.T) {
	repo := newMemRepository()
	repo.profiles["usr_registered"] = &profiles.Profile{
		ID:          "usr_registered",
		Email:       "owner@example.com",
		ProfileType: profiles.ProfileTypeRegistered,
	}
	svc := newTestService(repo, Options{})
	req := validRequest()
	req.CustomerID = "usr_registered"
	req.CustomerEmail = "someone-else@example.com"

	result := svc.CreateBooking(context.Background(), "", req)

	assert.False(t, result.IsSuccess)
	assert.Nil(t, result.Data)
	assert.Equal(t, http.StatusForbidden, result.HTTPStatus())
	assert.Empty(t, repo.bookings)

	mine, err := svc.ListByCustomer(context.Background(), "usr_registered", ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, mine.Bookings)
}

func TestCreateBookingAnonymousExistingGuestProfile(t *testing.T) {
	repo := newMemRepository()
	repo.profiles["guest_456"] = &profiles.Profile{ID: "guest_456", ProfileType: profiles.ProfileTypeGuest}
	svc := newTestService(repo, Options{})

	result := svc.CreateBooking(context.Background(), "", validRequest())

	require.True(t, result.IsSuccess, result.Message)
	assert.Equal(t, "guest_456", result.Data.CustomerID)
}

func TestCreateBookingChecksActivity(t *testing.T) {
	activity := &activities.Activity{
		ID: "act_123", Title: "Sunset Cruise", IsActive: true, MaxParticipants: 4,
		PriceAdult: 50, PriceChild: 25, Currency: "GBP",
	}

	t.Run("prices from activity", func(t *testing.T) {
		repo := newMemRepository()
		svc := newTestService(repo, Options{Activities: &fakeActivities{activity: activity}})
		req := validRequest()
		req.Subtotal, req.TotalAmount, req.Currency = 0, 0, ""

		result := svc.CreateBooking(context.Background(), "", req)

		require.True(t, result.IsSuccess, result.Message)
		assert.Equal(t, 125.0, result.Data.Subtotal)
		assert.Equal(t, 125.0, result.Data.TotalAmount)
		assert.Equal(t, "GBP", result.Data.Currency)
	})

	t.Run("party too large", func(t *testing.T) {
		repo := newMemRepository()
		svc := newTestService(repo, Options{Activities: &fakeActivities{activity: activity}})
		req := validRequest()
		req.Adults = 5

		result := svc.CreateBooking(context.Background(), "", req)

		assert.False(t, result.IsSuccess)
		assert.Empty(t, repo.bookings)
	})

	t.Run("unknown activity", func(t *testing.T) {
		repo := newMemRepository()
		svc := newTestService(repo, Options{Activities: &fakeActivities{}})

		result := svc.CreateBooking(context.Background(), "", validRequest())

		assert.False(t, result.IsSuccess)
		assert.Equal(t, http.StatusNotFound, result.HTTPStatus())
	})

	t.Run("inactive activity", func(t *testing.T) {
		inactive := *activity
		inactive.IsActive = false
		repo := newMemRepository()
		svc := newTestService(repo, Options{Activities: &fakeActivities{activity: &inactive}})

		result := svc.CreateBooking(context.Background(), "", validRequest())

		assert.False(t, result.IsSuccess)
		assert.Zero(t, repo.createCalls)
	})
}

func TestCreateBookingConfirmationIsBestEffort(t *testing.T) {
	repo := newMemRepository()
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	svc := newTestService(repo, Options{Notifier: notifier})

	result := svc.CreateBooking(context.Background(), "", validRequest())

	require.True(t, result.IsSuccess)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "MLC-2024-001", notifier.sent[0].BookingReference)
	assert.Equal(t, "maria@example.com", notifier.sent[0].CustomerEmail)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPending.CanTransitionTo(StatusFailed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusFailed.CanBeCancelled())
}

func TestUpdateStatus(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	require.True(t, svc.CreateBooking(context.Background(), "", validRequest()).IsSuccess)

	booking, err := svc.UpdateStatus(context.Background(), "MLC-2024-001", StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, booking.Status)

	_, err = svc.UpdateStatus(context.Background(), "MLC-2024-001", StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	booking, err = svc.UpdateStatus(context.Background(), "MLC-2024-001", StatusCancelled)
	require.NoError(t, err)
	assert.NotNil(t, booking.CancelledAt)
	assert.NotNil(t, repo.bookings["MLC-2024-001"].CancelledAt)
}

func TestCancelOwn(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	require.True(t, svc.CreateBooking(context.Background(), "", validRequest()).IsSuccess)

	_, err := svc.CancelOwn(context.Background(), "someone-else", "MLC-2024-001")
	assert.ErrorIs(t, err, ErrNotOwner)

	booking, err := svc.CancelOwn(context.Background(), "guest_456", "MLC-2024-001")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, booking.Status)
}

func TestCancelOwnTwiceKeepsFirstCancellation(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	require.True(t, svc.CreateBooking(context.Background(), "", validRequest()).IsSuccess)

	first, err := svc.CancelOwn(context.Background(), "guest_456", "MLC-2024-001")
	require.NoError(t, err)
	require.NotNil(t, first.CancelledAt)
	cancelledAt := *first.CancelledAt

	again, err := svc.CancelOwn(context.Background(), "guest_456", "MLC-2024-001")
	require.NoError(t, err)
	assert.True(t, again.IsCancelled())
	require.NotNil(t, again.CancelledAt)
	assert.Equal(t, cancelledAt, *again.CancelledAt)
}

func TestGetForContact(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	require.True(t, svc.CreateBooking(context.Background(), "", validRequest()).IsSuccess)

	b, err := svc.GetForContact(context.Background(), "MLC-2024-001", "MARIA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "MLC-2024-001", b.BookingReference)

	_, err = svc.GetForContact(context.Background(), "MLC-2024-001", "eve@example.com")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCreatePaymentIntent(t *testing.T) {
	repo := newMemRepository()
	gateway := &fakeGateway{}
	svc := newTestService(repo, Options{Payments: gateway})
	require.True(t, svc.CreateBooking(context.Background(), "", validRequest()).IsSuccess)

	intent, err := svc.CreatePaymentIntent(context.Background(), "MLC-2024-001", "maria@example.com")

	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "MLC-2024-001", gateway.lastRef)
	assert.Equal(t, 180.0, gateway.lastCost)
	assert.Equal(t, "pi_123", repo.bookings["MLC-2024-001"].PaymentIntentID)

	_, err = svc.UpdateStatus(context.Background(), "MLC-2024-001", StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.CreatePaymentIntent(context.Background(), "MLC-2024-001", "maria@example.com")
	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestCreatePaymentIntentWithoutGateway(t *testing.T) {
	svc := newTestService(newMemRepository(), Options{})
	_, err := svc.CreatePaymentIntent(context.Background(), "MLC-2024-001", "maria@example.com")
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestReferenceGenerator(t *testing.T) {
	g := NewReferenceGenerator("")
	g.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	a, err := g.Next()
	require.NoError(t, err)
	b, err := g.Next()
	require.NoError(t, err)

	assert.Regexp(t, `^BK-2025-[A-Z2-9]{6}$`, a)
	assert.NotEqual(t, a, b)
}

func setupRouter(svc Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	auth := func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}
	SetupBookingRoutes(api, api.Group("/admin"), NewController(svc), auth, auth)
	return r
}

func TestCreateBookingEndpoint(t *testing.T) {
	repo := newMemRepository()
	r := setupRouter(newTestService(repo, Options{}), "")

	body := `{"customer_id":"guest_456","booking_reference":"MLC-2024-001","activity_id":"act_123",
		"booking_date":"2024-07-15","booking_time":"10:00","adults":1,"subtotal":90,"total_amount":90,
		"customer_name":"Maria Garcia","customer_email":"maria@example.com"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"isSuccess":true`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestCreateBookingEndpointMalformedJSON(t *testing.T) {
	r := setupRouter(newTestService(newMemRepository(), Options{}), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"adults":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"isSuccess":false`)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestMyBookingsEndpoint(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, Options{})
	require.True(t, svc.CreateBooking(context.Background(), "guest_456", validRequest()).IsSuccess)
	r := setupRouter(svc, "guest_456")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me/bookings", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MLC-2024-001")
}
