package bookings

import "net/http"

type failureKind int

const (
	failureNone failureKind = iota
	failureValidation
	failureNotFound
	failureConflict
	failureForbidden
	failureInternal
)

// ActionResult is the booking form's result shape; Data is nil on failure
type ActionResult struct {
	IsSuccess bool     `json:"isSuccess"`
	Message   string   `json:"message"`
	Data      *Booking `json:"data"`

	kind failureKind
}

func failure(kind failureKind, message string) ActionResult {
	return ActionResult{IsSuccess: false, Message: message, kind: kind}
}

// HTTPStatus maps the result onto a response code
func (r ActionResult) HTTPStatus() int {
	switch {
	case r.IsSuccess:
		return http.StatusCreated
	case r.kind == failureValidation:
		return http.StatusBadRequest
	case r.kind == failureNotFound:
		return http.StatusNotFound
	case r.kind == failureConflict:
		return http.StatusConflict
	case r.kind == failureForbidden:
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}

type PaginatedBookings struct {
	Bookings   []Booking `json:"bookings"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

type PaymentIntentResponse struct {
	BookingReference string  `json:"booking_reference"`
	PaymentIntentID  string  `json:"payment_intent_id"`
	ClientSecret     string  `json:"client_secret"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}
