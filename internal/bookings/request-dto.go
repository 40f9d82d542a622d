package bookings

// CreateBookingRequest is the booking form. Money is pre-computed by the
// client; when both amounts are zero they are priced from the activity.
type CreateBookingRequest struct {
	CustomerID          string  `json:"customer_id" validate:"omitempty,max=64"`
	BookingReference    string  `json:"booking_reference" validate:"omitempty,max=32"`
	ActivityID          string  `json:"activity_id" validate:"required,max=64"`
	BookingDate         string  `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime         string  `json:"booking_time" validate:"required,max=20"`
	Adults              int     `json:"adults" validate:"min=0,max=100"`
	Children            int     `json:"children" validate:"min=0,max=100"`
	Seniors             int     `json:"seniors" validate:"min=0,max=100"`
	TotalParticipants   int     `json:"total_participants" validate:"min=0"`
	Subtotal            float64 `json:"subtotal" validate:"min=0"`
	TotalAmount         float64 `json:"total_amount" validate:"min=0"`
	Currency            string  `json:"currency" validate:"omitempty,len=3"`
	CustomerName        string  `json:"customer_name" validate:"required,max=200"`
	CustomerEmail       string  `json:"customer_email" validate:"required,email"`
	CustomerPhone       string  `json:"customer_phone" validate:"omitempty,max=50"`
	SpecialRequirements string  `json:"special_requirements" validate:"max=2000"`
}

// PartySize is the sum of the party composition
func (r CreateBookingRequest) PartySize() int {
	return r.Adults + r.Children + r.Seniors
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed failed cancelled"`
}

type ListQuery struct {
	Status     string `form:"status"`
	ActivityID string `form:"activity_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}
