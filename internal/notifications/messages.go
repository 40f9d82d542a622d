package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// PaymentFailedAlert summarises a failed charge for staff
type PaymentFailedAlert struct {
	BookingReference string
	CustomerName     string
	CustomerEmail    string
	ActivityID       string
	Amount           float64
	Currency         string
	PaymentIntentID  string
	ErrorMessage     string
}

// BookingConfirmation is sent to the lead contact once a booking is stored
type BookingConfirmation struct {
	BookingReference string
	CustomerID       string
	CustomerName     string
	CustomerEmail    string
	ActivityTitle    string
	BookingDate      string
	BookingTime      string
	Participants     int
	TotalAmount      float64
	Currency         string
	Status           string
}

func formatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}

func (a PaymentFailedAlert) Subject() string {
	return fmt.Sprintf("Payment failed for booking %s", a.BookingReference)
}

// Text renders the alert as plain text for chat rooms and email fallbacks
func (a PaymentFailedAlert) Text() string {
	errText := a.ErrorMessage
	if errText == "" {
		errText = "no error message provided"
	}

	var b strings.Builder
	b.WriteString("Payment failed\n")
	fmt.Fprintf(&b, "Booking: %s\n", a.BookingReference)
	fmt.Fprintf(&b, "Customer: %s <%s>\n", a.CustomerName, a.CustomerEmail)
	fmt.Fprintf(&b, "Activity: %s\n", a.ActivityID)
	fmt.Fprintf(&b, "Amount: %s\n", formatAmount(a.Amount, a.Currency))
	if a.PaymentIntentID != "" {
		fmt.Fprintf(&b, "Payment intent: %s\n", a.PaymentIntentID)
	}
	fmt.Fprintf(&b, "Error: %s", errText)
	return b.String()
}

func (m BookingConfirmation) Subject() string {
	return fmt.Sprintf("Booking received: %s (%s)", m.ActivityTitle, m.BookingReference)
}

func (m BookingConfirmation) Text() string {
	return fmt.Sprintf(
		"Hi %s,\n\nWe have received your booking for %s on %s at %s.\nReference: %s\nParticipants: %d\nTotal: %s\nStatus: %s\n\nSee you soon,\nTourly",
		m.CustomerName, m.ActivityTitle, m.BookingDate, m.BookingTime,
		m.BookingReference, m.Participants, formatAmount(m.TotalAmount, m.Currency), m.Status,
	)
}

var confirmationTemplate = template.Must(template.New("booking_confirmation").Parse(`
<h2>Booking received</h2>
<p>Hi {{.CustomerName}},</p>
<p>We have received your booking for <strong>{{.ActivityTitle}}</strong> on {{.BookingDate}} at {{.BookingTime}}.</p>
<p>Reference: <strong>{{.BookingReference}}</strong></p>
<p>Participants: {{.Participants}}</p>
<p>Total: {{.Amount}}</p>
<p>Status: {{.Status}}</p>
<p>See you soon,<br>Tourly</p>
`))

func (m BookingConfirmation) HTML() (string, error) {
	var buf bytes.Buffer
	err := confirmationTemplate.Execute(&buf, struct {
		BookingConfirmation
		Amount string
	}{m, formatAmount(m.TotalAmount, m.Currency)})
	if err != nil {
		return "", fmt.Errorf("render booking confirmation: %w", err)
	}
	return buf.String(), nil
}
