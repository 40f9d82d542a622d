package bookingqr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"tourly/internal/bookings"
)

const PayloadType = "booking_confirmation"

// hashLength is the number of base64url characters kept from the MAC
const hashLength = 16

var ErrSecretRequired = errors.New("QR signing secret is required")

// Payload is the JSON text encoded in a booking QR code
type Payload struct {
	Type         string  `json:"type"`
	Ref          string  `json:"ref"`
	Customer     string  `json:"customer"`
	Activity     string  `json:"activity"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Amount       float64 `json:"amount"`
	Participants int     `json:"participants"`
	Hash         string  `json:"hash"`
	Timestamp    string  `json:"timestamp"`
}

type VerifyResult struct {
	IsValid bool              `json:"isValid"`
	Message string            `json:"message"`
	Payload *Payload          `json:"payload,omitempty"`
	Booking *bookings.Booking `json:"booking,omitempty"`
}

// Signer issues and checks QR payloads with an HMAC over ref, customer and activity
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// Hash MACs ref, customer and activity in that order. Each field is length
// prefixed so values containing separators cannot collide.
func (s *Signer) Hash(ref, customer, activity string) string {
	mac := hmac.New(sha256.New, s.secret)
	var size [4]byte
	for _, field := range []string{ref, customer, activity} {
		binary.BigEndian.PutUint32(size[:], uint32(len(field)))
		mac.Write(size[:])
		mac.Write([]byte(field))
	}
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))[:hashLength]
}

func (s *Signer) Generate(b *bookings.Booking) Payload {
	return Payload{
		Type:         PayloadType,
		Ref:          b.BookingReference,
		Customer:     b.CustomerID,
		Activity:     b.ActivityID,
		Date:         b.BookingDate,
		Time:         b.BookingTime,
		Amount:       b.TotalAmount,
		Participants: b.TotalParticipants,
		Hash:         s.Hash(b.BookingReference, b.CustomerID, b.ActivityID),
		Timestamp:    s.now().UTC().Format(time.RFC3339),
	}
}

func (s *Signer) Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Verify parses scanned text and recomputes its hash
func (s *Signer) Verify(text string) VerifyResult {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return VerifyResult{Message: "Invalid QR code format"}
	}
	if p.Type != PayloadType {
		return VerifyResult{Message: "Unsupported QR code type", Payload: &p}
	}
	if p.Ref == "" || p.Customer == "" || p.Activity == "" || p.Hash == "" {
		return VerifyResult{Message: "QR code is missing booking fields", Payload: &p}
	}

	expected := s.Hash(p.Ref, p.Customer, p.Activity)
	if !hmac.Equal([]byte(expected), []byte(p.Hash)) {
		return VerifyResult{Message: "QR code signature mismatch", Payload: &p}
	}
	return VerifyResult{IsValid: true, Message: "QR code is valid", Payload: &p}
}
