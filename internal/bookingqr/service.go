package bookingqr

import (
	"context"
	"fmt"

	"tourly/internal/bookings"

	"github.com/skip2/go-qrcode"
)

// BookingLookup is satisfied by bookings.Service
type BookingLookup interface {
	GetByReference(ctx context.Context, reference string) (*bookings.Booking, error)
	GetForContact(ctx context.Context, reference, email string) (*bookings.Booking, error)
}

type Service struct {
	signer   *Signer
	bookings BookingLookup
	size     int
}

func NewService(signer *Signer, lookup BookingLookup, size int) *Service {
	if size <= 0 {
		size = 256
	}
	return &Service{signer: signer, bookings: lookup, size: size}
}

// Render returns a PNG QR code for the booking addressed by reference and lead email
func (s *Service) Render(ctx context.Context, reference, email string) ([]byte, error) {
	booking, err := s.bookings.GetForContact(ctx, reference, email)
	if err != nil {
		return nil, err
	}

	text, err := s.signer.Encode(s.signer.Generate(booking))
	if err != nil {
		return nil, fmt.Errorf("encode QR payload: %w", err)
	}

	png, err := qrcode.Encode(text, qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("render QR code: %w", err)
	}
	return png, nil
}

// Verify checks the scanned text and, when valid, attaches the current booking
func (s *Service) Verify(ctx context.Context, text string) VerifyResult {
	result := s.signer.Verify(text)
	if !result.IsValid {
		return result
	}

	booking, err := s.bookings.GetByReference(ctx, result.Payload.Ref)
	if err != nil {
		return VerifyResult{Message: "Booking not found for QR code", Payload: result.Payload}
	}
	if booking.CustomerID != result.Payload.Customer || booking.ActivityID != result.Payload.Activity {
		return VerifyResult{Message: "QR code does not match the stored booking", Payload: result.Payload}
	}

	result.Booking = booking
	return result
}
