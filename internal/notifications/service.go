package notifications

import (
	"context"
	"errors"
	"fmt"

	"tourly/pkg/logger"
)

var ErrNoAlertChannel = errors.New("no staff alert channel configured")

type Service interface {
	// SendPaymentFailedAlert forwards a failed-payment summary to staff
	SendPaymentFailedAlert(ctx context.Context, alert PaymentFailedAlert) error
	// SendBookingConfirmation emails the lead contact
	SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error
	Close() error
}

// AlertRouting says where staff alerts go
type AlertRouting struct {
	Chat       bool
	StaffEmail string
}

type service struct {
	publisher Publisher
	routing   AlertRouting
	log       *logger.Logger
}

func NewService(publisher Publisher, routing AlertRouting, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		publisher: publisher,
		routing:   routing,
		log:       log.WithComponent("notifications"),
	}
}

func (s *service) SendPaymentFailedAlert(ctx context.Context, alert PaymentFailedAlert) error {
	if !s.routing.Chat && s.routing.StaffEmail == "" {
		return ErrNoAlertChannel
	}

	text := alert.Text()
	var errs []error

	if s.routing.Chat {
		n := NewNotificationBuilder().
			WithType(NotificationTypePaymentFailedAlert).
			WithChannel(NotificationChannelChat).
			WithSubject(alert.Subject()).
			WithBody(text, "").
			WithBookingReference(alert.BookingReference).
			Build()
		if err := s.publisher.Publish(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("chat alert: %w", err))
		}
	}

	if s.routing.StaffEmail != "" {
		n := NewNotificationBuilder().
			WithType(NotificationTypePaymentFailedAlert).
			WithChannel(NotificationChannelEmail).
			WithRecipient("", s.routing.StaffEmail, "Staff").
			WithSubject(alert.Subject()).
			WithBody(text, "").
			WithBookingReference(alert.BookingReference).
			Build()
		if err := s.publisher.Publish(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("email alert: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *service) SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error {
	if msg.CustomerEmail == "" {
		return errors.New("booking confirmation has no recipient")
	}

	html, err := msg.HTML()
	if err != nil {
		return err
	}

	n := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithChannel(NotificationChannelEmail).
		WithRecipient(msg.CustomerID, msg.CustomerEmail, msg.CustomerName).
		WithSubject(msg.Subject()).
		WithBody(msg.Text(), html).
		WithBookingReference(msg.BookingReference).
		Build()

	if err := s.publisher.Publish(ctx, n); err != nil {
		return fmt.Errorf("publish booking confirmation: %w", err)
	}
	return nil
}

func (s *service) Close() error {
	return s.publisher.Close()
}
