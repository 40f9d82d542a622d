package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"tourly/internal/bookings"
	"tourly/internal/notifications"
	"tourly/internal/profiles"
	"tourly/pkg/logger"

	"github.com/stripe/stripe-go/v76"
)

// Event types the dispatcher acts on
const (
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventCheckoutSessionComplete = "checkout.session.completed"
	EventPaymentIntentFailed     = "payment_intent.payment_failed"
	EventPaymentIntentSucceeded  = "payment_intent.succeeded"
)

// MetadataBookingReference is the PaymentIntent metadata key joining a charge to a booking
const MetadataBookingReference = "bookingReference"

type BookingLookup interface {
	GetByReference(ctx context.Context, reference string) (*bookings.Booking, error)
}

type SubscriptionReconciler interface {
	SyncSubscription(ctx context.Context, update profiles.SubscriptionUpdate) error
}

type AlertSender interface {
	SendPaymentFailedAlert(ctx context.Context, alert notifications.PaymentFailedAlert) error
}

// Outcome says what the dispatcher did with an event
type Outcome string

const (
	OutcomeHandled Outcome = "handled"
	OutcomeSkipped Outcome = "skipped"
	OutcomeIgnored Outcome = "ignored"
)

// Dispatcher routes verified events. A returned error means the processor
// should redeliver, so every handler must tolerate running twice.
type Dispatcher struct {
	bookings      BookingLookup
	subscriptions SubscriptionReconciler
	alerts        AlertSender
	log           *logger.Logger
}

func NewDispatcher(bookings BookingLookup, subscriptions SubscriptionReconciler, alerts AlertSender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		bookings:      bookings,
		subscriptions: subscriptions,
		alerts:        alerts,
		log:           log.WithComponent("payments"),
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event stripe.Event) (Outcome, error) {
	d.log.LogWebhookReceived(ctx, event.ID, string(event.Type))

	switch string(event.Type) {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return d.handleSubscription(ctx, event)
	case EventCheckoutSessionComplete:
		return d.handleCheckoutCompleted(ctx, event)
	case EventPaymentIntentFailed:
		return d.handlePaymentFailed(ctx, event)
	case EventPaymentIntentSucceeded:
		return d.handlePaymentSucceeded(ctx, event)
	default:
		return OutcomeIgnored, nil
	}
}

func decode(event stripe.Event, dest interface{}) error {
	if event.Data == nil {
		return fmt.Errorf("event %s has no data", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, dest); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return nil
}

func (d *Dispatcher) handleSubscription(ctx context.Context, event stripe.Event) (Outcome, error) {
	var sub stripe.Subscription
	if err := decode(event, &sub); err != nil {
		return "", err
	}

	update := profiles.SubscriptionUpdate{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.Customer != nil {
		update.StripeCustomerID = sub.Customer.ID
	}

	if err := d.subscriptions.SyncSubscription(ctx, update); err != nil {
		return "", fmt.Errorf("sync subscription %s: %w", sub.ID, err)
	}
	return OutcomeHandled, nil
}

func (d *Dispatcher) handleCheckoutCompleted(ctx context.Context, event stripe.Event) (Outcome, error) {
	var session stripe.CheckoutSession
	if err := decode(event, &session); err != nil {
		return "", err
	}

	if session.Mode != stripe.CheckoutSessionModeSubscription {
		d.log.LogWebhookSkipped(ctx, event.ID, string(event.Type), "checkout mode "+string(session.Mode))
		return OutcomeSkipped, nil
	}

	update := profiles.SubscriptionUpdate{
		ProfileID: session.ClientReferenceID,
		Status:    string(stripe.SubscriptionStatusActive),
	}
	if session.Customer != nil {
		update.StripeCustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		update.SubscriptionID = session.Subscription.ID
	}

	if err := d.subscriptions.SyncSubscription(ctx, update); err != nil {
		return "", fmt.Errorf("sync checkout subscription: %w", err)
	}
	return OutcomeHandled, nil
}

// handlePaymentFailed never fails the webhook once the payload decodes:
// a redelivery would only repeat the staff alert.
func (d *Dispatcher) handlePaymentFailed(ctx context.Context, event stripe.Event) (Outcome, error) {
	var intent stripe.PaymentIntent
	if err := decode(event, &intent); err != nil {
		return "", err
	}

	reference := intent.Metadata[MetadataBookingReference]
	if reference == "" {
		d.log.LogWebhookSkipped(ctx, event.ID, string(event.Type), "no booking reference in metadata")
		return OutcomeSkipped, nil
	}

	booking, err := d.bookings.GetByReference(ctx, reference)
	if err != nil {
		d.log.ErrorWithContext(ctx, "Booking lookup for failed payment failed", err, map[string]interface{}{
			"event_id":          event.ID,
			"booking_reference": reference,
		})
		return OutcomeSkipped, nil
	}

	alert := notifications.PaymentFailedAlert{
		BookingReference: booking.BookingReference,
		CustomerName:     booking.CustomerName,
		CustomerEmail:    booking.CustomerEmail,
		ActivityID:       booking.ActivityID,
		Amount:           booking.TotalAmount,
		Currency:         booking.Currency,
		PaymentIntentID:  intent.ID,
	}
	if intent.LastPaymentError != nil {
		alert.ErrorMessage = intent.LastPaymentError.Msg
	}

	if err := d.alerts.SendPaymentFailedAlert(ctx, alert); err != nil {
		d.log.ErrorWithContext(ctx, "Failed to send payment failure alert", err, map[string]interface{}{
			"event_id":          event.ID,
			"booking_reference": reference,
		})
	}
	return OutcomeHandled, nil
}

// handlePaymentSucceeded only correlates; confirming the booking stays an admin action
func (d *Dispatcher) handlePaymentSucceeded(ctx context.Context, event stripe.Event) (Outcome, error) {
	var intent stripe.PaymentIntent
	if err := decode(event, &intent); err != nil {
		return "", err
	}

	d.log.InfoWithContext(ctx, "Payment succeeded", map[string]interface{}{
		"event_id":          event.ID,
		"payment_intent_id": intent.ID,
		"booking_reference": intent.Metadata[MetadataBookingReference],
	})
	return OutcomeHandled, nil
}
