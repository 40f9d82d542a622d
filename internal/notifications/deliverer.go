package notifications

import (
	"context"
	"errors"
	"fmt"

	"tourly/pkg/logger"
	"tourly/pkg/metrics"
)

var ErrChannelNotConfigured = errors.New("notification channel not configured")

// Deliverer hands a notification to the transport for its channel. It is the
// end of the line for both the direct publisher and the Kafka consumer.
type Deliverer struct {
	email EmailSender
	chat  ChatSender
	log   *logger.Logger
}

// NewDeliverer builds a deliverer. chat may be nil when no room is configured.
func NewDeliverer(email EmailSender, chat ChatSender, log *logger.Logger) *Deliverer {
	return &Deliverer{email: email, chat: chat, log: log}
}

func (d *Deliverer) Deliver(ctx context.Context, n *Notification) error {
	n.Status = NotificationStatusSending

	var err error
	switch n.Channel {
	case NotificationChannelChat:
		if d.chat == nil {
			err = fmt.Errorf("%w: %s", ErrChannelNotConfigured, n.Channel)
			break
		}
		err = d.chat.Post(ctx, n.Body)
	case NotificationChannelEmail:
		if d.email == nil {
			err = fmt.Errorf("%w: %s", ErrChannelNotConfigured, n.Channel)
			break
		}
		err = d.email.SendHTML(ctx, n.RecipientEmail, n.Subject, n.HTMLBody, n.Body)
	default:
		err = fmt.Errorf("unknown notification channel %q", n.Channel)
	}

	if err != nil {
		n.MarkFailed(err)
		metrics.NotificationsDelivered.WithLabelValues(string(n.Channel), metrics.OutcomeFailure).Inc()
		return err
	}

	n.MarkSent()
	metrics.NotificationsDelivered.WithLabelValues(string(n.Channel), metrics.OutcomeSuccess).Inc()
	d.log.InfoWithContext(ctx, "Notification delivered", map[string]interface{}{
		"notification_id":   n.ID.String(),
		"type":              string(n.Type),
		"channel":           string(n.Channel),
		"booking_reference": n.BookingReference,
	})
	return nil
}

// HasChat reports whether a chat room is wired
func (d *Deliverer) HasChat() bool {
	return d.chat != nil
}

// Publish delivers in-process. Used when Kafka is disabled.
func (d *Deliverer) Publish(ctx context.Context, n *Notification) error {
	return d.Deliver(ctx, n)
}

func (d *Deliverer) Close() error {
	return nil
}
