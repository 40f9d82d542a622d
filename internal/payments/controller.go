package payments

import (
	"context"
	"io"
	"net/http"

	"tourly/pkg/logger"
	"tourly/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

const SignatureHeader = "Stripe-Signature"

// EventDispatcher is satisfied by *Dispatcher
type EventDispatcher interface {
	Dispatch(ctx context.Context, event stripe.Event) (Outcome, error)
}

type Controller struct {
	verifier     EventVerifier
	dispatcher   EventDispatcher
	maxBodyBytes int64
	log          *logger.Logger
}

func NewController(verifier EventVerifier, dispatcher EventDispatcher, maxBodyBytes int64, log *logger.Logger) *Controller {
	return &Controller{
		verifier:     verifier,
		dispatcher:   dispatcher,
		maxBodyBytes: maxBodyBytes,
		log:          log.WithComponent("payments-webhook"),
	}
}

// Webhook handles POST /api/v1/payments/webhook. The processor only looks at
// the status code; 2xx stops redelivery.
func (ctrl *Controller) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	event, err := ctrl.verifier.Verify(payload, c.GetHeader(SignatureHeader))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeInvalid).Inc()
		ctrl.log.WarnWithContext(c.Request.Context(), "Webhook signature verification failed", map[string]interface{}{
			"error": err.Error(),
			"ip":    c.ClientIP(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook signature verification failed"})
		return
	}

	outcome, err := ctrl.dispatcher.Dispatch(c.Request.Context(), event)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(string(event.Type), metrics.OutcomeFailure).Inc()
		ctrl.log.ErrorWithContext(c.Request.Context(), "Webhook handler failed", err, map[string]interface{}{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handler failed"})
		return
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), string(outcome)).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}
