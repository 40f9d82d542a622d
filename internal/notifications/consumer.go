package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tourly/internal/shared/config"
	"tourly/pkg/logger"

	"github.com/IBM/sarama"
)

type deliverFunc func(ctx context.Context, n *Notification) error

// KafkaConsumer drains the notifications topic into the deliverer
type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *consumerGroupHandler
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewKafkaConsumer(cfg config.KafkaConfig, deliverer *Deliverer, log *logger.Logger) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		group:   group,
		topics:  []string{cfg.Topic},
		handler: newConsumerGroupHandler(deliverer.Deliver, cfg.MaxRetries, time.Second, log),
		log:     log,
	}, nil
}

// Start consumes until ctx is cancelled
func (c *KafkaConsumer) Start(ctx context.Context) {
	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.log.Error("Consumer group error", "error", err)
		}
	}()

	go func() {
		defer c.wg.Done()
		for {
			if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.log.Error("Error consuming notifications", "error", err)
				time.Sleep(time.Second)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.log.Info("Notification consumer started", "topics", c.topics)
}

// Stop closes the group and waits for the loops to exit
func (c *KafkaConsumer) Stop() error {
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type consumerGroupHandler struct {
	deliver    deliverFunc
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func newConsumerGroupHandler(deliver deliverFunc, maxRetries int, backoff time.Duration, log *logger.Logger) *consumerGroupHandler {
	return &consumerGroupHandler{deliver: deliver, maxRetries: maxRetries, backoff: backoff, log: log}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message.Value); err != nil {
				h.log.Error("Dropping notification",
					"topic", message.Topic,
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err,
				)
			}
			// Notifications are best effort; a poison message must not block the partition.
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, value []byte) error {
	var n Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return h.executeWithRetry(ctx, &n)
}

func (h *consumerGroupHandler) executeWithRetry(ctx context.Context, n *Notification) error {
	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = h.deliver(ctx, n); err == nil {
			return nil
		}
		if errors.Is(err, ErrChannelNotConfigured) || !n.Retryable() || attempt == h.maxRetries {
			break
		}

		n.RetryCount++
		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
