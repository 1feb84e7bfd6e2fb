package invalidation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/rs/zerolog"
)

// Handler applies an invalidation received from another instance.
type Handler interface {
	Apply(ctx context.Context, scope string, prefixes []query.Key)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, scope string, prefixes []query.Key)

// Apply calls f.
func (f HandlerFunc) Apply(ctx context.Context, scope string, prefixes []query.Key) {
	f(ctx, scope, prefixes)
}

// ConsumerConfig configures the invalidation consumer.
type ConsumerConfig struct {
	SubscriptionID         string
	MaxOutstandingMessages int
	NumGoroutines          int
	SubscriptionTimeout    time.Duration
	StopTimeout            time.Duration
}

// NewConsumerDefaults returns a config for subID. INVALIDATION_MAX_OUTSTANDING
// and INVALIDATION_NUM_GOROUTINES override the receive settings.
func NewConsumerDefaults(subID string) *ConsumerConfig {
	cfg := &ConsumerConfig{
		SubscriptionID:         subID,
		MaxOutstandingMessages: 100,
		NumGoroutines:          2,
		SubscriptionTimeout:    20 * time.Second,
		StopTimeout:            30 * time.Second,
	}
	if v := os.Getenv("INVALIDATION_MAX_OUTSTANDING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxOutstandingMessages = n
		}
	}
	if v := os.Getenv("INVALIDATION_NUM_GOROUTINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumGoroutines = n
		}
	}
	return cfg
}

// Consumer receives invalidation events and hands those published by other
// instances to a Handler. Every message is acked: invalidations are
// idempotent and a malformed one cannot succeed on redelivery.
type Consumer struct {
	subscription *pubsub.Subscription
	origin       string
	handler      Handler
	stopTimeout  time.Duration
	logger       zerolog.Logger

	stopOnce sync.Once
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// NewConsumer verifies the subscription exists before returning. Events whose
// origin equals origin are skipped.
func NewConsumer(ctx context.Context, cfg *ConsumerConfig, client *pubsub.Client, origin string, handler Handler, logger zerolog.Logger) (*Consumer, error) {
	if client == nil {
		return nil, errors.New("pubsub client cannot be nil")
	}
	if cfg == nil || cfg.SubscriptionID == "" {
		return nil, errors.New("invalidation subscription id is required")
	}
	if handler == nil {
		return nil, errors.New("invalidation handler cannot be nil")
	}
	sub := client.Subscription(cfg.SubscriptionID)

	subCtx, cancel := context.WithTimeout(ctx, cfg.SubscriptionTimeout)
	defer cancel()
	exists, err := sub.Exists(subCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for subscription %s: %w", cfg.SubscriptionID, err)
	}
	if !exists {
		return nil, fmt.Errorf("subscription %s does not exist", cfg.SubscriptionID)
	}
	sub.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstandingMessages
	sub.ReceiveSettings.NumGoroutines = cfg.NumGoroutines

	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = 30 * time.Second
	}
	return &Consumer{
		subscription: sub,
		origin:       origin,
		handler:      handler,
		stopTimeout:  stopTimeout,
		logger:       logger.With().Str("component", "InvalidationConsumer").Str("subscription_id", cfg.SubscriptionID).Logger(),
		doneChan:     make(chan struct{}),
	}, nil
}

// Start begins receiving in the background until ctx is done or Stop is called.
func (c *Consumer) Start(ctx context.Context) error {
	receiveCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go func() {
		defer close(c.doneChan)
		c.logger.Info().Msg("Invalidation consumer started.")
		err := c.subscription.Receive(receiveCtx, c.receive)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error().Err(err).Msg("Pub/Sub Receive call exited with error")
		}
		c.logger.Info().Msg("Invalidation consumer stopped.")
	}()
	return nil
}

func (c *Consumer) receive(ctx context.Context, msg *pubsub.Message) {
	defer msg.Ack()
	if msg.Attributes[AttrOrigin] == c.origin {
		return
	}
	event, err := decodeEvent(msg.Data)
	if err != nil {
		c.logger.Error().Err(err).Str("msg_id", msg.ID).Msg("Dropping malformed invalidation")
		return
	}
	if event.Origin == c.origin {
		return
	}
	prefixes, err := event.Keys()
	if err != nil {
		c.logger.Error().Err(err).Str("msg_id", msg.ID).Msg("Dropping malformed invalidation")
		return
	}
	c.logger.Debug().Str("event_id", event.ID).Str("origin", event.Origin).Str("scope", event.Scope).Int("prefixes", len(prefixes)).Msg("Applying remote invalidation.")
	c.handler.Apply(ctx, event.Scope, prefixes)
}

// Stop cancels the receive loop and waits for it to exit.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			close(c.doneChan)
			return
		}
		c.cancel()
		timer := time.NewTimer(c.stopTimeout)
		defer timer.Stop()
		select {
		case <-c.doneChan:
		case <-ctx.Done():
			err = ctx.Err()
		case <-timer.C:
			err = errors.New("timed out waiting for the invalidation consumer to stop")
		}
	})
	return err
}

// Done is closed once the receive loop has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.doneChan
}
