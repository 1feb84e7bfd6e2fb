package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/rs/zerolog"
)

// Attribute names set on every published message.
const (
	AttrOrigin = "origin"
	AttrScope  = "scope"
)

// PublisherConfig configures the invalidation publisher.
type PublisherConfig struct {
	TopicID string
	// Origin identifies this instance. Defaults to the host name.
	Origin                     string
	TopicExistsTimeout         time.Duration
	PublishConfirmationTimeout time.Duration
}

// NewPublisherDefaults returns a config for topicID. INVALIDATION_ORIGIN
// overrides the origin.
func NewPublisherDefaults(topicID string) *PublisherConfig {
	cfg := &PublisherConfig{
		TopicID:                    topicID,
		TopicExistsTimeout:         15 * time.Second,
		PublishConfirmationTimeout: 20 * time.Second,
	}
	if origin := os.Getenv("INVALIDATION_ORIGIN"); origin != "" {
		cfg.Origin = origin
	} else if host, err := os.Hostname(); err == nil {
		cfg.Origin = host
	}
	return cfg
}

// Publisher sends invalidation events to a Pub/Sub topic.
type Publisher struct {
	topic   *pubsub.Topic
	origin  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewPublisher verifies the topic exists before returning.
func NewPublisher(ctx context.Context, cfg *PublisherConfig, client *pubsub.Client, logger zerolog.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("pubsub client cannot be nil")
	}
	if cfg == nil || cfg.TopicID == "" {
		return nil, errors.New("invalidation topic id is required")
	}
	if cfg.Origin == "" {
		return nil, errors.New("invalidation origin is required")
	}
	topic := client.Topic(cfg.TopicID)

	existsCtx, cancel := context.WithTimeout(ctx, cfg.TopicExistsTimeout)
	defer cancel()
	exists, err := topic.Exists(existsCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for topic %s: %w", cfg.TopicID, err)
	}
	if !exists {
		return nil, fmt.Errorf("pubsub topic %s does not exist", cfg.TopicID)
	}

	timeout := cfg.PublishConfirmationTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Publisher{
		topic:   topic,
		origin:  cfg.Origin,
		timeout: timeout,
		logger:  logger.With().Str("component", "InvalidationPublisher").Str("topic_id", cfg.TopicID).Logger(),
	}, nil
}

// Origin returns the origin stamped on every event.
func (p *Publisher) Origin() string {
	return p.origin
}

// Publish queues an event for prefixes under scope. It returns once the
// message is queued; the publish result is logged asynchronously.
func (p *Publisher) Publish(ctx context.Context, scope string, prefixes []query.Key) error {
	if len(prefixes) == 0 {
		return nil
	}
	event := NewEvent(p.origin, scope, prefixes)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{AttrOrigin: p.origin, AttrScope: scope},
	})
	go func() {
		getCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		msgID, err := result.Get(getCtx)
		if err != nil {
			p.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to publish invalidation")
			return
		}
		p.logger.Debug().Str("published_msg_id", msgID).Str("event_id", event.ID).Int("prefixes", len(prefixes)).Msg("Invalidation published.")
	}()
	return nil
}

// Stop flushes pending messages, respecting the context's deadline.
func (p *Publisher) Stop(ctx context.Context) error {
	stopDone := make(chan struct{})
	go func() {
		p.topic.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
