// Package invalidation carries query-cache invalidations between storefront
// instances over Google Cloud Pub/Sub, so a mutation made through one replica
// marks the same keys stale on every other.
package invalidation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/google/uuid"
)

// Event is the payload of one invalidation message.
type Event struct {
	ID string `json:"id"`
	// Origin identifies the publishing instance. Consumers skip their own events.
	Origin string `json:"origin"`
	// Scope is the session the invalidation belongs to. An empty scope applies
	// to every session.
	Scope string `json:"scope,omitempty"`
	// Prefixes holds each key prefix in canonical form.
	Prefixes    [][]string `json:"prefixes"`
	PublishedAt time.Time  `json:"publishedAt"`
}

// NewEvent builds an event for prefixes.
func NewEvent(origin, scope string, prefixes []query.Key) Event {
	canonical := make([][]string, len(prefixes))
	for i, p := range prefixes {
		canonical[i] = p.Canonical()
	}
	return Event{
		ID:          uuid.NewString(),
		Origin:      origin,
		Scope:       scope,
		Prefixes:    canonical,
		PublishedAt: time.Now().UTC(),
	}
}

// Keys rebuilds the prefixes carried by the event.
func (e Event) Keys() ([]query.Key, error) {
	keys := make([]query.Key, 0, len(e.Prefixes))
	for _, segs := range e.Prefixes {
		k, err := query.ParseKey(segs)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func decodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal invalidation event: %w", err)
	}
	if len(e.Prefixes) == 0 {
		return Event{}, fmt.Errorf("invalidation event %s carries no prefixes", e.ID)
	}
	return e, nil
}
