package storefront

import (
	"context"
	"errors"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/rs/zerolog"
)

// Publisher sends invalidations to other storefront instances. An empty
// scope addresses every session.
type Publisher interface {
	Publish(ctx context.Context, scope string, prefixes []query.Key) error
}

// fanout routes the invalidations of one session. Prefixes of shared data go
// to every other local session and to other instances; private prefixes go
// to other instances only, scoped to the session, for requests of the same
// browser that land elsewhere.
type fanout struct {
	sessions  *sessionCache
	publisher Publisher
	shared    query.Store
	logger    zerolog.Logger
}

func (f *fanout) forSession(id string) query.Broadcaster {
	return query.BroadcasterFunc(func(ctx context.Context, prefixes []query.Key) error {
		var shared, private []query.Key
		for _, p := range prefixes {
			if hooks.IsShared(p) {
				shared = append(shared, p)
			} else {
				private = append(private, p)
			}
		}

		if len(shared) > 0 && f.sessions != nil {
			f.sessions.Each(func(s *Session) {
				if s.ID != id {
					s.Client.ApplyInvalidation(ctx, shared...)
				}
			})
		}
		if f.publisher == nil {
			return nil
		}

		var errs []error
		if len(shared) > 0 {
			errs = append(errs, f.publisher.Publish(ctx, "", shared))
		}
		if len(private) > 0 {
			errs = append(errs, f.publisher.Publish(ctx, id, private))
		}
		return errors.Join(errs...)
	})
}

// apply handles an invalidation published by another instance.
func (f *fanout) apply(ctx context.Context, scope string, prefixes []query.Key) {
	if scope == "" {
		f.forgetShared(ctx, prefixes)
		n := 0
		f.sessions.Each(func(s *Session) {
			n += s.Client.ApplyInvalidation(ctx, prefixes...)
		})
		f.logger.Debug().Int("entries", n).Msg("Applied shared invalidation.")
		return
	}
	if s, ok := f.sessions.Peek(scope); ok {
		s.Client.ApplyInvalidation(ctx, prefixes...)
	}
}

// forgetShared deletes persisted shared records under prefixes, reaching
// sessions that are not live on this instance.
func (f *fanout) forgetShared(ctx context.Context, prefixes []query.Key) {
	if f.shared == nil {
		return
	}
	for _, p := range prefixes {
		if !touchesShared(p.StoreKey()) {
			continue
		}
		if err := f.shared.DeletePrefix(ctx, p.StoreKey()); err != nil {
			f.logger.Warn().Err(err).Str("prefix", p.String()).Msg("Failed to delete shared query records.")
		}
	}
}
