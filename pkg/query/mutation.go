package query

import (
	"context"
	"errors"
	"sync"
)

// MutationStatus is the state of the last invocation of a mutation.
type MutationStatus int

const (
	MutationIdle MutationStatus = iota
	MutationPending
	MutationSuccess
	MutationError
)

// String returns the string representation of MutationStatus.
func (s MutationStatus) String() string {
	switch s {
	case MutationIdle:
		return "idle"
	case MutationPending:
		return "pending"
	case MutationSuccess:
		return "success"
	case MutationError:
		return "error"
	default:
		return "unknown"
	}
}

// MutationOptions describes a write operation.
type MutationOptions[In, Out any] struct {
	// Name selects the prefixes declared for this mutation in the client's Graph.
	Name   string
	Mutate func(ctx context.Context, in In) (Out, error)
	// Invalidates returns prefixes that depend on the input or output, such as
	// ["order", id]. They are invalidated in addition to the graph targets.
	Invalidates func(in In, out Out) []Key
	OnSuccess   func(in In, out Out)
	OnError     func(in In, err error)
}

// MutationResult is a snapshot of a mutation's last invocation.
type MutationResult[Out any] struct {
	Status MutationStatus
	Data   Out
	Err    error
}

// Mutation runs a write operation and, when it succeeds, invalidates every key
// that depends on it. A failed mutation invalidates nothing.
type Mutation[In, Out any] struct {
	c    *Client
	opts MutationOptions[In, Out]

	mu     sync.Mutex
	result MutationResult[Out]
}

// NewMutation binds a write operation to the client.
func NewMutation[In, Out any](c *Client, opts MutationOptions[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{c: c, opts: opts}
}

// MutateAsync runs the mutation and returns its outcome. On success the
// dependent prefixes are invalidated before it returns.
func (m *Mutation[In, Out]) MutateAsync(ctx context.Context, in In) (Out, error) {
	var zero Out
	if m.opts.Mutate == nil {
		return zero, errors.New("mutation has no mutate function")
	}
	m.set(MutationResult[Out]{Status: MutationPending})

	out, err := m.opts.Mutate(ctx, in)
	if err != nil {
		m.set(MutationResult[Out]{Status: MutationError, Err: err})
		m.c.logger.Error().Err(err).Str("mutation", m.opts.Name).Msg("Mutation failed.")
		if m.opts.OnError != nil {
			m.opts.OnError(in, err)
		}
		return zero, err
	}

	prefixes := m.c.graph.Targets(m.opts.Name)
	if m.opts.Invalidates != nil {
		prefixes = append(prefixes, m.opts.Invalidates(in, out)...)
	}
	if len(prefixes) > 0 {
		m.c.Invalidate(ctx, prefixes...)
	}
	m.set(MutationResult[Out]{Status: MutationSuccess, Data: out})
	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(in, out)
	}
	return out, nil
}

// Mutate runs the mutation in the background. Failures are logged and passed
// to OnError; the caller is not told.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) {
	m.c.mu.Lock()
	if m.c.closed {
		m.c.mu.Unlock()
		m.c.logger.Warn().Str("mutation", m.opts.Name).Msg("Mutation dropped: client is closed.")
		return
	}
	m.c.wg.Add(1)
	m.c.mu.Unlock()

	go func() {
		defer m.c.wg.Done()
		_, _ = m.MutateAsync(context.WithoutCancel(ctx), in)
	}()
}

// Result returns the outcome of the last invocation.
func (m *Mutation[In, Out]) Result() MutationResult[Out] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Reset returns the mutation to idle.
func (m *Mutation[In, Out]) Reset() {
	m.set(MutationResult[Out]{})
}

func (m *Mutation[In, Out]) set(r MutationResult[Out]) {
	m.mu.Lock()
	m.result = r
	m.mu.Unlock()
}
