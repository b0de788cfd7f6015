// Package sequencer serializes state-changing operations into one total order.
//
// Every command runs inside Do. A command that calls another module's command
// on the same call chain (the context carries the hold marker) joins the
// running operation instead of waiting for itself.
package sequencer

import (
	"context"
	"sync"
)

type holdKey struct{}

type Sequencer struct {
	mu sync.Mutex
}

func New() *Sequencer {
	return &Sequencer{}
}

// Do runs fn while holding the sequencer. A nil Sequencer runs fn directly.
func (s *Sequencer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s == nil {
		return fn(ctx)
	}
	if Holds(ctx, s) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, holdKey{}, s))
}

// Holds reports whether ctx was produced inside s.Do.
func Holds(ctx context.Context, s *Sequencer) bool {
	held, ok := ctx.Value(holdKey{}).(*Sequencer)
	return ok && held == s
}
