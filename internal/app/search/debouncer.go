// Package search debounces search box input.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/okian/runboard/internal/domain/model"
)

// DefaultDelay is the quiet period before a term is emitted.
const DefaultDelay = 400 * time.Millisecond

// Emitter forwards outbound events.
type Emitter interface {
	Emit(ctx context.Context, e model.Event) bool
}

// Option applies a configuration option to the Debouncer.
type Option func(*Debouncer)

// WithDelay sets the quiet period.
func WithDelay(d time.Duration) Option {
	return func(db *Debouncer) {
		if d > 0 {
			db.delay = d
		}
	}
}

// WithHandler registers fn to run with every emitted term.
func WithHandler(fn func(ctx context.Context, term string)) Option {
	return func(db *Debouncer) {
		db.handler = fn
	}
}

// Debouncer emits a search term once input has been quiet for the delay,
// skipping terms equal to the previous emission.
type Debouncer struct {
	delay   time.Duration
	emit    Emitter
	handler func(ctx context.Context, term string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	last    string
	emitted bool
	closed  bool
}

// New creates a debouncer. A nil emitter is allowed.
func New(emit Emitter, opts ...Option) *Debouncer {
	db := &Debouncer{delay: DefaultDelay, emit: emit}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Input records a keystroke and restarts the quiet period.
func (db *Debouncer) Input(ctx context.Context, term string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return
	}
	if db.timer != nil {
		db.timer.Stop()
	}
	db.seq++
	seq := db.seq
	ctx = context.WithoutCancel(ctx)
	db.timer = time.AfterFunc(db.delay, func() { db.fire(ctx, seq, term) })
}

// Last returns the last emitted term.
func (db *Debouncer) Last() (string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.last, db.emitted
}

// Close drops any pending term and ignores further input.
func (db *Debouncer) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}

func (db *Debouncer) fire(ctx context.Context, seq uint64, term string) {
	db.mu.Lock()
	// a later Input already replaced this timer
	if db.closed || seq != db.seq {
		db.mu.Unlock()
		return
	}
	if db.emitted && db.last == term {
		db.mu.Unlock()
		return
	}
	db.last = term
	db.emitted = true
	db.mu.Unlock()

	if db.handler != nil {
		db.handler(ctx, term)
	}
	if db.emit != nil {
		db.emit.Emit(ctx, model.Event{Kind: model.EventSearchTermChanged, Term: term})
	}
}
