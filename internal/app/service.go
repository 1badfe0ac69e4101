// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	eventqueue "github.com/okian/runboard/internal/adapters/mq/queue"
	workerpool "github.com/okian/runboard/internal/adapters/mq/worker"
	repository "github.com/okian/runboard/internal/adapters/repository"
	"github.com/okian/runboard/internal/adapters/speedrun"
	"github.com/okian/runboard/internal/app/account"
	"github.com/okian/runboard/internal/app/catalog"
	"github.com/okian/runboard/internal/app/leaderboard"
	"github.com/okian/runboard/internal/app/search"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/pkg/logger"
	"github.com/okian/runboard/pkg/metrics"
)

const eventIDPrefix = "evt-"

// Upstream is everything a session reads from speedrun.com.
// *speedrun.Client satisfies it.
type Upstream interface {
	leaderboard.Source
	catalog.Source
}

// Service owns viewer sessions and the outbound event pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	upstream   Upstream
	ownsClient bool
	sessions   *repository.SessionStore[*Session]
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	forms      *account.Forms
	handlers   []workerpool.Handler

	// Configuration
	workerCount    int
	queueSize      int
	maxSessions    int
	outboxSize     int
	pageSize       int
	policy         leaderboard.Policy
	searchDelay    time.Duration
	catalogOptions []catalog.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithUpstream sets the speedrun.com source. Without it Start builds a
// default client.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		if u != nil {
			s.upstream = u
		}
	}
}

// WithWorkerCount sets the number of event dispatch goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSessions caps live sessions. The least recently used one is evicted.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithOutboxSize bounds the undelivered events kept per session.
func WithOutboxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.outboxSize = n
		}
	}
}

// WithPageSize sets the leaderboard page size for new sessions.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithBadRequestPolicy sets how unrecoverable 400s are shown.
func WithBadRequestPolicy(p leaderboard.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithSearchDelay sets the search debounce period.
func WithSearchDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.searchDelay = d
		}
	}
}

// WithCatalogOptions passes options to every session's catalog.
func WithCatalogOptions(opts ...catalog.Option) Option {
	return func(s *Service) {
		s.catalogOptions = append(s.catalogOptions, opts...)
	}
}

// WithEventHandler adds a consumer that sees every dispatched event.
func WithEventHandler(h workerpool.Handler) Option {
	return func(s *Service) {
		if h != nil {
			s.handlers = append(s.handlers, h)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		maxSessions: 1_000,
		outboxSize:  100,
		policy:      leaderboard.PolicySilent,
		searchDelay: search.DefaultDelay,
		forms:       account.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting runboard service...")

	if s.upstream == nil {
		s.upstream = speedrun.New()
		s.ownsClient = true
	}

	s.sessions = repository.NewSessionStore[*Session](
		repository.WithMaxEntries[*Session](s.maxSessions),
		repository.WithOnEvict(func(id string, sess *Session) {
			sess.close()
			s.logger.Debug(ctx, "session evicted", logger.String("sessionID", id))
		}),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	handler := workerpool.Fanout{
		workerpool.HandlerFunc(s.logEvent),
		deliverTo(s.sessions),
	}
	handler = append(handler, s.handlers...)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, handler)
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "runboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxSessions", s.maxSessions),
	)

	return nil
}

// Stop drains the event queue, closes every session and releases the
// upstream client when the service created it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping runboard service...")

	// Stop accepting events before tearing sessions down.
	s.started = false

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}

	if s.sessions != nil {
		s.sessions.Range(func(_ string, sess *Session) bool {
			sess.close()
			return true
		})
		metrics.UpdateSessionCount(0)
	}

	if s.ownsClient {
		if c, ok := s.upstream.(*speedrun.Client); ok {
			c.Close()
		}
		s.upstream = nil
		s.ownsClient = false
	}

	s.logger.Info(ctx, "runboard service stopped")
}

// Emit stamps e with an id and time and queues it for dispatch. It returns
// false when the service is stopped or the queue is full.
func (s *Service) Emit(ctx context.Context, e model.Event) bool { //nolint:gocritic // hugeParam: events travel by value
	s.mu.RLock()
	started, q := s.started, s.eventQueue
	s.mu.RUnlock()

	if !started {
		metrics.RecordEventDropped(string(e.Kind))
		return false
	}

	if e.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			s.logger.Error(ctx, "failed to generate event id", logger.Error(err))
			metrics.RecordEventDropped(string(e.Kind))
			return false
		}
		e.ID = eventIDPrefix + id
	}
	if e.TS.IsZero() {
		e.TS = time.Now().UTC()
	}

	if err := q.TryEnqueue(ctx, e); err != nil {
		metrics.RecordEventDropped(string(e.Kind))
		if !errors.Is(err, eventqueue.ErrFull) && !errors.Is(err, eventqueue.ErrClosed) {
			s.logger.Warn(ctx, "event enqueue failed", logger.String("kind", string(e.Kind)), logger.Error(err))
		}
		return false
	}
	return true
}

func (s *Service) logEvent(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam: events travel by value
	metrics.RecordEventEmitted(string(e.Kind))
	s.logger.Debug(ctx, "event dispatched",
		logger.String("eventID", e.ID),
		logger.String("sessionID", e.SessionID),
		logger.String("kind", string(e.Kind)),
	)
	return nil
}

// deliverTo appends events to their session's outbox. Events of evicted
// sessions are dropped.
func deliverTo(store *repository.SessionStore[*Session]) workerpool.HandlerFunc {
	return func(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam: events travel by value
		if e.SessionID == "" {
			return nil
		}
		sess, err := store.Get(ctx, e.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("deliver %s: %w", e.ID, err)
		}
		sess.outbox.push(e)
		return nil
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxSessions": s.maxSessions,
	}

	if s.started {
		queueLen := s.eventQueue.Len()
		sessions := s.sessions.Count(ctx)

		stats["queueLength"] = queueLen
		stats["sessions"] = sessions

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateSessionCount(sessions)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}
