package repository

const defaultMaxEntries = 1000

// Option applies a configuration option to a SessionStore.
type Option[T any] func(*options[T])

type options[T any] struct {
	maxEntries int
	onEvict    func(id string, v T)
}

// WithMaxEntries caps the number of live sessions. The least recently used
// session is evicted when a new one would exceed it.
func WithMaxEntries[T any](n int) Option[T] {
	return func(o *options[T]) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithOnEvict sets a callback run once for every session pushed out by the
// size cap. Delete does not trigger it.
func WithOnEvict[T any](fn func(id string, v T)) Option[T] {
	return func(o *options[T]) {
		o.onEvict = fn
	}
}
