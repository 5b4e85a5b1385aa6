package rewind

// Default configuration values.
const (
	// DefaultCapacity is the initial log capacity when none is given.
	DefaultCapacity = 32
)

// Option configures a Record during creation.
type Option[T any] func(*Record[T])

// WithLimit bounds the log length. When a push would exceed the limit
// the oldest entry is evicted. Zero means unlimited.
func WithLimit[T any](limit int) Option[T] {
	return func(r *Record[T]) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithCapacity preallocates log storage.
func WithCapacity[T any](capacity int) Option[T] {
	return func(r *Record[T]) {
		if capacity > 0 {
			r.log = make([]*entry[T], 0, capacity)
		}
	}
}

// WithSignal registers a listener for state transitions.
func WithSignal[T any](fn SignalFunc) Option[T] {
	return func(r *Record[T]) {
		r.signal = fn
	}
}

// HistoryOption configures a History during creation.
type HistoryOption[T any] func(*History[T])

// WithHistorySignal registers a listener for state transitions on the
// current branch.
func WithHistorySignal[T any](fn SignalFunc) HistoryOption[T] {
	return func(h *History[T]) {
		h.rec.signal = fn
	}
}
