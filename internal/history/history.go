// Package history provides append-only, insertion-ordered record logs with
// optional FIFO capacity bounds.
package history

// Log keeps records in insertion order. When a capacity is set and the log
// is full, the oldest records are evicted first. Log is not safe for
// concurrent use; the engine's lock covers all access.
type Log[T any] struct {
	records  []T
	capacity int
}

// New returns a log bounded at capacity records. capacity <= 0 means
// unbounded.
func New[T any](capacity int) *Log[T] {
	return &Log[T]{capacity: capacity}
}

// Append adds a record, evicting the oldest if the log is at capacity.
func (l *Log[T]) Append(record T) {
	l.records = append(l.records, record)
	if l.capacity > 0 && len(l.records) > l.capacity {
		excess := len(l.records) - l.capacity
		l.records = append(l.records[:0], l.records[excess:]...)
	}
}

// Len reports the number of records held.
func (l *Log[T]) Len() int {
	return len(l.records)
}

// Tail returns a copy of the most recent limit records in insertion order.
// A limit <= 0 or beyond the log length returns everything.
func (l *Log[T]) Tail(limit int) []T {
	n := len(l.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]T, limit)
	copy(out, l.records[n-limit:])
	return out
}
