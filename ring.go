package visualizer

// ring is a fixed-capacity window that keeps the most recent values.
// Pushing onto a full ring drops the oldest value. Index 0 is the oldest.
type ring[T any] struct {
	buf  []T
	head int // index of the oldest element
}

func newRing[T any](capacity int, fill T) *ring[T] {
	r := &ring[T]{buf: make([]T, capacity)}
	r.reset(fill)
	return r
}

// reset overwrites every slot with fill.
func (r *ring[T]) reset(fill T) {
	for i := range r.buf {
		r.buf[i] = fill
	}
	r.head = 0
}

// push appends v as the newest value, evicting the oldest.
func (r *ring[T]) push(v T) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.head] = v
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
}

// at returns the i-th value, 0 being the oldest.
func (r *ring[T]) at(i int) T {
	return r.buf[(r.head+i)%len(r.buf)]
}

func (r *ring[T]) len() int {
	return len(r.buf)
}

// values returns the contents oldest first.
func (r *ring[T]) values() []T {
	out := make([]T, len(r.buf))
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}
