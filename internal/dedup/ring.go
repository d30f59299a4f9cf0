package dedup

// ring is a FIFO queue of strings that doubles its capacity when full.
// Not safe for concurrent use; Tracker holds the lock.
type ring struct {
	buf   []string
	head  int // oldest item
	tail  int // next write position
	count int
}

func newRing(initialCapacity int) *ring {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &ring{buf: make([]string, initialCapacity)}
}

// push appends an item at the tail, growing the buffer if it is full.
func (r *ring) push(s string) {
	if r.count == len(r.buf) {
		r.grow()
	}
	r.buf[r.tail] = s
	r.tail = (r.tail + 1) % len(r.buf)
	r.count++
}

// pop removes and returns the oldest item.
func (r *ring) pop() (string, bool) {
	if r.count == 0 {
		return "", false
	}
	s := r.buf[r.head]
	r.buf[r.head] = "" // Clear reference for GC
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return s, true
}

// items returns the queued items, oldest first.
func (r *ring) items() []string {
	out := make([]string, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}

// grow doubles the buffer capacity.
func (r *ring) grow() {
	newBuf := make([]string, len(r.buf)*2)

	if r.count > 0 {
		if r.head < r.tail {
			// Contiguous: [head...tail)
			copy(newBuf, r.buf[r.head:r.tail])
		} else {
			// Wrapped: [head...end) + [0...tail)
			n := copy(newBuf, r.buf[r.head:])
			copy(newBuf[n:], r.buf[:r.tail])
		}
	}

	r.buf = newBuf
	r.head = 0
	r.tail = r.count
}
