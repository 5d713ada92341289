package audio

// ring is a fixed-capacity sample buffer that keeps the most recent writes,
// overwriting the oldest samples once full. Callers synchronize access.
type ring struct {
	buf  []float32
	head int // next write position
	size int // valid samples, up to cap(buf)
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]float32, capacity)}
}

func (r *ring) write(samples []float32) {
	if len(samples) >= len(r.buf) {
		// Larger than the whole ring: only the tail survives.
		copy(r.buf, samples[len(samples)-len(r.buf):])
		r.head = 0
		r.size = len(r.buf)
		return
	}

	n := copy(r.buf[r.head:], samples)
	if n < len(samples) {
		copy(r.buf, samples[n:])
	}
	r.head = (r.head + len(samples)) % len(r.buf)
	r.size += len(samples)
	if r.size > len(r.buf) {
		r.size = len(r.buf)
	}
}

// last copies out the most recent n samples, or everything buffered when
// fewer are available.
func (r *ring) last(n int) []float32 {
	if n > r.size {
		n = r.size
	}
	if n <= 0 {
		return nil
	}

	out := make([]float32, n)
	start := r.head - n
	if start < 0 {
		start += len(r.buf)
	}

	m := copy(out, r.buf[start:min(start+n, len(r.buf))])
	if m < n {
		copy(out[m:], r.buf[:n-m])
	}
	return out
}

func (r *ring) clear() {
	r.head = 0
	r.size = 0
}

func (r *ring) len() int {
	return r.size
}
