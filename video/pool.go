package video

import "sync"

// Pool is a thread-safe pool for reusing frames.
//
// Pool groups frames by their Info, so a Get returns a frame with exactly the
// requested geometry, format and colorimetry. Converters never allocate
// frames; the pool serves callers that convert streams of equally sized
// frames.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[Info][]*Frame
	maxSize int // max frames per bucket
}

// NewPool creates a frame pool retaining at most maxPerBucket frames per
// Info. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[Info][]*Frame),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a frame from the pool or allocates a new one. Reused frames
// keep their previous contents.
func (p *Pool) Get(info Info) (*Frame, error) {
	p.mu.Lock()
	bucket := p.buckets[info]
	if len(bucket) > 0 {
		f := bucket[len(bucket)-1]
		bucket[len(bucket)-1] = nil
		p.buckets[info] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		return f, nil
	}
	p.mu.Unlock()

	return NewFrame(info)
}

// Put returns a frame to the pool. A nil frame or a full bucket discards it.
func (p *Pool) Put(f *Frame) {
	if f == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[f.Info]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[f.Info] = append(bucket, f)
}

// Len returns the number of pooled frames for info.
func (p *Pool) Len(info Info) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[info])
}
