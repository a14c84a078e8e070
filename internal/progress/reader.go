// Package progress counts bytes flowing through a reader and reports them.
package progress

import (
	"io"
	"sync"
)

// Func receives the number of bytes read so far and the expected total.
// total is -1 when it is not known.
type Func func(loaded, total int64)

// Reader wraps an io.Reader and reports cumulative bytes read.
type Reader struct {
	r        io.Reader
	total    int64
	onRead   Func
	mu       sync.Mutex
	loaded   int64
	reported int64
}

// NewReader returns a Reader over r. onRead may be nil.
func NewReader(r io.Reader, total int64, onRead Func) *Reader {
	return &Reader{
		r:        r,
		total:    total,
		onRead:   onRead,
		reported: -1,
	}
}

// Read implements io.Reader.
func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.advance(int64(n))
	}
	return n, err
}

// Loaded returns the bytes read so far.
func (pr *Reader) Loaded() int64 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.loaded
}

func (pr *Reader) advance(n int64) {
	pr.mu.Lock()
	pr.loaded += n
	loaded := pr.loaded
	if pr.total >= 0 && loaded > pr.total {
		loaded = pr.total
	}
	// Never report the same or a smaller count twice.
	if loaded <= pr.reported || pr.onRead == nil {
		pr.mu.Unlock()
		return
	}
	pr.reported = loaded
	pr.mu.Unlock()

	pr.onRead(loaded, pr.total)
}
