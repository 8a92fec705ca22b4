package utils

import (
	"sync"
)

// Buffer tiers. The small tier covers every frame the Terminal emits on
// the stream socket (a quote frame with contract is under 70 bytes);
// medium covers marshaled event JSON; large covers coalesced bridge
// writes and list bodies.
const (
	smallBufferSize  = 256
	mediumBufferSize = 4 * 1024
	largeBufferSize  = 64 * 1024
)

// BufferPool recycles byte slices in three capacity tiers, cutting GC
// churn on the stream receive path and the bridge write path.
type BufferPool struct {
	tiers [3]bufferTier
}

type bufferTier struct {
	size int
	pool sync.Pool
}

// NewBufferPool creates a pool with the standard tiers.
func NewBufferPool() *BufferPool {
	bp := &BufferPool{}
	for i, size := range [...]int{smallBufferSize, mediumBufferSize, largeBufferSize} {
		size := size // per-iteration copy; required while go.mod targets go < 1.22
		bp.tiers[i].size = size
		bp.tiers[i].pool.New = func() interface{} {
			b := make([]byte, size)
			return &b
		}
	}
	return bp
}

// Get returns a slice of length size backed by the smallest tier that
// fits. Sizes past the largest tier get a one-off allocation.
func (bp *BufferPool) Get(size int) []byte {
	for i := range bp.tiers {
		t := &bp.tiers[i]
		if size <= t.size {
			buf := *t.pool.Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put recycles a buffer obtained from Get. Slices whose capacity is not
// a tier size (including oversized one-offs) are dropped.
func (bp *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for i := range bp.tiers {
		t := &bp.tiers[i]
		if cap(buf) == t.size {
			buf = buf[:t.size]
			t.pool.Put(&buf)
			return
		}
	}
}

// globalBufferPool serves the package-level helpers.
var globalBufferPool = NewBufferPool()

// GetBuffer returns a buffer from the shared pool.
func GetBuffer(size int) []byte {
	return globalBufferPool.Get(size)
}

// PutBuffer recycles a buffer into the shared pool.
func PutBuffer(buf []byte) {
	globalBufferPool.Put(buf)
}
