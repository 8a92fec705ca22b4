package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBufferPoolTiers verifies requested sizes map onto the right tier.
func TestBufferPoolTiers(t *testing.T) {
	bp := NewBufferPool()

	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"frame sized", 60, smallBufferSize},
		{"small boundary", smallBufferSize, smallBufferSize},
		{"json payload", smallBufferSize + 1, mediumBufferSize},
		{"medium boundary", mediumBufferSize, mediumBufferSize},
		{"batched write", mediumBufferSize + 1, largeBufferSize},
		{"large boundary", largeBufferSize, largeBufferSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bp.Get(tt.size)
			assert.Len(t, buf, tt.size)
			assert.Equal(t, tt.wantCap, cap(buf))
			bp.Put(buf)
		})
	}
}

// TestBufferPoolOversized verifies requests beyond the largest tier get a
// fresh allocation.
func TestBufferPoolOversized(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get(largeBufferSize + 1)
	assert.Len(t, buf, largeBufferSize+1)

	// Returning it is a no-op rather than a poisoned pool entry.
	bp.Put(buf)
	assert.Equal(t, largeBufferSize, cap(bp.Get(largeBufferSize)))
}

// TestBufferPoolPut verifies Put tolerates nil and foreign buffers.
func TestBufferPoolPut(t *testing.T) {
	bp := NewBufferPool()

	bp.Put(nil)
	bp.Put(make([]byte, 100)) // not a pool capacity, dropped

	buf := bp.Get(10)
	buf = buf[:5]
	bp.Put(buf)

	// A recycled buffer comes back at full tier capacity.
	again := bp.Get(smallBufferSize)
	assert.Len(t, again, smallBufferSize)
	assert.Equal(t, smallBufferSize, cap(again))
}

// TestGlobalBufferPool verifies the package-level helpers.
func TestGlobalBufferPool(t *testing.T) {
	buf := GetBuffer(100)
	assert.Len(t, buf, 100)
	assert.Equal(t, smallBufferSize, cap(buf))
	PutBuffer(buf)
}
