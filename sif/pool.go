package sif

import (
	"sync"
)

// BufferPool manages reusable byte buffers for slice-sized scratch space.
// Buffers are bucketed by discrete capacities; requests beyond the largest
// bucket fall back to direct allocation.
type BufferPool struct {
	pools []*sync.Pool
}

// bufferSizes are the discrete capacities for pooled buffers, chosen to
// match common per-slice worst-case bounds.
var bufferSizes = []int{
	16 << 10, // 16 KB
	64 << 10, // 64 KB
	256 << 10,
	1 << 20, // 1 MB
	4 << 20,
	16 << 20, // 16 MB
}

// globalBufferPool backs GetBuffer and PutBuffer.
var globalBufferPool = NewBufferPool()

// NewBufferPool creates an empty buffer pool.
func NewBufferPool() *BufferPool {
	p := &BufferPool{pools: make([]*sync.Pool, len(bufferSizes))}
	for i, size := range bufferSizes {
		size := size
		p.pools[i] = &sync.Pool{
			New: func() interface{} {
				return make([]byte, size)
			},
		}
	}
	return p
}

// poolIndex returns the bucket index for a given size, or -1 if the size
// exceeds every bucket.
func poolIndex(size int) int {
	for i, s := range bufferSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// Get returns a buffer of exactly the requested length; its capacity may be
// larger. Call Put when done.
func (p *BufferPool) Get(size int) []byte {
	idx := poolIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	buf := p.pools[idx].Get().([]byte)
	return buf[:size]
}

// Put returns a buffer obtained from Get to the pool. Oversized buffers are
// left to the garbage collector. A nil buffer is ignored.
func (p *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}
	idx := poolIndex(cap(buf))
	if idx < 0 || cap(buf) != bufferSizes[idx] {
		return
	}
	p.pools[idx].Put(buf[:cap(buf)])
}

// GetBuffer returns a buffer from the global pool.
func GetBuffer(size int) []byte {
	return globalBufferPool.Get(size)
}

// PutBuffer returns a buffer to the global pool.
func PutBuffer(buf []byte) {
	globalBufferPool.Put(buf)
}
