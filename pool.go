package net

import "sync"

var byteSlicePool = sync.Pool{
	New: func() interface{} { return make([]byte, arpMessageLen) },
}

// getByteSlice returns a byte slice of length n, reusing a pooled
// slice when one large enough is available.
func getByteSlice(n int) []byte {
	b := byteSlicePool.Get().([]byte)
	if cap(b) < n {
		byteSlicePool.Put(b)
		return make([]byte, n)
	}
	return b[:n]
}

func putByteSlice(b []byte) {
	byteSlicePool.Put(b)
}
