// Package pool provides pooled byte buffers for the PACKR encoder/decoder hot path.
package pool

import "sync"

// FrameBufferDefaultSize is the default size of a ByteBuffer obtained from the pool.
const (
	FrameBufferDefaultSize  = 1024 * 4  // 4KiB, typical single-document frame
	FrameBufferMaxThreshold = 1024 * 64 // 64KiB, above this a buffer is discarded rather than pooled
)

// ByteBuffer is a growable byte slice wrapper reused across encode calls to avoid
// repeated allocation on the token-writer hot path.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, retaining the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte to the buffer, growing it if necessary.
func (bb *ByteBuffer) WriteByte(b byte) {
	bb.B = append(bb.B, b)
}

// Extend extends the buffer by n bytes if there is sufficient spare capacity.
func (bb *ByteBuffer) Extend(n int) bool {
	curLen := len(bb.B)
	if cap(bb.B)-curLen < n {
		return false
	}

	bb.B = bb.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the buffer by n bytes, growing it first if necessary.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}

	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Growth strategy: for small buffers (<4x default), grow by the default size to
// minimize reallocations; for larger buffers, grow by 25% of current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := FrameBufferDefaultSize
	if cap(bb.B) > 4*FrameBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool pools ByteBuffers to minimize allocation churn during encoding.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool whose buffers start at defaultSize
// and are discarded (not pooled) once they grow past maxThreshold.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse, discarding oversized buffers.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var defaultPool = NewByteBufferPool(FrameBufferDefaultSize, FrameBufferMaxThreshold)

// GetBuffer retrieves a ByteBuffer from the default pool.
func GetBuffer() *ByteBuffer {
	return defaultPool.Get()
}

// PutBuffer returns a ByteBuffer to the default pool.
func PutBuffer(bb *ByteBuffer) {
	defaultPool.Put(bb)
}
