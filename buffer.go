// Completion: 100% - Module complete
package main

// buffer.go - growable byte buffer with little-endian writers.
//
// Every byte the compiler emits — instructions, the string pool, the
// final ELF file — passes through one of these. Kept deliberately dumb:
// append bytes, or patch a fixed-width little-endian value back into an
// offset that was already written (used for relocations and rel32 jump
// patches).

// ByteBuffer is a growable byte container. The zero value is ready to
// use (Go already zero-initializes the backing slice to nil).
type ByteBuffer struct {
	data []byte
}

// NewByteBuffer returns an empty, ready-to-use ByteBuffer.
func NewByteBuffer() *ByteBuffer {
	return &ByteBuffer{}
}

// Len returns the number of bytes written so far.
func (b *ByteBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the underlying slice. Callers must not retain it across
// further writes to b; take a copy first if that is needed.
func (b *ByteBuffer) Bytes() []byte {
	return b.data
}

// WriteByte appends a single byte.
func (b *ByteBuffer) WriteByte(x byte) {
	b.data = append(b.data, x)
}

// WriteBytes appends a slice of bytes verbatim.
func (b *ByteBuffer) WriteBytes(p []byte) {
	b.data = append(b.data, p...)
}

// WriteN appends x repeated n times, used for padding.
func (b *ByteBuffer) WriteN(x byte, n int) {
	for i := 0; i < n; i++ {
		b.data = append(b.data, x)
	}
}

// WriteU16 appends a little-endian uint16.
func (b *ByteBuffer) WriteU16(x uint16) {
	b.data = append(b.data, byte(x), byte(x>>8))
}

// WriteU32 appends a little-endian uint32.
func (b *ByteBuffer) WriteU32(x uint32) {
	b.data = append(b.data, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}

// WriteU64 appends a little-endian uint64.
func (b *ByteBuffer) WriteU64(x uint64) {
	for i := 0; i < 8; i++ {
		b.data = append(b.data, byte(x>>(8*i)))
	}
}

// PutU32At overwrites the 4-byte little-endian slot starting at off,
// which must already have been reserved by a prior write. Used to patch
// rel32 forward-jump placeholders once the jump target is known.
func (b *ByteBuffer) PutU32At(off int, x uint32) {
	b.data[off+0] = byte(x)
	b.data[off+1] = byte(x >> 8)
	b.data[off+2] = byte(x >> 16)
	b.data[off+3] = byte(x >> 24)
}

// PutU64At overwrites the 8-byte little-endian slot starting at off.
// Used to resolve string relocations once the rodata virtual base is
// known.
func (b *ByteBuffer) PutU64At(off int, x uint64) {
	for i := 0; i < 8; i++ {
		b.data[off+i] = byte(x >> (8 * i))
	}
}
