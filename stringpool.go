// Completion: 100% - Module complete
package main

// stringpool.go - append-only pool of NUL-terminated strings.
//
// Every literal the code generator needs a runtime address for (echo
// arguments, argv entries, command paths, redirection targets, the
// "exec failed\n" message) is interned here once and referenced by
// index from then on. The pool's final byte layout becomes the rodata
// segment (§4.4); index -> offset is exactly what a Relocation needs to
// turn into a runtime address once the rodata virtual base is known.

// StringPool is append-only for the duration of code generation.
type StringPool struct {
	buf     ByteBuffer
	offsets []int
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{}
}

// Add appends a NUL-terminated copy of s and returns its stable index.
// Callers that intern the same literal twice (e.g. "echo" with the same
// argument emitted in two pipelines) get two separate entries — the
// pool does not deduplicate, matching sp_add in original_source/sh2elf.c.
func (p *StringPool) Add(s string) int {
	off := p.buf.Len()
	p.buf.WriteBytes([]byte(s))
	p.buf.WriteByte(0)
	p.offsets = append(p.offsets, off)
	return len(p.offsets) - 1
}

// Offset returns the byte offset of the string at idx within the pool.
func (p *StringPool) Offset(idx int) int {
	return p.offsets[idx]
}

// Len returns the total size in bytes of the pool (the rodata segment
// size once compilation finishes).
func (p *StringPool) Len() int {
	return p.buf.Len()
}

// Bytes returns the pool's backing bytes, i.e. the rodata segment.
func (p *StringPool) Bytes() []byte {
	return p.buf.Bytes()
}
