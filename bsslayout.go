// Completion: 100% - Module complete
package main

// bsslayout.go - per-pipeline BSS slot planner (§3 "BSS layout").
//
// Grounded on the teacher's arena.go bump-allocation pattern (a single
// forward-moving cursor, sub-regions carved out of it in allocation
// order, never freed individually) but scoped to what spec.md actually
// needs: one envp slot, one prev_read_fd slot, a pid array, a reusable
// pipe area, and one argv area per stage — all addressed as
// bssBase+offset, contiguous and byte-granular.

// bssPlanner is a bump allocator over the fixed BSS region starting at
// bssBase (0x600000 per §3). It never shrinks; the final cursor value is
// the high-water mark that drives the RW segment's memsz.
type bssPlanner struct {
	base   uint64
	cursor uint64
}

func newBSSPlanner(base uint64) *bssPlanner {
	return &bssPlanner{base: base}
}

// alloc reserves n contiguous bytes and returns their absolute address
// (bssBase + offset-before-this-allocation).
func (b *bssPlanner) alloc(n uint64) uint64 {
	addr := b.base + b.cursor
	b.cursor += n
	return addr
}

// allocScalar reserves one 8-byte slot (envp, prev_read_fd, a single pid
// entry address base).
func (b *bssPlanner) allocScalar() uint64 {
	return b.alloc(8)
}

// allocPidArray reserves n*8 bytes for a pipeline's child-PID array.
func (b *bssPlanner) allocPidArray(n int) uint64 {
	return b.alloc(uint64(n) * 8)
}

// allocPipeArea reserves the 2x4-byte pipe(2) descriptor area, reused
// across every stage boundary within one pipeline.
func (b *bssPlanner) allocPipeArea() uint64 {
	return b.alloc(8)
}

// allocArgv reserves (argc+1)*8 bytes for one stage's argv vector
// (argc pointers plus the trailing NULL).
func (b *bssPlanner) allocArgv(argc int) uint64 {
	return b.alloc(uint64(argc+1) * 8)
}

// highWaterMark is the total BSS size the code generated so far
// dereferences; the RW segment's memsz must be at least this (§4.4:
// "max(bss_off, 0x1000)").
func (b *bssPlanner) highWaterMark() uint64 {
	return b.cursor
}
