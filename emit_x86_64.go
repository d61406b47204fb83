// Completion: 100% - Instruction implementation complete
package main

import (
	"golang.org/x/sys/unix"
)

// emit_x86_64.go - x86_64 instruction emitters (§4.2).
//
// Each emitter appends the documented byte sequence to a *ByteBuffer.
// Syscall numbers are loaded from golang.org/x/sys/unix's SYS_* constants
// instead of hand-written literals (unlike original_source/sh2elf.c's
// mov_rax_imm32(c, 57) for fork) — same encoded bytes, but immune to the
// syscall table silently shifting under us.

// Emitter wraps a code ByteBuffer with the fixed x86_64 encodings the
// code generator needs. It also reports relocations to the generator
// from the three string-load emitters, since those are the only
// instructions whose immediate isn't known until ELF layout time.
type Emitter struct {
	code *ByteBuffer
	gen  relocSink
}

// relocSink is the minimal interface the emitter needs from the code
// generator to record a string relocation; kept separate from Generator
// itself so emit_x86_64.go doesn't need to know its shape.
type relocSink interface {
	addReloc(at int, strIdx int)
}

func newEmitter(code *ByteBuffer, gen relocSink) *Emitter {
	return &Emitter{code: code, gen: gen}
}

func (e *Emitter) pos() int { return e.code.Len() }

// MovRaxImm32 - 48 C7 C0 imm32 - loads a syscall number into rax.
func (e *Emitter) MovRaxImm32(x uint32) {
	e.code.WriteByte(0x48)
	e.code.WriteByte(0xC7)
	e.code.WriteByte(0xC0)
	e.code.WriteU32(x)
}

// movReg64Imm64 encodes "mov r64, imm64" for one of rdi/rsi/rdx/r10 via
// its REX+opcode pair, appending an 8-byte immediate.
func (e *Emitter) movReg64Imm64(rex, opcode byte, x uint64) {
	e.code.WriteByte(rex)
	e.code.WriteByte(opcode)
	e.code.WriteU64(x)
}

func (e *Emitter) MovRdiImm64(x uint64) { e.movReg64Imm64(0x48, 0xBF, x) }
func (e *Emitter) MovRsiImm64(x uint64) { e.movReg64Imm64(0x48, 0xBE, x) }
func (e *Emitter) MovRdxImm64(x uint64) { e.movReg64Imm64(0x48, 0xBA, x) }
func (e *Emitter) MovR10Imm64(x uint64) { e.movReg64Imm64(0x49, 0xBA, x) }

// strLoad encodes the register-specific 2-byte "mov reg, imm64" prefix
// followed by an 8-byte zero placeholder (10 bytes in all), then records
// a relocation for the placeholder — a
// string-load emitter per §4.2.
func (e *Emitter) strLoad(rex, opcode byte, sidx int) {
	e.code.WriteByte(rex)
	e.code.WriteByte(opcode)
	at := e.pos()
	e.code.WriteU64(0)
	e.gen.addReloc(at, sidx)
}

// MovRdiStr loads the runtime address of pool string sidx into rdi.
func (e *Emitter) MovRdiStr(sidx int) { e.strLoad(0x48, 0xBF, sidx) }

// MovRsiStr loads the runtime address of pool string sidx into rsi.
func (e *Emitter) MovRsiStr(sidx int) { e.strLoad(0x48, 0xBE, sidx) }

// MovRaxStr loads the runtime address of pool string sidx into rax —
// used while building an argv vector, where each element's address is
// computed into rax before being stored into the BSS slot.
func (e *Emitter) MovRaxStr(sidx int) { e.strLoad(0x48, 0xB8, sidx) }

// XorRsiRsi zeroes rsi.
func (e *Emitter) XorRsiRsi() { e.code.WriteByte(0x48); e.code.WriteByte(0x31); e.code.WriteByte(0xF6) }

// XorRdxRdx zeroes rdx.
func (e *Emitter) XorRdxRdx() { e.code.WriteByte(0x48); e.code.WriteByte(0x31); e.code.WriteByte(0xD2) }

// XorR10R10 zeroes r10.
func (e *Emitter) XorR10R10() { e.code.WriteByte(0x4D); e.code.WriteByte(0x31); e.code.WriteByte(0xD2) }

// MovRsiRdi - mov rsi, rdi.
func (e *Emitter) MovRsiRdi() { e.code.WriteByte(0x48); e.code.WriteByte(0x89); e.code.WriteByte(0xFE) }

// MovRdiRax - mov rdi, rax.
func (e *Emitter) MovRdiRax() { e.code.WriteByte(0x48); e.code.WriteByte(0x89); e.code.WriteByte(0xC7) }

// MovEaxMemRdi - mov eax, [rdi] - loads a 32-bit value through rdi (used
// for the pipe(2) descriptor area, which holds two 4-byte ints).
func (e *Emitter) MovEaxMemRdi() { e.code.WriteByte(0x8B); e.code.WriteByte(0x07) }

// MovRaxMemRdi - mov rax, [rdi] - loads a 64-bit value through rdi (used
// for the 8-byte prev_read_fd and pid-array slots).
func (e *Emitter) MovRaxMemRdi() { e.code.WriteByte(0x48); e.code.WriteByte(0x8B); e.code.WriteByte(0x07) }

// MovMemRdiRax - mov [rdi], rax - stores a 64-bit value through rdi.
func (e *Emitter) MovMemRdiRax() { e.code.WriteByte(0x48); e.code.WriteByte(0x89); e.code.WriteByte(0x07) }

// MovMemRdiRdx - mov [rdi], rdx - stores a 64-bit value through rdi from
// rdx, used only to seed prev_read_fd with -1.
func (e *Emitter) MovMemRdiRdx() { e.code.WriteByte(0x48); e.code.WriteByte(0x89); e.code.WriteByte(0x17) }

// MovMemRdiDisp32Rax - mov [rdi + disp32], rax - indexed 64-bit store,
// used to fill argv vectors.
func (e *Emitter) MovMemRdiDisp32Rax(disp uint32) {
	e.code.WriteByte(0x48)
	e.code.WriteByte(0x89)
	e.code.WriteByte(0x87)
	e.code.WriteU32(disp)
}

// TestRaxRax - test rax, rax.
func (e *Emitter) TestRaxRax() { e.code.WriteByte(0x48); e.code.WriteByte(0x85); e.code.WriteByte(0xC0) }

// CmpRaxImm8 - cmp rax, imm8 (sign-extended), used to compare fork's
// return value against 0.
func (e *Emitter) CmpRaxImm8(x byte) {
	e.code.WriteByte(0x48)
	e.code.WriteByte(0x83)
	e.code.WriteByte(0xF8)
	e.code.WriteByte(x)
}

// Syscall - 0F 05.
func (e *Emitter) Syscall() { e.code.WriteByte(0x0F); e.code.WriteByte(0x05) }

// JeRel32 emits "0F 84 rel32" with a zero placeholder and returns the
// offset of the placeholder for later PatchHere.
func (e *Emitter) JeRel32() int {
	e.code.WriteByte(0x0F)
	e.code.WriteByte(0x84)
	at := e.pos()
	e.code.WriteU32(0)
	return at
}

// JneRel32 emits "0F 85 rel32" with a zero placeholder and returns the
// offset of the placeholder for later PatchHere.
func (e *Emitter) JneRel32() int {
	e.code.WriteByte(0x0F)
	e.code.WriteByte(0x85)
	at := e.pos()
	e.code.WriteU32(0)
	return at
}

// PatchHere resolves a forward jump recorded at `at`: the rel32 slot is
// set to (current position - (at+4)), per §4.2.
func (e *Emitter) PatchHere(at int) {
	rel := uint32(e.pos() - (at + 4))
	e.code.PutU32At(at, rel)
}

// The Linux x86_64 syscall numbers this generator loads into rax before
// each syscall instruction, named via golang.org/x/sys/unix rather than
// hand-written literals (§6.1 of SPEC_FULL.md).
const (
	sysWrite  = unix.SYS_WRITE
	sysExit   = unix.SYS_EXIT
	sysChdir  = unix.SYS_CHDIR
	sysFork   = unix.SYS_FORK
	sysExecve = unix.SYS_EXECVE
	sysWait4  = unix.SYS_WAIT4
	sysPipe   = unix.SYS_PIPE
	sysDup2   = unix.SYS_DUP2
	sysClose  = unix.SYS_CLOSE
	sysOpenat = unix.SYS_OPENAT
)

func (e *Emitter) SysWrite()  { e.MovRaxImm32(uint32(sysWrite)); e.Syscall() }
func (e *Emitter) SysExit()   { e.MovRaxImm32(uint32(sysExit)); e.Syscall() }
func (e *Emitter) SysChdir()  { e.MovRaxImm32(uint32(sysChdir)); e.Syscall() }
func (e *Emitter) SysFork()   { e.MovRaxImm32(uint32(sysFork)); e.Syscall() }
func (e *Emitter) SysExecve() { e.MovRaxImm32(uint32(sysExecve)); e.Syscall() }
func (e *Emitter) SysWait4()  { e.MovRaxImm32(uint32(sysWait4)); e.Syscall() }
func (e *Emitter) SysPipe()   { e.MovRaxImm32(uint32(sysPipe)); e.Syscall() }
func (e *Emitter) SysDup2()   { e.MovRaxImm32(uint32(sysDup2)); e.Syscall() }
func (e *Emitter) SysClose()  { e.MovRaxImm32(uint32(sysClose)); e.Syscall() }
func (e *Emitter) SysOpenat() { e.MovRaxImm32(uint32(sysOpenat)); e.Syscall() }
