// Completion: 100% - ELF64 writer complete
package main

import (
	"fmt"
	"os"
)

// elf.go - the ELF64 writer (§4.4).
//
// Grounded on the teacher's WriteELFHeader (byte-by-byte header assembly
// with a VerboseMode trace of each field group) but replaces its
// generic multi-segment, page-aligned layout with the two fixed
// PT_LOAD segments this format always produces: one R-X segment
// holding ehdr+phdrs+code+rodata, and one RW BSS segment with
// filesz=0.

const (
	elfHeaderSize  = 0x40 // ELF64 header size
	progHeaderSize = 0x38 // Program header entry size (ELF64)
	progHeaderOff  = elfHeaderSize
	codeFileOffset = elfHeaderSize + 2*progHeaderSize // 0xB0

	textBaseAddr = 0x400000
	bssBaseAddr  = 0x600000
	segAlign     = 0x1000

	ptLoad  = 1
	pfRX    = 5 // PF_R | PF_X
	pfRW    = 6 // PF_R | PF_W
	emX8664 = 0x3E
	etExec  = 2
)

// BuildELF resolves every pending string relocation against the final
// rodata base address, then serializes the ELF64 image: header, two
// program headers, code, rodata.
func BuildELF(g *Generator) []byte {
	code := append([]byte(nil), g.code.Bytes()...)
	rodata := g.strs.Bytes()

	roBaseVaddr := uint64(textBaseAddr + codeFileOffset + len(code))
	for _, r := range g.rels {
		addr := roBaseVaddr + uint64(g.strs.Offset(r.StringIdx))
		putU64(code, r.Offset, addr)
	}

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "BuildELF: code=%d bytes, rodata=%d bytes, bss=%d bytes\n",
			len(code), len(rodata), g.bss.highWaterMark())
	}

	var out ByteBuffer
	writeELFHeader(&out)
	writeProgramHeaders(&out, uint64(len(code)), uint64(len(rodata)), g.bss.highWaterMark())
	out.WriteBytes(code)
	out.WriteBytes(rodata)
	return out.Bytes()
}

// putU64 writes x little-endian into buf at off, overwriting 8 bytes
// already present — used for in-place relocation patching after the
// code buffer has been copied out of the Generator.
func putU64(buf []byte, off int, x uint64) {
	for i := 0; i < 8; i++ {
		buf[off+i] = byte(x >> (8 * uint(i)))
	}
}

func writeELFHeader(out *ByteBuffer) {
	out.WriteByte(0x7F)
	out.WriteByte('E')
	out.WriteByte('L')
	out.WriteByte('F')
	out.WriteByte(2) // ELFCLASS64
	out.WriteByte(1) // ELFDATA2LSB
	out.WriteByte(1) // EI_VERSION
	out.WriteN(0, 9) // EI_OSABI, EI_ABIVERSION, EI_PAD (pad to 16 total)

	out.WriteU16(etExec)
	out.WriteU16(emX8664)
	out.WriteU32(1) // e_version

	entry := uint64(textBaseAddr + codeFileOffset)
	out.WriteU64(entry)
	out.WriteU64(progHeaderOff) // e_phoff
	out.WriteU64(0)             // e_shoff

	out.WriteU32(0) // e_flags
	out.WriteU16(elfHeaderSize)
	out.WriteU16(progHeaderSize)
	out.WriteU16(2) // e_phnum
	out.WriteU16(0) // e_shentsize
	out.WriteU16(0) // e_shnum
	out.WriteU16(0) // e_shstrndx

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "  entry=0x%X phoff=0x%X phnum=2\n", entry, progHeaderOff)
	}
}

func writeProgramHeaders(out *ByteBuffer, codeLen, roLen, bssHighWater uint64) {
	rxSize := codeFileOffset + codeLen + roLen

	out.WriteU32(ptLoad)
	out.WriteU32(pfRX)
	out.WriteU64(0)
	out.WriteU64(textBaseAddr)
	out.WriteU64(textBaseAddr)
	out.WriteU64(rxSize)
	out.WriteU64(rxSize)
	out.WriteU64(segAlign)

	bssMemsz := bssHighWater
	if bssMemsz < segAlign {
		bssMemsz = segAlign
	}

	out.WriteU32(ptLoad)
	out.WriteU32(pfRW)
	out.WriteU64(0)
	out.WriteU64(bssBaseAddr)
	out.WriteU64(bssBaseAddr)
	out.WriteU64(0) // filesz
	out.WriteU64(bssMemsz)
	out.WriteU64(segAlign)

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "  R-X segment: 0x%X bytes at vaddr 0x%X\n", rxSize, uint64(textBaseAddr))
		fmt.Fprintf(os.Stderr, "  RW  segment: memsz=0x%X at vaddr 0x%X\n", bssMemsz, uint64(bssBaseAddr))
	}
}
