// Completion: 100% - Code generator complete, all builtins and pipeline forms
package main

import (
	"fmt"
	"os"
)

// codegen.go - the code generator (§4.3).
//
// Generator owns the code buffer, string pool, relocation list and BSS
// cursor exclusively (§3 "Ownership summary") and walks a Script once,
// emitting machine code for each Pipeline in turn. At the end it emits
// exit(0). A builtin that is a whole statement on its own runs inline
// without forking (unless it is an echo with a redirection); every stage
// of a multi-stage pipeline, builtin or not, and every external command
// runs in a forked child.

const (
	atFdCwd     = ^uint64(0) - 99 // AT_FDCWD = -100, as an unsigned 64-bit immediate
	oWronly     = 1
	oCreat      = 64
	oAppend     = 1024
	oTrunc      = 512
	outFileMode = 0644
)

// Relocation is a (code-offset, string-index) pair: at ELF emission the
// 8-byte slot at Offset is overwritten with the pool string's runtime
// address (§3 "Relocation").
type Relocation struct {
	Offset    int
	StringIdx int
}

// Generator holds every piece of state that lives for the duration of
// one compilation: the code buffer, string pool, relocation list and
// BSS cursor. None of it is retained afterward beyond the final Bytes.
type Generator struct {
	code ByteBuffer
	strs *StringPool
	rels []Relocation
	bss  *bssPlanner
	emit *Emitter
}

// NewGenerator returns a Generator ready to compile a Script. bssBase is
// the fixed virtual address the BSS region starts at (0x600000, §3).
func NewGenerator(bssBase uint64) *Generator {
	g := &Generator{
		strs: NewStringPool(),
		bss:  newBSSPlanner(bssBase),
	}
	g.emit = newEmitter(&g.code, g)
	return g
}

// addReloc implements relocSink for the emitter's string-load helpers.
func (g *Generator) addReloc(at int, sidx int) {
	g.rels = append(g.rels, Relocation{Offset: at, StringIdx: sidx})
}

func (g *Generator) addStr(s string) int {
	return g.strs.Add(s)
}

// Generate walks every pipeline in the script and emits its machine
// code, then emits the program-wide exit(0) (§4.3: "At end of script,
// it emits exit(0)").
func (g *Generator) Generate(sc *Script) {
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "codegen: %d pipeline(s)\n", len(sc.Pipelines))
	}
	for i, pl := range sc.Pipelines {
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "  pipeline %d: %d stage(s), code offset %d, bss offset %d\n",
				i, len(pl.Stages), g.code.Len(), g.bss.highWaterMark())
		}
		if len(pl.Stages) == 1 {
			g.genSingleCommand(&pl.Stages[0])
		} else {
			g.genPipeline(&pl)
		}
	}
	g.emit.MovRdiImm64(0)
	g.emit.SysExit()
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "codegen: done, %d bytes code, %d strings, %d relocations\n",
			g.code.Len(), g.strs.Len(), len(g.rels))
	}
}

func isBuiltin(cmd string) bool {
	return cmd == "echo" || cmd == "cd" || cmd == "exit"
}

// genBuiltin emits echo/cd/exit per §4.3. The caller is responsible for
// whatever follows (a builtin stage inside a pipeline child must itself
// exit(0) afterward; §4.3's end-of-script exit(0) covers a top-level
// builtin pipeline).
func (g *Generator) genBuiltin(st *Stage) {
	switch st.Argv[0] {
	case "echo":
		args := st.Argv[1:]
		for i, a := range args {
			g.writeLiteral(a)
			if i+1 < len(args) {
				g.writeLiteral(" ")
			}
		}
		g.writeLiteral("\n")
	case "cd":
		if len(st.Argv) >= 2 {
			sidx := g.addStr(st.Argv[1])
			g.emit.MovRdiStr(sidx)
			g.emit.SysChdir()
		}
	case "exit":
		g.emit.MovRdiImm64(0)
		g.emit.SysExit()
	}
}

// writeLiteral interns s once and emits write(1, &s, len(s)).
func (g *Generator) writeLiteral(s string) {
	sidx := g.addStr(s)
	g.emit.MovRsiStr(sidx)
	g.emit.MovRdiImm64(1)
	g.emit.MovRdxImm64(uint64(len(s)))
	g.emit.SysWrite()
}

// emitRedirs emits the openat/dup2/close sequence for a stage's
// in/out redirections (§4.3 "Redirection"). Return values are not
// checked, matching original_source/sh2elf.c and spec.md §7/§9.
func (g *Generator) emitRedirs(st *Stage) {
	if st.HasInRedir() {
		sidx := g.addStr(st.InRedir)
		g.emit.MovRdiImm64(atFdCwd)
		g.emit.MovRsiStr(sidx)
		g.emit.MovRdxImm64(0) // O_RDONLY
		g.emit.XorR10R10()    // mode, unused for O_RDONLY
		g.emit.SysOpenat()
		g.emit.MovRdiRax()
		g.emit.MovRsiImm64(0) // fd 0 = stdin
		g.emit.SysDup2()
		g.emit.SysClose() // rdi still holds the opened fd across the syscall
	}
	if st.HasOutRedir() {
		sidx := g.addStr(st.OutRedir)
		flags := uint64(oWronly | oCreat)
		if st.OutAppend {
			flags |= oAppend
		} else {
			flags |= oTrunc
		}
		g.emit.MovRdiImm64(atFdCwd)
		g.emit.MovRsiStr(sidx)
		g.emit.MovRdxImm64(flags)
		g.emit.MovR10Imm64(outFileMode)
		g.emit.SysOpenat()
		g.emit.MovRdiRax()
		g.emit.MovRsiImm64(1) // fd 1 = stdout
		g.emit.SysDup2()
		g.emit.SysClose() // rdi still holds the opened fd across the syscall
	}
}

// buildArgv builds argc+1 argv pointers into the BSS region at base,
// NULL-terminated, and leaves rdi/rsi pointing at it (§4.3 "Argv
// construction").
func (g *Generator) buildArgv(base uint64, argv []string) {
	g.emit.MovRdiImm64(base)
	for i, a := range argv {
		sidx := g.addStr(a)
		g.emit.MovRaxStr(sidx)
		g.emit.MovMemRdiDisp32Rax(uint32(i * 8))
	}
	g.emit.MovRaxImm32(0)
	g.emit.MovMemRdiDisp32Rax(uint32(len(argv) * 8))
	g.emit.MovRsiRdi()
}

// emitExecDispatch builds argv at argvBase, loads envpAddr into rdx,
// then execve's the command (§4.3 "Exec dispatch"). Per spec.md §9's
// open question, when the command has no '/' both /bin/<cmd> and
// /usr/bin/<cmd> are always attempted — kernel execve never returns on
// success, so the "test rax,rax; jne" between the two attempts is a
// no-op in practice; it is kept because spec.md requires reproducing
// the source's literal behavior rather than correcting it.
func (g *Generator) emitExecDispatch(st *Stage, argvBase, envpAddr uint64) {
	g.buildArgv(argvBase, st.Argv)
	g.emit.MovRdxImm64(envpAddr)

	cmd := st.Argv[0]
	hasSlash := containsSlash(cmd)
	if hasSlash {
		sidx := g.addStr(cmd)
		g.emit.MovRdiStr(sidx)
		g.emit.SysExecve()
		g.emitExecFailed()
		return
	}

	s1 := g.addStr("/bin/" + cmd)
	s2 := g.addStr("/usr/bin/" + cmd)
	g.emit.MovRdiStr(s1)
	g.emit.SysExecve()
	g.emit.TestRaxRax()
	jmp := g.emit.JneRel32()
	g.emit.PatchHere(jmp)
	g.emit.MovRdiStr(s2)
	g.emit.SysExecve()
	g.emitExecFailed()
}

// emitExecFailed writes "exec failed\n" and exits 127. Per spec.md §9
// this writes to fd 1 (stdout), not fd 2, matching
// original_source/sh2elf.c's write_literal call exactly.
func (g *Generator) emitExecFailed() {
	g.writeLiteral("exec failed\n")
	g.emit.MovRdiImm64(127)
	g.emit.SysExit()
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}

// genSingleCommand handles a one-stage pipeline: builtins run inline,
// except an echo with a redirection, which runs in a forked child so the
// redirection applies to its output only; external commands fork/exec
// and the parent waits (§4.3 "Single external command"). Redirections on
// a lone cd or exit are not applied.
func (g *Generator) genSingleCommand(st *Stage) {
	builtin := isBuiltin(st.Argv[0])
	if builtin && !(st.Argv[0] == "echo" && (st.HasInRedir() || st.HasOutRedir())) {
		g.genBuiltin(st)
		return
	}

	g.emit.SysFork()
	g.emit.CmpRaxImm8(0)
	jnzParent := g.emit.JneRel32()

	// child
	g.emitRedirs(st)
	if builtin {
		g.genBuiltin(st)
		g.emit.MovRdiImm64(0)
		g.emit.SysExit()
	} else {
		envpAddr := g.bss.allocScalar()
		argvBase := g.bss.allocArgv(len(st.Argv))
		g.emitExecDispatch(st, argvBase, envpAddr)
	}

	g.emit.PatchHere(jnzParent)
	// parent
	g.emit.MovRdiRax()
	g.emit.XorRsiRsi()
	g.emit.XorRdxRdx()
	g.emit.XorR10R10()
	g.emit.SysWait4()
}

// genPipeline handles an N-stage pipeline: anonymous pipes connect
// consecutive stages, each stage forks, and the parent waits for every
// child in fork order after closing its own copy of the last read end
// (§4.3 "Pipelines of N stages", §5 "Ordering").
func (g *Generator) genPipeline(pl *Pipeline) {
	n := len(pl.Stages)
	envpAddr := g.bss.allocScalar()
	prevReadAddr := g.bss.allocScalar()
	pidArrAddr := g.bss.allocPidArray(n)
	pipeAreaAddr := g.bss.allocPipeArea()

	// prev_read_fd := -1
	g.emit.MovRdiImm64(prevReadAddr)
	g.emit.MovRdxImm64(^uint64(0))
	g.emit.MovMemRdiRdx()

	for i := 0; i < n; i++ {
		hasNext := i+1 < n
		st := &pl.Stages[i]

		if hasNext {
			g.emit.MovRdiImm64(pipeAreaAddr)
			g.emit.SysPipe()
		}

		g.emit.SysFork()
		g.emit.CmpRaxImm8(0)
		jnzParent := g.emit.JneRel32()

		// child
		if i > 0 {
			g.emit.MovRdiImm64(prevReadAddr)
			g.emit.MovRaxMemRdi()
			g.emit.MovRdiRax()
			g.emit.MovRsiImm64(0)
			g.emit.SysDup2()
			g.emit.MovRdiImm64(prevReadAddr)
			g.emit.MovRaxMemRdi()
			g.emit.MovRdiRax()
			g.emit.SysClose()
		}
		if hasNext {
			g.emit.MovRdiImm64(pipeAreaAddr + 4)
			g.emit.MovEaxMemRdi()
			g.emit.MovRdiRax()
			g.emit.MovRsiImm64(1)
			g.emit.SysDup2()
			g.emit.MovRdiImm64(pipeAreaAddr + 0)
			g.emit.MovEaxMemRdi()
			g.emit.MovRdiRax()
			g.emit.SysClose()
			g.emit.MovRdiImm64(pipeAreaAddr + 4)
			g.emit.MovEaxMemRdi()
			g.emit.MovRdiRax()
			g.emit.SysClose()
		}

		g.emitRedirs(st)
		if isBuiltin(st.Argv[0]) {
			g.genBuiltin(st)
			g.emit.MovRdiImm64(0)
			g.emit.SysExit()
		} else {
			argvBase := g.bss.allocArgv(len(st.Argv))
			g.emitExecDispatch(st, argvBase, envpAddr)
		}

		g.emit.PatchHere(jnzParent)
		// parent
		g.emit.MovRdiImm64(pidArrAddr + uint64(i*8))
		g.emit.MovMemRdiRax()
		if hasNext {
			g.emit.MovRdiImm64(pipeAreaAddr + 0)
			g.emit.MovEaxMemRdi()
			g.emit.MovRdiImm64(prevReadAddr)
			g.emit.MovMemRdiRax()
			g.emit.MovRdiImm64(pipeAreaAddr + 4)
			g.emit.MovEaxMemRdi()
			g.emit.MovRdiRax()
			g.emit.SysClose()
		}
	}

	// close prev_read, unless the 64-bit slot happens to read back as
	// zero. This reproduces original_source/sh2elf.c's final check
	// exactly: a full 64-bit load of prev_read_fd compared against 0,
	// not -1, so the skip branch is effectively unreachable once any
	// stage has run (prev_read_fd is seeded to -1 and only ever
	// overwritten with a real descriptor) — spec.md §9 asks for the
	// source's literal behavior here, not a "corrected" -1 comparison.
	g.emit.MovRdiImm64(prevReadAddr)
	g.emit.MovRaxMemRdi()
	g.emit.CmpRaxImm8(0)
	jeq := g.emit.JeRel32()
	g.emit.MovRdiRax()
	g.emit.SysClose()
	g.emit.PatchHere(jeq)

	for i := 0; i < n; i++ {
		g.emit.MovRdiImm64(pidArrAddr + uint64(i*8))
		g.emit.MovRaxMemRdi()
		g.emit.MovRdiRax()
		g.emit.XorRsiRsi()
		g.emit.XorRdxRdx()
		g.emit.XorR10R10()
		g.emit.SysWait4()
	}
}
