package main

import "testing"

func TestGenerateEchoEndsWithExit(t *testing.T) {
	sc, err := Parse("echo hi\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := NewGenerator(0x600000)
	g.Generate(sc)

	code := g.code.Bytes()
	// exit(0) is "mov rdi, 0" (48 BF + 8 zero bytes) followed by "mov rax, 60; syscall"
	tail := code[len(code)-12:]
	if tail[len(tail)-2] != 0x0F || tail[len(tail)-1] != 0x05 {
		t.Errorf("generated code does not end in a syscall instruction: % X", tail)
	}
}

func TestGenerateEchoInternsEveryArgumentAndSpace(t *testing.T) {
	sc, err := Parse("echo a b\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := NewGenerator(0x600000)
	g.Generate(sc)

	// "a", " ", "b", "\n" - four separate writeLiteral calls
	if g.strs.Len() == 0 {
		t.Fatal("string pool is empty, expected interned echo literals")
	}
	wantEntries := 4
	if len(g.rels) < wantEntries {
		t.Errorf("len(g.rels) = %d, want at least %d (one per echo literal)", len(g.rels), wantEntries)
	}
}

func TestGenerateCdEmitsChdirNoFork(t *testing.T) {
	sc, err := Parse("cd /tmp\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := NewGenerator(0x600000)
	g.Generate(sc)

	code := g.code.Bytes()
	found := false
	for i := 0; i+2 <= len(code); i++ {
		if code[i] == 0x48 && code[i+1] == 0xC7 && code[i+2] == 0xC0 {
			imm := uint32(code[i+3]) | uint32(code[i+4])<<8 | uint32(code[i+5])<<16 | uint32(code[i+6])<<24
			if imm == uint32(sysChdir) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected a mov rax, sysChdir immediate load somewhere in the generated code")
	}
	for i := 0; i+7 <= len(code); i++ {
		if code[i] == 0x48 && code[i+1] == 0xC7 && code[i+2] == 0xC0 {
			imm := uint32(code[i+3]) | uint32(code[i+4])<<8 | uint32(code[i+5])<<16 | uint32(code[i+6])<<24
			if imm == uint32(sysFork) {
				t.Error("cd builtin emitted a fork syscall, want it to run inline")
			}
		}
	}
}

func TestGenerateExternalCommandForks(t *testing.T) {
	sc, err := Parse("/bin/pwd\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := NewGenerator(0x600000)
	g.Generate(sc)

	code := g.code.Bytes()
	found := false
	for i := 0; i+2 <= len(code); i++ {
		if code[i] == 0x48 && code[i+1] == 0xC7 && code[i+2] == 0xC0 {
			imm := uint32(code[i+3]) | uint32(code[i+4])<<8 | uint32(code[i+5])<<16 | uint32(code[i+6])<<24
			if imm == uint32(sysFork) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("external command did not emit a fork syscall")
	}
}

func TestGeneratePipelineAllocatesPerStageBSS(t *testing.T) {
	sc, err := Parse("echo abc | /usr/bin/tr a-z A-Z\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := NewGenerator(0x600000)
	before := g.bss.highWaterMark()
	g.Generate(sc)
	after := g.bss.highWaterMark()
	if after <= before {
		t.Error("pipeline generation did not grow the BSS region")
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, cmd := range []string{"echo", "cd", "exit"} {
		if !isBuiltin(cmd) {
			t.Errorf("isBuiltin(%q) = false, want true", cmd)
		}
	}
	if isBuiltin("/bin/echo") {
		t.Error(`isBuiltin("/bin/echo") = true, want false`)
	}
}

func TestContainsSlash(t *testing.T) {
	if !containsSlash("/bin/ls") {
		t.Error(`containsSlash("/bin/ls") = false, want true`)
	}
	if containsSlash("ls") {
		t.Error(`containsSlash("ls") = true, want false`)
	}
}
