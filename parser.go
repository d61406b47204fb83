// Completion: 100% - Core parser complete, matches original_source/sh2elf.c's parse()
package main

import (
	"fmt"
	"os"
)

// parser.go - statement-level parsing: turns scanner word/operator
// events into a Script of Pipelines of Stages (§4.1).
//
// This mirrors original_source/sh2elf.c's parse() state machine
// directly: a Stage under construction, a Pipeline under construction,
// an "expecting stage" flag set right after a bare '|', and the same
// separator-collapsing and end-of-input finalization rules.

// Parse transforms script source bytes into a Script, or returns a
// CompilerError (category CategorySyntax) on the first malformed
// construct — spec.md §7: all parse errors are fatal, no recovery.
func Parse(src string) (*Script, error) {
	p := &parserState{s: newScanner(src)}
	return p.run()
}

type parserState struct {
	s           *scanner
	script      Script
	pipeline    Pipeline
	stage       Stage
	expectStage bool
}

func (p *parserState) run() (*Script, error) {
	for !p.s.eof() {
		p.s.skipInlineWhitespace()
		if p.s.eof() {
			break
		}
		c := p.s.peek()
		switch {
		case c == '\n' || c == ';':
			if err := p.handleSeparator(); err != nil {
				return nil, err
			}
		case c == '|':
			if err := p.handlePipe(); err != nil {
				return nil, err
			}
		case c == '<' || c == '>':
			if err := p.handleRedirection(); err != nil {
				return nil, err
			}
		default:
			if err := p.handleWord(); err != nil {
				return nil, err
			}
		}
	}
	if p.expectStage {
		return nil, ParseError("pipeline stage missing command", p.s.loc())
	}
	if err := p.finishPendingStage(); err != nil {
		return nil, err
	}
	if len(p.pipeline.Stages) > 0 {
		p.script.Pipelines = append(p.script.Pipelines, p.pipeline)
		p.pipeline = Pipeline{}
	}
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "parser: %d pipeline(s) parsed\n", len(p.script.Pipelines))
	}
	return &p.script, nil
}

// finishStage pushes the stage under construction into the pipeline, or
// errors if it carries redirections but no argv (§4.1: "redirection
// without command").
func (p *parserState) finishStage() error {
	if len(p.stage.Argv) == 0 {
		if p.stage.HasInRedir() || p.stage.HasOutRedir() {
			return ParseError("redirection without command", p.s.loc())
		}
		return nil
	}
	p.pipeline.Stages = append(p.pipeline.Stages, p.stage)
	p.stage = Stage{}
	return nil
}

// finishPendingStage is finishStage's variant used where a stage with
// only redirections and no argv is always an error (end of a separator
// or end of input), matching original_source's two call sites that
// check st.argv.n before deciding whether to call finish_stage at all.
func (p *parserState) finishPendingStage() error {
	if len(p.stage.Argv) > 0 {
		return p.finishStage()
	}
	if p.stage.HasInRedir() || p.stage.HasOutRedir() {
		return ParseError("redirection without command", p.s.loc())
	}
	return nil
}

func (p *parserState) handleSeparator() error {
	if p.expectStage {
		return ParseError("pipeline stage missing command", p.s.loc())
	}
	if err := p.finishPendingStage(); err != nil {
		return err
	}
	if len(p.pipeline.Stages) > 0 {
		p.script.Pipelines = append(p.script.Pipelines, p.pipeline)
		p.pipeline = Pipeline{}
	}
	p.expectStage = false
	for !p.s.eof() && (p.s.peek() == '\n' || p.s.peek() == ';') {
		p.s.advance()
	}
	return nil
}

func (p *parserState) handlePipe() error {
	if len(p.stage.Argv) == 0 {
		return ParseError("empty pipeline stage", p.s.loc())
	}
	if err := p.finishStage(); err != nil {
		return err
	}
	p.expectStage = true
	p.s.advance() // '|'
	return nil
}

func (p *parserState) handleRedirection() error {
	op := p.s.advance()
	append_ := false
	if op == '>' && p.s.peek() == '>' {
		append_ = true
		p.s.advance()
	}
	p.s.skipInlineWhitespace()
	if p.s.eof() || isRedirectionStop(p.s.peek()) {
		return ParseError("missing redirection target", p.s.loc())
	}
	target, ok, err := p.s.parseWord()
	if err != nil {
		return err
	}
	if !ok {
		return ParseError("missing redirection target", p.s.loc())
	}
	if op == '<' {
		p.stage.InRedir = target
		p.stage.HasIn = true
	} else {
		p.stage.OutRedir = target
		p.stage.HasOut = true
		p.stage.OutAppend = append_
	}
	return nil
}

func isRedirectionStop(c byte) bool {
	switch c {
	case 0, '\n', '|', ';', '<', '>':
		return true
	default:
		return false
	}
}

func (p *parserState) handleWord() error {
	word, ok, err := p.s.parseWord()
	if err != nil {
		return err
	}
	if !ok {
		return ParseError("expected word", p.s.loc())
	}
	p.stage.Argv = append(p.stage.Argv, word)
	p.expectStage = false
	return nil
}
