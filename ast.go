// Completion: 100% - Module complete
package main

// ast.go - the parser's output types: Stage, Pipeline, Script.
//
// The parser owns these while building them; once parse() returns, the
// Script is handed to the code generator and not retained by the parser
// (§3: "The Script is consumed by the generator and not retained after").

// Stage is one command in a pipeline: a non-empty argv plus optional
// input/output redirection. Invariant: a Stage with any redirection also
// has at least one argv entry (enforced by the parser, never by this
// type itself). Presence of a redirection is tracked by its own bool
// rather than by an empty-string sentinel on the target, since a quoted
// empty target (`echo hi > ""`) is a legal, present redirection whose
// target happens to be the empty string.
type Stage struct {
	Argv      []string
	InRedir   string
	HasIn     bool
	OutRedir  string
	HasOut    bool
	OutAppend bool // O_APPEND vs O_TRUNC, only meaningful if HasOut
}

// HasInRedir reports whether this stage redirects stdin.
func (s *Stage) HasInRedir() bool { return s.HasIn }

// HasOutRedir reports whether this stage redirects stdout.
func (s *Stage) HasOutRedir() bool { return s.HasOut }

// Pipeline is one or more Stages connected left-to-right by anonymous
// pipes; terminated by ';', newline, or end of input.
type Pipeline struct {
	Stages []Stage
}

// Script is an ordered sequence of Pipelines. Empty pipelines never
// appear in it — the parser elides them as it goes (§3).
type Script struct {
	Pipelines []Pipeline
}
