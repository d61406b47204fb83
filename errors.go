// Completion: 100% - Error handling complete, clear and helpful messages
package main

import (
	"fmt"
)

// ErrorCategory classifies the type of error. sh2elf's core only ever
// raises the two kinds spec.md §7 names: a lexer/parser problem with the
// script, or an I/O problem reading the script / writing the binary.
type ErrorCategory int

const (
	CategorySyntax ErrorCategory = iota
	CategoryIO
)

func (c ErrorCategory) String() string {
	switch c {
	case CategorySyntax:
		return "parse error"
	case CategoryIO:
		return "error"
	default:
		return "error"
	}
}

// SourceLocation represents a position in the script source. Line/column
// are best-effort: the lexer advances them as it scans but nothing in
// spec.md requires surfacing them, so CompilerError.Error() never prints
// them for CategorySyntax (keeping the exact "parse error: <message>"
// wording spec.md §7 and §8 require).
type SourceLocation struct {
	Line   int
	Column int
}

// CompilerError represents a single, fatal compilation error. The
// compiler does not accumulate or recover from errors (spec.md §7: "All
// compile-time errors are fatal ... No recovery or multi-error
// reporting"), so there is no ErrorCollector here, only this one type
// and the place main() formats it.
type CompilerError struct {
	Category ErrorCategory
	Message  string
	Location SourceLocation
}

// Error implements the error interface. For CategorySyntax this produces
// exactly "parse error: <message>", matching every parse error message
// spec.md §4.1 and §8 name.
func (e CompilerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// ParseError creates a lex/parse error at the given source location.
func ParseError(message string, loc SourceLocation) CompilerError {
	return CompilerError{Category: CategorySyntax, Message: message, Location: loc}
}

// IOError creates an I/O error (cannot open input, cannot allocate,
// cannot write output, cannot chmod output).
func IOError(message string) CompilerError {
	return CompilerError{Category: CategoryIO, Message: message}
}
