// Completion: 100% - Entry point complete
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// main.go - flag parsing and process entry point.
//
// Grounded on the teacher's main(): stdlib flag package, package-level
// mutable mode flags, a flag.FlagSet parsed before the subcommand/
// positional tail is handed off. The teacher's own main.go:1202-1204
// carries an explicit comment warning that Go's flag package stops
// scanning at the first non-flag argument, so flags must come before
// the filename — and then leaves that limitation in place ("c67
// --arch arm64 program.c67", NOT "c67 program.c67 --arch arm64").
// sh2elf's documented invocation forms (cli.go's own usage text) put
// `-o`/`-v` *after* the script path, so that limitation isn't
// acceptable here: splitArgs below pulls every recognized flag token
// out of the argument list regardless of position before flag.Parse
// ever runs, and a flag.ContinueOnError FlagSet plus splitArgs' own
// unknown-argument check keep every error on this package's own
// exit-code-1 contract instead of the stdlib flag package's
// built-in os.Exit(2) usage dump.

// VerboseMode gates the stderr tracing emitted by the code generator
// and ELF writer (SPEC_FULL.md §5.1).
var VerboseMode bool

// splitArgs partitions args into recognized flag tokens (for fs.Parse)
// and positional tokens (subcommand + script path), independent of
// where in the argument list each flag appears. "-h"/"--help" and
// "--version" are passed through as positional so RunCLI's own
// dispatch on args[0] still sees them verbatim.
func splitArgs(args []string) (flagArgs, positional []string, err error) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-v" || a == "--verbose":
			flagArgs = append(flagArgs, a)
		case a == "-o" || a == "--output":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("flag needs an argument: %s", a)
			}
			flagArgs = append(flagArgs, a, args[i+1])
			i++
		case a == "-h" || a == "--help" || a == "--version":
			positional = append(positional, a)
		case len(a) > 1 && a[0] == '-':
			return nil, nil, fmt.Errorf("unknown argument: %s", a)
		default:
			positional = append(positional, a)
		}
	}
	return flagArgs, positional, nil
}

func main() {
	flagArgs, positional, err := splitArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, IOError(err.Error()))
		os.Exit(1)
	}

	fs := flag.NewFlagSet("sh2elf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	verbose := fs.Bool("v", false, "trace compilation to stderr")
	verboseLong := fs.Bool("verbose", false, "trace compilation to stderr")
	output := fs.String("o", "", "output executable path (default a.out)")
	outputLong := fs.String("output", "", "output executable path (default a.out)")

	if err := fs.Parse(flagArgs); err != nil {
		fmt.Fprintln(os.Stderr, IOError(fmt.Sprintf("unknown argument: %v", err)))
		os.Exit(1)
	}

	VerboseMode = *verbose || *verboseLong

	outPath := *output
	if outPath == "" {
		outPath = *outputLong
	}

	ctx := &CommandContext{
		Verbose:    VerboseMode,
		OutputPath: outPath,
	}

	if err := RunCLI(positional, ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
