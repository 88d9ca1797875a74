// Package arbortest drives the full lex+parse+resolve+interpret pipeline
// over a source string and hands back what ran, the way HicaroD-Telia's
// tests/compiler package drives its own compile+link+run pipeline for
// end-to-end tests (here: an interpreter invocation rather than a spawned
// binary, since Arbor has no native-code back end).
package arbortest

import (
	"bytes"

	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/interp"
	"github.com/arbor-lang/arbor/internal/parser"
	"github.com/arbor-lang/arbor/internal/resolver"
	"github.com/arbor-lang/arbor/internal/types"
)

// Run lexes, parses, resolves and interprets src, returning everything it
// printed via `print` plus whatever diagnostics were reported along the
// way. A halted pipeline (a lex/parse/resolve error) still returns
// whatever was printed before the halt (nothing, for those phases) so
// callers can assert on diags without special-casing where the failure
// happened.
func Run(src string) (string, *diagnostics.Collector) {
	return RunWithArgs(src, nil)
}

func RunWithArgs(src string, args []string) (string, *diagnostics.Collector) {
	collector := diagnostics.New()
	reg := types.NewRegistry()

	p, err := parser.NewFromSource("<test>", []byte(src), collector, reg)
	if err != nil {
		return "", collector
	}
	module, err := p.ParseModule("main")
	if err != nil {
		return "", collector
	}

	prog, err := resolver.New(reg, collector).Run(module)
	if err != nil {
		return "", collector
	}

	var buf bytes.Buffer
	in := interp.New(reg, &buf)
	if _, err := in.Run(prog, args); err != nil {
		collector.Report(prog.Main.Pos, diagnostics.RuntimeError, "%s", err)
	}
	return buf.String(), collector
}

// ExitCode is like Run but also returns the process exit code main
// produced, for tests asserting on a non-zero-exit assertion failure.
func ExitCode(src string) (string, int, *diagnostics.Collector) {
	collector := diagnostics.New()
	reg := types.NewRegistry()

	p, err := parser.NewFromSource("<test>", []byte(src), collector, reg)
	if err != nil {
		return "", 1, collector
	}
	module, err := p.ParseModule("main")
	if err != nil {
		return "", 1, collector
	}
	prog, err := resolver.New(reg, collector).Run(module)
	if err != nil {
		return "", 1, collector
	}

	var buf bytes.Buffer
	in := interp.New(reg, &buf)
	code, err := in.Run(prog, nil)
	if err != nil {
		collector.Report(prog.Main.Pos, diagnostics.RuntimeError, "%s", err)
		return buf.String(), 1, collector
	}
	return buf.String(), code, collector
}
