package main

import (
	"fmt"
	"log"
	"os"

	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/interp"
	"github.com/arbor-lang/arbor/internal/parser"
	"github.com/arbor-lang/arbor/internal/resolver"
	"github.com/arbor-lang/arbor/internal/types"
)

func main() {
	args, err := cli()
	if err != nil {
		log.Fatal(err)
	}

	switch args.Command {
	case CommandHelp:
		fmt.Print(helpText)
		return
	case CommandRun:
		os.Exit(run(args))
	}
}

func run(args CliResult) int {
	src, err := os.ReadFile(args.Path)
	// TODO(errors)
	if err != nil {
		log.Fatal(err)
	}

	collector := diagnostics.New()
	reg := types.NewRegistry()

	p, err := parser.NewFromSource(args.Path, src, collector, reg)
	if err != nil {
		log.Fatal(err)
	}
	module, err := p.ParseModule("main")
	if err != nil {
		printDiags(collector)
		return 1
	}

	prog, err := resolver.New(reg, collector).Run(module)
	if err != nil {
		printDiags(collector)
		return 1
	}

	if args.Options.Build.String() == "debug" {
		fmt.Fprintf(os.Stderr, "[debug] resolved module %q, main = %s\n", module.Name, prog.Main.Name)
	}

	in := interp.New(reg, os.Stdout)
	if args.Options.Tracing {
		in.Tracer = os.Stderr
	}
	code, err := in.Run(prog, args.MainArgs)
	// TODO(errors)
	if err != nil {
		log.Fatal(err)
	}
	return code
}

func printDiags(collector *diagnostics.Collector) {
	for _, d := range collector.Diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}
