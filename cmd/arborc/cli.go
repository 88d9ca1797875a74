package main

import (
	"fmt"
	"os"

	"github.com/arbor-lang/arbor/internal/config"
)

type Command int

const (
	CommandRun Command = iota
	CommandHelp
)

type CliResult struct {
	Command  Command
	Path     string
	Options  config.Options
	MainArgs []string
}

var helpText = `Arbor - a small statically-typed imperative language.

Usage:
  arborc run <file> [-debug] [-trace] [-- args...]

Available Commands:
  run <file>   Lex, parse, resolve and interpret <file>
      -debug   Print the resolved module's name and main to stderr before running
      -trace   Log every subroutine call/return to stderr
      --       Everything after is passed to the program as main's argv

  help         Show this help message
`

// cli mirrors HicaroD-Telia's cmd/compiler/cli.go: a flat, hand-rolled
// argument scan rather than a flag-parsing library, since the surface is
// this small (one subcommand, two boolean switches, a trailing arg list).
func cli() (CliResult, error) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CliResult{Command: CommandHelp}, nil
	}

	switch args[0] {
	case "help", "-h", "--help":
		return CliResult{Command: CommandHelp}, nil
	case "run":
		return parseRunArgs(args[1:])
	default:
		return CliResult{}, fmt.Errorf("unknown command %q (try \"arborc help\")", args[0])
	}
}

func parseRunArgs(args []string) (CliResult, error) {
	result := CliResult{Command: CommandRun, Options: config.Options{Build: config.RELEASE}}
	if len(args) == 0 {
		return result, fmt.Errorf("run requires a file path")
	}
	result.Path = args[0]

	i := 1
	for ; i < len(args); i++ {
		switch args[i] {
		case "-debug":
			result.Options.Build = config.DEBUG
		case "-release":
			result.Options.Build = config.RELEASE
		case "-trace":
			result.Options.Tracing = true
		case "--":
			result.MainArgs = args[i+1:]
			return result, nil
		default:
			return result, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return result, nil
}
