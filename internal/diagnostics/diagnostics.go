// Package diagnostics collects located, human-readable messages produced by
// every later phase of the pipeline (lexer, parser, resolver, interpreter).
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/arbor-lang/arbor/internal/token"
)

// ErrHalt is returned up the call stack by a phase once it has reported a
// diagnostic and must stop; spec.md §7 — no phase attempts to continue past
// the first error beyond what is needed to report it.
var ErrHalt = errors.New("arbor: compilation halted")

// Category groups diagnostics the way spec.md §4.7/§7 distinguishes them.
type Category int

const (
	LexError Category = iota
	ScopeError
	TypeError
	ResolutionError
	RuntimeError
)

func (c Category) String() string {
	switch c {
	case LexError:
		return "lex error"
	case ScopeError:
		return "scope error"
	case TypeError:
		return "type error"
	case ResolutionError:
		return "resolution error"
	case RuntimeError:
		return "runtime error"
	default:
		return "error"
	}
}

// Diag is a located message, rendered as "<file>:<line>:<col>: <text>"
// (spec.md §6).
type Diag struct {
	Pos      token.Pos
	Category Category
	Message  string
}

func (d Diag) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Category, d.Message)
}

// Collector accumulates diagnostics across a compilation. It is created
// explicitly by the driver and threaded through every phase rather than
// held in a package-level singleton (spec.md §9).
type Collector struct {
	Diags []Diag
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Report(pos token.Pos, category Category, format string, args ...any) {
	c.Diags = append(c.Diags, Diag{
		Pos:      pos,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Collector) HasErrors() bool { return len(c.Diags) > 0 }

// First returns the first reported diagnostic, or the zero Diag if none.
func (c *Collector) First() Diag {
	if len(c.Diags) == 0 {
		return Diag{}
	}
	return c.Diags[0]
}
