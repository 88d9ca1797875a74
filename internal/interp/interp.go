package interp

import (
	"fmt"
	"io"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/token"
	"github.com/arbor-lang/arbor/internal/types"
)

// Frame is a subroutine activation record: a this-binding (for methods)
// plus every local variable declared during the call, keyed by the
// resolver's stable *ast.Variable handle rather than by name (spec.md §3,
// Lifecycle; §4.7).
type Frame struct {
	This *Value
	Vars map[*ast.Variable]*Value
}

// Interp is the tree-walking interpreter described in spec.md §4.7: one
// frame per active call, a globals table, and three mutually-exclusive
// control-flow signals plus a return-value slot.
type Interp struct {
	Reg     *types.Registry
	globals map[*ast.Variable]*Value
	frames  []*Frame

	breaking   bool
	continuing bool
	returning  bool
	retVal     *Value

	Stdout io.Writer
	// Tracer, when non-nil, receives one line per subroutine call and
	// return (spec.md §10's supplementary execution trace, toggled by
	// config.Options.Tracing).
	Tracer io.Writer
}

func New(reg *types.Registry, stdout io.Writer) *Interp {
	return &Interp{Reg: reg, globals: make(map[*ast.Variable]*Value), Stdout: stdout}
}

func (in *Interp) frame() *Frame { return in.frames[len(in.frames)-1] }

func (in *Interp) pushFrame(this *Value) {
	in.frames = append(in.frames, &Frame{This: this, Vars: make(map[*ast.Variable]*Value)})
}

func (in *Interp) popFrame() { in.frames = in.frames[:len(in.frames)-1] }

func (in *Interp) lookupVar(v *ast.Variable) *Value {
	if len(in.frames) > 0 {
		if val, ok := in.frame().Vars[v]; ok {
			return val
		}
	}
	return in.globals[v]
}

func (in *Interp) setVar(v *ast.Variable, val *Value) {
	if len(in.frames) > 0 {
		if _, ok := in.frame().Vars[v]; ok {
			in.frame().Vars[v] = val
			return
		}
	}
	if _, ok := in.globals[v]; ok {
		in.globals[v] = val
		return
	}
	// First write (variable declaration): decide scope by whether we are
	// inside any call at all.
	if len(in.frames) > 0 {
		in.frame().Vars[v] = val
	} else {
		in.globals[v] = val
	}
}

// RuntimeError is a user-facing failure raised during execution: a failed
// assertion, an out-of-bounds index, or a bad union narrow
// (spec.md §7, "user runtime error").
type RuntimeError struct {
	Pos token.Pos
	Msg string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

func rtErrf(pos token.Pos, format string, args ...any) error {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Run initializes global variables, locates and invokes main, and returns
// the process exit code (spec.md §6, CLI exit-code contract): 0 on a
// normal void return, the returned int value for an int-returning main,
// and a non-zero code with a diagnostic on an unhandled RuntimeError.
func (in *Interp) Run(prog *ast.Program, args []string) (int, error) {
	in.initGlobals(prog.Root)

	var argVal *Value
	if len(prog.Main.Params) == 1 {
		argVal = in.buildArgsArray(args)
	}

	var callArgs []*Value
	if argVal != nil {
		callArgs = []*Value{argVal}
	}
	result, err := in.Invoke(prog.Main, nil, callArgs)
	if err != nil {
		if rerr, ok := err.(*RuntimeError); ok {
			fmt.Fprintf(in.Stdout, "%s: runtime error: %s\n", rerr.Pos, rerr.Msg)
			return 1, nil
		}
		return 1, err
	}
	retKind := in.Reg.Canonicalize(prog.Main.RetType).Kind
	if retKind == types.Void || result == nil {
		return 0, nil
	}
	return int(asInt(result)), nil
}

func (in *Interp) buildArgsArray(args []string) *Value {
	elems := make([]*Value, len(args))
	for i, a := range args {
		elems[i] = NewString(in.Reg, []byte(a))
	}
	return &Value{Type: in.Reg.GetArrayType(in.Reg.GetStringType(), 1), V: &ArrayValue{Elems: elems}}
}

func (in *Interp) initGlobals(m *ast.ModuleDecl) {
	for _, sub := range m.Modules {
		in.initGlobals(sub)
	}
	for _, g := range m.Globals {
		if g.Init != nil {
			v, _ := in.eval(g.Init)
			in.globals[g] = Copy(v)
		} else if g.Type != nil {
			v, _ := in.eval(ast.DefaultValueExpr(in.Reg, g.Type))
			in.globals[g] = Copy(v)
		}
	}
}

// Invoke calls subr with receiver bound as `this` and args bound to its
// parameters by value (spec.md §4.7: "binding copies each argument").
func (in *Interp) Invoke(subr *ast.Subroutine, receiver *Value, args []*Value) (*Value, error) {
	if in.Tracer != nil {
		fmt.Fprintf(in.Tracer, "-> %s\n", subr.Name)
	}
	in.pushFrame(receiver)
	defer in.popFrame()
	for i, p := range subr.Params {
		if i < len(args) {
			in.frame().Vars[p] = Copy(args[i])
		} else {
			v, _ := in.eval(ast.DefaultValueExpr(in.Reg, p.Type))
			in.frame().Vars[p] = Copy(v)
		}
	}
	if err := in.exec(subr.Body); err != nil {
		if in.Tracer != nil {
			fmt.Fprintf(in.Tracer, "<- %s (error: %s)\n", subr.Name, err)
		}
		return nil, err
	}
	result := in.retVal
	in.returning = false
	in.retVal = nil
	if in.Tracer != nil {
		fmt.Fprintf(in.Tracer, "<- %s\n", subr.Name)
	}
	return result, nil
}
