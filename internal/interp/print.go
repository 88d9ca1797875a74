package interp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/arbor-lang/arbor/internal/types"
)

// Render writes v's `print`-statement representation, implementing
// spec.md §6's per-kind rendering rules exactly: signed/unsigned decimal
// integers, shortest round-trip floats, raw string/char bytes, true/false
// bools, "void", and the struct/union/tuple/array/map literal forms.
func Render(w io.Writer, reg *types.Registry, v *Value) {
	if v == nil {
		io.WriteString(w, "void")
		return
	}
	canon := reg.Canonicalize(v.Type)
	switch canon.Kind {
	case types.Void:
		io.WriteString(w, "void")
	case types.Bool:
		if v.V.(bool) {
			io.WriteString(w, "true")
		} else {
			io.WriteString(w, "false")
		}
	case types.Char:
		io.WriteString(w, renderChar(v.V.(byte)))
	case types.Float32, types.Float64:
		bits := 64
		if canon.Kind == types.Float32 {
			bits = 32
		}
		io.WriteString(w, strconv.FormatFloat(asFloat(v), 'g', -1, bits))
	case types.EnumKind:
		fmt.Fprintf(w, "%d", asInt(v))
	case types.ArrayKind:
		at := canon.T.(*types.ArrayType)
		if reg.Canonicalize(at.Elem).Kind == types.Char && at.Dim == 1 {
			w.Write(StringBytes(v))
			return
		}
		renderArray(w, reg, v.V.(*ArrayValue))
	case types.StructKind:
		renderStruct(w, reg, canon.T.(*types.StructType).Name, v.V.(*StructValue))
	case types.TupleKind:
		renderTuple(w, reg, v.V.(*TupleValue))
	case types.MapKind:
		renderMap(w, reg, v.V.(*MapValue))
	case types.UnionKind:
		Render(w, reg, v.V.(*UnionValue).Payload)
	default:
		if canon.Kind.IsUnsigned() {
			fmt.Fprintf(w, "%d", uint64(asInt(v)))
			return
		}
		fmt.Fprintf(w, "%d", asInt(v))
	}
}

// renderChar implements spec.md §6's char rule: the raw character unless
// it is unprintable, in which case it is rendered as a C-style escape.
func renderChar(b byte) string {
	switch b {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\\':
		return `\\`
	case 0:
		return `\0`
	}
	if b < 0x20 || b >= 0x7f {
		return fmt.Sprintf(`\x%02x`, b)
	}
	return string(b)
}

func renderArray(w io.Writer, reg *types.Registry, a *ArrayValue) {
	io.WriteString(w, "[")
	for i, e := range a.Elems {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		Render(w, reg, e)
	}
	io.WriteString(w, "]")
}

func renderStruct(w io.Writer, reg *types.Registry, name string, s *StructValue) {
	fmt.Fprintf(w, "%s{", name)
	for i, f := range s.Fields {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		Render(w, reg, f)
	}
	io.WriteString(w, "}")
}

func renderTuple(w io.Writer, reg *types.Registry, t *TupleValue) {
	io.WriteString(w, "(")
	for i, e := range t.Elems {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		Render(w, reg, e)
	}
	io.WriteString(w, ")")
}

func renderMap(w io.Writer, reg *types.Registry, m *MapValue) {
	io.WriteString(w, "{")
	for i := range m.Keys {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		Render(w, reg, m.Keys[i])
		io.WriteString(w, ": ")
		Render(w, reg, m.Vals[i])
	}
	io.WriteString(w, "}")
}
