// Package integration runs whole programs end to end through
// internal/arbortest and asserts on captured stdout, grounded on
// HicaroD-Telia's internal/integration/compile_test.go.
package integration

import (
	"strings"
	"testing"

	"github.com/arbor-lang/arbor/internal/arbortest"
)

func TestArithmeticPrecedence(t *testing.T) {
	out, diags := arbortest.Run(`
proc main() {
	print(1 + 2 * 3)
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if out != "7" {
		t.Fatalf("expected %q, got %q", "7", out)
	}
}

func TestArrayIndexAssignment(t *testing.T) {
	out, diags := arbortest.Run(`
proc main() {
	a: int32[] = [1, 2, 3]
	a[1] = 10
	print(a)
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if out != "[1, 10, 3]" {
		t.Fatalf("expected %q, got %q", "[1, 10, 3]", out)
	}
}

func TestForLoopHonorsContinue(t *testing.T) {
	out, diags := arbortest.Run(`
proc main() {
	for i: int32 = 0; i < 3; i = i + 1 {
		if i == 1 {
			continue
		}
		print(i)
	}
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if out != "02" {
		t.Fatalf("expected %q, got %q", "02", out)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	out, diags := arbortest.Run(`
func f(x: int32): int32 {
	return x * x
}

proc main() {
	print(f(5))
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if out != "25" {
		t.Fatalf("expected %q, got %q", "25", out)
	}
}

func TestMatchOverUnionPicksActiveOption(t *testing.T) {
	out, diags := arbortest.Run(`
proc main() {
	u: bool|int32 = true
	match u {
	case bool v {
		print(v)
	}
	case int32 v {
		print("i")
	}
	}
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if out != "true" {
		t.Fatalf("expected %q, got %q", "true", out)
	}
}

func TestPassingAssertionContinuesExecution(t *testing.T) {
	out, code, diags := arbortest.ExitCode(`
proc main() {
	assert 1 == 1
	print("ok")
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if out != "ok" {
		t.Fatalf("expected %q, got %q", "ok", out)
	}
}

func TestFailingAssertionExitsNonZeroWithDiagnostic(t *testing.T) {
	out, code, _ := arbortest.ExitCode(`
proc main() {
	assert 1 == 2
}
`)
	if code == 0 {
		t.Fatal("expected a non-zero exit code from a failing assertion")
	}
	if !strings.Contains(out, "runtime error") {
		t.Fatalf("expected the assertion failure to be reported in stdout, got %q", out)
	}
}

func TestUndefinedVariableIsAResolutionError(t *testing.T) {
	_, diags := arbortest.Run(`
proc main() {
	print(y)
}
`)
	if len(diags.Diags) == 0 {
		t.Fatal("expected a resolution error for the undefined variable y")
	}
	found := false
	for _, d := range diags.Diags {
		if strings.Contains(d.Message, "y") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a diagnostic mentioning y, got %v", diags.Diags)
	}
}

func TestStructFieldAccessAndMethodCall(t *testing.T) {
	out, diags := arbortest.Run(`
struct Point {
	x: int32
	y: int32

	func sum(): int32 {
		return this.x + this.y
	}
}

proc main() {
	p: Point = Point{3, 4}
	print(p.sum())
}
`)
	if len(diags.Diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diags)
	}
	if out != "7" {
		t.Fatalf("expected %q, got %q", "7", out)
	}
}
