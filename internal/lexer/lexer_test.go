package lexer

import (
	"strings"
	"testing"

	"github.com/arbor-lang/arbor/internal/diagnostics"
	"github.com/arbor-lang/arbor/internal/token"
)

func tokenize(t *testing.T, src string) []*token.Token {
	t.Helper()
	collector := diagnostics.New()
	l := New("test.ar", []byte(src), collector)
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error(s): %v", collector.Diags)
	}
	return toks
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
	}{
		{"func", token.FUNC},
		{"proc", token.PROC},
		{"struct", token.STRUCT},
		{"union", token.UNION},
		{"enum", token.ENUM},
		{"match", token.MATCH},
		{"switch", token.SWITCH},
		{"assert", token.ASSERT},
		{"print", token.PRINT},
		{"int32", token.INT32},
		{"float64", token.FLOAT64},
		{"(", token.LPAREN},
		{")", token.RPAREN},
		{"{", token.LBRACE},
		{"}", token.RBRACE},
		{"[", token.LBRACKET},
		{"]", token.RBRACKET},
		{"==", token.EQ},
		{"!=", token.NE},
		{"<=", token.LE},
		{">=", token.GE},
		{"&&", token.ANDAND},
		{"||", token.OROR},
		{"..", token.RANGE},
		{"<", token.LT},
		{">", token.GT},
		{"foo", token.IDENT},
	}
	for _, tt := range tests {
		toks := tokenize(t, tt.src)
		if toks[0].Kind != tt.kind {
			t.Errorf("%q: got %s, want %s", tt.src, toks[0].Kind, tt.kind)
		}
	}
}

func TestIntegerAndFloatDisambiguation(t *testing.T) {
	toks := tokenize(t, "15 1.5 0x1F 0b101")
	want := []token.Kind{token.INT_LIT, token.FLOAT_LIT, token.INT_LIT, token.INT_LIT, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[0].IntVal != 15 {
		t.Errorf("got %d, want 15", toks[0].IntVal)
	}
	if toks[1].FloatVal != 1.5 {
		t.Errorf("got %v, want 1.5", toks[1].FloatVal)
	}
	if toks[2].IntVal != 0x1F {
		t.Errorf("got %d, want 31", toks[2].IntVal)
	}
	if toks[3].IntVal != 0b101 {
		t.Errorf("got %d, want 5", toks[3].IntVal)
	}
}

func TestLeadingMinusIsNotPartOfLiteral(t *testing.T) {
	toks := tokenize(t, "-15")
	if toks[0].Kind != token.MINUS {
		t.Fatalf("got %s, want MINUS", toks[0].Kind)
	}
	if toks[1].Kind != token.INT_LIT || toks[1].IntVal != 15 {
		t.Fatalf("got %v, want INT_LIT(15)", toks[1])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := tokenize(t, `"a\nb\tc\\d\"e"`)
	got := string(toks[0].StringVal)
	want := "a\nb\tc\\d\"e"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCharLiteral(t *testing.T) {
	toks := tokenize(t, `'x' '\n'`)
	if toks[0].CharVal != 'x' {
		t.Errorf("got %q, want 'x'", toks[0].CharVal)
	}
	if toks[1].CharVal != '\n' {
		t.Errorf("got %q, want newline", toks[1].CharVal)
	}
}

func TestLineComment(t *testing.T) {
	toks := tokenize(t, "1 // comment\n2")
	if toks[0].IntVal != 1 || toks[1].IntVal != 2 {
		t.Fatalf("comment not skipped: %v", toks)
	}
}

func TestNestedBlockComment(t *testing.T) {
	toks := tokenize(t, "1 /* outer /* inner */ still comment */ 2")
	if toks[0].IntVal != 1 || toks[1].IntVal != 2 {
		t.Fatalf("nested block comment not handled: %v", toks)
	}
}

func TestUnterminatedBlockCommentIsLexError(t *testing.T) {
	collector := diagnostics.New()
	l := New("test.ar", []byte("1 /* never closed"), collector)
	_, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected lex error for unterminated block comment")
	}
}

func TestReservedTrailingUnderscoresRejected(t *testing.T) {
	collector := diagnostics.New()
	l := New("test.ar", []byte("foo__"), collector)
	_, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected lex error for reserved identifier")
	}
}

func TestPastEOFSentinel(t *testing.T) {
	toks := tokenize(t, "1")
	last := toks[len(toks)-1]
	if last.Kind != token.EOF {
		t.Fatalf("expected trailing EOF sentinel, got %s", last.Kind)
	}
}

func TestLexRoundTripProperty(t *testing.T) {
	srcs := []string{
		"func main() { print(1+2*3); }",
		"proc main() { int32 x = 10; }",
		"1.5 0x1F 0b101 \"hi\" 'c' == != <= >= && ||",
	}
	for _, src := range srcs {
		a := tokenize(t, src)
		var texts []string
		for _, tok := range a[:len(a)-1] {
			texts = append(texts, tok.Lexeme)
		}
		b := tokenize(t, strings.Join(texts, " "))
		if len(a) != len(b) {
			t.Fatalf("re-lex produced different token count for %q", src)
		}
		for i := range a {
			if a[i].Kind != b[i].Kind || a[i].Lexeme != b[i].Lexeme {
				t.Fatalf("re-lex mismatch at %d for %q: %v vs %v", i, src, a[i], b[i])
			}
		}
	}
}
