package lexer_test

import (
	"testing"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/lexer"
)

func tokenize(t *testing.T, src string) []lexer.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return tokens
}

func types(tokens []lexer.Token) []lexer.TokenType {
	out := make([]lexer.TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func expectTypes(t *testing.T, src string, want ...lexer.TokenType) {
	t.Helper()
	got := types(tokenize(t, src))
	want = append(want, lexer.TokEOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got %d tokens, want %d", src, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%q: token %d = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	expectTypes(t, "var x = foreach_", lexer.TokVar, lexer.TokIdent, lexer.TokAssign, lexer.TokIdent)
	expectTypes(t, "foreach x in xs", lexer.TokForEach, lexer.TokIdent, lexer.TokIn, lexer.TokIdent)
	expectTypes(t, "for i from 1 to 5 step 2 descending",
		lexer.TokFor, lexer.TokIdent, lexer.TokFrom, lexer.TokNumberLit, lexer.TokTo,
		lexer.TokNumberLit, lexer.TokStep, lexer.TokNumberLit, lexer.TokDescending)
}

func TestOperators(t *testing.T) {
	expectTypes(t, "a += 1", lexer.TokIdent, lexer.TokPlusEq, lexer.TokNumberLit)
	expectTypes(t, "a ++", lexer.TokIdent, lexer.TokPlusPlus)
	expectTypes(t, "a == b != c", lexer.TokIdent, lexer.TokEqEq, lexer.TokIdent, lexer.TokNeq, lexer.TokIdent)
	expectTypes(t, "x => x", lexer.TokIdent, lexer.TokArrow, lexer.TokIdent)
	expectTypes(t, "a <= b >= c", lexer.TokIdent, lexer.TokLtEq, lexer.TokIdent, lexer.TokGtEq, lexer.TokIdent)
	expectTypes(t, "a %= b", lexer.TokIdent, lexer.TokPercentEq, lexer.TokIdent)
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.25", "3.25"},
		{"1e3", "1e3"},
		{"2.5e-2", "2.5e-2"},
	}
	for _, tc := range cases {
		tokens := tokenize(t, tc.src)
		if tokens[0].Type != lexer.TokNumberLit || tokens[0].Value != tc.want {
			t.Errorf("%q: got %v %q", tc.src, tokens[0].Type, tokens[0].Value)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	tokens := tokenize(t, `"hello\nworld"`)
	if tokens[0].Value != "hello\nworld" {
		t.Errorf("value = %q", tokens[0].Value)
	}

	tokens = tokenize(t, `"ABC \"quoted\""`)
	if tokens[0].Value != `ABC "quoted"` {
		t.Errorf("escapes = %q", tokens[0].Value)
	}
}

func TestComments(t *testing.T) {
	expectTypes(t, "a // the rest vanishes\nb", lexer.TokIdent, lexer.TokIdent)
}

func TestSpans(t *testing.T) {
	tokens := tokenize(t, "ab\n  cd")
	if tokens[0].Span.StartLine != 1 || tokens[0].Span.StartCol != 1 {
		t.Errorf("first span = %+v", tokens[0].Span)
	}
	if tokens[1].Span.StartLine != 2 || tokens[1].Span.StartCol != 3 {
		t.Errorf("second span = %+v", tokens[1].Span)
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diagnostics.Code
	}{
		{`"unterminated`, diagnostics.UnterminatedString},
		{`"bad \q escape"`, diagnostics.InvalidEscape},
		{"1e", diagnostics.MalformedNumber},
		{"12abc", diagnostics.MalformedNumber},
		{"@", diagnostics.UnexpectedCharacter},
	}
	for _, tc := range cases {
		_, err := lexer.Tokenize(tc.src)
		if err == nil {
			t.Errorf("%q: expected error", tc.src)
			continue
		}
		le, ok := err.(*lexer.LexError)
		if !ok {
			t.Errorf("%q: error type %T", tc.src, err)
			continue
		}
		if le.Diag.Code != tc.code {
			t.Errorf("%q: code = %s, want %s", tc.src, le.Diag.Code, tc.code)
		}
	}
}
