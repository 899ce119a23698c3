package engine

import "testing"

func TestLex(t *testing.T) {
	toks, err := lex("R1 + MAX(R2, 3.5) * -1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []tokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.kind)
	}
	want := []tokenKind{
		tokIdent, tokOp, tokIdent, tokLParen, tokIdent, tokComma, tokNumber, tokRParen,
		tokOp, tokOp, tokNumber, tokEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), toks)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got kind %d, want %d (%q)", i, kinds[i], want[i], toks[i].text)
		}
	}
}

func TestLexRejectsUnknownChar(t *testing.T) {
	if _, err := lex("R1 @ R2"); err == nil {
		t.Fatal("expected an error for an unrecognised character")
	}
}

func TestParseFormulaPrecedence(t *testing.T) {
	expr, err := ParseFormula("1 + 2 * 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := map[string][]float64{}
	tl := Timeline{Periods: 1, Year: []int{2024}}
	got := evalAtPeriod(expr, ctx, 0, newClusterState(), tl)
	if got != 7 {
		t.Errorf("1 + 2*3 should be 7, got %v", got)
	}
}

func TestParseFormulaPowerRightAssociative(t *testing.T) {
	// 2^3^2 should parse as 2^(3^2) = 2^9 = 512, not (2^3)^2 = 64.
	expr, err := ParseFormula("2^3^2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tl := Timeline{Periods: 1, Year: []int{2024}}
	got := evalAtPeriod(expr, map[string][]float64{}, 0, newClusterState(), tl)
	if got != 512 {
		t.Errorf("2^3^2 should be 512, got %v", got)
	}
}

func TestParseFormulaUnaryMinus(t *testing.T) {
	expr, err := ParseFormula("-R1 + 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := map[string][]float64{"R1": {3}}
	tl := Timeline{Periods: 1, Year: []int{2024}}
	got := evalAtPeriod(expr, ctx, 0, newClusterState(), tl)
	if got != 2 {
		t.Errorf("-R1+5 with R1=3 should be 2, got %v", got)
	}
}

func TestParseFormulaCallAndComparison(t *testing.T) {
	expr, err := ParseFormula("IF(R1 > 10, 1, 0)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tl := Timeline{Periods: 1, Year: []int{2024}}

	ctxHigh := map[string][]float64{"R1": {20}}
	if got := evalAtPeriod(expr, ctxHigh, 0, newClusterState(), tl); got != 1 {
		t.Errorf("expected 1 when R1>10, got %v", got)
	}

	ctxLow := map[string][]float64{"R1": {5}}
	if got := evalAtPeriod(expr, ctxLow, 0, newClusterState(), tl); got != 0 {
		t.Errorf("expected 0 when R1<=10, got %v", got)
	}
}

func TestParseFormulaParens(t *testing.T) {
	expr, err := ParseFormula("(1 + 2) * (3 - 1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tl := Timeline{Periods: 1, Year: []int{2024}}
	got := evalAtPeriod(expr, map[string][]float64{}, 0, newClusterState(), tl)
	if got != 6 {
		t.Errorf("(1+2)*(3-1) should be 6, got %v", got)
	}
}

func TestParseFormulaUnbalancedParens(t *testing.T) {
	if _, err := ParseFormula("(1 + 2"); err == nil {
		t.Fatal("expected an error for unbalanced parentheses")
	}
}

func TestParseFormulaTrailingTokens(t *testing.T) {
	if _, err := ParseFormula("1 + 2 3"); err == nil {
		t.Fatal("expected an error for trailing tokens")
	}
}
