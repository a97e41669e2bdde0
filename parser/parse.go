// Package parser implements the Statement Parser (spec §4.3, component P):
// for one statement's text it produces a strict AST via the real Postgres
// grammar (pg_query_go) and a permissive CST via tree-sitter, independently
// of one another, never panicking.
package parser

import (
	"fmt"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/span"
)

// ParseResult is the output of parsing a single statement: the strict AST
// (absent if the grammar rejected the text), the permissive CST (absent if
// the embedded grammar panicked, could not be loaded, or returned no tree),
// and any diagnostics from either parse.
type ParseResult struct {
	Strict      *StrictStatement
	Permissive  *CST
	Diagnostics []diag.Diagnostic
}

// Parse runs both grammars over text. Neither parse's failure suppresses the
// other: if the strict grammar rejects the input, Diagnostics carries one
// "syntax" Error while Permissive is still attempted and normally succeeds,
// and vice versa. A panic from either embedded grammar is recovered and
// turned into a single whole-input Error diagnostic (spec §4.3).
func Parse(text string) ParseResult {
	var diags []diag.Diagnostic
	strict := safeParseStrict(text, &diags)
	permissive := safeParsePermissive(text, &diags)
	return ParseResult{Strict: strict, Permissive: permissive, Diagnostics: diags}
}

func safeParseStrict(text string, diags *[]diag.Diagnostic) (result *StrictStatement) {
	defer func() {
		if r := recover(); r != nil {
			*diags = append(*diags, panicDiagnostic("strict", text, r))
			result = nil
		}
	}()
	stmt, d := ParseStrict(text)
	if d != nil {
		*diags = append(*diags, *d)
	}
	return stmt
}

func safeParsePermissive(text string, diags *[]diag.Diagnostic) (result *CST) {
	defer func() {
		if r := recover(); r != nil {
			*diags = append(*diags, panicDiagnostic("syntax", text, r))
			result = nil
		}
	}()
	cst, d := ParsePermissive(text)
	*diags = append(*diags, d...)
	return cst
}

func panicDiagnostic(category, text string, recovered any) diag.Diagnostic {
	sp := span.New(0, len(text))
	return diag.Error(category, fmt.Sprintf("parser panicked: %v", recovered), &sp)
}
