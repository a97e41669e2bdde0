package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_ConcatenationReproducesInput(t *testing.T) {
	inputs := []string{
		"",
		"select 1 from contact; select 1;",
		"select 1 from contact\n\nselect 1\n\nselect 3",
		"with c as (insert into t(id) values (1)) select * from c;",
		"select $1, $2 from t where a = 'it''s'",
		"select $$hi there$$, e'\\n'",
		"-- leading comment\nselect /* inline */ 1",
	}
	for _, in := range inputs {
		toks, diags := Scan(in)
		require.Empty(t, diags, "input: %q", in)
		var b strings.Builder
		for _, tok := range toks {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, in, b.String(), "input: %q", in)
	}
}

func TestScan_TokensAreSortedAndAdjacent(t *testing.T) {
	toks, diags := Scan("select 1 from contact;")
	require.Empty(t, diags)
	for i := 1; i < len(toks); i++ {
		assert.Equal(t, toks[i-1].Span.End, toks[i].Span.Start)
		assert.LessOrEqual(t, toks[i-1].Span.Start, toks[i].Span.Start)
	}
	assert.Equal(t, KindEOF, toks[len(toks)-1].Kind)
}

func TestScan_WhitespaceTokenType(t *testing.T) {
	toks, diags := Scan("select\n\t 1")
	require.Empty(t, diags)
	for _, tok := range toks {
		if tok.Kind.IsTrivia() {
			assert.Equal(t, TypeWhitespace, tok.TokenType)
		}
	}
}

func TestScan_BlankLineNewlineTextHasTwoLineFeeds(t *testing.T) {
	toks, diags := Scan("select 1\n\nselect 2")
	require.Empty(t, diags)
	found := false
	for _, tok := range toks {
		if tok.Kind == KindNewline && strings.Count(tok.Text, "\n") >= 2 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestScan_KeywordClassification(t *testing.T) {
	toks, diags := Scan("SELECT a FROM b")
	require.Empty(t, diags)
	var kinds []Kind
	var types []TokenType
	for _, tok := range toks {
		if tok.Kind.IsTrivia() || tok.Kind == KindEOF {
			continue
		}
		kinds = append(kinds, tok.Kind)
		types = append(types, tok.TokenType)
	}
	require.Len(t, kinds, 4) // SELECT a FROM b
	assert.Equal(t, KindKeyword, kinds[0])
	assert.Equal(t, TypeReservedKeyword, types[0])
	assert.Equal(t, KindIdent, kinds[1])
	assert.Equal(t, KindKeyword, kinds[2])
	assert.Equal(t, TypeReservedKeyword, types[2])
}

func TestScan_UnterminatedStringIsFatal(t *testing.T) {
	toks, diags := Scan("select 'unterminated")
	assert.Nil(t, toks)
	require.Len(t, diags, 1)
	assert.Equal(t, "scan", diags[0].Category)
}

func TestScan_DollarQuotedBody(t *testing.T) {
	toks, diags := Scan("select $tag$a;b$tag$")
	require.Empty(t, diags)
	var found bool
	for _, tok := range toks {
		if tok.Kind == KindDollarString {
			found = true
			assert.Equal(t, "$tag$a;b$tag$", tok.Text)
		}
	}
	assert.True(t, found)
}

func TestScan_ParamPlaceholder(t *testing.T) {
	toks, _ := Scan("select $1")
	var found bool
	for _, tok := range toks {
		if tok.Kind == KindParam {
			found = true
			assert.Equal(t, "$1", tok.Text)
		}
	}
	assert.True(t, found)
}

// TestScan_KeywordKindComesFromRealScanner exercises a keyword from each of
// the four Postgres keyword_kind categories (reserved: SELECT, unreserved:
// INDEX, col_name: INTERVAL, type_func_name: LEFT) to confirm classification
// is read straight from pg_query.Scan rather than a hand-maintained table.
func TestScan_KeywordKindComesFromRealScanner(t *testing.T) {
	toks, diags := Scan("select interval left index")
	require.Empty(t, diags)
	want := map[string]TokenType{
		"select":   TypeReservedKeyword,
		"interval": TypeColNameKeyword,
		"left":     TypeTypeFuncNameKeyword,
		"index":    TypeUnreservedKeyword,
	}
	seen := map[string]TokenType{}
	for _, tok := range toks {
		if tok.Kind != KindKeyword {
			continue
		}
		seen[strings.ToLower(tok.Text)] = tok.TokenType
	}
	for word, tt := range want {
		assert.Equal(t, tt, seen[word], "keyword %q", word)
	}
}

func TestScan_CommentsAreTrivia(t *testing.T) {
	toks, diags := Scan("select 1 -- trailing\n, 2 /* block */ from t")
	require.Empty(t, diags)
	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind == KindLineComment || tok.Kind == KindBlockComment {
			kinds = append(kinds, tok.Kind)
			assert.True(t, tok.Kind.IsTrivia())
			assert.Equal(t, TypeWhitespace, tok.TokenType)
		}
	}
	assert.Equal(t, []Kind{KindLineComment, KindBlockComment}, kinds)
}
