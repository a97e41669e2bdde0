package scanner

import (
	"sort"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/span"
)

// Scan tokenizes text into a gap-free token stream. Every byte of text
// belongs to exactly one token; adjacent token spans touch; concatenating
// every token's Text reproduces text exactly. The significant tokens come
// from pg_query.Scan, a wrapper around libpg_query's own scanner, so keyword
// classification is the genuine Postgres keyword_kind rather than a
// hand-maintained table; the runs between those tokens (and before the
// first/after the last) are filled in with synthetic whitespace/comment
// tokens, since libpg_query's scanner discards trivia instead of returning
// it. If the underlying Postgres tokenizer hits a lexical error (an
// unterminated string, an invalid dollar-quote tag, ...), Scan returns a
// single Fatal diagnostic and no tokens, per spec §4.1.
func Scan(text string) ([]Token, []diag.Diagnostic) {
	result, err := pg_query.Scan(text)
	if err != nil {
		sp := locateNearToken(err.Error(), text)
		if sp == nil {
			full := span.Range{Start: 0, End: len(text)}
			sp = &full
		}
		return nil, []diag.Diagnostic{diag.Fatal("scan", err.Error(), sp)}
	}

	real := make([]Token, 0, len(result.GetTokens()))
	for _, t := range result.GetTokens() {
		start, end := int(t.GetStart()), int(t.GetEnd())
		if start < 0 || end < start || end > len(text) {
			continue
		}
		raw := text[start:end]
		kind, tt := classify(t, raw)
		real = append(real, Token{Kind: kind, Text: raw, Span: span.Range{Start: start, End: end}, TokenType: tt})
	}
	sort.Slice(real, func(i, j int) bool { return real[i].Span.Start < real[j].Span.Start })

	tokens, scanErr := fillGaps(text, real)
	if scanErr != nil {
		return nil, []diag.Diagnostic{diag.Fatal("scan", scanErr.message, &scanErr.span)}
	}
	tokens = append(tokens, Token{
		Kind: KindEOF,
		Span: span.Range{Start: len(text), End: len(text)},
	})
	return tokens, nil
}

// classify maps one of pg_query.Scan's real tokens onto this package's Kind
// and TokenType. A non-NO_KEYWORD keyword_kind always wins (that is the
// genuine Postgres keyword classification spec §4.1 asks for); everything
// else is told apart by the scanner's own token name and, where that alone
// is ambiguous (a dollar-quoted string reduces to the same SCONST token as
// a quoted one), by the leading byte of the token's raw text.
func classify(t *pg_query.ScanToken, raw string) (Kind, TokenType) {
	if kk := t.GetKeywordKind(); kk != pg_query.KeywordKind_NO_KEYWORD {
		return KindKeyword, keywordType(kk)
	}
	switch word := t.GetToken().String(); {
	case strings.Contains(word, "COMMENT"):
		if strings.HasPrefix(raw, "--") {
			return KindLineComment, TypeWhitespace
		}
		return KindBlockComment, TypeWhitespace
	case word == "IDENT" || word == "UIDENT":
		if strings.HasPrefix(raw, `"`) || strings.HasPrefix(strings.ToLower(raw), "u&\"") {
			return KindQuotedIdent, TypeNoKeyword
		}
		return KindIdent, TypeNoKeyword
	case word == "FCONST" || word == "ICONST":
		return KindNumber, TypeNoKeyword
	case word == "SCONST":
		if strings.HasPrefix(raw, "$") {
			return KindDollarString, TypeNoKeyword
		}
		return KindString, TypeNoKeyword
	case word == "BCONST":
		return KindBitString, TypeNoKeyword
	case word == "XCONST":
		return KindHexString, TypeNoKeyword
	case word == "PARAM":
		return KindParam, TypeNoKeyword
	default:
		if isOperatorText(raw) {
			return KindOperator, TypeNoKeyword
		}
		return KindPunct, TypeNoKeyword
	}
}

func keywordType(k pg_query.KeywordKind) TokenType {
	switch k {
	case pg_query.KeywordKind_UNRESERVED_KEYWORD:
		return TypeUnreservedKeyword
	case pg_query.KeywordKind_COL_NAME_KEYWORD:
		return TypeColNameKeyword
	case pg_query.KeywordKind_TYPE_FUNC_NAME_KEYWORD:
		return TypeTypeFuncNameKeyword
	case pg_query.KeywordKind_RESERVED_KEYWORD:
		return TypeReservedKeyword
	default:
		return TypeNoKeyword
	}
}

// isOperatorText tells an operator lexeme from a single-character punct
// lexeme; multi-byte lexemes pg_query.Scan doesn't name distinctly (e.g. a
// custom operator made of operator characters) are always operators.
func isOperatorText(s string) bool {
	if s == "" {
		return false
	}
	if len(s) > 1 {
		return true
	}
	return strings.ContainsRune("+-*/<>=~!@#%^&|`?", rune(s[0]))
}

type scanError struct {
	message string
	span    span.Range
}

func (e *scanError) Error() string { return e.message }

// fillGaps walks real in order and synthesizes whitespace/comment tokens for
// every byte range real doesn't cover, preserving the gap-free-token-stream
// invariant.
func fillGaps(text string, real []Token) ([]Token, *scanError) {
	out := make([]Token, 0, len(real)*2+1)
	pos := 0
	for _, tok := range real {
		if tok.Span.Start > pos {
			trivia, err := scanTriviaRun(text, pos, tok.Span.Start)
			if err != nil {
				return nil, err
			}
			out = append(out, trivia...)
		}
		if tok.Span.Start < pos {
			continue // overlaps a token already emitted; drop it.
		}
		out = append(out, tok)
		if tok.Span.End > pos {
			pos = tok.Span.End
		}
	}
	if pos < len(text) {
		trivia, err := scanTriviaRun(text, pos, len(text))
		if err != nil {
			return nil, err
		}
		out = append(out, trivia...)
	}
	return out, nil
}

// scanTriviaRun fills [start, limit) with one or more synthetic trivia
// tokens. This range lies between two real Postgres tokens (or before the
// first/after the last), so libpg_query has already accepted the input as a
// whole; a byte this function doesn't recognize as whitespace or a comment
// opener is still emitted, as a single opaque whitespace byte, rather than
// failing the scan.
func scanTriviaRun(text string, start, limit int) ([]Token, *scanError) {
	var toks []Token
	pos := start
	for pos < limit {
		tok, next, err := scanTriviaToken(text, pos, limit)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		pos = next
	}
	return toks, nil
}

func scanTriviaToken(text string, pos, limit int) (Token, int, *scanError) {
	c := text[pos]
	switch {
	case c == ' ':
		end := pos
		for end < limit && text[end] == ' ' {
			end++
		}
		return triviaToken(KindWhitespace, text, pos, end), end, nil
	case c == '\t':
		end := pos
		for end < limit && text[end] == '\t' {
			end++
		}
		return triviaToken(KindTab, text, pos, end), end, nil
	case c == '\f' || c == '\v':
		end := pos
		for end < limit && (text[end] == '\f' || text[end] == '\v') {
			end++
		}
		return triviaToken(KindWhitespace, text, pos, end), end, nil
	case c == '\n' || c == '\r':
		end := pos
		for end < limit {
			switch {
			case text[end] == '\n':
				end++
			case text[end] == '\r' && end+1 < limit && text[end+1] == '\n':
				end += 2
			case text[end] == '\r':
				end++
			default:
				return triviaToken(KindNewline, text, pos, end), end, nil
			}
		}
		return triviaToken(KindNewline, text, pos, end), end, nil
	case c == '-' && pos+1 < limit && text[pos+1] == '-':
		end := pos
		for end < limit && text[end] != '\n' {
			end++
		}
		return triviaToken(KindLineComment, text, pos, end), end, nil
	case c == '/' && pos+1 < limit && text[pos+1] == '*':
		end := findBlockCommentEnd(text, pos, limit)
		if end < 0 {
			return Token{}, 0, &scanError{message: "unterminated block comment", span: span.Range{Start: pos, End: limit}}
		}
		return triviaToken(KindBlockComment, text, pos, end), end, nil
	default:
		end := pos + 1
		return triviaToken(KindWhitespace, text, pos, end), end, nil
	}
}

func triviaToken(kind Kind, text string, start, end int) Token {
	return Token{
		Kind:      kind,
		Text:      text[start:end],
		Span:      span.Range{Start: start, End: end},
		TokenType: TypeWhitespace,
	}
}

func findBlockCommentEnd(text string, start, limit int) int {
	depth := 0
	i := start
	for i < limit {
		switch {
		case i+1 < limit && text[i] == '/' && text[i+1] == '*':
			depth++
			i += 2
		case i+1 < limit && text[i] == '*' && text[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// locateNearToken extracts libpg_query's `at or near "X"` cursor marker from
// a scan error message and locates X's first occurrence in text, the same
// way parser.ParseStrict locates its own syntax errors (spec §4.3); kept as
// a small local copy rather than an import since the Scanner sits below the
// Parser in this module's layering.
func locateNearToken(message, text string) *span.Range {
	const marker = "at or near \""
	idx := strings.Index(message, marker)
	if idx < 0 {
		return nil
	}
	rest := message[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return nil
	}
	token := rest[:end]
	if token == "" {
		return nil
	}
	pos := strings.Index(text, token)
	if pos < 0 {
		return nil
	}
	sp := span.New(pos, pos+len(token))
	return &sp
}
