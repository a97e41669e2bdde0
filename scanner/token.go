// Package scanner produces a complete, gap-free token stream from raw SQL
// text (spec §4.1, component L). It never partially tokenizes: either every
// byte of the input is accounted for by exactly one token, or scanning fails
// with a Fatal diagnostic and no tokens are returned.
package scanner

import "github.com/pgls/pgls/span"

// Kind enumerates syntax kinds a Token can carry.
type Kind int

const (
	KindIdent Kind = iota
	KindQuotedIdent
	KindKeyword
	KindNumber
	KindString
	KindDollarString
	KindBitString
	KindHexString
	KindOperator
	KindPunct
	KindParam // $1, $2, ...

	// Synthetic kinds filling non-token spans.
	KindWhitespace
	KindNewline
	KindTab
	KindLineComment
	KindBlockComment
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "Ident"
	case KindQuotedIdent:
		return "QuotedIdent"
	case KindKeyword:
		return "Keyword"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindDollarString:
		return "DollarString"
	case KindBitString:
		return "BitString"
	case KindHexString:
		return "HexString"
	case KindOperator:
		return "Operator"
	case KindPunct:
		return "Punct"
	case KindParam:
		return "Param"
	case KindWhitespace:
		return "Whitespace"
	case KindNewline:
		return "Newline"
	case KindTab:
		return "Tab"
	case KindLineComment:
		return "LineComment"
	case KindBlockComment:
		return "BlockComment"
	case KindEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// IsTrivia reports whether the token kind is one of the synthetic
// whitespace/comment fillers rather than a real Postgres token.
func (k Kind) IsTrivia() bool {
	switch k {
	case KindWhitespace, KindNewline, KindTab, KindLineComment, KindBlockComment:
		return true
	default:
		return false
	}
}

// TokenType classifies a token's keyword category, mirroring the four
// Postgres keyword categories plus a catch-all for non-keywords. Synthetic
// trivia tokens always carry TypeWhitespace.
type TokenType int

const (
	TypeNoKeyword TokenType = iota
	TypeWhitespace
	TypeUnreservedKeyword
	TypeColNameKeyword
	TypeTypeFuncNameKeyword
	TypeReservedKeyword
)

// Token is a value object: produced on demand by Scan and never stored in
// the workspace directly (spec §3).
type Token struct {
	Kind      Kind
	Text      string
	Span      span.Range
	TokenType TokenType
}

// IsSignificant reports whether the token should be considered by the
// splitter's leading-keyword recognizer (i.e. it is not trivia).
func (t Token) IsSignificant() bool { return !t.Kind.IsTrivia() }

// KeywordEquals reports whether a significant token is the given keyword,
// case-insensitively, the way Postgres keyword matching works.
func (t Token) KeywordEquals(kw string) bool {
	if t.Kind != KindKeyword {
		return false
	}
	return equalFold(t.Text, kw)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
