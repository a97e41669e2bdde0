// Package diag defines the Diagnostic value type shared by every producer in
// the pipeline: the Scanner (fatal scan errors), the Splitter (recoverable
// split errors), the Statement Parser (strict-parse failures), and the
// Analysis Registry (lint/hover/completion signals, rule-panic isolation).
package diag

import "github.com/pgls/pgls/span"

// Severity mirrors the LSP DiagnosticSeverity plus a Fatal level the core
// uses internally to mean "the rest of this document's pipeline must stop".
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityError
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Advice is a structured fix-it hint attached to a Diagnostic, e.g. "add a
// CONCURRENTLY keyword" or "use DROP NOT NULL via two statements instead".
type Advice struct {
	Message string
	Span    *span.Range
}

// Diagnostic is a value object: aggregation across statements happens in the
// Workspace at query time, never inside the type itself.
type Diagnostic struct {
	Severity Severity
	// Category is a string path such as "syntax" or "lint/safety/banDropColumn".
	Category string
	Message  string
	Span     *span.Range
	Advices  []Advice
}

// Fatal builds a Fatal-severity Diagnostic, the shape Scanner failures use.
func Fatal(category, message string, sp *span.Range) Diagnostic {
	return Diagnostic{Severity: SeverityFatal, Category: category, Message: message, Span: sp}
}

// Error builds an Error-severity Diagnostic, the shape split/parse/rule-panic
// failures use.
func Error(category, message string, sp *span.Range) Diagnostic {
	return Diagnostic{Severity: SeverityError, Category: category, Message: message, Span: sp}
}

// Warning builds a Warning-severity Diagnostic, the shape advisory lint
// signals use (e.g. "this is safe but worth a second look").
func Warning(category, message string, sp *span.Range) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Category: category, Message: message, Span: sp}
}

// RulePanic builds the single Error diagnostic a panicking rule contributes,
// tagged with that rule's category path so callers can tell which rule to
// disable.
func RulePanic(category string, recovered any) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Category: category,
		Message:  "rule panicked: " + formatRecovered(recovered),
	}
}

func formatRecovered(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown panic"
}
