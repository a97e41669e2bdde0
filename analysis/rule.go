// Package analysis implements the Analysis Registry (spec §4.7, component
// R): a compile-time-known set of rules grouped into groups and categories,
// filtered by a Filter, and dispatched over a statement's parsed artifacts
// to produce diagnostics, completion items, hover content, or inlay hints.
package analysis

import (
	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/parser"
	"github.com/pgls/pgls/schemacache"
	"github.com/pgls/pgls/span"
)

// Category is one of the pseudo-categories the Registry dispatches over.
// "lint" is the only category that produces Diagnostics directly; the
// others are pseudo-categories for completion/hover/inlay-hint providers
// (spec §4.7).
type Category string

const (
	CategoryLint        Category = "lint"
	CategoryCompletions Category = "completions"
	CategoryHover       Category = "hover"
	CategoryInlayHints  Category = "inlayHints"
)

// RuleKey identifies a rule independently of its Go type, so options can be
// resolved from the workspace's settings tree by (group, name) rather than
// by reflecting over the rule's concrete type (spec §9 "dynamic dispatch
// over rules").
type RuleKey struct {
	Category Category
	Group    string
	Name     string
}

// String renders a RuleKey as the dotted category path used in
// Diagnostic.Category, e.g. "lint/safety/banDropColumn".
func (k RuleKey) String() string {
	return string(k.Category) + "/" + k.Group + "/" + k.Name
}

// Meta is a rule or provider's static metadata, independent of its options
// type (spec §4.7: "name, version, recommended flag, sources,
// documentation").
type Meta struct {
	Key         RuleKey
	Version     string
	Recommended bool
	Sources     []string
	Docs        string
}

// Signal is one output of a rule/provider pass. Exactly one of Diagnostic,
// Completion, Hover, or InlayHint is set: the one matching the producing
// rule's Category, except that the signal standing in for a panicking rule
// carries a Diagnostic whatever the category. Boxing every kind of output
// behind one struct lets the Registry sort and dispatch uniformly regardless
// of category; de-duplication is left to the caller.
type Signal struct {
	Span       *span.Range
	Diagnostic *diag.Diagnostic
	Completion *CompletionItem
	Hover      *HoverContent
	InlayHint  *InlayHint
}

// CompletionItem is one suggestion from a completions provider.
type CompletionItem struct {
	Label  string
	Detail string
	Kind   string
}

// HoverContent is the content a hover provider attaches to a span.
type HoverContent struct {
	Text string
}

// InlayHint is one inline annotation from an inlay-hints provider.
type InlayHint struct {
	Label string
}

// RuleContext carries everything a Rule needs to run over one statement
// (spec §4.7 "Dispatch"): its parsed artifacts, the file path, resolved
// options, and a handle to the current SchemaCache snapshot.
type RuleContext struct {
	Path    string
	Parse   parser.ParseResult
	Cursor  int // byte offset, meaningful only to completion/hover providers
	Options map[string]any
	Schema  *schemacache.Snapshot
}

// Rule is the interface every lint rule, completion provider, hover
// provider, and inlay-hint provider implements. Options are boxed as a
// generic map rather than a type parameter so the Registry can hold a
// homogeneous slice of heterogeneous rules (spec §9 "dynamic dispatch over
// rules").
type Rule interface {
	Meta() Meta
	Run(ctx RuleContext) []Signal
}

// diagnosticFromPanic builds the single Error diagnostic a panicking rule
// contributes, tagged with that rule's key (spec §4.7, §7 "rule panic").
func diagnosticFromPanic(key RuleKey, recovered any) diag.Diagnostic {
	return diag.RulePanic(key.String(), recovered)
}
