package analysis

import (
	"sort"

	"github.com/pgls/pgls/diag"
)

// Registry holds the compile-time-known set of rules/providers and
// dispatches a single pass over a statement for a given Filter (spec §4.7).
type Registry struct {
	rules []Rule
}

// NewRegistry builds a Registry from the given rules. Production callers
// use Default(), which registers the representative rule/provider set
// SPEC_FULL.md §4.7 names; tests can build a Registry from a smaller set.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// Default returns the Registry wired with the representative rules and
// providers this repository ships: three safety lint rules, one stylistic
// lint rule, two completion providers, one hover provider, and one
// inlay-hints provider.
func Default() *Registry {
	return NewRegistry(
		BanDropColumn{},
		BanDropNotNull{},
		RequireConcurrentIndex{},
		BanCharType{},
		ColumnsProvider{},
		TablesProvider{},
		ColumnCommentProvider{},
		FunctionArgNamesProvider{},
	)
}

// Run dispatches ctx to every rule selected by f, in registration order,
// isolating panics per rule (spec §4.7, §7 "rule panic"). Signals carrying a
// span are ordered ascending by span start, ties broken by rule key; the
// caller is responsible for any further de-duplication across statements
// (spec §4.5 "de-duplicated by (span, category)").
func (r *Registry) Run(f Filter, ctx RuleContext) []Signal {
	var out []Signal
	var keys []RuleKey
	for _, rule := range r.rules {
		meta := rule.Meta()
		if !f.Matches(meta) {
			continue
		}
		signals := runOne(rule, meta, ctx)
		for range signals {
			keys = append(keys, meta.Key)
		}
		out = append(out, signals...)
	}
	sortSignals(out, keys)
	return out
}

// runOne invokes a single rule with panic isolation: a panicking rule
// contributes exactly one Error diagnostic tagged with its key and does not
// abort the rest of the pass (spec §4.7, §7).
func runOne(rule Rule, meta Meta, ctx RuleContext) (signals []Signal) {
	defer func() {
		if rec := recover(); rec != nil {
			d := diagnosticFromPanic(meta.Key, rec)
			signals = []Signal{{Diagnostic: &d}}
		}
	}()
	return rule.Run(ctx)
}

func sortSignals(signals []Signal, keys []RuleKey) {
	type indexed struct {
		sig Signal
		key RuleKey
		idx int
	}
	items := make([]indexed, len(signals))
	for i, s := range signals {
		items[i] = indexed{sig: s, key: keys[i], idx: i}
	}
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].sig.Span, items[j].sig.Span
		switch {
		case si == nil && sj == nil:
			return items[i].key.String() < items[j].key.String()
		case si == nil:
			return false
		case sj == nil:
			return true
		case si.Start != sj.Start:
			return si.Start < sj.Start
		default:
			return items[i].key.String() < items[j].key.String()
		}
	})
	for i, it := range items {
		signals[i] = it.sig
	}
}

// Diagnostics extracts just the Diagnostic payloads from a Run result,
// the shape pull_diagnostics (spec §4.5) returns to its caller.
func Diagnostics(signals []Signal) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, s := range signals {
		if s.Diagnostic != nil {
			out = append(out, *s.Diagnostic)
		}
	}
	return out
}
