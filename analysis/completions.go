package analysis

import "github.com/pgls/pgls/internal/ident"

// ColumnsProvider suggests column names for the tables a statement already
// references (spec §4.7 pseudo-category "completions"). It is a short,
// synchronous function pushing items into the signal slice, matching spec
// §9's "coroutine-style completion providers... retain that shape; do not
// introduce asynchrony for CPU-only work".
type ColumnsProvider struct{}

func (ColumnsProvider) Meta() Meta {
	return Meta{
		Key:     RuleKey{Category: CategoryCompletions, Group: "schema", Name: "columns"},
		Version: "1.0.0",
		Docs:    "Suggests columns of the tables referenced by the statement under the cursor.",
	}
}

func (ColumnsProvider) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil || ctx.Schema == nil {
		return nil
	}
	var signals []Signal
	seen := map[string]bool{}
	for _, tbl := range stmt.Tables {
		for _, col := range ctx.Schema.ColumnsOf(tbl.Schema, tbl.Name) {
			name := ident.TrimQuotes(col.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			signals = append(signals, Signal{
				Completion: &CompletionItem{Label: name, Detail: col.Type, Kind: "field"},
			})
		}
	}
	return signals
}

// TablesProvider suggests every table name in the current SchemaCache
// snapshot. It looks at neither the cursor position nor the statement text,
// so it makes the same suggestions wherever the completion is requested.
type TablesProvider struct{}

func (TablesProvider) Meta() Meta {
	return Meta{
		Key:     RuleKey{Category: CategoryCompletions, Group: "schema", Name: "tables"},
		Version: "1.0.0",
		Docs:    "Suggests table names from the live schema cache.",
	}
}

func (TablesProvider) Run(ctx RuleContext) []Signal {
	if ctx.Schema == nil {
		return nil
	}
	var signals []Signal
	for _, tbl := range ctx.Schema.Tables {
		signals = append(signals, Signal{
			Completion: &CompletionItem{Label: ident.TrimQuotes(tbl.Name), Detail: tbl.Schema, Kind: "table"},
		})
	}
	return signals
}
