package analysis

import "github.com/pgls/pgls/internal/ident"

// ColumnCommentProvider surfaces catalog comments as hover content (spec
// §4.7 pseudo-category "hover"): one item for every column with a non-empty
// comment in each table the statement references. It does not consult the
// cursor position, so the items are not narrowed to the column under it.
type ColumnCommentProvider struct{}

func (ColumnCommentProvider) Meta() Meta {
	return Meta{
		Key:     RuleKey{Category: CategoryHover, Group: "schema", Name: "columnComment"},
		Version: "1.0.0",
		Docs:    "Shows a column's catalog comment on hover.",
	}
}

func (ColumnCommentProvider) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil || ctx.Schema == nil {
		return nil
	}
	var signals []Signal
	for _, tbl := range stmt.Tables {
		for _, col := range ctx.Schema.ColumnsOf(tbl.Schema, tbl.Name) {
			if col.Comment == "" {
				continue
			}
			signals = append(signals, Signal{
				Hover: &HoverContent{Text: ident.TrimQuotes(tbl.Name) + "." + ident.TrimQuotes(col.Name) + ": " + col.Comment},
			})
		}
	}
	return signals
}
