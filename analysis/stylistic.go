package analysis

import (
	"strings"

	"github.com/pgls/pgls/diag"
)

// BanCharType flags columns declared as char(n)/character(n) in a CREATE
// TABLE: Postgres's fixed-width char type pads values with trailing spaces
// on read, a footgun most schemas want varchar or text instead.
type BanCharType struct{}

func (BanCharType) Meta() Meta {
	return Meta{
		Key:         RuleKey{Category: CategoryLint, Group: "stylistic", Name: "banCharType"},
		Version:     "1.0.0",
		Recommended: false,
		Sources:     []string{"squawk:ban-char-type"},
		Docs:        "char(n) pads values with trailing spaces; prefer text or varchar(n).",
	}
}

func (r BanCharType) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil {
		return nil
	}
	var signals []Signal
	for _, action := range stmt.DDLActions {
		if action.ObjectType != "TABLE" {
			continue
		}
		for _, col := range action.Columns {
			t := strings.ToLower(col.Type)
			if idx := strings.LastIndex(t, "."); idx >= 0 {
				t = t[idx+1:]
			}
			if t == "char" || t == "character" || t == "bpchar" {
				d := diag.Warning(r.Meta().Key.String(),
					"column \""+col.Name+"\" uses char, which pads with trailing spaces; prefer text or varchar", nil)
				signals = append(signals, Signal{Diagnostic: &d})
			}
		}
	}
	return signals
}
