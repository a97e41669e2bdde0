package analysis

import (
	"github.com/pgls/pgls/diag"
)

// BanDropColumn flags ALTER TABLE ... DROP COLUMN, the classic
// backwards-incompatible migration: dropping a column breaks any
// application code or view still reading it before the new deploy rolls
// out everywhere (grounded on original_source's squawk-derived
// ban-drop-column family of rules).
type BanDropColumn struct{}

func (BanDropColumn) Meta() Meta {
	return Meta{
		Key:         RuleKey{Category: CategoryLint, Group: "safety", Name: "banDropColumn"},
		Version:     "1.0.0",
		Recommended: true,
		Sources:     []string{"squawk:ban-drop-column"},
		Docs:        "Dropping a column is destructive and can break readers that haven't deployed the corresponding code change yet.",
	}
}

func (r BanDropColumn) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil {
		return nil
	}
	var signals []Signal
	for _, action := range stmt.DDLActions {
		if action.Type == "DropColumn" {
			d := diag.Error(r.Meta().Key.String(),
				"dropping a column is destructive; deploy readers of it first", nil)
			signals = append(signals, Signal{Diagnostic: &d})
		}
	}
	return signals
}

// BanDropNotNull flags ALTER TABLE ... ALTER COLUMN ... DROP NOT NULL,
// which silently widens a column's accepted values and can mask upstream
// bugs that were relying on the constraint.
type BanDropNotNull struct{}

func (BanDropNotNull) Meta() Meta {
	return Meta{
		Key:         RuleKey{Category: CategoryLint, Group: "safety", Name: "banDropNotNull"},
		Version:     "1.0.0",
		Recommended: false,
		Sources:     []string{"squawk:ban-drop-not-null"},
		Docs:        "Dropping a NOT NULL constraint widens what readers can assume about the column.",
	}
}

func (r BanDropNotNull) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil {
		return nil
	}
	var signals []Signal
	for _, action := range stmt.DDLActions {
		if action.Type == "DropNotNull" {
			d := diag.Error(r.Meta().Key.String(),
				"dropping a NOT NULL constraint removes a guarantee other code may rely on", nil)
			signals = append(signals, Signal{Diagnostic: &d})
		}
	}
	return signals
}

// RequireConcurrentIndex flags CREATE INDEX without CONCURRENTLY on an
// existing table: a plain CREATE INDEX takes a table-wide lock that blocks
// writes for the duration of the build (original_source's
// adding_required_field.rs is the closest sibling rule in that crate; this
// rule covers the equally common "require-concurrent-index" squawk check).
type RequireConcurrentIndex struct{}

func (RequireConcurrentIndex) Meta() Meta {
	return Meta{
		Key:         RuleKey{Category: CategoryLint, Group: "safety", Name: "requireConcurrentIndex"},
		Version:     "1.0.0",
		Recommended: true,
		Sources:     []string{"squawk:require-concurrent-index"},
		Docs:        "CREATE INDEX without CONCURRENTLY takes a table-wide lock; use CONCURRENTLY outside a transaction.",
	}
}

func (r RequireConcurrentIndex) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil {
		return nil
	}
	var signals []Signal
	for _, action := range stmt.DDLActions {
		if action.Type == "CREATE" && action.ObjectType == "INDEX" && !action.Concurrent {
			d := diag.Warning(r.Meta().Key.String(),
				"CREATE INDEX without CONCURRENTLY locks the table against writes", nil)
			signals = append(signals, Signal{Diagnostic: &d})
		}
	}
	return signals
}
