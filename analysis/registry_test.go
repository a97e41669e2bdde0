package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/parser"
)

func diagOK() diag.Diagnostic {
	return diag.Error("lint/test/ok", "ok", nil)
}

func ctxFor(t *testing.T, sql string) RuleContext {
	t.Helper()
	return RuleContext{Path: "t.sql", Parse: parser.Parse(sql)}
}

func TestRegistry_Run_Deterministic(t *testing.T) {
	reg := Default()
	ctx := ctxFor(t, "ALTER TABLE accounts DROP COLUMN balance;")
	first := reg.Run(Filter{}, ctx)
	second := reg.Run(Filter{}, ctx)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Diagnostic, second[i].Diagnostic)
	}
}

func TestRegistry_Run_OrdersBySpanThenKey(t *testing.T) {
	reg := Default()
	ctx := ctxFor(t, "CREATE TABLE t (a char(1));")
	out := reg.Run(Filter{Categories: []Category{CategoryLint}}, ctx)
	require.NotEmpty(t, out)
	for i := 1; i < len(out); i++ {
		if out[i-1].Span == nil || out[i].Span == nil {
			continue
		}
		assert.LessOrEqual(t, out[i-1].Span.Start, out[i].Span.Start)
	}
}

func TestFilter_Skip_RemovesExactlyThatRulesSignals(t *testing.T) {
	reg := Default()
	ctx := ctxFor(t, "ALTER TABLE accounts DROP COLUMN balance;")

	withAll := Diagnostics(reg.Run(Filter{Categories: []Category{CategoryLint}}, ctx))
	withoutOne := Diagnostics(reg.Run(Filter{Categories: []Category{CategoryLint}, Skip: []string{"banDropColumn"}}, ctx))

	require.Equal(t, len(withAll), len(withoutOne)+1)
	for _, d := range withoutOne {
		assert.NotContains(t, d.Category, "banDropColumn")
	}
}

func TestFilter_Only_RunsExclusively(t *testing.T) {
	reg := Default()
	ctx := ctxFor(t, "ALTER TABLE accounts DROP COLUMN balance; ALTER TABLE accounts ALTER COLUMN id DROP NOT NULL;")
	out := Diagnostics(reg.Run(Filter{Only: []string{"banDropColumn"}}, ctx))
	for _, d := range out {
		assert.Contains(t, d.Category, "banDropColumn")
	}
}

type panicProvider struct{}

func (panicProvider) Meta() Meta {
	return Meta{Key: RuleKey{Category: CategoryLint, Group: "test", Name: "panicky"}}
}

func (panicProvider) Run(ctx RuleContext) []Signal {
	panic("boom")
}

type okProvider struct{}

func (okProvider) Meta() Meta {
	return Meta{Key: RuleKey{Category: CategoryLint, Group: "test", Name: "ok"}}
}

func (okProvider) Run(ctx RuleContext) []Signal {
	okDiag := diagOK()
	return []Signal{{Diagnostic: &okDiag}}
}

func TestRegistry_Run_IsolatesPanickingRule(t *testing.T) {
	reg := NewRegistry(panicProvider{}, okProvider{})
	ctx := ctxFor(t, "SELECT 1;")

	out := reg.Run(Filter{}, ctx)
	require.Len(t, out, 2)

	diags := Diagnostics(out)
	require.Len(t, diags, 2)

	var sawPanic, sawOK bool
	for _, d := range diags {
		if d.Category == "lint/test/panicky" {
			sawPanic = true
			assert.Contains(t, d.Message, "boom")
		}
		if d.Category == "lint/test/ok" {
			sawOK = true
		}
	}
	assert.True(t, sawPanic)
	assert.True(t, sawOK)
}
