package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgls/pgls/parser"
	"github.com/pgls/pgls/schemacache"
)

func snapshotWithAccounts() *schemacache.Snapshot {
	return &schemacache.Snapshot{
		Tables: []schemacache.Table{{Schema: "public", Name: "accounts"}},
		Columns: []schemacache.Column{
			{Schema: "public", Table: "accounts", Name: "id", Type: "integer", Comment: "primary key"},
			{Schema: "public", Table: "accounts", Name: "balance", Type: "numeric"},
		},
		Functions: []schemacache.Function{
			{Schema: "public", Name: "credit", ArgType: []schemacache.FunctionArg{
				{Name: "account_id", Type: "integer"},
				{Name: "amount", Type: "numeric"},
			}},
		},
	}
}

func TestColumnsProvider_SuggestsReferencedTableColumns(t *testing.T) {
	ctx := RuleContext{Parse: parser.Parse("SELECT * FROM accounts WHERE id = 1;"), Schema: snapshotWithAccounts()}
	out := ColumnsProvider{}.Run(ctx)
	require.NotEmpty(t, out)
	var labels []string
	for _, s := range out {
		require.NotNil(t, s.Completion)
		labels = append(labels, s.Completion.Label)
	}
	assert.Contains(t, labels, "id")
	assert.Contains(t, labels, "balance")
}

func TestTablesProvider_SuggestsAllCachedTables(t *testing.T) {
	ctx := RuleContext{Parse: parser.Parse("SELECT 1;"), Schema: snapshotWithAccounts()}
	out := TablesProvider{}.Run(ctx)
	require.Len(t, out, 1)
	assert.Equal(t, "accounts", out[0].Completion.Label)
}

func TestColumnCommentProvider_SurfacesCatalogComment(t *testing.T) {
	ctx := RuleContext{Parse: parser.Parse("SELECT id FROM accounts;"), Schema: snapshotWithAccounts()}
	out := ColumnCommentProvider{}.Run(ctx)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Hover.Text, "primary key")
}

func TestFunctionArgNamesProvider_AnnotatesPositionalArgs(t *testing.T) {
	ctx := RuleContext{Parse: parser.Parse("SELECT credit(1, 2.5);"), Schema: snapshotWithAccounts()}
	out := FunctionArgNamesProvider{}.Run(ctx)
	require.Len(t, out, 2)
	assert.Equal(t, "account_id => integer", out[0].InlayHint.Label)
	assert.Equal(t, "amount => numeric", out[1].InlayHint.Label)
}

func TestFunctionArgNamesProvider_UnknownFunctionYieldsNoHints(t *testing.T) {
	ctx := RuleContext{Parse: parser.Parse("SELECT mystery(1, 2);"), Schema: snapshotWithAccounts()}
	out := FunctionArgNamesProvider{}.Run(ctx)
	assert.Empty(t, out)
}
