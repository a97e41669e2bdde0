package workspace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgls/pgls/analysis"
	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/document"
	"github.com/pgls/pgls/span"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return New(ServerInfo{Name: "pgls", Version: "test"})
}

func TestWorkspace_OpenCloseFile(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "SELECT 1;", 1))

	text, err := w.GetFileContent("a.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", text)

	require.NoError(t, w.CloseFile("a.sql"))
	_, err = w.GetFileContent("a.sql")
	require.Error(t, err)
	assert.True(t, errors.Is(err, Sentinel(NotFound)))
}

func TestWorkspace_CloseFile_NotOpenReturnsNotFound(t *testing.T) {
	w := newTestWorkspace(t)
	err := w.CloseFile("missing.sql")
	require.Error(t, err)
	assert.True(t, errors.Is(err, Sentinel(NotFound)))
}

func TestWorkspace_OpenFile_RejectsIgnoredPath(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.UpdateSettings([]byte(`{"files": {"ignore": ["vendor/**"]}}`)))
	err := w.OpenFile("vendor/thing.sql", "SELECT 1;", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, Sentinel(FileIgnored)))
}

func TestWorkspace_OpenFile_RejectsOversizedFile(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.UpdateSettings([]byte(`{"files": {"maxSize": 4}}`)))
	err := w.OpenFile("big.sql", "SELECT 1;", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, Sentinel(FileTooLarge)))
}

func TestWorkspace_ChangeFile_VersionRegressionErrors(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "SELECT 1;", 5))
	err := w.ChangeFile("a.sql", 1, []document.ChangeParam{{Text: "SELECT 2;"}})
	require.Error(t, err)
}

func TestWorkspace_ChangeFile_AppliesRangeEdit(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "SELECT 1;", 1))
	sp := span.New(7, 8)
	require.NoError(t, w.ChangeFile("a.sql", 2, []document.ChangeParam{{Range: &sp, Text: "2"}}))
	text, err := w.GetFileContent("a.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2;", text)
}

func TestWorkspace_PullDiagnostics_FlagsDropColumn(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "ALTER TABLE accounts DROP COLUMN balance;", 1))
	diags, err := w.PullDiagnostics("a.sql", nil, nil, nil)
	require.NoError(t, err)
	var found bool
	for _, d := range diags {
		if d.Category == "lint/safety/banDropColumn" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestWorkspace_PullDiagnostics_UnknownFileErrors(t *testing.T) {
	w := newTestWorkspace(t)
	_, err := w.PullDiagnostics("missing.sql", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, Sentinel(NotFound)))
}

func TestWorkspace_PullDiagnostics_SkipExcludesRule(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "ALTER TABLE accounts DROP COLUMN balance;", 1))
	diags, err := w.PullDiagnostics("a.sql", nil, nil, []string{"banDropColumn"})
	require.NoError(t, err)
	for _, d := range diags {
		assert.NotEqual(t, "lint/safety/banDropColumn", d.Category)
	}
}

func TestWorkspace_PullDiagnostics_OnlyRestrictsToNamedRule(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql",
		"ALTER TABLE accounts DROP COLUMN balance; ALTER TABLE accounts ALTER COLUMN balance DROP NOT NULL;", 1))
	diags, err := w.PullDiagnostics("a.sql", nil, []string{"banDropColumn"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Equal(t, "lint/safety/banDropColumn", d.Category)
	}
}

func TestWorkspace_PullDiagnostics_DedupesBySpanAndCategory(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "ALTER TABLE accounts DROP COLUMN balance;", 1))
	diags, err := w.PullDiagnostics("a.sql", nil, nil, nil)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, d := range diags {
		key := d.Category
		if d.Span != nil {
			key = fmt.Sprintf("%s@%d-%d", d.Category, d.Span.Start, d.Span.End)
		}
		assert.False(t, seen[key], "duplicate diagnostic for %s", key)
		seen[key] = true
	}
}

// capturingRule records the RuleContext it was run with, so tests can
// inspect what runAtOffset built without needing a real schema-backed
// provider to produce observable output.
type capturingRule struct {
	category analysis.Category
	captured *analysis.RuleContext
}

func (r capturingRule) Meta() analysis.Meta {
	return analysis.Meta{Key: analysis.RuleKey{Category: r.category, Group: "test", Name: "capture"}}
}

func (r capturingRule) Run(ctx analysis.RuleContext) []analysis.Signal {
	*r.captured = ctx
	return nil
}

func TestWorkspace_GetCompletions_SynthesizesContextBetweenStatements(t *testing.T) {
	w := newTestWorkspace(t)
	text := "SELECT 1;  SELECT 2"
	require.NoError(t, w.OpenFile("a.sql", text, 1))

	var captured analysis.RuleContext
	w.registry = analysis.NewRegistry(capturingRule{category: analysis.CategoryCompletions, captured: &captured})

	gapOffset := 10 // inside the whitespace between the two statements
	for _, pos := range w.documents["a.sql"].Positions() {
		require.False(t, pos.Range.Contains(gapOffset), "fixture offset must fall in a gap")
		require.NotEqual(t, gapOffset, pos.Range.End)
	}

	_, err := w.GetCompletions("a.sql", gapOffset)
	require.NoError(t, err)
	assert.Equal(t, 1, captured.Cursor) // one byte into the synthesized " " span text[9:10]
}

func TestWorkspace_GetCompletions_SynthesizesContextAtUnterminatedEOF(t *testing.T) {
	w := newTestWorkspace(t)
	// No trailing ';': the lone statement ends at len(text) == 22. Offset 23
	// lies past that end, so no statement covers it and runAtOffset
	// synthesizes a context (clamped to the empty text at EOF); it must
	// still return without error instead of silently dropping completions.
	require.NoError(t, w.OpenFile("a.sql", "SELECT * FROM accounts", 1))
	items, err := w.GetCompletions("a.sql", 23)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWorkspace_PullCodeActions_OnlyReturnsAdvicesNearPosition(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "SELECT 1;", 1))
	w.registry = analysis.NewRegistry(adviceRule{})

	near, err := w.PullCodeActions("a.sql", 3)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "fix near", near[0].Message)

	far, err := w.PullCodeActions("a.sql", 22)
	require.NoError(t, err)
	require.Len(t, far, 1)
	assert.Equal(t, "fix far", far[0].Message)

	none, err := w.PullCodeActions("a.sql", 12)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// adviceRule always contributes two fixed-span diagnostics with distinct
// Advices, regardless of the statement it is run over, so PullCodeActions'
// position filtering can be exercised without a schema-backed rule.
type adviceRule struct{}

func (adviceRule) Meta() analysis.Meta {
	return analysis.Meta{Key: analysis.RuleKey{Category: analysis.CategoryLint, Group: "test", Name: "advice"}}
}

func (adviceRule) Run(analysis.RuleContext) []analysis.Signal {
	near := span.New(0, 6)
	far := span.New(20, 26)
	dNear := diag.Error("lint/test/advice", "near", &near)
	dNear.Advices = []diag.Advice{{Message: "fix near"}}
	dFar := diag.Error("lint/test/advice", "far", &far)
	dFar.Advices = []diag.Advice{{Message: "fix far"}}
	return []analysis.Signal{{Diagnostic: &dNear}, {Diagnostic: &dFar}}
}

func TestWorkspace_GetCompletions_SuggestsNothingWithoutSchema(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenFile("a.sql", "SELECT * FROM accounts;", 1))
	items, err := w.GetCompletions("a.sql", 9)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWorkspace_IsPathIgnored(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.UpdateSettings([]byte(`{"files": {"ignore": ["**/*.tmp.sql"]}}`)))
	assert.True(t, w.IsPathIgnored("migrations/x.tmp.sql"))
	assert.False(t, w.IsPathIgnored("migrations/x.sql"))
}

func TestWorkspace_ServerInfo(t *testing.T) {
	w := newTestWorkspace(t)
	info := w.ServerInfo()
	assert.Equal(t, "pgls", info.Name)
}
