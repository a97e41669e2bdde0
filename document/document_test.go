package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgls/pgls/span"
)

func TestOpen_WholeFileRoundTrip(t *testing.T) {
	text := "select 1; select 2;"
	d := Open("f.sql", text, 1)
	assert.Equal(t, text, d.Text())
	require.Len(t, d.Positions(), 2)
}

func TestChange_WholeFileReplacement(t *testing.T) {
	d := Open("f.sql", "select 1;", 1)
	_, err := d.Change(2, []ChangeParam{{Text: "select 2; select 3;"}})
	require.NoError(t, err)
	assert.Equal(t, "select 2; select 3;", d.Text())
	assert.Len(t, d.Positions(), 2)
}

func TestChange_VersionRegressionRejected(t *testing.T) {
	d := Open("f.sql", "select 1;", 5)
	_, err := d.Change(4, []ChangeParam{{Text: "select 2;"}})
	assert.ErrorIs(t, err, ErrVersionRegression)
	assert.Equal(t, "select 1;", d.Text(), "rejected change must not mutate the document")
}

func TestChange_RangeSpliceMatchesPlainTextSplice(t *testing.T) {
	text := "select 1;\n\nselect 2;\n\nselect 3;"
	d := Open("f.sql", text, 1)
	r := span.Range{Start: 18, End: 19} // the '2'
	want := text[:r.Start] + "20" + text[r.End:]
	_, err := d.Change(2, []ChangeParam{{Range: &r, Text: "20"}})
	require.NoError(t, err)
	assert.Equal(t, want, d.Text())
}

// S5 — incremental edit reuses ids (spec §8 Document edit properties, §8 S5).
func TestChange_S5_IncrementalEditReusesIDs(t *testing.T) {
	text := "select 1;\n\nselect 2;\n\nselect 3;"
	d := Open("f.sql", text, 1)
	before := d.Positions()
	require.Len(t, before, 3)
	idA, idB, idC := before[0].ID, before[1].ID, before[2].ID

	idx := strings.Index(text, "2")
	r := span.Range{Start: idx, End: idx + 1}
	invalidated, err := d.Change(2, []ChangeParam{{Range: &r, Text: "20"}})
	require.NoError(t, err)

	after := d.Positions()
	require.Len(t, after, 3)
	assert.Equal(t, idA, after[0].ID)
	assert.Equal(t, idC, after[2].ID)
	assert.NotEqual(t, idB, after[1].ID)

	require.Len(t, invalidated, 1)
	assert.Equal(t, idB, invalidated[0])
}

func TestChange_EditWithinOneStatementChangesExactlyOneID(t *testing.T) {
	text := "select 1;\n\nselect 2;\n\nselect 3;"
	d := Open("f.sql", text, 1)
	before := d.Positions()

	idx := strings.Index(text, "select 2")
	r := span.Range{Start: idx + len("select "), End: idx + len("select 1")}
	_, err := d.Change(2, []ChangeParam{{Range: &r, Text: "20"}})
	require.NoError(t, err)

	after := d.Positions()
	require.Len(t, after, len(before))
	diffs := 0
	beforeIDs := map[StatementID]bool{}
	for _, p := range before {
		beforeIDs[p.ID] = true
	}
	for _, p := range after {
		if !beforeIDs[p.ID] {
			diffs++
		}
	}
	assert.Equal(t, 1, diffs)
}

func TestStatementText_DerivedFromCurrentDocumentText(t *testing.T) {
	d := Open("f.sql", "select 1; select 2;", 1)
	positions := d.Positions()
	require.Len(t, positions, 2)
	txt, ok := d.StatementText(positions[0].ID)
	require.True(t, ok)
	assert.Equal(t, "select 1;", txt)
}
