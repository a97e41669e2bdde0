package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermissive_ValidStatement(t *testing.T) {
	cst, diags := ParsePermissive("select 1 from contact")
	require.Empty(t, diags)
	require.NotNil(t, cst)
	assert.False(t, cst.HasSyntaxError())
}

func TestParsePermissive_InvalidStatementStillProducesTree(t *testing.T) {
	cst, diags := ParsePermissive("insert select 1")
	require.Empty(t, diags)
	require.NotNil(t, cst, "tree-sitter must produce a tree even for invalid SQL")
}

func TestCST_VisitCoversEveryNode(t *testing.T) {
	cst, _ := ParsePermissive("select 1")
	require.NotNil(t, cst)
	count := 0
	cst.Visit(func(e VisitEntry) bool {
		count++
		return true
	})
	assert.Greater(t, count, 0)
}

func TestCST_VisitCanStopEarly(t *testing.T) {
	cst, _ := ParsePermissive("select 1, 2, 3")
	require.NotNil(t, cst)
	count := 0
	cst.Visit(func(e VisitEntry) bool {
		count++
		return count < 1
	})
	assert.Equal(t, 1, count)
}
