package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StrictSucceedsPermissiveSucceeds(t *testing.T) {
	res := Parse("select 1 from contact")
	require.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Strict)
	assert.Equal(t, CommandSelect, res.Strict.Command)
	require.NotNil(t, res.Permissive)
}

func TestParse_StrictFailureDoesNotSuppressPermissive(t *testing.T) {
	res := Parse("insert select 1")
	require.NotNil(t, res.Permissive, "permissive CST must still be produced for invalid strict input")
	var sawSyntax bool
	for _, d := range res.Diagnostics {
		if d.Category == "syntax" {
			sawSyntax = true
		}
	}
	assert.True(t, sawSyntax)
	assert.Nil(t, res.Strict)
}

func TestParse_EmptyInput(t *testing.T) {
	res := Parse("")
	require.NotNil(t, res.Permissive)
}
