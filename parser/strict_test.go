package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrict_Select(t *testing.T) {
	stmt, d := ParseStrict("select id, name from contact where id = 1")
	require.Nil(t, d)
	require.NotNil(t, stmt)
	assert.Equal(t, CommandSelect, stmt.Command)
	require.Len(t, stmt.Tables, 1)
	assert.Equal(t, "contact", stmt.Tables[0].Name)
	require.Len(t, stmt.Columns, 2)
	assert.NotEmpty(t, stmt.Where)
}

func TestParseStrict_Insert(t *testing.T) {
	stmt, d := ParseStrict("insert into contact (id, name) values (1, 'a')")
	require.Nil(t, d)
	require.NotNil(t, stmt)
	assert.Equal(t, CommandInsert, stmt.Command)
	assert.Equal(t, []string{"id", "name"}, stmt.InsertColumns)
}

func TestParseStrict_CreateTable(t *testing.T) {
	stmt, d := ParseStrict("create table contact (id int not null, name text)")
	require.Nil(t, d)
	require.NotNil(t, stmt)
	assert.Equal(t, CommandDDL, stmt.Command)
	require.Len(t, stmt.DDLActions, 1)
	assert.Equal(t, "TABLE", stmt.DDLActions[0].ObjectType)
	require.Len(t, stmt.DDLActions[0].Columns, 2)
	assert.False(t, stmt.DDLActions[0].Columns[0].Nullable)
}

func TestParseStrict_SyntaxErrorReturnsDiagnostic(t *testing.T) {
	stmt, d := ParseStrict("insert select 1")
	assert.Nil(t, stmt)
	require.NotNil(t, d)
	assert.Equal(t, "syntax", d.Category)
}

func TestParseStrict_ParamCount(t *testing.T) {
	stmt, d := ParseStrict("select * from contact where id = $1 and name = $2")
	require.Nil(t, d)
	require.NotNil(t, stmt)
	assert.Equal(t, 2, stmt.ParamCount)
}
