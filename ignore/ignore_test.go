package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIgnored_IgnoreGlob(t *testing.T) {
	m := New(nil, []string{"vendor/**"})
	assert.True(t, m.IsIgnored("vendor/lib/file.sql"))
	assert.False(t, m.IsIgnored("migrations/001.sql"))
}

func TestIsIgnored_IncludeGlobRestricts(t *testing.T) {
	m := New([]string{"migrations/**/*.sql"}, nil)
	assert.False(t, m.IsIgnored("migrations/2024/001.sql"))
	assert.True(t, m.IsIgnored("scratch.sql"))
}

func TestIsIgnored_VCSIgnoreFile(t *testing.T) {
	m := New(nil, nil)
	m.LoadVCSIgnoreFile("# comment\n\n*.tmp.sql\nvendor/\n")
	assert.True(t, m.IsIgnored("scratch.tmp.sql"))
	assert.True(t, m.IsIgnored("vendor/thing.sql"))
	assert.False(t, m.IsIgnored("app/query.sql"))
}
