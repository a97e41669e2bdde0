package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullDocument(t *testing.T) {
	raw := []byte(`{
		// trailing commas and comments are both legal JSONC
		"vcs": { "enabled": true, "clientKind": "git", "useIgnoreFile": true, },
		"files": { "maxSize": 2097152, "ignore": ["vendor/**"], },
		"migrations": { "migrationsDir": "db/migrations" },
		"linter": {
			"enabled": true,
			"rules": {
				"recommended": true,
				"safety": {
					"banDropColumn": "error",
					"requireConcurrentIndex": { "level": "warn", "options": { "foo": 1 } },
				},
			},
		},
		"db": { "host": "localhost", "port": 5432, "database": "app" },
	}`)

	settings, err := Parse(raw)
	require.NoError(t, err)
	assert.True(t, settings.VCS.Enabled)
	assert.Equal(t, "git", settings.VCS.ClientKind)
	assert.EqualValues(t, 2097152, settings.Files.MaxSize)
	assert.Equal(t, []string{"vendor/**"}, settings.Files.Ignore)
	assert.Equal(t, "db/migrations", settings.Migrations.MigrationsDir)
	assert.Equal(t, "localhost", settings.DB.Host)
	assert.Equal(t, 5432, settings.DB.Port)

	assert.Equal(t, "error", settings.RuleLevel("safety", "banDropColumn", false))
	assert.Equal(t, "warn", settings.RuleLevel("safety", "requireConcurrentIndex", false))
	assert.Equal(t, map[string]any{"foo": float64(1)}, settings.RuleOptions("safety", "requireConcurrentIndex"))
	// recommended:true + unconfigured rule falls back to recommended default.
	assert.Equal(t, "error", settings.RuleLevel("safety", "banDropNotNull", true))
	assert.Equal(t, "off", settings.RuleLevel("stylistic", "banCharType", false))
}

func TestParse_EmptyDocumentUsesDefaults(t *testing.T) {
	settings, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.EqualValues(t, 1<<20, settings.Files.MaxSize)
	assert.Equal(t, "off", settings.RuleLevel("safety", "banDropColumn", false))
}

func TestParse_InvalidJSONC(t *testing.T) {
	_, err := Parse([]byte(`{ not valid `))
	assert.Error(t, err)
}
