// Package config decodes postgrestools.jsonc (spec §6) into the five
// top-level sections the core consumes: vcs, files, migrations, linter, db.
// Config discovery and merging across directories is the CLI/transport
// collaborator's job (spec §1 Non-goals); this package only decodes one
// already-located file's bytes.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/tailscale/hujson"
)

// VCS mirrors the `vcs` config section.
type VCS struct {
	Enabled       bool   `koanf:"enabled"`
	ClientKind    string `koanf:"clientKind"`
	UseIgnoreFile bool   `koanf:"useIgnoreFile"`
	Root          string `koanf:"root"`
	DefaultBranch string `koanf:"defaultBranch"`
}

// Files mirrors the `files` config section.
type Files struct {
	MaxSize uint64   `koanf:"maxSize"`
	Include []string `koanf:"include"`
	Ignore  []string `koanf:"ignore"`
}

// Migrations mirrors the `migrations` config section. It stays opaque to the
// core: nothing here interprets migrationsDir or after (spec §6).
type Migrations struct {
	MigrationsDir string `koanf:"migrationsDir"`
	After         string `koanf:"after"`
}

// RuleSetting is either a bare level string ("error"|"warn"|"off") or an
// object {level, options}. Decoded permissively into both shapes.
type RuleSetting struct {
	Level   string         `koanf:"level"`
	Options map[string]any `koanf:"options"`
}

// LinterGroup is a group's rule map, e.g. linter.rules.safety.banDropColumn.
type LinterGroup map[string]RuleSetting

// Linter mirrors the `linter` config section.
type Linter struct {
	Enabled bool        `koanf:"enabled"`
	Rules   LinterRules `koanf:"rules"`
}

// LinterRules holds the `recommended` flag plus one LinterGroup per group
// name (e.g. "safety", "stylistic").
type LinterRules struct {
	Recommended *bool                  `koanf:"recommended"`
	Groups      map[string]LinterGroup `koanf:"-"`
}

// DB mirrors the `db` config section.
type DB struct {
	Host                            string   `koanf:"host"`
	Port                            int      `koanf:"port"`
	Username                        string   `koanf:"username"`
	Password                        string   `koanf:"password"`
	Database                        string   `koanf:"database"`
	ConnTimeoutSecs                 int      `koanf:"connTimeoutSecs"`
	AllowStatementExecutionsAgainst []string `koanf:"allowStatementExecutionsAgainst"`
}

// Settings is the fully decoded postgrestools.jsonc document.
type Settings struct {
	VCS        VCS        `koanf:"vcs"`
	Files      Files      `koanf:"files"`
	Migrations Migrations `koanf:"migrations"`
	Linter     Linter     `koanf:"linter"`
	DB         DB         `koanf:"db"`
}

// Default returns the settings a Workspace starts with before any
// postgrestools.jsonc is loaded: a 1 MiB files.maxSize and the linter
// enabled with no rules configured.
func Default() Settings {
	return Settings{
		Files: Files{MaxSize: 1 << 20},
		Linter: Linter{
			Enabled: true,
			Rules:   LinterRules{Groups: map[string]LinterGroup{}},
		},
	}
}

// Parse decodes raw JSONC bytes (comments and trailing commas allowed) into
// Settings. JSONC normalization uses tailscale/hujson, the real library the
// upstream postgrestools project uses for exactly this format; koanf's
// rawbytes provider plus its json parser then does the structural decode
// (the same two-step shape flanksource-postgres and leapstack-labs-leapsql
// use for their own koanf-based config loading, just with a different
// source parser).
func Parse(raw []byte) (Settings, error) {
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return Settings{}, fmt.Errorf("config: normalize jsonc: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(standardized), json.Parser()); err != nil {
		return Settings{}, fmt.Errorf("config: parse json: %w", err)
	}

	settings := Default()
	if err := k.Unmarshal("", &settings); err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	groups := map[string]LinterGroup{}
	if rulesRaw, ok := k.Get("linter.rules").(map[string]any); ok {
		for key, val := range rulesRaw {
			if key == "recommended" {
				continue
			}
			groupMap, ok := val.(map[string]any)
			if !ok {
				continue
			}
			group := LinterGroup{}
			for ruleName, ruleVal := range groupMap {
				group[ruleName] = decodeRuleSetting(ruleVal)
			}
			groups[key] = group
		}
	}
	settings.Linter.Rules.Groups = groups

	return settings, nil
}

func decodeRuleSetting(v any) RuleSetting {
	switch t := v.(type) {
	case string:
		return RuleSetting{Level: t}
	case map[string]any:
		rs := RuleSetting{}
		if level, ok := t["level"].(string); ok {
			rs.Level = level
		}
		if opts, ok := t["options"].(map[string]any); ok {
			rs.Options = opts
		}
		return rs
	default:
		return RuleSetting{}
	}
}

// RuleLevel resolves one rule's configured level. An explicitly configured
// level wins. Otherwise the rule is "off" when linter.rules.recommended is
// false; when it is true or unset, the rule falls back to its own
// recommended default: "error" if recommendedDefault is true, "off" if not.
func (s Settings) RuleLevel(group, rule string, recommendedDefault bool) string {
	if g, ok := s.Linter.Rules.Groups[group]; ok {
		if rs, ok := g[rule]; ok && rs.Level != "" {
			return rs.Level
		}
	}
	if s.Linter.Rules.Recommended != nil && !*s.Linter.Rules.Recommended {
		return "off"
	}
	if recommendedDefault {
		return "error"
	}
	return "off"
}

// RuleOptions resolves one rule's options map, or nil if unconfigured.
func (s Settings) RuleOptions(group, rule string) map[string]any {
	if g, ok := s.Linter.Rules.Groups[group]; ok {
		if rs, ok := g[rule]; ok {
			return rs.Options
		}
	}
	return nil
}
