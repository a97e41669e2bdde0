// Package workspace implements the Workspace (spec §4.5, component W): the
// long-lived registry of open documents, their per-statement parse caches,
// the current settings, and a handle to the Schema Cache, exposing the
// public operations every transport (LSP, CLI) drives the core through.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/pgls/pgls/analysis"
	"github.com/pgls/pgls/config"
	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/document"
	"github.com/pgls/pgls/ignore"
	"github.com/pgls/pgls/parser"
	"github.com/pgls/pgls/schemacache"
	"github.com/pgls/pgls/span"
)

// ServerInfo is the static identity the server_info operation returns.
type ServerInfo struct {
	Name    string
	Version string
}

// Workspace owns every open Document, the per-statement ParseCache, the
// current Settings, the SchemaCache handle, and the Analysis Registry,
// generalizing the teacher's few-entry-points public API
// (ParseSQL/ParseSQLAll/ParseSQLStrict) into a long-lived struct with the
// same shape (spec §4.5).
type Workspace struct {
	docsMu    sync.RWMutex
	documents map[string]*document.Document

	parseCache *ParseCache

	settingsMu sync.RWMutex
	settings   config.Settings

	ignoreMu sync.RWMutex
	matcher  *ignore.Matcher

	schema   *schemacache.Cache
	registry *analysis.Registry

	info ServerInfo
}

// New returns a Workspace with default settings, an empty document set, and
// the default Analysis Registry.
func New(info ServerInfo) *Workspace {
	settings := config.Default()
	return &Workspace{
		documents:  map[string]*document.Document{},
		parseCache: NewParseCache(),
		settings:   settings,
		matcher:    ignore.New(settings.Files.Include, settings.Files.Ignore),
		schema:     schemacache.New(),
		registry:   analysis.Default(),
		info:       info,
	}
}

// ServerInfo returns the server's static identity (spec §4.5 "server_info").
func (w *Workspace) ServerInfo() ServerInfo { return w.info }

// IsPathIgnored reports whether path is excluded from analysis per the
// current files.include/files.ignore globs and any loaded VCS ignore
// patterns (spec §4.5/§6).
func (w *Workspace) IsPathIgnored(path string) bool {
	w.ignoreMu.RLock()
	defer w.ignoreMu.RUnlock()
	return w.matcher.IsIgnored(path)
}

// LoadVCSIgnoreFile feeds .gitignore-style contents into the ignore
// matcher; discovering and reading that file is the caller's job (spec §1
// Non-goals keep filesystem traversal out of this package).
func (w *Workspace) LoadVCSIgnoreFile(contents string) {
	w.ignoreMu.Lock()
	defer w.ignoreMu.Unlock()
	w.matcher.LoadVCSIgnoreFile(contents)
}

// OpenFile opens path with text at version, rejecting it if it's ignored or
// exceeds files.maxSize (spec §4.5 "open_file").
func (w *Workspace) OpenFile(path, text string, version int64) error {
	if w.IsPathIgnored(path) {
		return newError(FileIgnored, path, fmt.Errorf("path matches an ignore pattern"))
	}
	w.settingsMu.RLock()
	maxSize := w.settings.Files.MaxSize
	w.settingsMu.RUnlock()
	if maxSize > 0 && uint64(len(text)) > maxSize {
		return newError(FileTooLarge, path, fmt.Errorf("%d bytes exceeds files.maxSize (%d)", len(text), maxSize))
	}

	doc := document.Open(path, text, version)
	w.docsMu.Lock()
	w.documents[path] = doc
	w.docsMu.Unlock()
	return nil
}

// CloseFile discards path's Document and evicts its parse cache entries
// (spec §4.5 "close_file").
func (w *Workspace) CloseFile(path string) error {
	w.docsMu.Lock()
	_, ok := w.documents[path]
	delete(w.documents, path)
	w.docsMu.Unlock()
	if !ok {
		return newError(NotFound, path, fmt.Errorf("file is not open"))
	}
	w.parseCache.EvictFile(path)
	return nil
}

// ChangeFile applies changes to path's open Document at version, evicting
// the parse cache entries for every invalidated statement (spec §4.5
// "change_file").
func (w *Workspace) ChangeFile(path string, version int64, changes []document.ChangeParam) error {
	doc, err := w.lookup(path)
	if err != nil {
		return err
	}
	invalidated, changeErr := doc.Change(version, changes)
	for _, id := range invalidated {
		w.parseCache.Evict(path, id)
	}
	if changeErr != nil {
		return newError(InvalidConfiguration, path, changeErr)
	}
	return nil
}

// GetFileContent returns path's current full text (spec §4.5
// "get_file_content").
func (w *Workspace) GetFileContent(path string) (string, error) {
	doc, err := w.lookup(path)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// UpdateSettings decodes raw postgrestools.jsonc bytes and replaces the
// Workspace's current Settings and ignore matcher atomically (spec §4.5
// "update_settings").
func (w *Workspace) UpdateSettings(raw []byte) error {
	settings, err := config.Parse(raw)
	if err != nil {
		return newError(InvalidConfiguration, "", err)
	}
	w.settingsMu.Lock()
	w.settings = settings
	w.settingsMu.Unlock()

	w.ignoreMu.Lock()
	w.matcher = ignore.New(settings.Files.Include, settings.Files.Ignore)
	w.ignoreMu.Unlock()
	return nil
}

// Settings returns the Workspace's current settings snapshot.
func (w *Workspace) Settings() config.Settings {
	w.settingsMu.RLock()
	defer w.settingsMu.RUnlock()
	return w.settings
}

// RefreshSchema reloads the Schema Cache against connString, coalescing
// concurrent calls for the same connString (spec §4.5/§4.6). The load runs
// in the calling goroutine and RefreshSchema returns only when it has
// finished; the Workspace starts no goroutine of its own for it, so a caller
// that must not wait has to call it from its own goroutine.
func (w *Workspace) RefreshSchema(ctx context.Context, connString string) error {
	if err := w.schema.Refresh(ctx, connString); err != nil {
		return newError(DatabaseConnection, "", err)
	}
	return nil
}

// PullDiagnostics runs the Analysis Registry, restricted to categories (and
// further narrowed by only/skip), over every statement in path's open
// Document, plus that Document's own split and parse diagnostics. Results
// are concatenated in document order and de-duplicated by (span, category)
// (spec §4.5 "pull_diagnostics(path, categories, only, skip)"). A nil/empty
// categories defaults to the lint category, the only one whose rules
// produce Diagnostic signals in this repository's representative rule set.
func (w *Workspace) PullDiagnostics(path string, categories []analysis.Category, only, skip []string) ([]diag.Diagnostic, error) {
	doc, err := w.lookup(path)
	if err != nil {
		return nil, err
	}

	out := append([]diag.Diagnostic(nil), doc.Diagnostics()...)
	schema := w.schema.Snapshot()
	f := diagnosticsFilter(w.Settings(), categories, only, skip)

	for _, pos := range doc.Positions() {
		text, ok := doc.StatementText(pos.ID)
		if !ok {
			continue
		}
		result := w.parseFor(path, pos.ID, text)
		for _, d := range result.Diagnostics {
			out = append(out, shiftDiagnostic(d, pos.Range.Start))
		}

		ctx := analysis.RuleContext{Path: path, Parse: result, Schema: schema}
		signals := w.registry.Run(f, ctx)
		for _, d := range analysis.Diagnostics(signals) {
			out = append(out, shiftDiagnostic(d, pos.Range.Start))
		}
	}
	return dedupeDiagnostics(out), nil
}

// GetCompletions runs the completions category of the Analysis Registry
// over the statement containing offset (spec §4.5 "get_completions").
func (w *Workspace) GetCompletions(path string, offset int) ([]analysis.CompletionItem, error) {
	signals, err := w.runAtOffset(path, offset, analysis.Filter{Categories: []analysis.Category{analysis.CategoryCompletions}})
	if err != nil {
		return nil, err
	}
	var out []analysis.CompletionItem
	for _, s := range signals {
		if s.Completion != nil {
			out = append(out, *s.Completion)
		}
	}
	return out, nil
}

// GetHover runs the hover category of the Analysis Registry over the
// statement containing offset.
func (w *Workspace) GetHover(path string, offset int) ([]analysis.HoverContent, error) {
	signals, err := w.runAtOffset(path, offset, analysis.Filter{Categories: []analysis.Category{analysis.CategoryHover}})
	if err != nil {
		return nil, err
	}
	var out []analysis.HoverContent
	for _, s := range signals {
		if s.Hover != nil {
			out = append(out, *s.Hover)
		}
	}
	return out, nil
}

// GetInlayHints runs the inlayHints category of the Analysis Registry over
// the statement containing offset.
func (w *Workspace) GetInlayHints(path string, offset int) ([]analysis.InlayHint, error) {
	signals, err := w.runAtOffset(path, offset, analysis.Filter{Categories: []analysis.Category{analysis.CategoryInlayHints}})
	if err != nil {
		return nil, err
	}
	var out []analysis.InlayHint
	for _, s := range signals {
		if s.InlayHint != nil {
			out = append(out, *s.InlayHint)
		}
	}
	return out, nil
}

// PullCodeActions collects the structured fix-it Advices attached to the
// diagnostics relevant to position: the Analysis Registry's rule bodies are
// the only producers of Advice in this repository's scope (spec §4.5
// "pull_code_actions(path, position)"). A diagnostic is relevant when
// position falls on or immediately after its span, the same boundary this
// package's runAtOffset uses for "cursor is still within this statement".
func (w *Workspace) PullCodeActions(path string, position int) ([]diag.Advice, error) {
	diags, err := w.PullDiagnostics(path, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	var out []diag.Advice
	for _, d := range diags {
		if !spanRelevantTo(d.Span, position) {
			continue
		}
		out = append(out, d.Advices...)
	}
	return out, nil
}

// spanRelevantTo reports whether sp should be considered to cover position,
// using the closed-at-both-ends interpretation LSP clients expect for
// "is my cursor on this diagnostic" (a half-open span.Range.Contains alone
// would miss a cursor sitting right after the diagnostic's last byte).
func spanRelevantTo(sp *span.Range, position int) bool {
	if sp == nil {
		return false
	}
	return sp.Contains(position) || position == sp.End
}

func (w *Workspace) lookup(path string) (*document.Document, error) {
	w.docsMu.RLock()
	defer w.docsMu.RUnlock()
	doc, ok := w.documents[path]
	if !ok {
		return nil, newError(NotFound, path, fmt.Errorf("file is not open"))
	}
	return doc, nil
}

func (w *Workspace) parseFor(path string, id document.StatementID, text string) parser.ParseResult {
	return w.parseCache.Get(path, id, text, func() parser.ParseResult {
		return parser.Parse(text)
	})
}

// runAtOffset locates the statement containing offset and runs f over its
// parse result with Cursor set to the statement-relative offset. A
// statement "contains" an offset sitting right at its closed end too, the
// common "cursor at EOF with no trailing ;" completion request. When no
// statement covers offset at all — the cursor sits in the gap between two
// statements, or before the first/after the last one exists — a
// single-statement context is synthesized from the text up to the cursor
// instead of silently returning nothing (spec §4.5 "If the cursor lies
// between statements or at EOF, the Workspace synthesizes a
// single-statement context from the text up to the cursor").
func (w *Workspace) runAtOffset(path string, offset int, f analysis.Filter) ([]analysis.Signal, error) {
	doc, err := w.lookup(path)
	if err != nil {
		return nil, err
	}
	schema := w.schema.Snapshot()

	for _, pos := range doc.Positions() {
		if !pos.Range.Contains(offset) && offset != pos.Range.End {
			continue
		}
		text, ok := doc.StatementText(pos.ID)
		if !ok {
			continue
		}
		result := w.parseFor(path, pos.ID, text)
		ctx := analysis.RuleContext{
			Path:   path,
			Parse:  result,
			Cursor: offset - pos.Range.Start,
			Schema: schema,
		}
		return w.registry.Run(f, ctx), nil
	}

	return w.registry.Run(f, w.synthesizeContext(doc, path, offset, schema)), nil
}

// synthesizeContext builds a RuleContext from the text between the nearest
// preceding statement's end (or the start of the document) and offset,
// parsed fresh rather than through the ParseCache since it names no
// StatementID and is never reused past this one call.
func (w *Workspace) synthesizeContext(doc *document.Document, path string, offset int, schema *schemacache.Snapshot) analysis.RuleContext {
	text := doc.Text()
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	start := 0
	for _, pos := range doc.Positions() {
		if pos.Range.End <= offset && pos.Range.End > start {
			start = pos.Range.End
		}
	}

	result := parser.Parse(text[start:offset])
	return analysis.RuleContext{
		Path:   path,
		Parse:  result,
		Cursor: offset - start,
		Schema: schema,
	}
}

// diagnosticsFilter builds the Registry Filter pull_diagnostics runs with:
// the caller's requested categories/only/skip, defaulting categories to
// lint (the only category whose rules emit Diagnostic signals here), merged
// with the rules settings.linter disables (RuleLevel == "off") so
// PullDiagnostics still honors linter.enabled and each rule's configured
// level regardless of what the caller asked for (spec §4.5/§6).
func diagnosticsFilter(settings config.Settings, categories []analysis.Category, only, skip []string) analysis.Filter {
	if len(categories) == 0 {
		categories = []analysis.Category{analysis.CategoryLint}
	}
	if !settings.Linter.Enabled {
		return analysis.Filter{Categories: categories, Only: []string{"__none__"}}
	}
	f := analysis.Filter{
		Categories: categories,
		Only:       only,
		Skip:       append([]string(nil), skip...),
	}
	for group, rules := range settings.Linter.Rules.Groups {
		for name := range rules {
			if settings.RuleLevel(group, name, false) == "off" {
				f.Skip = append(f.Skip, name)
			}
		}
	}
	return f
}

// dedupeDiagnostics drops later diagnostics that repeat an earlier one's
// (span, category) pair, keeping document order (spec §4.5 "concatenated in
// document order, de-duplicated by (span, category)").
func dedupeDiagnostics(diags []diag.Diagnostic) []diag.Diagnostic {
	type key struct {
		category   string
		start, end int
		hasSpan    bool
	}
	seen := make(map[key]bool, len(diags))
	out := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		k := key{category: d.Category}
		if d.Span != nil {
			k.hasSpan = true
			k.start, k.end = d.Span.Start, d.Span.End
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func shiftDiagnostic(d diag.Diagnostic, offset int) diag.Diagnostic {
	if d.Span == nil {
		return d
	}
	shifted := d.Span.Shift(offset)
	d.Span = &shifted
	return d
}
