// Package document owns a single open document's text, version, ordered
// statement positions, and accumulated split diagnostics, and translates
// LSP-style text edits into the minimal set of statement-level additions,
// deletions, and modifications (spec §4.4, component D).
package document

import (
	"errors"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/span"
	"github.com/pgls/pgls/splitter"
)

// StatementID names a statement independently of its byte range. It is
// unique within a document and never reused across the document's lifetime,
// even across edits (spec §3, §9 "cyclic cache invalidation" design note).
type StatementID int64

// Position pairs a StatementID with its current byte range inside the
// document's text.
type Position struct {
	ID    StatementID
	Range span.Range
}

// ErrVersionRegression is returned by Change when the supplied version is
// older than the document's current version (spec §4.4 "version handling").
var ErrVersionRegression = errors.New("document: version regression")

// Document is the value the Workspace owns per open file.
type Document struct {
	Path             string
	text             string
	version          int64
	positions        []Position
	splitDiagnostics []diag.Diagnostic
	nextID           StatementID
}

// Open constructs a Document by invoking the Splitter on text and assigning
// a fresh StatementId to each resulting range (spec §4.4 "open").
func Open(path, text string, version int64) *Document {
	d := &Document{Path: path, version: version}
	d.resplitWhole(text)
	return d
}

func (d *Document) resplitWhole(text string) {
	d.text = text
	ranges, diags := splitter.Split(text)
	d.splitDiagnostics = diags
	d.positions = make([]Position, 0, len(ranges))
	for _, r := range ranges {
		d.positions = append(d.positions, Position{ID: d.allocID(), Range: r})
	}
}

func (d *Document) allocID() StatementID {
	d.nextID++
	return d.nextID
}

// Text returns the document's current full text.
func (d *Document) Text() string { return d.text }

// Version returns the document's current version.
func (d *Document) Version() int64 { return d.version }

// Positions returns a defensive copy of the document's ordered statement
// positions.
func (d *Document) Positions() []Position {
	return append([]Position(nil), d.positions...)
}

// Diagnostics returns a defensive copy of the document's accumulated split
// diagnostics.
func (d *Document) Diagnostics() []diag.Diagnostic {
	return append([]diag.Diagnostic(nil), d.splitDiagnostics...)
}

// StatementText derives one statement's text from the document's text at
// query time, per spec §3's "single source of truth for bytes".
func (d *Document) StatementText(id StatementID) (string, bool) {
	for _, p := range d.positions {
		if p.ID == id {
			return p.Range.Slice(d.text), true
		}
	}
	return "", false
}

// ChangeParam is one LSP-style text edit: Range nil means a whole-file
// replacement; otherwise Range names the byte span being replaced by Text.
type ChangeParam struct {
	Range *span.Range
	Text  string
}

// Change applies each ChangeParam in order (spec §4.4). It returns the
// StatementIDs invalidated by the edit (callers evict their ParseCache
// entries for these) or ErrVersionRegression, which leaves the document
// unchanged.
func (d *Document) Change(version int64, changes []ChangeParam) ([]StatementID, error) {
	if version < d.version {
		return nil, ErrVersionRegression
	}
	var invalidated []StatementID
	for _, c := range changes {
		invalidated = append(invalidated, d.applyOne(c)...)
	}
	d.version = version
	return invalidated, nil
}

func (d *Document) applyOne(c ChangeParam) []StatementID {
	if c.Range == nil {
		return d.replaceWhole(c.Text)
	}
	return d.applySplice(*c.Range, c.Text)
}

// replaceWhole implements step 1 of spec §4.4's algorithm: a change with no
// range discards all positions and re-splits from scratch.
func (d *Document) replaceWhole(text string) []StatementID {
	old := d.positions
	d.resplitWhole(text)
	ids := make([]StatementID, 0, len(old))
	for _, p := range old {
		ids = append(ids, p.ID)
	}
	return ids
}

// applySplice implements steps 2-6 of spec §4.4's incremental-change
// algorithm: splice the text, locate affected_old, shift positions after the
// splice, re-split the minimal rewindow, and reuse StatementIds outside it.
func (d *Document) applySplice(r span.Range, replacement string) []StatementID {
	delta := len(replacement) - r.Len()
	newText := d.text[:r.Start] + replacement + d.text[r.End:]

	n := len(d.positions)
	firstAffected, lastAffected := -1, -1
	for i, p := range d.positions {
		if spliceOverlaps(p.Range, r) {
			if firstAffected == -1 {
				firstAffected = i
			}
			lastAffected = i
		}
	}

	var precedingIdx, followingIdx int
	if firstAffected == -1 {
		insertAt := n
		for i, p := range d.positions {
			if p.Range.Start >= r.Start {
				insertAt = i
				break
			}
		}
		precedingIdx, followingIdx = insertAt-1, insertAt
	} else {
		precedingIdx, followingIdx = firstAffected-1, lastAffected+1
	}

	// The window is the text between the preceding and following unaffected
	// positions; both of them are kept with their ids.
	windowStart := 0
	if precedingIdx >= 0 {
		windowStart = d.positions[precedingIdx].Range.End
	}
	windowEnd := len(newText)
	if followingIdx < n {
		// The following position lies entirely after the splice, so its old
		// Start needs the same Δ shift step 4 applies to it.
		windowEnd = d.positions[followingIdx].Range.Start + delta
	}

	sub := newText[windowStart:windowEnd]
	ranges, windowDiags := splitter.Split(sub)

	var invalidated []StatementID
	for i := precedingIdx + 1; i <= followingIdx-1 && i >= 0 && i < n; i++ {
		invalidated = append(invalidated, d.positions[i].ID)
	}

	newPositions := make([]Position, 0, len(d.positions)+len(ranges))
	for i := 0; i <= precedingIdx; i++ {
		newPositions = append(newPositions, d.positions[i])
	}
	for _, rr := range ranges {
		abs := span.Range{Start: windowStart + rr.Start, End: windowStart + rr.End}
		newPositions = append(newPositions, Position{ID: d.allocID(), Range: abs})
	}
	for i := followingIdx; i < n; i++ {
		p := d.positions[i]
		newPositions = append(newPositions, Position{ID: p.ID, Range: p.Range.Shift(delta)})
	}

	d.text = newText
	d.positions = newPositions
	d.splitDiagnostics = d.rebuildDiagnostics(windowStart, windowEnd, delta, windowDiags)
	return invalidated
}

// spliceOverlaps reports whether pos is touched by the splice region r. A
// zero-width r (a pure insertion) only counts as overlapping a position
// whose range strictly contains the insertion point; an insertion exactly at
// a statement boundary lands in the inter-statement gap instead.
func spliceOverlaps(pos, r span.Range) bool {
	if r.Empty() {
		return pos.Start < r.Start && r.Start < pos.End
	}
	return pos.Start < r.End && r.Start < pos.End
}

// rebuildDiagnostics keeps split diagnostics outside [oldWindowStart,
// oldWindowEnd) in old coordinates, shifts the ones after it by delta, and
// splices in the freshly computed window diagnostics (already relative to
// the new text via windowStart).
func (d *Document) rebuildDiagnostics(windowStart, newWindowEnd, delta int, windowDiags []diag.Diagnostic) []diag.Diagnostic {
	oldWindowEnd := newWindowEnd - delta
	out := make([]diag.Diagnostic, 0, len(d.splitDiagnostics)+len(windowDiags))
	for _, dg := range d.splitDiagnostics {
		if dg.Span == nil {
			out = append(out, dg)
			continue
		}
		switch {
		case dg.Span.End <= windowStart:
			out = append(out, dg)
		case dg.Span.Start >= oldWindowEnd:
			sp := dg.Span.Shift(delta)
			dg.Span = &sp
			out = append(out, dg)
		default:
			// Falls inside the re-split window; superseded by windowDiags.
		}
	}
	for _, dg := range windowDiags {
		if dg.Span != nil {
			sp := span.Range{Start: windowStart + dg.Span.Start, End: windowStart + dg.Span.End}
			dg.Span = &sp
		}
		out = append(out, dg)
	}
	return out
}
