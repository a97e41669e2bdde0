// Package span defines the half-open byte range shared by every component
// that needs to talk about "a piece of the document text": the scanner's
// tokens, the splitter's statement boundaries, parse diagnostics, and the
// document model's statement positions.
package span

import "fmt"

// Range is a half-open [Start, End) interval of UTF-8 byte offsets into a
// document's text. All range arithmetic in this module is in bytes;
// conversion to/from UTF-16 line/column pairs happens only at the LSP
// boundary (see document.LineIndex).
type Range struct {
	Start int
	End   int
}

// New builds a Range, panicking on an inverted interval since that always
// indicates a programming error upstream.
func New(start, end int) Range {
	if end < start {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", start, end))
	}
	return Range{Start: start, End: end}
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether the range covers zero bytes.
func (r Range) Empty() bool { return r.Start == r.End }

// Contains reports whether pos falls inside the half-open range.
func (r Range) Contains(pos int) bool { return pos >= r.Start && pos < r.End }

// Overlaps reports whether r and o share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Slice returns the substring of text covered by the range. Callers must
// ensure the range lies within [0, len(text)).
func (r Range) Slice(text string) string { return text[r.Start:r.End] }

// Shift translates both endpoints by delta, used when a preceding edit has
// grown or shrunk the text before this range.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }
