package document

import "unicode/utf16"

// PositionEncoding names the unit the LSP client and server negotiated for
// line/column positions at `initialize` time (spec §6, §9 Open Question 2).
// The boundary conversion must consult whichever value was negotiated rather
// than hard-code one.
type PositionEncoding int

const (
	// EncodingUTF16 counts columns in UTF-16 code units, the LSP default.
	EncodingUTF16 PositionEncoding = iota
	// EncodingUTF8 counts columns in UTF-8 bytes, negotiated via the
	// `positionEncodings` client capability.
	EncodingUTF8
)

// LinePos is a zero-based (line, column) pair in the negotiated encoding.
type LinePos struct {
	Line   int
	Column int
}

// LineIndex converts between byte offsets and line/column positions for one
// snapshot of a document's text. It is built once per version and consulted
// only at the external LSP boundary (spec §4.4) — no internal byte-range
// logic in Scanner, Splitter, Parser, or Document depends on it.
type LineIndex struct {
	text        string
	lineStarts  []int // byte offset of the start of each line
}

// NewLineIndex scans text once for line boundaries ('\n'-terminated lines;
// a preceding '\r' is treated as part of the line, not a boundary).
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

// ByteOffset converts a LinePos to a byte offset, clamped to [0, len(text)].
func (li *LineIndex) ByteOffset(pos LinePos, enc PositionEncoding) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(li.lineStarts) {
		return len(li.text)
	}
	lineStart := li.lineStarts[pos.Line]
	lineEnd := len(li.text)
	if pos.Line+1 < len(li.lineStarts) {
		lineEnd = li.lineStarts[pos.Line+1]
	}
	line := li.text[lineStart:lineEnd]
	return lineStart + columnToByteOffset(line, pos.Column, enc)
}

// Position converts a byte offset to a LinePos, clamped to the text bounds.
func (li *LineIndex) Position(offset int, enc PositionEncoding) LinePos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := li.lineForOffset(offset)
	lineStart := li.lineStarts[line]
	col := byteOffsetToColumn(li.text[lineStart:offset], enc)
	return LinePos{Line: line, Column: col}
}

func (li *LineIndex) lineForOffset(offset int) int {
	lo, hi := 0, len(li.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func columnToByteOffset(line string, column int, enc PositionEncoding) int {
	if column <= 0 {
		return 0
	}
	if enc == EncodingUTF8 {
		if column > len(line) {
			return len(line)
		}
		return column
	}
	units := 0
	for i, r := range line {
		if units >= column {
			return i
		}
		units += utf16RuneWidth(r)
	}
	return len(line)
}

func byteOffsetToColumn(prefix string, enc PositionEncoding) int {
	if enc == EncodingUTF8 {
		return len(prefix)
	}
	units := 0
	for _, r := range prefix {
		units += utf16RuneWidth(r)
	}
	return units
}

func utf16RuneWidth(r rune) int {
	if r > 0xFFFF {
		return len(utf16.Encode([]rune{r}))
	}
	return 1
}
