package document

import (
	"strings"
	"unicode/utf8"
)

// Position is a location in a document as the protocol sees it:
// zero-based line and zero-based character, where character counts
// UTF-16 code units (the LSP default encoding).
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) span in protocol positions.
type Range struct {
	Start Position
	End   Position
}

// Index converts between byte offsets (what the analyzer works in) and
// protocol line/character positions. It is immutable; the store builds a
// fresh index whenever document text changes.
type Index struct {
	text string
	// lineStarts[i] is the byte offset where line i begins.
	// Always has at least one entry (offset 0).
	lineStarts []int
}

// NewIndex builds an index over text.
func NewIndex(text string) *Index {
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	starts[0] = 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, lineStarts: starts}
}

// Text returns the indexed text.
func (ix *Index) Text() string {
	return ix.text
}

// LineCount returns the number of lines in the document.
func (ix *Index) LineCount() int {
	return len(ix.lineStarts)
}

// lineEnd returns the byte offset just past the content of line (excluding
// the trailing newline, if any).
func (ix *Index) lineEnd(line int) int {
	if line+1 < len(ix.lineStarts) {
		end := ix.lineStarts[line+1]
		// Step back over "\n" and a possible preceding "\r"
		if end > 0 && ix.text[end-1] == '\n' {
			end--
			if end > 0 && ix.text[end-1] == '\r' {
				end--
			}
		}
		return end
	}
	return len(ix.text)
}

// PositionFor converts a byte offset into a protocol position.
// Offsets outside the document are clamped.
func (ix *Index) PositionFor(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(ix.text) {
		offset = len(ix.text)
	}

	// Binary search for the containing line.
	lo, hi := 0, len(ix.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ix.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo

	// Count UTF-16 code units from line start to offset.
	character := 0
	for i := ix.lineStarts[line]; i < offset; {
		r, size := utf8.DecodeRuneInString(ix.text[i:])
		if r >= 0x10000 {
			character += 2
		} else {
			character++
		}
		i += size
	}

	return Position{Line: line, Character: character}
}

// OffsetFor converts a protocol position into a byte offset.
// Positions beyond the end of a line clamp to the line end; lines beyond the
// document clamp to the document end. Clamping rather than failing matches
// how clients probe positions at the edge of recent edits.
func (ix *Index) OffsetFor(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(ix.lineStarts) {
		return len(ix.text)
	}

	offset := ix.lineStarts[pos.Line]
	end := ix.lineEnd(pos.Line)

	remaining := pos.Character
	for remaining > 0 && offset < end {
		r, size := utf8.DecodeRuneInString(ix.text[offset:])
		if r >= 0x10000 {
			remaining -= 2
		} else {
			remaining--
		}
		offset += size
	}

	return offset
}

// RangeFor converts a byte span into a protocol range.
func (ix *Index) RangeFor(start, end int) Range {
	return Range{Start: ix.PositionFor(start), End: ix.PositionFor(end)}
}
