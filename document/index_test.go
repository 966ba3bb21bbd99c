package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexPositionFor(t *testing.T) {
	text := "contract Flip {\n  state on bool\n}\n"
	ix := NewIndex(text)

	tests := []struct {
		name   string
		offset int
		want   Position
	}{
		{"document start", 0, Position{0, 0}},
		{"mid first line", 9, Position{0, 9}},
		{"first line end", 15, Position{0, 15}},
		{"second line start", 16, Position{1, 0}},
		{"inside second line", 18, Position{1, 2}},
		{"closing brace", 32, Position{2, 0}},
		{"document end", len(text), Position{3, 0}},
		{"negative clamps to start", -5, Position{0, 0}},
		{"past end clamps", len(text) + 10, Position{3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.PositionFor(tt.offset))
		})
	}
}

func TestIndexOffsetFor(t *testing.T) {
	text := "contract Flip {\n  state on bool\n}\n"
	ix := NewIndex(text)

	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{"document start", Position{0, 0}, 0},
		{"mid first line", Position{0, 9}, 9},
		{"second line", Position{1, 2}, 18},
		{"character past line end clamps", Position{0, 99}, 15},
		{"line past document clamps", Position{42, 0}, len(text)},
		{"negative line clamps to start", Position{-1, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.OffsetFor(tt.pos))
		})
	}
}

func TestIndexRoundTrip(t *testing.T) {
	text := "a\nbb\nccc\n\ndddd"
	ix := NewIndex(text)

	for offset := 0; offset <= len(text); offset++ {
		pos := ix.PositionFor(offset)
		assert.Equal(t, offset, ix.OffsetFor(pos), "offset %d", offset)
	}
}

func TestIndexUTF16Characters(t *testing.T) {
	// "é" is 2 bytes / 1 UTF-16 unit; "𐐀" is 4 bytes / 2 UTF-16 units.
	text := "é𐐀x\nnext"
	ix := NewIndex(text)

	// Offset after "é" (2 bytes) is character 1.
	assert.Equal(t, Position{0, 1}, ix.PositionFor(2))
	// Offset after "é𐐀" (6 bytes) is character 3: surrogate pair counts double.
	assert.Equal(t, Position{0, 3}, ix.PositionFor(6))
	// And back again.
	assert.Equal(t, 2, ix.OffsetFor(Position{0, 1}))
	assert.Equal(t, 6, ix.OffsetFor(Position{0, 3}))
	assert.Equal(t, 7, ix.OffsetFor(Position{0, 4}))
	// Second line is unaffected.
	assert.Equal(t, Position{1, 0}, ix.PositionFor(8))
}

func TestIndexCRLF(t *testing.T) {
	text := "one\r\ntwo\r\n"
	ix := NewIndex(text)

	assert.Equal(t, Position{1, 0}, ix.PositionFor(5))
	// Character clamp on a CRLF line stops before the "\r".
	assert.Equal(t, 3, ix.OffsetFor(Position{0, 50}))
}

func TestIndexEmptyDocument(t *testing.T) {
	ix := NewIndex("")
	assert.Equal(t, 1, ix.LineCount())
	assert.Equal(t, Position{0, 0}, ix.PositionFor(0))
	assert.Equal(t, 0, ix.OffsetFor(Position{0, 0}))
}
