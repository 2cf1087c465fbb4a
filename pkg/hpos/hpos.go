// Package hpos defines the shared position type threaded through the
// data-flow graph, the type expander, the unused-variable analyzer and the
// diff engine.
package hpos

import "fmt"

// FilePath identifies a source file by its path string. It is not
// interned; equality is a string comparison.
type FilePath string

// HPos is a byte-offset and line/column span into a single source file. All
// four offset fields are measured from the start of the file, matching the
// AST input contract: "start_offset, end_offset, start_line, end_line as
// byte offsets into the original file".
type HPos struct {
	File       FilePath
	StartOffset uint32
	EndOffset   uint32
	StartLine   uint32
	EndLine     uint32
	StartCol    uint32
	EndCol      uint32
}

// String renders a position the way diagnostics and cache keys expect,
// "file:startOffset-endOffset".
func (p HPos) String() string {
	return fmt.Sprintf("%s:%d-%d", p.File, p.StartOffset, p.EndOffset)
}

// Contains reports whether offset falls within [p.StartOffset, p.EndOffset].
func (p HPos) Contains(offset uint32) bool {
	return offset >= p.StartOffset && offset <= p.EndOffset
}

// Shift returns a copy of p with its offsets and lines adjusted by the given
// deltas, as used by the diff engine when remapping surviving issues.
func (p HPos) Shift(fileOffset, lineOffset int64) HPos {
	shifted := p
	shifted.StartOffset = uint32(int64(p.StartOffset) + fileOffset)
	shifted.EndOffset = uint32(int64(p.EndOffset) + fileOffset)
	shifted.StartLine = uint32(int64(p.StartLine) + lineOffset)
	shifted.EndLine = uint32(int64(p.EndLine) + lineOffset)
	return shifted
}
