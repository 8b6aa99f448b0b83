package source

import (
	"crypto/sha256"
	"slices"
	"sort"
)

// File holds the content and derived line index for a loaded document.
type File struct {
	Path     string
	Content  []byte
	lineIdx  []uint32 // byte offset of each '\n', 0-based
	Hash     [32]byte
	HadBOM   bool
	HadCRLF  bool
}

// NewFile normalizes content (strips a UTF-8 BOM, normalizes CRLF to LF)
// and builds its line index and content hash.
func NewFile(path string, content []byte) *File {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	return &File{
		Path:    path,
		Content: content,
		lineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		HadBOM:  hadBOM,
		HadCRLF: hadCRLF,
	}
}

// PosAt converts a 0-based byte offset into a 1-based Position.
func (f *File) PosAt(offset uint32) Position {
	lc := toLineCol(f.lineIdx, offset)
	return Position{Line: lc.Line, Col: lc.Col}
}

// Span builds a Span for the given byte range within this file.
func (f *File) Span(startByte, endByte uint32) Span {
	return NewSpanWithBytes(f.Path, f.PosAt(startByte), f.PosAt(endByte), startByte, endByte)
}

// Line returns the 1-based source line's text without its terminator.
func (f *File) Line(n uint32) string {
	if n == 0 {
		return ""
	}
	var start uint32
	if n > 1 {
		if int(n-2) >= len(f.lineIdx) {
			return ""
		}
		start = f.lineIdx[n-2] + 1
	}
	var end uint32
	if int(n-1) < len(f.lineIdx) {
		end = f.lineIdx[n-1]
	} else {
		end = uint32(len(f.Content))
	}
	if start > uint32(len(f.Content)) || end > uint32(len(f.Content)) || start > end {
		return ""
	}
	return string(f.Content[start:end])
}

type lineCol struct {
	Line, Col uint32
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i++
			changed = true
			continue
		}
		out = append(out, content[i])
	}
	return out, changed
}

// buildLineIndex records the byte offset of every '\n' in content.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 64)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) lineCol {
	if len(lineIdx) == 0 {
		return lineCol{Line: 1, Col: off + 1}
	}
	i := sort.Search(len(lineIdx), func(k int) bool { return lineIdx[k] > off })
	if i == 0 {
		return lineCol{Line: 1, Col: off + 1}
	}
	last := lineIdx[i-1]
	if off == last {
		var start uint32
		if i-1 > 0 {
			start = lineIdx[i-2] + 1
		}
		return lineCol{Line: uint32(i), Col: last - start + 1}
	}
	start := last + 1
	return lineCol{Line: uint32(i + 1), Col: off - start + 1}
}
