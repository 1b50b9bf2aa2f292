// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"path"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

const byteOrderMark = "\xef\xbb\xbf"

// File is a source file taking part in prescanning.
//
// The text of a File is normalized when it is created: carriage returns
// before newlines are removed, a UTF-8 byte order mark is stripped (and
// forces the encoding to UTF-8), and a non-empty file always ends in a
// newline. Files are immutable once created.
//
// A nil *File behaves like an empty file with the path name "".
type File struct {
	path, text string
	encoding   Encoding

	once sync.Once
	// The index after each \n in text, plus a leading zero. Given a byte
	// offset, binary searching this finds the line it is on.
	lineIndex []int
}

// NewFile constructs a new UTF-8 source file.
func NewFile(path, text string) *File {
	return NewEncodedFile(path, text, UTF8)
}

// NewEncodedFile constructs a new source file in the given encoding.
func NewEncodedFile(path, text string, encoding Encoding) *File {
	if strings.HasPrefix(text, byteOrderMark) {
		text = text[len(byteOrderMark):]
		encoding = UTF8
	}
	if strings.Contains(text, "\r\n") {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return &File{path: path, text: text, encoding: encoding}
}

// Path returns this file's path.
//
// It doesn't need to be a real path, but it is what diagnostics show, and
// its directory is searched first when resolving files it includes.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Dir returns the directory of this file's path.
func (f *File) Dir() string {
	return path.Dir(f.Path())
}

// Text returns this file's normalized contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Len returns the length of this file's normalized contents, in bytes.
func (f *File) Len() int {
	return len(f.Text())
}

// Encoding returns the encoding of this file.
func (f *File) Encoding() Encoding {
	if f == nil {
		return UTF8
	}
	return f.encoding
}

// Location converts a byte offset into a line and column.
//
// This operation is O(log n).
func (f *File) Location(offset int) Location {
	if f == nil || offset <= 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}
	offset = min(offset, len(f.text))

	lines := f.lines()
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}

	chunk := f.text[lines[line]:offset]
	column := len(chunk)
	if f.encoding == UTF8 {
		column = utf8.RuneCountInString(chunk)
	}

	return Location{Offset: offset, Line: line + 1, Column: column + 1}
}

// Line returns the given 1-indexed line, without its trailing newline.
func (f *File) Line(line int) string {
	start, end := f.LineOffsets(line)
	return strings.TrimSuffix(f.Text()[start:end], "\n")
}

// LineOffsets returns the offsets for the given 1-indexed line, including
// its trailing newline.
func (f *File) LineOffsets(line int) (start, end int) {
	lines := f.lines()
	if line < 1 || line > len(lines) {
		return f.Len(), f.Len()
	}
	if line == len(lines) {
		return lines[line-1], f.Len()
	}
	return lines[line-1], lines[line]
}

// Span is a shorthand for creating a new Span.
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{f, start, end}
}

func (f *File) lines() []int {
	if f == nil {
		return nil
	}

	f.once.Do(func() {
		f.lineIndex = append(f.lineIndex, 0)
		for i := 0; i < len(f.text); i++ {
			if f.text[i] == '\n' && i+1 < len(f.text) {
				f.lineIndex = append(f.lineIndex, i+1)
			}
		}
	})
	return f.lineIndex
}
