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
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	UTF8 Encoding = iota
	Latin1
)

// Encoding is the character encoding of a source file.
//
// Prescanning works on bytes; the encoding only matters where characters
// must be decoded, such as inside Hollerith literals.
type Encoding int8

// ParseEncoding parses an encoding name, as accepted on the command line and
// in configuration files.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "latin-1", "latin1", "iso-8859-1":
		return Latin1, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", name)
	}
}

// String implements [fmt.Stringer].
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case Latin1:
		return "latin-1"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Decode decodes the first character of text.
//
// Returns the number of bytes consumed; zero means that text does not begin
// with a valid character in this encoding.
func (e Encoding) Decode(text string) (r rune, n int) {
	if text == "" {
		return 0, 0
	}

	switch e {
	case Latin1:
		return rune(text[0]), 1
	default:
		r, n = utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && n <= 1 {
			return r, 0
		}
		return r, n
	}
}

// EncodeUTF8 appends the UTF-8 encoding of r to buf. This is the encoding of
// the cooked stream, regardless of the encoding of the input.
func EncodeUTF8(buf []byte, r rune) []byte {
	return utf8.AppendRune(buf, r)
}
