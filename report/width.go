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

package report

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the size we render all tabstops as.
const TabstopWidth int = 8

// NonPrint defines whether or not a rune is considered "unprintable for the
// purposes of diagnostics", that is, whether it is a rune that the diagnostics
// engine will replace with <U+NNNN> when printing.
func NonPrint(r rune) bool {
	return !strings.ContainsRune(" \r\t\n", r) && !unicode.IsPrint(r)
}

// stringWidth calculates the rendered width of text if placed at the given
// column, accounting for tabstops and escaped unprintable runes. If out is
// not nil, the rendered text is written to it.
func stringWidth(column int, text string, out *strings.Builder) int {
	for text != "" {
		nextTab := strings.IndexByte(text, '\t')
		haveTab := nextTab != -1
		next := text
		if haveTab {
			next, text = text[:nextTab], text[nextTab+1:]
		} else {
			text = ""
		}

		for next != "" {
			nextNonPrint := strings.IndexFunc(next, NonPrint)
			if nextNonPrint == -1 {
				if out != nil {
					out.WriteString(next)
				}
				column += uniseg.StringWidth(next)
				break
			}

			chunk := next[:nextNonPrint]
			r, n := utf8.DecodeRuneInString(next[nextNonPrint:])
			next = next[nextNonPrint+n:]
			escape := fmt.Sprintf("<U+%04X>", r)
			if out != nil {
				out.WriteString(chunk)
				out.WriteString(escape)
			}
			column += uniseg.StringWidth(chunk) + len(escape)
		}

		if haveTab {
			tab := TabstopWidth - (column % TabstopWidth)
			column += tab
			if out != nil {
				out.WriteString(strings.Repeat(" ", tab))
			}
		}
	}
	return column
}
