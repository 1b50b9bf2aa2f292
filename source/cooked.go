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
	"slices"
	"strings"

	"github.com/bufbuild/fprescan/internal/interval"
)

// Cooked is the cooked character stream: the canonical output of
// prescanning, where every byte remembers the [Provenance] it came from.
//
// The zero value is ready to use.
type Cooked struct {
	text strings.Builder
	// Runs of consecutive provenance values, sorted by offset.
	runs []run

	includes interval.Intersect[int, *File]
	open     []openInclude
}

type run struct {
	offset int // Offset of the first byte of this run in text.
	start  Provenance
	size   int
}

type openInclude struct {
	file  *File
	start int
}

// Put appends a single byte.
func (c *Cooked) Put(ch byte, p Provenance) {
	c.text.WriteByte(ch)
	c.extend(p, 1)
}

// PutRange appends text, whose bytes have consecutive provenance starting
// at r.Start.
func (c *Cooked) PutRange(text string, r Range) {
	if len(text) != r.Size {
		panic(fmt.Sprintf("fprescan/source: text of length %d does not fit range %v", len(text), r))
	}
	if text == "" {
		return
	}
	c.text.WriteString(text)
	c.extend(r.Start, r.Size)
}

func (c *Cooked) extend(p Provenance, size int) {
	if n := len(c.runs); n > 0 {
		last := &c.runs[n-1]
		if last.start+Provenance(last.size) == p {
			last.size += size
			return
		}
	}
	c.runs = append(c.runs, run{offset: c.text.Len() - size, start: p, size: size})
}

// Len returns the number of bytes in the stream.
func (c *Cooked) Len() int {
	return c.text.Len()
}

// Text returns the contents of the stream.
func (c *Cooked) Text() string {
	return c.text.String()
}

// Provenance returns the provenance of the byte at offset.
//
// Returns zero if offset is out of bounds.
func (c *Cooked) Provenance(offset int) Provenance {
	if offset < 0 || offset >= c.Len() {
		return 0
	}
	i, exact := slices.BinarySearchFunc(c.runs, offset, func(r run, offset int) int {
		return r.offset - offset
	})
	if !exact {
		i--
	}
	r := c.runs[i]
	return r.start + Provenance(offset-r.offset)
}

// BeginInclude records that the bytes put from now on, until the matching
// [Cooked.EndInclude], were produced by prescanning file.
func (c *Cooked) BeginInclude(file *File) {
	c.open = append(c.open, openInclude{file: file, start: c.Len()})
}

// EndInclude closes the innermost [Cooked.BeginInclude].
func (c *Cooked) EndInclude() {
	if len(c.open) == 0 {
		panic("fprescan/source: EndInclude without BeginInclude")
	}
	top := c.open[len(c.open)-1]
	c.open = c.open[:len(c.open)-1]
	if c.Len() > top.start {
		c.includes.Insert(top.start, c.Len()-1, top.file)
	}
}

// IncludeChain returns the included files whose prescan produced the byte
// at offset, innermost first. It is empty for bytes produced by the
// top-level file.
func (c *Cooked) IncludeChain(offset int) []*File {
	return slices.Clone(c.includes.Get(offset).Value)
}
