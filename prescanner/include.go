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

package prescanner

import (
	"strings"

	"github.com/bufbuild/fprescan/source"
)

// locator maps an offset into a line to the provenance of that character.
type locator func(offset int) source.Provenance

// rangeOf returns a range covering the characters of [start, end).
func (l locator) rangeOf(start, end int) source.Range {
	r := source.RangeOf(l(start))
	if end-1 > start {
		r = r.Cover(source.RangeOf(l(end - 1)))
	}
	return r
}

// fortranInclude expands an INCLUDE line whose path starts with the quote
// at line[quote].
func (p *Prescanner) fortranInclude(line string, quote int, loc locator) {
	span := func(start, end int) source.Span {
		return p.sources.Span(loc.rangeOf(start, end))
	}

	i := quote
	delim := byteAt(line, i)
	var path strings.Builder
	for i++; byteAt(line, i) != '\n'; i++ {
		if line[i] == delim {
			if byteAt(line, i+1) != delim {
				break
			}
			// A doubled quote stands for one quote character.
			i++
		}
		path.WriteByte(line[i])
	}
	if byteAt(line, i) != delim {
		p.report.Error(ErrMalformedPath{Span: span(quote, i)})
		return
	}

	i = skipWhiteSpace(line, i+1)
	if c := byteAt(line, i); c != '\n' && c != '!' {
		garbage := i
		for c := byteAt(line, i); c != '\n' && c != '!'; c = byteAt(line, i) {
			i++
		}
		p.report.Warn(ErrExcessAfterPath{Span: span(garbage, i)})
	}

	p.include(path.String(), loc.rangeOf(0, i), false)
}

// include opens the file at path, relative to the directory of the current
// file, and prescans it in a child prescanner. site is the range of the
// line that included it.
func (p *Prescanner) include(path string, site source.Range, directive bool) {
	if p.file != nil {
		p.sources.PushSearchPathDirectory(p.file.Dir())
	}
	file, err := p.sources.Open(path)
	if p.file != nil {
		p.sources.PopSearchPathDirectory()
	}
	if err != nil {
		p.report.Error(ErrInclude{Span: p.sources.Span(site), Err: err, Directive: directive})
		return
	}
	if file.Len() == 0 {
		return
	}

	r := p.sources.AddIncludedFile(file, site)
	p.cooked.BeginInclude(file)
	p.child().Prescan(r)
	p.cooked.EndInclude()
}
