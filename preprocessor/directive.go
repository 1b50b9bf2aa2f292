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

package preprocessor

import (
	"strings"

	"github.com/bufbuild/fprescan/source"
	"github.com/bufbuild/fprescan/token"
)

// directive is a tokenized directive line.
type directive struct {
	line  *token.Sequence
	words []int // Indices of the tokens of line that are not blank.
}

func parseDirective(line *token.Sequence) directive {
	d := directive{line: line}
	for i := range line.Len() {
		if !line.IsBlank(i) {
			d.words = append(d.words, i)
		}
	}
	return d
}

func (d directive) word(i int) string {
	return d.line.Token(d.words[i])
}

// name returns the directive name following the '#', in lowercase.
func (d directive) name() string {
	return strings.ToLower(d.word(1))
}

func (d directive) rangeOf(i int) source.Range {
	return d.line.TokenRange(d.words[i])
}

// rest returns the text of the line from the ith word on.
func (d directive) rest(i int) string {
	if i >= len(d.words) {
		return ""
	}
	var b strings.Builder
	for j := d.words[i]; j < d.line.Len(); j++ {
		b.WriteString(d.line.Token(j))
	}
	return strings.TrimRight(b.String(), " ")
}
