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
	"fmt"
	"strings"
)

// LineKind is the kind of a physical line, as far as prescanning cares.
type LineKind int8

const (
	Comment LineKind = iota
	IncludeLine
	ConditionalCompilationDirective // #if, #ifdef, #elif, #else, #endif and so on.
	IncludeDirective
	DefinitionDirective // #define and #undef.
	PreprocessorDirective
	CompilerDirective
	Source
)

// String implements [fmt.Stringer].
func (k LineKind) String() string {
	switch k {
	case Comment:
		return "comment"
	case IncludeLine:
		return "INCLUDE line"
	case ConditionalCompilationDirective:
		return "conditional compilation directive"
	case IncludeDirective:
		return "#include directive"
	case DefinitionDirective:
		return "definition directive"
	case PreprocessorDirective:
		return "preprocessor directive"
	case CompilerDirective:
		return "compiler directive"
	case Source:
		return "source"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// Classification is the result of classifying a line.
type Classification struct {
	Kind LineKind
	// For a free-form Comment, the offset of the '!' or newline. For an
	// IncludeLine, the offset of the opening quote. For a CompilerDirective,
	// the offset of the text after the sentinel.
	PayloadOffset int
	// The canonical sentinel of a CompilerDirective.
	Sentinel string
}

// ClassifyLine classifies the line that line starts with. Only the first
// line of line is classified, although a C-style comment may be followed
// onto later lines.
//
// The result depends only on line and on the prescanner's form, features
// and sentinels; ClassifyLine does not modify the prescanner.
func (p *Prescanner) ClassifyLine(line string) Classification {
	if p.form == FixedForm {
		if c, ok := p.fixedFormCompilerDirectiveLine(line); ok {
			return c
		}
		if p.isFixedFormCommentLine(line) {
			return Classification{Kind: Comment}
		}
	} else {
		if c, ok := p.freeFormCompilerDirectiveLine(line); ok {
			return c
		}
		if bang, ok := p.freeFormComment(line); ok {
			return Classification{Kind: Comment, PayloadOffset: bang}
		}
	}

	if quote, ok := includeLine(line); ok {
		return Classification{Kind: IncludeLine, PayloadOffset: quote}
	}

	if dir, ok := p.preprocessorDirectiveLine(line); ok {
		name := line[dir:]
		switch {
		case strings.HasPrefix(name, "if"),
			strings.HasPrefix(name, "elif"),
			strings.HasPrefix(name, "else"),
			strings.HasPrefix(name, "endif"):
			return Classification{Kind: ConditionalCompilationDirective}
		case strings.HasPrefix(name, "include"):
			return Classification{Kind: IncludeDirective}
		case strings.HasPrefix(name, "define"),
			strings.HasPrefix(name, "undef"):
			return Classification{Kind: DefinitionDirective}
		default:
			return Classification{Kind: PreprocessorDirective}
		}
	}

	return Classification{Kind: Source}
}

func (p *Prescanner) isFixedFormCommentLine(line string) bool {
	switch byteAt(line, 0) {
	case '!', '*', 'C', 'c', '%': // %LIST, %EJECT and other VAX controls.
		return true
	case 'D', 'd':
		if !p.features.IsEnabled(OldDebugLines) {
			return true
		}
	}

	var i int
	var anyTabs bool
loop:
	for {
		switch byteAt(line, i) {
		case ' ':
			i++
		case '\t':
			anyTabs = true
			i++
		case '0':
			// A 0 in column 6 is a blank.
			if anyTabs || i != 5 {
				break loop
			}
			i++
		default:
			break loop
		}
	}

	if !anyTabs && i >= p.columnLimit {
		return true
	}
	if byteAt(line, i) == '!' && !p.s.inCharLiteral && (anyTabs || i != 5) {
		return true
	}
	return byteAt(line, i) == '\n'
}

func (p *Prescanner) freeFormComment(line string) (int, bool) {
	i := p.skipWhiteSpaceAndCComments(line, 0)
	if c := byteAt(line, i); c == '!' || c == '\n' {
		return i, true
	}
	return 0, false
}

func (p *Prescanner) fixedFormCompilerDirectiveLine(line string) (Classification, bool) {
	if !isFixedFormCommentChar(byteAt(line, 0)) {
		return Classification{}, false
	}

	var buf [4]byte
	var n int
	i, column := 1, 2
	for ; column < 6; column, i = column+1, i+1 {
		c := byteAt(line, i)
		if c == ' ' {
			continue
		}
		if c == '\n' || c == '\t' {
			break
		}
		if n == 1 && buf[0] == '$' && isDigit(c) {
			// OpenMP conditional compilation line with a label.
			break
		}
		buf[n] = toLower(c)
		n++
	}
	if column == 6 {
		if c := byteAt(line, i); c != ' ' && c != '\t' && c != '0' {
			// A continuation of a directive, not an initial line.
			return Classification{}, false
		}
		i++
	}
	if n == 0 {
		return Classification{}, false
	}

	tag, ok := p.sentinels.Lookup(string(buf[:n]))
	if !ok {
		return Classification{}, false
	}
	return Classification{Kind: CompilerDirective, PayloadOffset: i, Sentinel: tag}, true
}

func (p *Prescanner) freeFormCompilerDirectiveLine(line string) (Classification, bool) {
	i := skipWhiteSpace(line, 0)
	if byteAt(line, i) != '!' {
		return Classification{}, false
	}
	i++

	var buf [7]byte
	for j := 0; j < len(buf); i, j = i+1, j+1 {
		c := byteAt(line, i)
		if c == '\n' {
			break
		}
		if c != ' ' && c != '\t' && c != '&' {
			buf[j] = toLower(c)
			continue
		}

		if j == 0 {
			break
		}
		i = skipWhiteSpace(line, i+1)
		if byteAt(line, i) == '!' {
			// A remark such as "!dir$ !", not a directive.
			break
		}
		tag, ok := p.sentinels.Lookup(string(buf[:j]))
		if !ok {
			break
		}
		return Classification{Kind: CompilerDirective, PayloadOffset: i, Sentinel: tag}, true
	}
	return Classification{}, false
}

// includeLine returns the offset of the opening quote of an INCLUDE line.
func includeLine(line string) (int, bool) {
	i := skipWhiteSpace(line, 0)
	for _, want := range []byte("include") {
		if toLower(byteAt(line, i)) != want {
			return 0, false
		}
		i++
	}
	i = skipWhiteSpace(line, i)
	if c := byteAt(line, i); c == '"' || c == '\'' {
		return i, true
	}
	return 0, false
}

// preprocessorDirectiveLine returns the offset of the directive name after
// the '#' of a preprocessor directive line.
func (p *Prescanner) preprocessorDirectiveLine(line string) (int, bool) {
	var i int
	for byteAt(line, i) == ' ' {
		i++
	}
	if byteAt(line, i) == '#' {
		if p.form == FixedForm && i == 5 {
			// A '#' in column 6 marks a continuation line.
			return 0, false
		}
	} else {
		i = skipWhiteSpace(line, i)
		if byteAt(line, i) != '#' {
			return 0, false
		}
	}
	return skipWhiteSpace(line, i+1), true
}

// isCComment returns whether a C-style comment starts at text[i].
func (p *Prescanner) isCComment(text string, i int) bool {
	if byteAt(text, i) != '/' || byteAt(text, i+1) != '*' {
		return false
	}
	return p.inPreprocessorDirective ||
		(!p.s.inCharLiteral && p.features.IsEnabled(ClassicCComments))
}

// skipCComment returns the offset just past the end of the C-style comment
// that starts at text[i]. It returns false if the comment is not closed.
func skipCComment(text string, i int) (int, bool) {
	end := strings.Index(text[min(i+2, len(text)):], "*/")
	if end < 0 {
		return 0, false
	}
	return i + 2 + end + 2, true
}

func (p *Prescanner) skipWhiteSpaceAndCComments(text string, i int) int {
	for {
		switch {
		case byteAt(text, i) == ' ' || byteAt(text, i) == '\t':
			i++
		case p.isCComment(text, i):
			after, ok := skipCComment(text, i)
			if !ok {
				return i
			}
			i = after
		default:
			return i
		}
	}
}

func skipWhiteSpace(text string, i int) int {
	for c := byteAt(text, i); c == ' ' || c == '\t'; c = byteAt(text, i) {
		i++
	}
	return i
}

// byteAt returns text[i], or a newline if i is past the end of text.
func byteAt(text string, i int) byte {
	if i < len(text) {
		return text[i]
	}
	return '\n'
}

func isFixedFormCommentChar(c byte) bool {
	return c == '!' || c == '*' || c == 'C' || c == 'c'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isLegalInIdentifier(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
