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

// continuation follows a line ending or '&' onto a continuation line. It
// reports whether it did; the current character is then the first
// character of the continuation line's content.
func (p *Prescanner) continuation(mightNeedFixedFormSpace bool) bool {
	if c := p.cur(); c != '\n' && c != '&' {
		return false
	}
	if p.form == FixedForm {
		return p.fixedFormContinuation(mightNeedFixedFormSpace)
	}
	return p.freeFormContinuation()
}

func (p *Prescanner) fixedFormContinuation(mightNeedSpace bool) bool {
	// '&' is accepted as a continuation marker in fixed form too, but not
	// inside a character literal.
	if p.cur() == '&' && p.s.inCharLiteral {
		return false
	}
	for {
		if next, ok := p.fixedFormContinuationLine(mightNeedSpace); ok {
			p.beginSourceLine(next)
			p.column = 7
			p.advanceLine()
			return true
		}
		if !p.skipCommentLine(false) {
			return false
		}
	}
}

func (p *Prescanner) freeFormContinuation() bool {
	i := p.at
	ampersand := p.char(i) == '&'
	if ampersand {
		i = skipWhiteSpace(p.text, i+1)
	}
	if c := p.char(i); c != '\n' {
		if p.s.inCharLiteral {
			return false
		}
		if c != '!' && p.features.ShouldWarn(CruftAfterAmpersand) {
			p.report.Warn(ErrCruftAfterAmpersand{Span: p.span(i, lineEnd(p.text, i))})
		}
	}

	for {
		if next, ok := p.freeFormContinuationLine(ampersand); ok {
			p.beginSourceLine(next)
			p.advanceLine()
			return true
		}
		if !p.skipCommentLine(ampersand) {
			return false
		}
	}
}

// fixedFormContinuationLine returns the offset at which the content of the
// next line starts, if it continues the current one.
func (p *Prescanner) fixedFormContinuationLine(mightNeedSpace bool) (int, bool) {
	line := p.nextLine
	if line >= len(p.text) {
		return 0, false
	}
	p.s.tabInLine = false
	col := func(n int) byte { return p.char(line + n - 1) }

	if p.inCompilerDirective() {
		// Only a continuation of the same directive will do.
		if !isFixedFormCommentChar(col(1)) {
			return 0, false
		}
		j := 1
		for ; j < 5 && j <= len(p.sentinel); j++ {
			if p.sentinel[j-1] != toLower(col(j+1)) {
				return 0, false
			}
		}
		for ; j < 5; j++ {
			if col(j+1) != ' ' {
				return 0, false
			}
		}
		if !isContinuationMark(col(6)) {
			return 0, false
		}
		if col(7) != ' ' && mightNeedSpace {
			p.s.insertASpace = true
		}
		return line + 6, true
	}

	if col(1) == '&' && p.features.IsEnabled(FixedFormContinuationWithColumn1Ampersand) {
		if p.features.ShouldWarn(FixedFormContinuationWithColumn1Ampersand) {
			p.report.Warn(ErrNonstandard{Span: p.span(line, line+1), What: "column 1 '&' continuation"})
		}
		return line + 1, true
	}
	if col(1) == '\t' && col(2) >= '1' && col(2) <= '9' {
		// A VAX extension.
		p.s.tabInLine = true
		return line + 2, true
	}
	if col(1) == ' ' && col(2) == ' ' && col(3) == ' ' && col(4) == ' ' && col(5) == ' ' &&
		isContinuationMark(col(6)) {
		return line + 6, true
	}
	if p.s.delimiterNesting > 0 && !p.s.inCharLiteral && !isFixedFormCommentChar(col(1)) {
		// A character literal only continues onto a marked line.
		return line, true
	}
	return 0, false
}

// isContinuationMark returns whether c in column 6 marks a continuation
// line.
func isContinuationMark(c byte) bool {
	return c != '\n' && c != '\t' && c != ' ' && c != '0'
}

// freeFormContinuationLine returns the offset at which the content of the
// next line starts, if it continues the current one.
func (p *Prescanner) freeFormContinuationLine(ampersand bool) (int, bool) {
	if p.nextLine >= len(p.text) {
		return 0, false
	}
	i := skipWhiteSpace(p.text, p.nextLine)

	if p.inCompilerDirective() {
		if p.char(i) != '!' {
			return 0, false
		}
		i++
		for j := range len(p.sentinel) {
			if p.sentinel[j] != toLower(p.char(i)) {
				return 0, false
			}
			i++
		}
		i = skipWhiteSpace(p.text, i)
		switch {
		case p.char(i) == '&':
			if !ampersand {
				p.s.insertASpace = true
			}
			return i + 1, true
		case ampersand:
			return i, true
		default:
			return 0, false
		}
	}

	switch c := p.char(i); {
	case c == '&':
		return i + 1, true
	case c == '!' || c == '\n' || c == '#':
		return 0, false
	case ampersand || p.s.delimiterNesting > 0:
		if i > p.nextLine {
			// Keep one blank of the indentation.
			i--
		} else {
			p.s.insertASpace = true
		}
		return i, true
	default:
		return 0, false
	}
}

// skipCommentLine skips the next line if it can come between a line and its
// continuation. Conditional compilation and most other preprocessor
// directives are executed as they are skipped.
//
// afterAmpersand is set when the current line ended with an explicit '&'.
func (p *Prescanner) skipCommentLine(afterAmpersand bool) bool {
	if p.nextLine >= len(p.text) {
		if afterAmpersand && p.nesting > 0 {
			// An '&' on the last line of an included file suppresses the
			// newline of that line.
			p.skipToEndOfLine()
			p.omitNewline = true
		}
		return false
	}

	switch p.ClassifyLine(p.text[p.nextLine:]).Kind {
	case Comment:
		p.advanceLine()
		return true
	case ConditionalCompilationDirective, PreprocessorDirective:
		if p.inPreprocessorDirective {
			return false
		}
		p.engine.Directive(p.tokenizePreprocessorDirective(), p)
		return true
	case IncludeDirective, IncludeLine:
		if p.inPreprocessorDirective || !afterAmpersand {
			return false
		}
		// Process the include as the next statement, then skip the '&'
		// that continues this line after it.
		p.skipToEndOfLine()
		p.omitNewline = true
		p.skipLeadingAmpersand = true
		return false
	default:
		// This includes #define and #undef, which must not change text
		// that has already been scanned.
		return false
	}
}

// lineEnd returns the offset of the newline ending the line that contains
// text[i].
func lineEnd(text string, i int) int {
	for byteAt(text, i) != '\n' {
		i++
	}
	return i
}
