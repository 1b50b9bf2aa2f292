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
	"github.com/bufbuild/fprescan/source"
	"github.com/bufbuild/fprescan/token"
)

// statement prescans one logical line, starting at nextLine.
func (p *Prescanner) statement() {
	p.s = scanState{}
	tokens := new(token.Sequence)
	line := p.ClassifyLine(p.text[p.nextLine:])
	switch line.Kind {
	case Comment:
		// Advance to the '!' or newline first; a C-style comment before it
		// may span lines.
		p.nextLine += line.PayloadOffset
		p.advanceLine()
		return

	case IncludeLine:
		start := p.nextLine
		p.fortranInclude(p.text[start:], line.PayloadOffset, func(i int) source.Provenance {
			return p.provenance(start + i)
		})
		p.advanceLine()
		return

	case ConditionalCompilationDirective, IncludeDirective, DefinitionDirective, PreprocessorDirective:
		p.engine.Directive(p.tokenizePreprocessorDirective(), p)
		return

	case CompilerDirective:
		p.sentinel = line.Sentinel
		p.beginSourceLineAndAdvance()
		if p.form == FixedForm {
			if !isFixedFormCommentChar(p.cur()) {
				panic("fprescan/prescanner: fixed-form directive without comment character")
			}
		} else {
			for c := p.cur(); c == ' ' || c == '\t'; c = p.cur() {
				p.at++
				p.column++
			}
			if p.cur() != '!' {
				panic("fprescan/prescanner: free-form directive without '!'")
			}
		}

		if p.sentinel == "$" {
			// An OpenMP conditional compilation line: drop the sentinel and
			// scan the rest as ordinary source.
			p.at += 2
			p.column += 2
			if p.form == FixedForm {
				p.labelField(tokens)
			} else {
				p.skipSpaces()
			}
			break
		}

		p.emitChar(tokens, '!')
		p.at++
		p.column++
		for i := range len(p.sentinel) {
			p.emitChar(tokens, p.sentinel[i])
			p.at++
			p.column++
		}
		if p.cur() == ' ' {
			p.emitChar(tokens, ' ')
			p.at++
			p.column++
		}
		tokens.CloseToken()

	case Source:
		p.beginSourceLineAndAdvance()
		switch {
		case p.form == FixedForm:
			p.labelField(tokens)
		case p.skipLeadingAmpersand:
			p.skipLeadingAmpersand = false
			if i := skipWhiteSpace(p.text, p.at); p.char(i) == '&' {
				i++
				p.column += i - p.at
				p.at = i
			}
		default:
			p.skipSpaces()
		}
	}

	for p.nextToken(tokens) {
	}

	newline := p.provenance(p.at)
	if replaced, ok := p.engine.MacroReplacement(tokens, p); ok {
		p.reclassify(replaced, newline)
	} else {
		tokens.ToLowerCase()
		if line.Kind == CompilerDirective {
			p.sourceFormChange(tokens.String())
		}
		tokens.Emit(p.cooked)
	}

	if p.omitNewline {
		p.omitNewline = false
	} else {
		p.cooked.Put('\n', newline)
	}
	p.sentinel = ""
}

// reclassify emits a line that the macro engine rewrote. The rewritten
// line is classified afresh, since replacement can change its kind.
func (p *Prescanner) reclassify(line *token.Sequence, newline source.Provenance) {
	text := line.String() + "\n"
	loc := func(i int) source.Provenance {
		if i < line.Chars() {
			return line.Provenance(i)
		}
		return newline
	}

	switch c := p.ClassifyLine(text); c.Kind {
	case Comment:

	case IncludeLine:
		p.fortranInclude(text, c.PayloadOffset, loc)

	case ConditionalCompilationDirective, IncludeDirective, DefinitionDirective, PreprocessorDirective:
		// Never executed; doing so could recurse without end.
		p.report.Warn(ErrResemblesDirective{Span: p.sources.Span(line.TokenRange(0))})
		line.ToLowerCase().Emit(p.cooked)

	case CompilerDirective:
		if line.HasRedundantBlanks(0) {
			line.RemoveRedundantBlanks(0)
		}
		normalizeCommentMarker(line)
		line.ToLowerCase()
		p.sourceFormChange(line.String())
		line.ClipComment(true).Emit(p.cooked)

	case Source:
		if p.form == FixedForm {
			if line.HasBlanks(6) {
				line.RemoveBlanks(6)
			}
		} else if line.HasRedundantBlanks(0) {
			line.RemoveRedundantBlanks(0)
		}
		line.ToLowerCase().ClipComment(false).Emit(p.cooked)
	}
}

// tokenizePreprocessorDirective tokenizes the line at nextLine as a
// preprocessor directive and advances past it.
func (p *Prescanner) tokenizePreprocessorDirective() *token.Sequence {
	if p.nextLine >= len(p.text) || p.inPreprocessorDirective {
		panic("fprescan/prescanner: no directive line to tokenize")
	}

	// A directive can be executed in the middle of a continued statement;
	// the statement's scanner state must survive it.
	saved := p.s
	p.s = scanState{}
	p.inPreprocessorDirective = true
	p.beginSourceLineAndAdvance()

	tokens := new(token.Sequence)
	for p.nextToken(tokens) {
	}

	p.inPreprocessorDirective = false
	p.s = saved
	return tokens
}

// normalizeCommentMarker replaces the comment character that introduces a
// compiler directive with '!'.
func normalizeCommentMarker(dir *token.Sequence) {
	for i := range dir.Chars() {
		c := dir.Char(i)
		if c == ' ' {
			continue
		}
		if !isFixedFormCommentChar(c) {
			panic("fprescan/prescanner: compiler directive without comment character")
		}
		dir.SetChar(i, '!')
		return
	}
	panic("fprescan/prescanner: compiler directive is blank")
}

// sourceFormChange applies a !dir$ free or !dir$ fixed directive.
func (p *Prescanner) sourceFormChange(dir string) {
	switch dir {
	case "!dir$ free":
		p.form = FreeForm
	case "!dir$ fixed":
		p.form = FixedForm
	}
}
