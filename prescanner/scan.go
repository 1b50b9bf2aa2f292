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
	"github.com/bufbuild/fprescan/token"
)

// The largest Hollerith count that is recognized: 256 full fixed-form
// lines.
const maxHollerith = 256 * (132 - 6)

func (p *Prescanner) emitChar(tokens *token.Sequence, ch byte) {
	tokens.Put(ch, p.provenance(p.at))
}

func (p *Prescanner) emitInsertedChar(tokens *token.Sequence, ch byte) {
	tokens.Put(ch, p.sources.InsertionProvenance(ch))
}

// emitCharAndAdvance emits ch with the provenance of the current character,
// advances, and returns the new current character.
func (p *Prescanner) emitCharAndAdvance(tokens *token.Sequence, ch byte) byte {
	p.emitChar(tokens, ch)
	p.nextChar()
	return p.cur()
}

// nextChar advances to the next significant character of the logical line,
// following continuation lines and skipping ignored columns and comments.
func (p *Prescanner) nextChar() {
	if p.cur() == '\n' {
		panic("fprescan/prescanner: advanced past the end of a line")
	}
	p.at++
	p.column++

	if p.inPreprocessorDirective {
		p.skipCComments()
		return
	}

	var mightNeedSpace bool
	if p.mustSkipToEndOfLine() {
		p.skipToEndOfLine()
	} else {
		mightNeedSpace = p.cur() == '\n'
	}
	for ; p.continuation(mightNeedSpace); mightNeedSpace = false {
		if p.mustSkipToEndOfLine() {
			p.skipToEndOfLine()
		}
	}
	if p.cur() == '\t' {
		p.s.tabInLine = true
	}
}

func (p *Prescanner) skipCComments() {
	for {
		switch {
		case p.isCComment(p.text, p.at):
			after, ok := skipCComment(p.text, p.at)
			if !ok {
				// "/*" can appear in a FORMAT statement; an unclosed comment
				// is not an error.
				return
			}
			p.column += after - p.at
			// The comment may have spanned lines.
			p.nextLine = after
			p.at = after
			p.advanceLine()
		case p.inPreprocessorDirective && p.cur() == '\\' && p.at+2 < len(p.text) &&
			p.char(p.at+1) == '\n' && p.nextLine < len(p.text):
			p.beginSourceLineAndAdvance()
		default:
			return
		}
	}
}

func (p *Prescanner) skipSpaces() {
	for c := p.cur(); c == ' ' || c == '\t'; c = p.cur() {
		p.nextChar()
	}
	p.s.insertASpace = false
}

func (p *Prescanner) skipToEndOfLine() {
	for p.cur() != '\n' {
		p.at++
		p.column++
	}
}

func (p *Prescanner) mustSkipToEndOfLine() bool {
	if p.form == FixedForm && p.column > p.columnLimit && !p.s.tabInLine {
		return true // The right margin, columns 73 through 80.
	}
	return p.cur() == '!' && !p.s.inCharLiteral
}

// labelField scans columns 1 through 6 of a fixed-form line and emits them
// as a label token padded to six characters.
func (p *Prescanner) labelField(tokens *token.Sequence) {
	outCol := 1
	for ; p.cur() != '\n' && p.column <= 6; p.at++ {
		c := p.cur()
		if c == '\t' {
			p.at++
			p.column = 7
			break
		}
		blank := c == ' ' ||
			(c == '0' && p.column == 6) ||
			(p.column == 1 && (c == 'D' || c == 'd')) // A compiled debug line.
		if !blank {
			p.emitChar(tokens, c)
			outCol++
		}
		p.column++
	}
	if outCol > 1 {
		tokens.CloseToken()
	}

	switch {
	case outCol == 1:
		tokens.PutString("      ", p.sixSpaces)
		tokens.CloseToken()
	case outCol < 7:
		for ; outCol < 7; outCol++ {
			tokens.Put(' ', p.space)
		}
		tokens.CloseToken()
	}
}

// nextToken scans one token of the logical line into tokens. It returns
// false at the end of the line.
func (p *Prescanner) nextToken(tokens *token.Sequence) bool {
	if p.inFixedFormSource() {
		p.skipSpaces()
	} else {
		if p.cur() == '/' && p.isCComment(p.text, p.at) {
			if p.features.ShouldWarn(ClassicCComments) {
				p.report.Warn(ErrNonstandard{Span: p.span(p.at, p.at+2), What: "C-style comment"})
			}
			p.skipCComments()
		}
		if c := p.cur(); c == ' ' || c == '\t' {
			// Compress free-form white space into a single blank.
			space := p.at
			previous := byte(' ')
			if p.at > 0 {
				previous = p.text[p.at-1]
			}
			p.nextChar()
			p.skipSpaces()
			switch {
			case p.cur() == '\n':
				// White space at the end of a line is dropped.
			case !p.inPreprocessorDirective &&
				(previous == '(' || p.cur() == '(' || p.cur() == ')'):
				// Drop white space after '(' and around ')' so that names
				// such as OPERATOR( + ) come out contiguous. Directives
				// keep it, so that "#define f (x)" is not a function-like
				// macro.
			default:
				tokens.Put(' ', p.provenance(space))
				tokens.CloseToken()
				return true
			}
		}
	}

	if p.s.insertASpace {
		tokens.Put(' ', p.space)
		p.s.insertASpace = false
	}
	if p.cur() == '\n' {
		tokens.CloseToken()
		return false
	}

	start := p.at
	c := p.cur()
	switch {
	case c == '\'' || c == '"':
		p.quotedCharacterLiteral(tokens, start)
		p.s.preventHollerith = false

	case isDigit(c):
		var n, digits int
		for {
			if n < maxHollerith {
				n = 10*n + int(c-'0')
			}
			p.emitCharAndAdvance(tokens, c)
			digits++
			if p.inFixedFormSource() {
				p.skipSpaces()
			}
			if c = p.cur(); !isDigit(c) {
				break
			}
		}

		switch {
		case (c == 'h' || c == 'H') && n > 0 && n < maxHollerith && !p.s.preventHollerith:
			p.hollerith(tokens, n, start)
		case c == '.':
			for isDigit(p.emitCharAndAdvance(tokens, p.cur())) {
			}
			p.exponentAndKind(tokens)
		case p.exponentAndKind(tokens):
		case digits == 1 && n == 0 && (c == 'x' || c == 'X') && p.inPreprocessorDirective:
			for {
				p.emitCharAndAdvance(tokens, p.cur())
				if !isHexDigit(p.cur()) {
					break
				}
			}
		case isLetter(c):
			// Consume the I of FORMAT(3I9HHOLLERITH) on its own, so that
			// 9HHOLLERITH is scanned as a Hollerith literal next.
			p.emitCharAndAdvance(tokens, c)
		case c == '_' && (p.char(p.at+1) == '\'' || p.char(p.at+1) == '"'):
			p.emitCharAndAdvance(tokens, c)
			p.quotedCharacterLiteral(tokens, start)
		}
		p.s.preventHollerith = false

	case c == '.':
		next := p.emitCharAndAdvance(tokens, '.')
		if !p.inPreprocessorDirective && isDigit(next) {
			for isDigit(p.emitCharAndAdvance(tokens, p.cur())) {
			}
			p.exponentAndKind(tokens)
		} else if next == '.' && p.emitCharAndAdvance(tokens, '.') == '.' {
			// The ellipsis of a variadic macro.
			p.emitCharAndAdvance(tokens, '.')
		}
		p.s.preventHollerith = false

	case isLegalInIdentifier(c):
		for isLegalInIdentifier(p.emitCharAndAdvance(tokens, p.cur())) {
		}
		if c := p.cur(); c == '\'' || c == '"' {
			p.quotedCharacterLiteral(tokens, start)
			p.s.preventHollerith = false
		} else {
			// In "DO 10 H = 1, 2", the label is not a Hollerith count.
			p.s.preventHollerith = true
		}

	case c == '*':
		if p.emitCharAndAdvance(tokens, '*') == '*' {
			p.emitCharAndAdvance(tokens, '*')
		} else {
			// CHARACTER*2H declares H, but DATA C/N*2H  / is a repeated
			// Hollerith.
			p.s.preventHollerith = !p.s.slashInLine
		}

	default:
		switch {
		case c == '(' || c == '[':
			p.s.delimiterNesting++
		case (c == ')' || c == ']') && p.s.delimiterNesting > 0:
			p.s.delimiterNesting--
		}
		next := p.emitCharAndAdvance(tokens, c)
		p.s.preventHollerith = false
		if isTwoCharOperator(c, next) {
			p.emitCharAndAdvance(tokens, next)
		} else if c == '/' {
			p.s.slashInLine = true
		}
	}

	tokens.CloseToken()
	return true
}

func isTwoCharOperator(c, next byte) bool {
	switch {
	case next == '=':
		return c == '<' || c == '>' || c == '/' || c == '=' || c == '!'
	case c == next:
		switch c {
		case '/', ':', '*', '#', '&', '|', '<', '>':
			return true
		}
	case c == '=' && next == '>':
		return true
	}
	return false
}

// exponentAndKind scans an exponent and kind suffix, if there is one.
func (p *Prescanner) exponentAndKind(tokens *token.Sequence) bool {
	ed := toLower(p.cur())
	if ed != 'e' && ed != 'd' {
		return false
	}
	p.emitCharAndAdvance(tokens, ed)
	if c := p.cur(); c == '+' || c == '-' {
		p.emitCharAndAdvance(tokens, c)
	}
	for isDigit(p.cur()) {
		p.emitCharAndAdvance(tokens, p.cur())
	}
	if p.cur() == '_' {
		for isLegalInIdentifier(p.emitCharAndAdvance(tokens, p.cur())) {
		}
	}
	return true
}
