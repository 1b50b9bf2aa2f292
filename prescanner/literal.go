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

// quotedCharacterLiteral scans a character literal whose opening quote is
// the current character. start is the offset of the whole token, which may
// have a kind prefix.
func (p *Prescanner) quotedCharacterLiteral(tokens *token.Sequence, start int) {
	quote := p.cur()
	end := p.at + 1
	p.s.inCharLiteral = true
	escapes := p.features.IsEnabled(BackslashEscapes)
	var escaped bool
	for {
		c := p.cur()
		if c == '\n' {
			if !p.inPreprocessorDirective {
				p.report.Error(ErrIncompleteLiteral{Span: p.span(start, end)})
			}
			break
		}

		if c == '\\' {
			if escapes {
				escaped = !escaped
			} else {
				// The parser always interprets escapes; double the backslash
				// so that it sees this one literally.
				p.emitInsertedChar(tokens, '\\')
			}
		} else {
			escaped = false
		}
		p.emitQuotedChar(tokens, c)
		for p.padOutCharacterLiteral(tokens) {
		}

		end = p.at + 1
		p.nextChar()
		if p.cur() == quote && !escaped {
			// A doubled quote stands for one quote character; both are kept
			// here. Fixed form allows blanks between them.
			p.emitChar(tokens, quote)
			p.s.inCharLiteral = false
			p.nextChar()
			if p.inFixedFormSource() {
				p.skipSpaces()
			}
			if p.cur() != quote {
				break
			}
			p.s.inCharLiteral = true
		}
	}
	p.s.inCharLiteral = false
}

// emitQuotedChar emits a character of a character literal. Control
// characters are written as escape sequences.
func (p *Prescanner) emitQuotedChar(tokens *token.Sequence, c byte) {
	if c >= ' ' {
		p.emitChar(tokens, c)
		return
	}
	p.emitInsertedChar(tokens, '\\')
	if esc, ok := escapeLetter(c); ok {
		p.emitChar(tokens, esc)
		return
	}
	p.emitInsertedChar(tokens, '0'+(c>>6)&3)
	p.emitInsertedChar(tokens, '0'+(c>>3)&7)
	p.emitInsertedChar(tokens, '0'+c&7)
}

func escapeLetter(c byte) (byte, bool) {
	switch c {
	case '\a':
		return 'a', true
	case '\b':
		return 'b', true
	case '\f':
		return 'f', true
	case '\n':
		return 'n', true
	case '\r':
		return 'r', true
	case '\t':
		return 't', true
	case '\v':
		return 'v', true
	}
	return 0, false
}

// hollerith scans the count characters of a Hollerith literal whose H is the
// current character. start is the offset of the count.
//
// Characters are decoded in the file's encoding and always emitted as UTF-8.
func (p *Prescanner) hollerith(tokens *token.Sequence, count, start int) {
	p.s.inCharLiteral = true
	p.emitChar(tokens, 'H')

	want := count
	var buf []byte
	for ; count > 0; count-- {
		if p.padOutCharacterLiteral(tokens) {
			continue
		}
		p.nextChar()
		if p.cur() == '\n' {
			p.report.Warn(ErrHollerithTruncated{
				Span:    p.span(start, p.at),
				Want:    want,
				Missing: count,
			})
			break
		}

		r, n := p.encoding.Decode(p.text[p.at:])
		if n == 0 {
			p.report.Error(ErrHollerithBadChar{Span: p.span(start, p.at+1), Encoding: p.encoding})
			break
		}
		buf = source.EncodeUTF8(buf[:0], r)
		for _, b := range buf {
			p.emitChar(tokens, b)
		}
		p.at += n - 1
	}

	if p.cur() != '\n' {
		p.nextChar()
	}
	p.s.inCharLiteral = false
}

// padOutCharacterLiteral treats a short fixed-form line as if it were
// blank-padded through the column limit, and walks onto a continuation
// line once the limit is reached. It reports whether it emitted a blank.
func (p *Prescanner) padOutCharacterLiteral(tokens *token.Sequence) bool {
	for p.form == FixedForm && !p.s.tabInLine && p.char(p.at+1) == '\n' {
		if p.column < p.columnLimit {
			tokens.Put(' ', p.space)
			p.column++
			return true
		}
		if !p.fixedFormContinuation(false) {
			return false
		}
		// Back up onto the continuation mark; the caller's next advance
		// lands on the first character of the continuation.
		p.at--
		p.column--
		if p.s.tabInLine {
			return false
		}
	}
	return false
}
