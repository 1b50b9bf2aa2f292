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

// Package token provides [Sequence], the unit of exchange between the
// prescanner, the macro engine and the cooked stream.
//
// A Sequence is a run of characters split into tokens at explicit
// boundaries. Every character carries its own [source.Provenance].
package token

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bufbuild/fprescan/source"
)

// Sequence is an ordered sequence of tokens.
//
// Characters are appended to the open token with [Sequence.Put]; the token
// is closed with [Sequence.CloseToken]. The zero value is an empty sequence.
type Sequence struct {
	chars      []byte
	provenance []source.Provenance // One per byte of chars.
	starts     []int               // Start offset of every closed token.
	nextStart  int                 // Start offset of the open token.
}

// New returns a sequence holding text as a single token, whose bytes have
// consecutive provenance starting at r.Start.
func New(text string, r source.Range) *Sequence {
	s := new(Sequence)
	s.PutString(text, r)
	s.CloseToken()
	return s
}

// Len returns the number of closed tokens.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.starts)
}

// Chars returns the number of characters, including those of an open token.
func (s *Sequence) Chars() int {
	if s == nil {
		return 0
	}
	return len(s.chars)
}

// IsEmpty returns whether this sequence has no characters at all.
func (s *Sequence) IsEmpty() bool {
	return s.Chars() == 0
}

// Put appends a character to the open token.
func (s *Sequence) Put(ch byte, p source.Provenance) {
	s.chars = append(s.chars, ch)
	s.provenance = append(s.provenance, p)
}

// PutString appends text to the open token; its bytes have consecutive
// provenance starting at r.Start.
func (s *Sequence) PutString(text string, r source.Range) {
	if len(text) != r.Size {
		panic(fmt.Sprintf("fprescan/token: text of length %d does not fit range %v", len(text), r))
	}
	for i := range len(text) {
		s.Put(text[i], r.At(i))
	}
}

// CloseToken closes the open token. Closing an empty token does nothing.
func (s *Sequence) CloseToken() {
	if s.nextStart < len(s.chars) {
		s.starts = append(s.starts, s.nextStart)
		s.nextStart = len(s.chars)
	}
}

// PutToken appends a copy of the ith token of that as a new, closed token.
func (s *Sequence) PutToken(that *Sequence, i int) {
	start, end := that.bounds(i)
	s.CloseToken()
	s.chars = append(s.chars, that.chars[start:end]...)
	s.provenance = append(s.provenance, that.provenance[start:end]...)
	s.CloseToken()
}

// PutSequence appends a copy of every token of that.
func (s *Sequence) PutSequence(that *Sequence) {
	for i := range that.Len() {
		s.PutToken(that, i)
	}
}

// RemoveLastToken removes the last closed token.
func (s *Sequence) RemoveLastToken() {
	if len(s.starts) == 0 {
		panic("fprescan/token: RemoveLastToken on empty sequence")
	}
	start := s.starts[len(s.starts)-1]
	s.starts = s.starts[:len(s.starts)-1]
	s.chars = s.chars[:start]
	s.provenance = s.provenance[:start]
	s.nextStart = start
}

// Token returns the text of the ith token.
func (s *Sequence) Token(i int) string {
	start, end := s.bounds(i)
	return string(s.chars[start:end])
}

// TokenStart returns the character offset of the ith token.
func (s *Sequence) TokenStart(i int) int {
	start, _ := s.bounds(i)
	return start
}

// TokenRange returns the smallest provenance range covering the ith token.
func (s *Sequence) TokenRange(i int) source.Range {
	start, end := s.bounds(i)
	return s.cover(start, end)
}

// Tokens returns an iterator over the index and text of every token.
func (s *Sequence) Tokens() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i := range s.Len() {
			if !yield(i, s.Token(i)) {
				return
			}
		}
	}
}

// Char returns the character at offset.
func (s *Sequence) Char(offset int) byte {
	return s.chars[offset]
}

// SetChar replaces the character at offset, keeping its provenance.
func (s *Sequence) SetChar(offset int, ch byte) {
	s.chars[offset] = ch
}

// Provenance returns the provenance of the character at offset.
func (s *Sequence) Provenance(offset int) source.Provenance {
	return s.provenance[offset]
}

// Range returns the smallest provenance range covering every character.
//
// This can straddle files if the sequence was assembled from several, so it
// is only suitable for diagnostics.
func (s *Sequence) Range() source.Range {
	return s.cover(0, s.Chars())
}

func (s *Sequence) cover(start, end int) source.Range {
	var r source.Range
	for _, p := range s.provenance[start:end] {
		r = r.Cover(source.RangeOf(p))
	}
	return r
}

// String renders all characters of this sequence as a string.
func (s *Sequence) String() string {
	if s == nil {
		return ""
	}
	return string(s.chars)
}

// Emit appends every character of this sequence to cooked.
func (s *Sequence) Emit(cooked *source.Cooked) {
	for i, ch := range s.chars {
		cooked.Put(ch, s.provenance[i])
	}
}

// IsBlank returns whether the ith token consists only of blanks.
func (s *Sequence) IsBlank(i int) bool {
	return strings.Trim(s.Token(i), " ") == ""
}

// HasBlanks returns whether any blank token starts at or after character
// offset firstChar.
func (s *Sequence) HasBlanks(firstChar int) bool {
	for i := range s.Len() {
		if s.starts[i] >= firstChar && s.IsBlank(i) {
			return true
		}
	}
	return false
}

// HasRedundantBlanks returns whether two consecutive blank tokens appear,
// the second starting at or after character offset firstChar.
func (s *Sequence) HasRedundantBlanks(firstChar int) bool {
	var lastWasBlank bool
	for i := range s.Len() {
		isBlank := s.IsBlank(i)
		if isBlank && lastWasBlank && s.starts[i] >= firstChar {
			return true
		}
		lastWasBlank = isBlank
	}
	return false
}

// RemoveBlanks removes every blank token that starts at or after character
// offset firstChar.
func (s *Sequence) RemoveBlanks(firstChar int) *Sequence {
	return s.filter(func(i int, _ bool) bool {
		return s.starts[i] < firstChar || !s.IsBlank(i)
	})
}

// RemoveRedundantBlanks removes each blank token that follows another blank
// token and starts at or after character offset firstChar.
func (s *Sequence) RemoveRedundantBlanks(firstChar int) *Sequence {
	return s.filter(func(i int, lastWasBlank bool) bool {
		return s.starts[i] < firstChar || !lastWasBlank || !s.IsBlank(i)
	})
}

// ClipComment removes the first token whose first non-blank character is
// '!', together with everything after it and a blank token before it.
//
// If skipFirst is set, the first such token is kept and the second one is
// clipped instead; this keeps the sentinel of a compiler directive.
func (s *Sequence) ClipComment(skipFirst bool) *Sequence {
	for i := range s.Len() {
		if !strings.HasPrefix(strings.TrimLeft(s.Token(i), " "), "!") {
			continue
		}
		if skipFirst {
			skipFirst = false
			continue
		}
		if i > 0 && s.IsBlank(i-1) {
			i--
		}
		return s.filter(func(j int, _ bool) bool { return j < i })
	}
	return s
}

// filter keeps the closed tokens for which keep returns true. keep is also
// told whether the previous token, kept or not, was blank.
func (s *Sequence) filter(keep func(i int, lastWasBlank bool) bool) *Sequence {
	var result Sequence
	var lastWasBlank bool
	for i := range s.Len() {
		if keep(i, lastWasBlank) {
			result.PutToken(s, i)
		}
		lastWasBlank = s.IsBlank(i)
	}
	*s = result
	return s
}

// ToLowerCase folds letters to lower case, except inside character and
// Hollerith literals. Kind prefixes and BOZ prefixes of character-like
// literals are folded, as is the H of a Hollerith literal.
func (s *Sequence) ToLowerCase() *Sequence {
	for i := range s.Len() {
		start, end := s.bounds(i)
		tok := s.chars[start:end]

		p := 0
		for p < len(tok)-1 && tok[p] == ' ' {
			p++
		}
		last := len(tok) - 1
		for last > p+1 && tok[last] == ' ' {
			last--
		}

		switch {
		case isDigit(tok[p]):
			for p < len(tok) && isDigit(tok[p]) {
				p++
			}
			switch {
			case p >= len(tok):
			case tok[p] == 'h' || tok[p] == 'H':
				// Hollerith: only the H is folded.
				tok[p] = 'h'
			case tok[p] == '_':
				// Kind-prefixed character literal, such as 1_"ABC".
			default:
				// Exponent.
				lower(tok[p:])
			}
		case tok[last] == '\'' || tok[last] == '"':
			quote := tok[last]
			switch {
			case tok[p] == quote:
				// Plain character literal.
			case p+1 < len(tok) && tok[p+1] == quote:
				// BOZ constant, such as Z'FF'.
				lower(tok[p:])
			default:
				// Kind-prefixed character literal, such as K_"ABC".
				for ; tok[p] != quote; p++ {
					tok[p] = toLower(tok[p])
				}
			}
		default:
			lower(tok[p:])
		}
	}
	return s
}

// bounds returns the character offsets of the ith closed token.
func (s *Sequence) bounds(i int) (start, end int) {
	if i < 0 || i >= len(s.starts) {
		panic(fmt.Sprintf("fprescan/token: token index %d out of range [0, %d)", i, len(s.starts)))
	}
	start = s.starts[i]
	end = s.nextStart
	if i+1 < len(s.starts) {
		end = s.starts[i+1]
	}
	return start, end
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func lower(text []byte) {
	for i, ch := range text {
		text[i] = toLower(ch)
	}
}
