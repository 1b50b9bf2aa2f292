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
	"slices"
	"strconv"

	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/token"
)

// Binary operators, from loosest to tightest binding.
var binaryOperators = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", ">", "<=", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

// condition evaluates the controlling expression of an #if or #elif.
func (e *Engine) condition(d directive, ctx prescanner.Context) bool {
	var words []string
	for i := 2; i < len(d.words); i++ {
		words = append(words, d.word(i))
	}
	if len(words) == 0 {
		errorf(ctx, d.rangeOf(1), "#%s: missing expression", d.name())
		return false
	}

	ev := &evaluator{
		words: e.expandWords(words, nil),
		defined: e.IsDefined,
	}
	v := ev.binary(0)
	if ev.failed || ev.pos != len(ev.words) {
		errorf(ctx, d.rangeOf(1), "#%s: invalid expression", d.name())
		return false
	}
	return v != 0
}

// expandWords replaces the macros among words with their bodies, except for
// the operands of defined.
func (e *Engine) expandWords(words []string, active []string) []string {
	var out []string
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w == "defined" {
			end := min(i+2, len(words))
			if i+1 < len(words) && words[i+1] == "(" {
				end = min(i+4, len(words))
			}
			out = append(out, words[i:end]...)
			i = end - 1
			continue
		}

		m, ok := e.macros[w]
		if !ok || slices.Contains(active, w) {
			out = append(out, w)
			continue
		}
		out = append(out, e.expandWords(wordsOf(m.body), append(active, w))...)
	}
	return out
}

func wordsOf(s *token.Sequence) []string {
	var words []string
	for i, tok := range s.Tokens() {
		if !s.IsBlank(i) {
			words = append(words, tok)
		}
	}
	return words
}

// evaluator is a recursive-descent evaluator of integer expressions.
type evaluator struct {
	words   []string
	pos     int
	defined func(string) bool
	failed  bool
}

func (ev *evaluator) next() string {
	if ev.pos >= len(ev.words) {
		ev.failed = true
		return ""
	}
	ev.pos++
	return ev.words[ev.pos-1]
}

func (ev *evaluator) accept(ops ...string) (string, bool) {
	if ev.pos < len(ev.words) && slices.Contains(ops, ev.words[ev.pos]) {
		ev.pos++
		return ev.words[ev.pos-1], true
	}
	return "", false
}

func (ev *evaluator) expect(op string) {
	if _, ok := ev.accept(op); !ok {
		ev.failed = true
	}
}

func (ev *evaluator) binary(level int) int64 {
	if level == len(binaryOperators) {
		return ev.unary()
	}
	v := ev.binary(level + 1)
	for {
		op, ok := ev.accept(binaryOperators[level]...)
		if !ok {
			return v
		}
		v = ev.apply(op, v, ev.binary(level+1))
	}
}

func (ev *evaluator) apply(op string, a, b int64) int64 {
	switch op {
	case "||":
		return truth(a != 0 || b != 0)
	case "&&":
		return truth(a != 0 && b != 0)
	case "==":
		return truth(a == b)
	case "!=":
		return truth(a != b)
	case "<":
		return truth(a < b)
	case ">":
		return truth(a > b)
	case "<=":
		return truth(a <= b)
	case ">=":
		return truth(a >= b)
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	}

	if b == 0 {
		ev.failed = true
		return 0
	}
	if op == "/" {
		return a / b
	}
	return a % b
}

func (ev *evaluator) unary() int64 {
	switch op, _ := ev.accept("!", "-", "+"); op {
	case "!":
		return truth(ev.unary() == 0)
	case "-":
		return -ev.unary()
	case "+":
		return ev.unary()
	}

	w := ev.next()
	switch {
	case w == "(":
		v := ev.binary(0)
		ev.expect(")")
		return v

	case w == "defined":
		_, paren := ev.accept("(")
		name := ev.next()
		if paren {
			ev.expect(")")
		}
		if !isIdentifier(name) {
			ev.failed = true
			return 0
		}
		return truth(ev.defined(name))

	case isIdentifier(w):
		// An undefined name is zero.
		return 0
	}

	v, err := strconv.ParseInt(w, 0, 64)
	if err != nil {
		ev.failed = true
	}
	return v
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
