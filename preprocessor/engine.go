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
	"strings"

	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
	"github.com/bufbuild/fprescan/token"
)

// Engine is a macro preprocessor.
//
// An Engine holds the macros defined so far and the stack of open
// conditional blocks, so a single Engine must be used for one top-level file
// and everything it includes. The zero value is not ready to use; construct
// one with [New].
type Engine struct {
	sources *source.AllSources

	macros     map[string]*macro
	pending    []pending
	conditions []conditional
}

type macro struct {
	name string
	body *token.Sequence
}

// pending is a macro defined with [Engine.Define] whose body has not been
// tokenized yet, because tokenizing needs a running prescanner.
type pending struct {
	name string
	body source.Range
}

// conditional is an open #if, #ifdef or #ifndef block.
type conditional struct {
	site    source.Range
	sawElse bool
}

var _ prescanner.MacroEngine = (*Engine)(nil)

// New returns an engine that allocates the text of predefined macros in
// sources.
func New(sources *source.AllSources) *Engine {
	return &Engine{
		sources: sources,
		macros:  make(map[string]*macro),
	}
}

// Define predefines an object-like macro, as a -D option does.
//
// value is tokenized the first time the engine is used.
func (e *Engine) Define(name, value string) {
	e.pending = append(e.pending, pending{
		name: name,
		body: e.sources.AddCompilerInsertion(value),
	})
}

// IsDefined returns whether name is currently defined as a macro.
func (e *Engine) IsDefined(name string) bool {
	if _, ok := e.macros[name]; ok {
		return true
	}
	for _, p := range e.pending {
		if p.name == name {
			return true
		}
	}
	return false
}

// Finish reports every conditional block that is still open once the
// top-level file has been prescanned, and closes them.
func (e *Engine) Finish(r *report.Report) {
	for _, c := range e.conditions {
		r.Errorf("missing #endif").With(report.Snippet(e.sources.Span(c.site)))
	}
	e.conditions = nil
}

// Directive implements [prescanner.MacroEngine].
func (e *Engine) Directive(line *token.Sequence, ctx prescanner.Context) {
	e.definePending(ctx)

	d := parseDirective(line)
	if len(d.words) == 0 || d.word(0) != "#" {
		return
	}
	if len(d.words) == 1 {
		return // The null directive.
	}

	switch name := d.name(); name {
	case "define":
		e.define(d, ctx)

	case "undef":
		if len(d.words) < 3 {
			errorf(ctx, d.rangeOf(1), "#undef: missing name")
			return
		}
		delete(e.macros, d.word(2))

	case "ifdef", "ifndef":
		var defined bool
		if len(d.words) < 3 {
			errorf(ctx, d.rangeOf(1), "#%s: missing name", name)
		} else {
			defined = e.IsDefined(d.word(2))
		}
		e.open(d, ctx, defined == (name == "ifdef"))

	case "if":
		e.open(d, ctx, e.condition(d, ctx))

	case "elif", "else":
		if len(e.conditions) == 0 {
			errorf(ctx, d.rangeOf(1), "#%s without #if", name)
			return
		}
		top := &e.conditions[len(e.conditions)-1]
		if top.sawElse {
			errorf(ctx, d.rangeOf(1), "#%s after #else", name)
		}
		if name == "else" {
			top.sawElse = true
		}
		// The block that just ended was taken, so every later branch is
		// skipped.
		e.skip(ctx, true)

	case "endif":
		if len(e.conditions) == 0 {
			errorf(ctx, d.rangeOf(1), "#endif without #if")
			return
		}
		e.conditions = e.conditions[:len(e.conditions)-1]

	case "include":
		e.include(d, ctx)

	case "error":
		ctx.Report().Errorf("#error: %s", d.rest(2)).With(report.Snippet(ctx.Span(line.Range())))

	case "warning":
		ctx.Report().Warnf("#warning: %s", d.rest(2)).With(report.Snippet(ctx.Span(line.Range())))

	case "pragma", "ident", "line":
		ctx.Report().Remarkf("#%s: directive ignored", name).With(
			report.Snippet(ctx.Span(d.rangeOf(1))),
		)

	default:
		ctx.Report().Warnf("#%s: unknown or unsupported preprocessor directive", name).With(
			report.Snippet(ctx.Span(d.rangeOf(1))),
		)
	}
}

// MacroReplacement implements [prescanner.MacroEngine].
func (e *Engine) MacroReplacement(line *token.Sequence, ctx prescanner.Context) (*token.Sequence, bool) {
	e.definePending(ctx)
	if len(e.macros) == 0 {
		return nil, false
	}

	first := -1
	for i, tok := range line.Tokens() {
		if _, ok := e.macros[tok]; ok {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, false
	}

	out := new(token.Sequence)
	for i := range first {
		out.PutToken(line, i)
	}
	e.expand(out, line, first, nil)
	return out, true
}

// expand appends the tokens of in, starting with the ith, to out, replacing
// every macro not named in active with its expansion.
func (e *Engine) expand(out, in *token.Sequence, i int, active []string) {
	for ; i < in.Len(); i++ {
		tok := in.Token(i)
		m, ok := e.macros[tok]
		if !ok || slices.Contains(active, tok) {
			out.PutToken(in, i)
			continue
		}
		e.expand(out, m.body, 0, append(active, m.name))
	}
}

func (e *Engine) definePending(ctx prescanner.Context) {
	for _, p := range e.pending {
		body := ctx.Tokenize(p.body)
		e.macros[p.name] = &macro{name: p.name, body: trimBlanks(body)}
	}
	e.pending = nil
}

func (e *Engine) define(d directive, ctx prescanner.Context) {
	if len(d.words) < 3 || !isIdentifier(d.word(2)) {
		errorf(ctx, d.rangeOf(1), "#define: missing or invalid macro name")
		return
	}
	name := d.word(2)
	next := d.words[2] + 1
	if next < d.line.Len() && d.line.Token(next) == "(" {
		ctx.Report().Warnf("#define: function-like macros are not supported").With(
			report.Snippet(ctx.Span(d.rangeOf(2))),
			report.Note("`%s` is left undefined", name),
		)
		return
	}

	body := new(token.Sequence)
	for i := next; i < d.line.Len(); i++ {
		body.PutToken(d.line, i)
	}
	e.macros[name] = &macro{name: name, body: trimBlanks(body)}
}

// open pushes a conditional block and skips its first branch unless taken
// is set.
func (e *Engine) open(d directive, ctx prescanner.Context, taken bool) {
	e.conditions = append(e.conditions, conditional{site: d.line.Range()})
	if !taken {
		e.skip(ctx, false)
	}
}

// skip skips lines up to the end of the innermost conditional block.
//
// Unless toEndif is set, skipping stops early at an #elif whose condition
// holds or at an #else, and the block stays open.
func (e *Engine) skip(ctx prescanner.Context, toEndif bool) {
	top := &e.conditions[len(e.conditions)-1]
	var depth int
	for !ctx.AtEnd() {
		if !ctx.IsNextLineDirective() {
			ctx.SkipLine()
			continue
		}

		d := parseDirective(ctx.TokenizeDirective())
		if len(d.words) < 2 || d.word(0) != "#" {
			continue
		}
		switch name := d.name(); name {
		case "if", "ifdef", "ifndef":
			depth++
		case "endif":
			if depth == 0 {
				e.conditions = e.conditions[:len(e.conditions)-1]
				return
			}
			depth--
		case "elif", "else":
			if depth > 0 {
				break
			}
			if top.sawElse {
				errorf(ctx, d.rangeOf(1), "#%s after #else", name)
			}
			if name == "else" {
				top.sawElse = true
				if !toEndif {
					return
				}
			} else if !toEndif && e.condition(d, ctx) {
				return
			}
		}
	}

	ctx.Report().Errorf("missing #endif").With(report.Snippet(ctx.Span(top.site)))
	e.conditions = e.conditions[:len(e.conditions)-1]
}

func (e *Engine) include(d directive, ctx prescanner.Context) {
	if len(d.words) < 3 {
		errorf(ctx, d.rangeOf(1), "#include: missing file name")
		return
	}

	path, ok := token.UnquoteCharLiteral(d.word(2))
	last := 2
	if !ok && d.word(2) == "<" {
		var b strings.Builder
		for i := 3; i < len(d.words); i++ {
			if d.word(i) == ">" {
				path, ok, last = b.String(), b.Len() > 0, i
				break
			}
			b.WriteString(d.word(i))
		}
	}
	if !ok {
		errorf(ctx, d.rangeOf(2), "#include: expected \"file\" or <file>")
		return
	}
	if last+1 < len(d.words) {
		ctx.Report().Warnf("#include: extra tokens after file name").With(
			report.Snippet(ctx.Span(d.rangeOf(last + 1))),
		)
	}
	ctx.Include(path, d.line.Range())
}

func errorf(ctx prescanner.Context, r source.Range, format string, args ...any) {
	ctx.Report().Errorf(format, args...).With(report.Snippet(ctx.Span(r)))
}

func trimBlanks(s *token.Sequence) *token.Sequence {
	out := new(token.Sequence)
	for i := range s.Len() {
		if out.Len() == 0 && s.IsBlank(i) {
			continue
		}
		out.PutToken(s, i)
	}
	for out.Len() > 0 && out.IsBlank(out.Len()-1) {
		out.RemoveLastToken()
	}
	return out
}

func isIdentifier(tok string) bool {
	if tok == "" || !(isLetter(tok[0]) || tok[0] == '_') {
		return false
	}
	for i := range len(tok) {
		if c := tok[i]; !isLetter(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
