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
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
	"github.com/bufbuild/fprescan/token"
)

// MacroEngine is the preprocessor that the prescanner hands directives and
// source lines to.
type MacroEngine interface {
	// Directive executes a tokenized preprocessor directive line.
	Directive(line *token.Sequence, ctx Context)

	// MacroReplacement returns line with its macros replaced. It returns
	// false if line contains no macro references.
	MacroReplacement(line *token.Sequence, ctx Context) (*token.Sequence, bool)
}

// Context is the view of a running [Prescanner] given to a [MacroEngine].
type Context interface {
	// Form returns the current source form.
	Form() Form
	// SetForm changes the source form, starting with the next line.
	SetForm(Form)
	// ColumnLimit returns the last column of a fixed-form statement field.
	ColumnLimit() int

	// Report returns the report diagnostics are written to.
	Report() *report.Report
	// Span converts a provenance range into a span for a diagnostic.
	Span(source.Range) source.Span

	// Tokenize tokenizes the text r was allocated to, as the body of a
	// preprocessor directive is tokenized.
	Tokenize(r source.Range) *token.Sequence

	// AtEnd returns whether every line has been read.
	AtEnd() bool
	// IsNextLineDirective returns whether the next line is a preprocessor
	// directive.
	IsNextLineDirective() bool
	// TokenizeDirective tokenizes the next line as a preprocessor directive
	// and advances past it.
	TokenizeDirective() *token.Sequence
	// SkipLine advances past the next line without scanning it.
	SkipLine()

	// Include prescans the file at path in place of the directive at site.
	Include(path string, site source.Range)
}

var _ Context = (*Prescanner)(nil)

// Form implements [Context].
func (p *Prescanner) Form() Form {
	return p.form
}

// SetForm implements [Context].
func (p *Prescanner) SetForm(form Form) {
	p.form = form
}

// ColumnLimit implements [Context].
func (p *Prescanner) ColumnLimit() int {
	return p.columnLimit
}

// Report implements [Context].
func (p *Prescanner) Report() *report.Report {
	return p.report
}

// Span implements [Context].
func (p *Prescanner) Span(r source.Range) source.Span {
	return p.sources.Span(r)
}

// AtEnd implements [Context].
func (p *Prescanner) AtEnd() bool {
	return p.nextLine >= len(p.text)
}

// IsNextLineDirective implements [Context].
func (p *Prescanner) IsNextLineDirective() bool {
	if p.AtEnd() {
		return false
	}
	_, ok := p.preprocessorDirectiveLine(p.text[p.nextLine:])
	return ok
}

// TokenizeDirective implements [Context].
func (p *Prescanner) TokenizeDirective() *token.Sequence {
	return p.tokenizePreprocessorDirective()
}

// SkipLine implements [Context].
func (p *Prescanner) SkipLine() {
	p.advanceLine()
}

// Include implements [Context].
func (p *Prescanner) Include(path string, site source.Range) {
	p.include(path, site, true)
}

type noEngine struct{}

func (noEngine) Directive(*token.Sequence, Context) {}

func (noEngine) MacroReplacement(*token.Sequence, Context) (*token.Sequence, bool) {
	return nil, false
}
