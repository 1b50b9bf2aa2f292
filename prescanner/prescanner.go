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
	"slices"
	"strings"

	"github.com/bufbuild/fprescan/internal/sentinel"
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
	"github.com/bufbuild/fprescan/token"
)

// MaxNesting is the deepest INCLUDE or #include nesting that is expanded.
const MaxNesting = 100

// DefaultColumnLimit is the last column of a fixed-form statement field.
const DefaultColumnLimit = 72

var (
	// DirectiveSentinels are always registered.
	DirectiveSentinels = []string{"dir$"}
	// OpenMPSentinels are registered when OpenMP is enabled. "$" marks an
	// OpenMP conditional compilation line.
	OpenMPSentinels = []string{"$omp", "$"}
	// OpenACCSentinels are registered when OpenACC is enabled.
	OpenACCSentinels = []string{"$acc"}
)

// Options configures a [Prescanner].
type Options struct {
	// The form the top-level file starts out in.
	Form Form
	// Language extensions that are enabled or warned about.
	Features Features
	// Compiler directive sentinels to recognize, in addition to
	// [DirectiveSentinels].
	Sentinels []string
	// The last column of a fixed-form statement field. Zero means
	// [DefaultColumnLimit].
	FixedFormColumnLimit int
}

// config is shared by a prescanner and every prescanner it creates for the
// files it includes. It is never modified after [New] returns.
type config struct {
	sources   *source.AllSources
	cooked    *source.Cooked
	report    *report.Report
	engine    MacroEngine
	features  Features
	sentinels *sentinel.Registry

	space     source.Provenance // A synthetic blank.
	sixSpaces source.Range      // A synthetic blank label field.
}

// Prescanner turns the text of one source file into cooked characters.
//
// A Prescanner prescans exactly one range; included files are prescanned
// by child prescanners that share its configuration.
type Prescanner struct {
	*config

	form                 Form
	columnLimit          int
	encoding             source.Encoding
	nesting              int
	skipLeadingAmpersand bool

	file  *source.File // Nil for compiler insertions.
	text  string
	start source.Provenance

	nextLine int // Start of the next line of text that has not been read.
	at       int
	column   int

	// The sentinel of the compiler directive being scanned, if any.
	sentinel                string
	inPreprocessorDirective bool
	omitNewline             bool

	s scanState
}

// scanState is the state of the character scanner that is reset for every
// statement.
type scanState struct {
	inCharLiteral    bool
	tabInLine        bool
	preventHollerith bool // The next digit string cannot be a Hollerith count.
	slashInLine      bool
	insertASpace     bool
	delimiterNesting int // Unclosed '(' and '['.
}

// New creates a prescanner that writes into cooked, resolving includes and
// provenance through sources and diagnostics to r.
//
// engine may be nil, in which case preprocessor directives are dropped and
// no macro replacement happens.
func New(
	sources *source.AllSources,
	cooked *source.Cooked,
	r *report.Report,
	engine MacroEngine,
	opts Options,
) (*Prescanner, error) {
	registry := new(sentinel.Registry)
	for _, tag := range slices.Concat(DirectiveSentinels, opts.Sentinels) {
		if err := registry.Register(tag); err != nil {
			return nil, err
		}
	}
	if engine == nil {
		engine = noEngine{}
	}
	limit := opts.FixedFormColumnLimit
	if limit == 0 {
		limit = DefaultColumnLimit
	}
	if limit < 7 {
		return nil, fmt.Errorf("fixed form column limit %d is less than 7", limit)
	}

	return &Prescanner{
		config: &config{
			sources:   sources,
			cooked:    cooked,
			report:    r,
			engine:    engine,
			features:  opts.Features,
			sentinels: registry,
			space:     sources.InsertionProvenance(' '),
			sixSpaces: sources.AddCompilerInsertion("      ").Prefix(6),
		},
		form:        opts.Form,
		columnLimit: limit,
	}, nil
}

// child returns a prescanner for a file included by the one p is scanning.
func (p *Prescanner) child() *Prescanner {
	return &Prescanner{
		config:               p.config,
		form:                 p.form,
		columnLimit:          p.columnLimit,
		encoding:             p.encoding,
		nesting:              p.nesting + 1,
		skipLeadingAmpersand: p.skipLeadingAmpersand,
	}
}

// Prescan prescans the text r was allocated to, appending the result to
// the cooked stream.
func (p *Prescanner) Prescan(r source.Range) {
	p.load(r)
	began := p.form
	if p.nesting > MaxNesting {
		p.report.Error(ErrIncludeDepth{
			Span:  p.span(0, min(1, len(p.text))),
			Chain: p.includeChain(),
		})
		return
	}

	for p.nextLine < len(p.text) {
		p.statement()
	}

	if p.form != began {
		dir := "!dir$ free\n"
		if began == FixedForm {
			dir = "!dir$ fixed\n"
		}
		at := p.sources.AddCompilerInsertion(dir).Prefix(len(dir))
		token.New(dir, at).Emit(p.cooked)
	}
}

// Tokenize tokenizes the text r was allocated to, without interpreting
// comments or continuation lines, as the body of a preprocessor directive
// is tokenized.
func (p *Prescanner) Tokenize(r source.Range) *token.Sequence {
	q := p.child()
	q.nesting = p.nesting
	q.load(r)
	tokens := new(token.Sequence)
	for q.nextLine < len(q.text) {
		tokens.PutSequence(q.tokenizePreprocessorDirective())
	}
	return tokens
}

func (p *Prescanner) load(r source.Range) {
	origin, offset, ok := p.sources.Locate(r.Start)
	if !ok {
		panic(fmt.Sprintf("fprescan/prescanner: range %v was never allocated", r))
	}
	text := origin.File.Text()
	p.text = text[offset:min(offset+r.Size, len(text))]
	p.start = r.Start
	p.encoding = origin.File.Encoding()
	p.file = nil
	if !origin.Inserted {
		p.file = origin.File
	}
	p.nextLine = 0
}

// includeChain lists the files through which the current file was
// included, outermost first.
func (p *Prescanner) includeChain() []string {
	var chain []string
	for _, site := range p.sources.IncludeStack(p.start) {
		if origin, _, ok := p.sources.Locate(site.Start); ok {
			chain = append(chain, origin.File.Path())
		}
	}
	slices.Reverse(chain)
	return chain
}

// char returns the byte at offset i of the text. Past the end, every byte
// reads as a newline.
func (p *Prescanner) char(i int) byte {
	return byteAt(p.text, i)
}

func (p *Prescanner) cur() byte {
	return p.char(p.at)
}

func (p *Prescanner) provenance(offset int) source.Provenance {
	return p.start + source.Provenance(offset)
}

func (p *Prescanner) rangeOf(start, end int) source.Range {
	return source.Range{Start: p.provenance(start), Size: max(1, end-start)}
}

func (p *Prescanner) span(start, end int) source.Span {
	return p.sources.Span(p.rangeOf(start, end))
}

// advanceLine moves nextLine past the next newline.
func (p *Prescanner) advanceLine() {
	if p.nextLine >= len(p.text) {
		p.nextLine = len(p.text)
		return
	}
	if nl := strings.IndexByte(p.text[p.nextLine:], '\n'); nl >= 0 {
		p.nextLine += nl + 1
	} else {
		p.nextLine = len(p.text)
	}
}

func (p *Prescanner) beginSourceLine(at int) {
	p.at = at
	p.column = 1
	p.s.tabInLine = false
}

func (p *Prescanner) beginSourceLineAndAdvance() {
	p.beginSourceLine(p.nextLine)
	p.advanceLine()
}

// inFixedFormSource returns whether column rules apply to the current line.
func (p *Prescanner) inFixedFormSource() bool {
	return p.form == FixedForm && !p.inPreprocessorDirective && p.sentinel == ""
}

func (p *Prescanner) inCompilerDirective() bool {
	return p.sentinel != ""
}
