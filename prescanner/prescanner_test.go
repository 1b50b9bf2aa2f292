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

package prescanner_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
	"github.com/bufbuild/fprescan/token"
)

type result struct {
	cooked  *source.Cooked
	report  *report.Report
	sources *source.AllSources
}

func (r result) messages() []string {
	var out []string
	for i := range r.report.Diagnostics {
		d := &r.report.Diagnostics[i]
		out = append(out, d.Level().String()+": "+d.Message())
	}
	return out
}

// prescan prescans main.f90 with the given files available for inclusion.
func prescan(
	t *testing.T,
	opts prescanner.Options,
	engine prescanner.MacroEngine,
	main string,
	files map[string]string,
) result {
	t.Helper()

	opener := source.NewMap(nil)
	opener.Add("main.f90", main)
	for path, text := range files {
		opener.Add(path, text)
	}
	return prescanOpener(t, opts, engine, opener)
}

// prescanOpener prescans main.f90 as opened by opener.
func prescanOpener(
	t *testing.T,
	opts prescanner.Options,
	engine prescanner.MacroEngine,
	opener source.Opener,
) result {
	t.Helper()

	sources := source.NewAllSources(opener)
	file, err := sources.Open("main.f90")
	require.NoError(t, err)

	res := result{
		cooked:  new(source.Cooked),
		report:  new(report.Report),
		sources: sources,
	}
	p, err := prescanner.New(sources, res.cooked, res.report, engine, opts)
	require.NoError(t, err)
	p.Prescan(sources.AddIncludedFile(file, source.Range{}))
	return res
}

func TestFreeForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
	}{
		{name: "simple", in: "X = 1\n", want: "x = 1\n"},
		{name: "literal-case", in: "X = 'ABC'\n", want: "x = 'ABC'\n"},
		{name: "doubled-quote", in: "x = 'it''s'\n", want: "x = 'it''s'\n"},
		{name: "hollerith", in: "x = 5Habcde\n", want: "x = 5habcde\n"},
		{name: "comment-lines", in: "! one\n  ! two\n\nx = 1 ! three\n", want: "x = 1\n"},
		{
			name: "continuation-over-comment",
			in:   "a = 1 &\n! remark\n + 2\n",
			want: "a = 1 + 2\n",
		},
		{name: "leading-ampersand", in: "a = 1 &\n  & + 2\n", want: "a = 1 + 2\n"},
		{name: "open-paren", in: "call f(a,\nb)\n", want: "call f(a, b)\n"},
		{name: "operator-blanks", in: "interface operator( + )\n", want: "interface operator(+)\n"},
		{name: "real", in: "x = .5E+3_dp\n", want: "x = .5e+3_dp\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			res := prescan(t, prescanner.Options{}, nil, test.in, nil)
			assert.Equal(t, test.want, res.cooked.Text())
			assert.Empty(t, res.messages())
		})
	}
}

func TestContinuationEquivalence(t *testing.T) {
	t.Parallel()

	joined := prescan(t, prescanner.Options{}, nil, "a = 1 + 2\n", nil)
	split := prescan(t, prescanner.Options{}, nil, "a = 1 &\n! remark\n + 2\n", nil)
	assert.Equal(t, joined.cooked.Text(), split.cooked.Text())
}

func TestFixedForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
		debugLines     bool
	}{
		{name: "simple", in: "      X = 1\n", want: "      x=1\n"},
		{name: "label", in: "100   X = 1\n", want: "100   x=1\n"},
		{name: "tab", in: "\tX = 1\n", want: "      x=1\n"},
		{name: "comments", in: "C comment\n*\n%LIST\nD     X = 2\n      X = 1\n", want: "      x=1\n"},
		{name: "zero-in-column-6", in: "      X = 1\n     0Y = 2\n", want: "      x=1\n      y=2\n"},
		{
			name: "right-margin",
			in:   "      X=1" + strings.Repeat(" ", 63) + "99\n",
			want: "      x=1\n",
		},
		{
			name: "padded-literal",
			in:   "      C = 'AB\n     1CD'\n",
			want: "      c='AB" + strings.Repeat(" ", 59) + "CD'\n",
		},
		{
			name: "column-1-ampersand",
			in:   "      X = 1\n&+2\n",
			want: "      x=1+2\n",
		},
		{
			name:       "debug-line",
			in:         "D     X = 1\n",
			want:       "      x=1\n",
			debugLines: true,
		},
		{
			name: "form-change",
			in:   "      X = 1\n!dir$ free\ny = 2\n",
			want: "      x=1\n!dir$ free\ny = 2\n!dir$ fixed\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			opts := prescanner.Options{Form: prescanner.FixedForm}
			opts.Features.Enable(prescanner.OldDebugLines, test.debugLines)
			res := prescan(t, opts, nil, test.in, nil)
			assert.Equal(t, test.want, res.cooked.Text())
			assert.Empty(t, res.messages())
		})
	}
}

func TestFixedFormContinuationColumn(t *testing.T) {
	t.Parallel()

	opts := prescanner.Options{Form: prescanner.FixedForm}
	for _, mark := range []string{"1", "9", "&", "*", "a", "$", "+"} {
		res := prescan(t, opts, nil, "      X = 1\n     "+mark+"+2\n", nil)
		assert.Equal(t, "      x=1+2\n", res.cooked.Text(), "column 6 %q", mark)
	}
}

func TestDirectives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
		form           prescanner.Form
	}{
		{name: "dir", in: "!DIR$ IVDEP\n", want: "!dir$ ivdep\n"},
		{name: "omp", in: "!$OMP PARALLEL\n", want: "!$omp parallel\n"},
		{name: "omp-fixed", in: "C$OMP PARALLEL\n", want: "!$omp parallel\n", form: prescanner.FixedForm},
		{name: "conditional", in: "!$ x = 1\n", want: "x = 1\n"},
		{name: "acc-disabled", in: "!$acc kernels\n", want: ""},
		{name: "remark", in: "!dir$ ! not a directive\n", want: ""},
		{name: "conditional-label-fixed", in: "!$ 10 X = 1\n", want: "10    x = 1\n", form: prescanner.FixedForm},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			opts := prescanner.Options{Form: test.form, Sentinels: prescanner.OpenMPSentinels}
			res := prescan(t, opts, nil, test.in, nil)
			assert.Equal(t, test.want, res.cooked.Text())
		})
	}
}

func TestLiteralDiagnostics(t *testing.T) {
	t.Parallel()

	res := prescan(t, prescanner.Options{}, nil, "x = 5Habc\n", nil)
	assert.Equal(t, "x = 5habc\n", res.cooked.Text())
	assert.Equal(t, []string{"warning: possible truncated Hollerith literal"}, res.messages())
	var truncated prescanner.ErrHollerithTruncated
	require.ErrorAs(t, res.report.Diagnostics[0].Err(), &truncated)
	assert.Equal(t, 5, truncated.Want)
	assert.Equal(t, 2, truncated.Missing)
	assert.Equal(t, "5Habc", res.report.Diagnostics[0].Primary().Text())

	res = prescan(t, prescanner.Options{}, nil, "x = 'abc\ny = 1\n", nil)
	assert.Equal(t, "x = 'abc\ny = 1\n", res.cooked.Text())
	assert.Equal(t, []string{"error: incomplete character literal"}, res.messages())
	assert.Equal(t, "'abc", res.report.Diagnostics[0].Primary().Text())

	// An unmarked line after an unclosed parenthesis does not continue a
	// fixed-form character literal.
	res = prescan(t, prescanner.Options{Form: prescanner.FixedForm}, nil, "      call f('ab\n      x')\n", nil)
	assert.Equal(t, []string{
		"error: incomplete character literal",
		"error: incomplete character literal",
	}, res.messages())
	assert.Equal(t, "'ab", res.report.Diagnostics[0].Primary().Text())
	assert.Contains(t, res.cooked.Text(), "\n      x')")

	// The same goes for a Hollerith literal longer than the padded line.
	res = prescan(t, prescanner.Options{Form: prescanner.FixedForm}, nil, "      call f(60Hab\n      x)\n", nil)
	assert.Equal(t, []string{"warning: possible truncated Hollerith literal"}, res.messages())
	assert.Contains(t, res.cooked.Text(), "\n      x)\n")
}

func TestCharacterLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
		escapes        bool
		messages       []string
	}{
		{name: "backslash-doubled", in: `x = 'a\nb'` + "\n", want: `x = 'a\\nb'` + "\n"},
		{name: "backslash-escape", in: `x = 'a\'b'` + "\n", want: `x = 'a\'b'` + "\n", escapes: true},
		{name: "escaped-backslash", in: `x = 'a\\' // 'b'` + "\n", want: `x = 'a\\' // 'b'` + "\n", escapes: true},
		{name: "hollerith-multibyte", in: "x = 2H\u00e9z\n", want: "x = 2h\u00e9z\n"},
		{
			name:     "hollerith-bad-byte",
			in:       "x = 3Ha\xffb\n",
			messages: []string{"error: bad character in Hollerith literal"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var opts prescanner.Options
			opts.Features.Enable(prescanner.BackslashEscapes, test.escapes)
			res := prescan(t, opts, nil, test.in, nil)
			if test.want != "" {
				assert.Equal(t, test.want, res.cooked.Text())
			}
			assert.Equal(t, test.messages, res.messages())
		})
	}
}

func TestHollerithLatin1(t *testing.T) {
	t.Parallel()

	opener := source.NewMap(map[string]*source.File{
		"main.f90": source.NewEncodedFile("main.f90", "x = 1H\xe9\n", source.Latin1),
	})
	res := prescanOpener(t, prescanner.Options{}, nil, opener)
	assert.Equal(t, "x = 1h\u00e9\n", res.cooked.Text())
	assert.Empty(t, res.messages())
}

func TestNonstandardWarnings(t *testing.T) {
	t.Parallel()

	var features prescanner.Features
	features.WarnAll()

	res := prescan(t, prescanner.Options{Features: features}, nil, "x = 1 & junk\n + 2\n", nil)
	assert.Equal(t, "x = 1 + 2\n", res.cooked.Text())
	assert.Equal(t, []string{"warning: missing ! before comment after &"}, res.messages())

	res = prescan(t, prescanner.Options{Features: features}, nil, "x = 1/* c */\n", nil)
	assert.Equal(t, "x = 1\n", res.cooked.Text())
	assert.Equal(t, []string{"warning: nonstandard usage: C-style comment"}, res.messages())

	res = prescan(t, prescanner.Options{Form: prescanner.FixedForm, Features: features}, nil, "      X = 1\n&+2\n", nil)
	assert.Equal(t, "      x=1+2\n", res.cooked.Text())
	assert.Equal(t, []string{"warning: nonstandard usage: column 1 '&' continuation"}, res.messages())

	// Without warnings turned on, the same inputs are silent.
	res = prescan(t, prescanner.Options{}, nil, "x = 1 & junk\n + 2\n", nil)
	assert.Empty(t, res.messages())
}

func TestInclude(t *testing.T) {
	t.Parallel()

	res := prescan(t, prescanner.Options{}, nil,
		"include 'inc.f90'\nx = 2\n",
		map[string]string{"inc.f90": "y = 1\n"},
	)
	assert.Equal(t, "y = 1\nx = 2\n", res.cooked.Text())
	assert.Empty(t, res.messages())
	assert.Equal(t, 0, res.sources.SearchPathDepth())

	chain := res.cooked.IncludeChain(0)
	require.Len(t, chain, 1)
	assert.Equal(t, "inc.f90", chain[0].Path())
	assert.Empty(t, res.cooked.IncludeChain(6))
	assert.Equal(t, "inc.f90:1:1", res.sources.Describe(res.cooked.Provenance(0)))
	assert.Equal(t, "main.f90:2:1", res.sources.Describe(res.cooked.Provenance(6)))
}

func TestIncludeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
		messages       []string
	}{
		{
			name:     "missing",
			in:       "include 'nope.f90'\nx = 1\n",
			want:     "x = 1\n",
			messages: []string{"error: INCLUDE: source file 'nope.f90' was not found"},
		},
		{
			name:     "malformed",
			in:       "include 'inc.f90\nx = 1\n",
			want:     "x = 1\n",
			messages: []string{"error: malformed path name string"},
		},
		{
			name:     "excess",
			in:       "include 'inc.f90' junk\n",
			want:     "y = 1\n",
			messages: []string{"warning: excess characters after path name"},
		},
		{
			name: "quoted-quote",
			in:   "include 'it''s.f90'\n",
			want: "z = 1\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			res := prescan(t, prescanner.Options{}, nil, test.in, map[string]string{
				"inc.f90":  "y = 1\n",
				"it's.f90": "z = 1\n",
			})
			assert.Equal(t, test.want, res.cooked.Text())
			assert.Equal(t, test.messages, res.messages())
			assert.Equal(t, 0, res.sources.SearchPathDepth())
		})
	}
}

func TestRecursiveInclude(t *testing.T) {
	t.Parallel()

	self := "include 'main.f90'\nx = 1\n"
	res := prescan(t, prescanner.Options{}, nil, self, nil)

	assert.Equal(t, strings.Repeat("x = 1\n", prescanner.MaxNesting+1), res.cooked.Text())
	assert.Equal(t, []string{"error: too many nested INCLUDE/#include files, possibly circular"}, res.messages())
	assert.Equal(t, 0, res.sources.SearchPathDepth())

	var depth prescanner.ErrIncludeDepth
	require.ErrorAs(t, res.report.Diagnostics[0].Err(), &depth)
	assert.Len(t, depth.Chain, prescanner.MaxNesting+1)
}

// engine is a minimal macro engine: it executes #include, records every
// line offered for replacement, and replaces FOO with a fixed spelling.
type engine struct {
	replaceWith string
	offered     []string
}

func (e *engine) Directive(line *token.Sequence, ctx prescanner.Context) {
	var words []int
	for i := range line.Len() {
		if !line.IsBlank(i) {
			words = append(words, i)
		}
	}
	if len(words) == 3 && line.Token(words[1]) == "include" {
		path, ok := token.UnquoteCharLiteral(line.Token(words[2]))
		if ok {
			ctx.Include(path, line.Range())
		}
	}
}

func (e *engine) MacroReplacement(line *token.Sequence, _ prescanner.Context) (*token.Sequence, bool) {
	e.offered = append(e.offered, line.String())
	var found bool
	out := new(token.Sequence)
	for i, tok := range line.Tokens() {
		if tok != "FOO" {
			out.PutToken(line, i)
			continue
		}
		found = true
		p := line.Provenance(line.TokenStart(i))
		for j := range len(e.replaceWith) {
			out.Put(e.replaceWith[j], p)
		}
		out.CloseToken()
	}
	return out, found
}

func TestIncludeAfterAmpersand(t *testing.T) {
	t.Parallel()

	res := prescan(t, prescanner.Options{}, new(engine),
		"x = 1 + &\n#include \"inc.f90\"\n & 3\n",
		map[string]string{"inc.f90": "2 + &\n"},
	)
	assert.Equal(t, "x = 1 +2 + 3\n", res.cooked.Text())
	assert.Empty(t, res.messages())

	// A definition cannot be deferred; it ends the line instead.
	res = prescan(t, prescanner.Options{}, new(engine), "x = 1 + &\n#define Y 2\n 3\n", nil)
	assert.Equal(t, "x = 1 + &\n3\n", res.cooked.Text())
}

func TestIncludeKinds(t *testing.T) {
	t.Parallel()

	e := new(engine)
	res := prescan(t, prescanner.Options{}, e,
		"include 'inc.f90'\n#include \"inc.f90\"\nx = 2\n",
		map[string]string{"inc.f90": "y = 1\n"},
	)
	assert.Equal(t, "y = 1\ny = 1\nx = 2\n", res.cooked.Text())
	assert.Empty(t, res.messages())
	// Neither include line is offered for macro replacement; the lines of
	// the included file and the last line are.
	assert.Equal(t, []string{"y = 1", "y = 1", "x = 2"}, e.offered)
}

func TestReclassify(t *testing.T) {
	t.Parallel()

	e := &engine{replaceWith: "#"}
	res := prescan(t, prescanner.Options{}, e, "FOO X\n", nil)
	assert.Equal(t, "# x\n", res.cooked.Text())
	assert.Equal(t, []string{"warning: preprocessed line resembles a preprocessor directive"}, res.messages())

	e = &engine{replaceWith: "INCLUDE"}
	res = prescan(t, prescanner.Options{}, e, "FOO 'inc.f90'\n", map[string]string{"inc.f90": "y = 1\n"})
	assert.Equal(t, "y = 1\n\n", res.cooked.Text())
	assert.Empty(t, res.messages())

	// Replacing FOO with nothing leaves two blanks in a row.
	e = &engine{replaceWith: ""}
	res = prescan(t, prescanner.Options{}, e, "x = FOO 1 ! c\n", nil)
	assert.Equal(t, "x = 1\n", res.cooked.Text())
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	sources := source.NewAllSources(source.NewMap(nil))
	p, err := prescanner.New(sources, new(source.Cooked), new(report.Report), nil, prescanner.Options{})
	require.NoError(t, err)

	tokens := p.Tokenize(sources.AddCompilerInsertion("1 + 0x1F"))
	var got []string
	for _, tok := range tokens.Tokens() {
		got = append(got, tok)
	}
	assert.Equal(t, []string{"1", " ", "+", " ", "0x1F"}, got)
}

func TestBadSentinel(t *testing.T) {
	t.Parallel()

	sources := source.NewAllSources(source.NewMap(nil))
	_, err := prescanner.New(sources, new(source.Cooked), new(report.Report), nil, prescanner.Options{
		Sentinels: []string{"toolong"},
	})
	require.Error(t, err)
}
