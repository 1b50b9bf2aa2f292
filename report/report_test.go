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

package report_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
)

type errUnterminated struct {
	span source.Span
}

func (e errUnterminated) Error() string { return "incomplete character literal" }
func (e errUnterminated) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.span), report.Note("a note"))
}

func TestRenderFancy(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test.f90", "x = 'abc\n  y = 1\n")

	var r report.Report
	d := r.Error(errUnterminated{file.Span(4, 8)})
	assert.Equal(t, report.Error, d.Level())
	assert.Equal(t, "test.f90", d.Path())

	text, errs, warns := report.Renderer{}.RenderString(&r)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 0, warns)
	assert.Equal(t, ""+
		"error: incomplete character literal\n"+
		"  --> test.f90:1:5\n"+
		"   |\n"+
		" 1 | x = 'abc\n"+
		"   |     ^^^^\n"+
		"   = note: a note\n"+
		"\n"+
		"encountered 1 error\n",
		text,
	)
}

func TestRenderSecondary(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test.f", "\tx = 1\n      y = 2\n")

	var r report.Report
	r.Warnf("excess characters after path name").With(
		report.Snippet(file.Span(1, 2), "here"),
		report.Snippet(file.Span(13, 14)),
	)

	text, errs, warns := report.Renderer{}.RenderString(&r)
	assert.Equal(t, 0, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, ""+
		"warning: excess characters after path name\n"+
		"  --> test.f:1:2\n"+
		"   |\n"+
		" 1 |         x = 1\n"+
		"   |         ^ here\n"+
		" 2 |       y = 2\n"+
		"   |       -\n"+
		"\n"+
		"encountered 1 warning\n",
		text,
	)
}

func TestRenderCompact(t *testing.T) {
	t.Parallel()

	file := source.NewFile("a.f90", "print *, 5habc\n")

	var r report.Report
	r.Warnf("possible truncated Hollerith literal").With(report.Snippet(file.Span(9, 14)))
	r.Error(&report.ErrInFile{Err: errors.New("source file 'b.h' was not found"), Path: "a.f90"})
	r.Remarkf("hidden")
	r.Errorf("no location")

	text, errs, warns := report.Renderer{Compact: true}.RenderString(&r)
	assert.Equal(t, 2, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, ""+
		"warning: a.f90:1:10: possible truncated Hollerith literal\n"+
		"error: a.f90: source file 'b.h' was not found\n"+
		"error: no location\n",
		text,
	)

	text, errs, warns = report.Renderer{Compact: true, WarningsAreErrors: true, ShowRemarks: true}.RenderString(&r)
	assert.Equal(t, 3, errs)
	assert.Equal(t, 0, warns)
	assert.Contains(t, text, "error: a.f90:1:10: possible truncated Hollerith literal\n")
	assert.Contains(t, text, "remark: hidden\n")

	text, _, _ = report.Renderer{Compact: true, Colorize: true}.RenderString(&r)
	assert.Contains(t, text, "\033[0;33mwarning: a.f90:1:10:")
	assert.Contains(t, text, "\033[0;31merror: no location\033[0m")

	text, _, _ = report.Renderer{Compact: true, Colorize: true, WarningsAreErrors: true}.RenderString(&r)
	assert.Contains(t, text, "\033[0;31merror: a.f90:1:10:")

	var ice report.Report
	func() {
		defer ice.CatchICE(false, nil)
		panic("bad state")
	}()
	text, _, _ = report.Renderer{Compact: true, Colorize: true}.RenderString(&ice)
	assert.True(t, strings.HasPrefix(text, "\033[0;35m"), "%q", text)
}

func TestReportQueries(t *testing.T) {
	t.Parallel()

	var r report.Report
	assert.False(t, r.HasErrors())

	r.Warnf("w").With(report.Tag("my-tag"))
	assert.False(t, r.HasErrors())
	assert.True(t, r.Diagnostics[0].Is("my-tag"))

	notFound := errors.New("missing")
	d := r.Error(&report.ErrInFile{Err: notFound, Path: "x.f"})
	assert.ErrorIs(t, d.Err(), notFound)
	assert.Equal(t, "missing", d.Message())
	assert.Equal(t, "x.f", d.InFile())
	assert.True(t, r.HasErrors())
	assert.Equal(t, 1, r.Count(report.Error))
	assert.Equal(t, 1, r.Count(report.Warning))

	r.Remarkf("r")
	assert.Len(t, r.Diagnostics, 3)
	assert.Equal(t, 1, r.Count(report.Remark))

	assert.Panics(t, func() { r.Warnf("a").With(report.Message("b")) })
	assert.Nil(t, report.Snippet(nil))
	assert.Nil(t, report.Snippet(source.Span{}))
}

func TestCatchICE(t *testing.T) {
	t.Parallel()

	var r report.Report
	func() {
		defer r.CatchICE(false, func(d *report.Diagnostic) {
			d.With(report.Note("while prescanning %q", "a.f90"))
		})
		panic(fmt.Errorf("fprescan/prescanner: bad state"))
	}()

	require.Len(t, r.Diagnostics, 1)
	d := &r.Diagnostics[0]
	assert.Equal(t, report.ICE, d.Level())
	assert.Equal(t, "fprescan/prescanner: bad state", d.Message())
	assert.Equal(t, []string{`while prescanning "a.f90"`}, d.Notes())
	assert.True(t, r.HasErrors())

	assert.Panics(t, func() {
		defer r.CatchICE(true, nil)
		panic("again")
	})
	assert.Len(t, r.Diagnostics, 2)
}
