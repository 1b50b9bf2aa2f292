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

	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
)

// ErrIncompleteLiteral diagnoses a character literal that is not closed
// before the end of the line.
type ErrIncompleteLiteral struct {
	Span source.Span
}

func (e ErrIncompleteLiteral) Error() string { return "incomplete character literal" }

// Diagnose implements [report.Diagnose].
func (e ErrIncompleteLiteral) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span))
}

// ErrHollerithTruncated diagnoses a Hollerith literal whose count runs past
// the end of the line.
type ErrHollerithTruncated struct {
	Span          source.Span
	Want, Missing int
}

func (e ErrHollerithTruncated) Error() string { return "possible truncated Hollerith literal" }

// Diagnose implements [report.Diagnose].
func (e ErrHollerithTruncated) Diagnose(d *report.Diagnostic) {
	d.With(
		report.Snippet(e.Span),
		report.Note("the count calls for %d characters, but the line ends %d short", e.Want, e.Missing),
	)
}

// ErrHollerithBadChar diagnoses bytes inside a Hollerith literal that are
// not valid in the source file's encoding.
type ErrHollerithBadChar struct {
	Span     source.Span
	Encoding source.Encoding
}

func (e ErrHollerithBadChar) Error() string { return "bad character in Hollerith literal" }

// Diagnose implements [report.Diagnose].
func (e ErrHollerithBadChar) Diagnose(d *report.Diagnostic) {
	d.With(
		report.Snippet(e.Span),
		report.Note("the file is decoded as %s", e.Encoding),
	)
}

// ErrMalformedPath diagnoses an INCLUDE line whose path is not a closed
// character literal.
type ErrMalformedPath struct {
	Span source.Span
}

func (e ErrMalformedPath) Error() string { return "malformed path name string" }

// Diagnose implements [report.Diagnose].
func (e ErrMalformedPath) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span))
}

// ErrExcessAfterPath diagnoses text after the path of an INCLUDE line.
type ErrExcessAfterPath struct {
	Span source.Span
}

func (e ErrExcessAfterPath) Error() string { return "excess characters after path name" }

// Diagnose implements [report.Diagnose].
func (e ErrExcessAfterPath) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span, "ignored"))
}

// ErrInclude diagnoses an INCLUDE or #include of a file that could not be
// opened.
type ErrInclude struct {
	Span      source.Span
	Err       error
	Directive bool // Set for #include.
}

func (e ErrInclude) Error() string {
	if e.Directive {
		return fmt.Sprintf("#include: %v", e.Err)
	}
	return fmt.Sprintf("INCLUDE: %v", e.Err)
}

// Unwrap returns the error of the opener.
func (e ErrInclude) Unwrap() error { return e.Err }

// Diagnose implements [report.Diagnose].
func (e ErrInclude) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span))
}

// ErrIncludeDepth diagnoses an include nested more than [MaxNesting] deep.
type ErrIncludeDepth struct {
	Span source.Span
	// The files on the include chain, outermost first.
	Chain []string
}

func (e ErrIncludeDepth) Error() string {
	return "too many nested INCLUDE/#include files, possibly circular"
}

// Diagnose implements [report.Diagnose].
func (e ErrIncludeDepth) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span))
	if len(e.Chain) > 0 {
		d.With(report.Note("included from %q, %d levels up", e.Chain[0], len(e.Chain)))
	}
}

// ErrNonstandard diagnoses a use of a nonstandard extension.
type ErrNonstandard struct {
	Span source.Span
	What string
}

func (e ErrNonstandard) Error() string {
	return "nonstandard usage: " + e.What
}

// Diagnose implements [report.Diagnose].
func (e ErrNonstandard) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span))
}

// ErrCruftAfterAmpersand diagnoses text that is not a comment after a
// free-form continuation marker.
type ErrCruftAfterAmpersand struct {
	Span source.Span
}

func (e ErrCruftAfterAmpersand) Error() string { return "missing ! before comment after &" }

// Diagnose implements [report.Diagnose].
func (e ErrCruftAfterAmpersand) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span), report.Help("the rest of the line is ignored"))
}

// ErrResemblesDirective diagnoses a line that looks like a preprocessor
// directive only after macro replacement. Such lines are not executed.
type ErrResemblesDirective struct {
	Span source.Span
}

func (e ErrResemblesDirective) Error() string {
	return "preprocessed line resembles a preprocessor directive"
}

// Diagnose implements [report.Diagnose].
func (e ErrResemblesDirective) Diagnose(d *report.Diagnostic) {
	d.With(report.Snippet(e.Span), report.Note("the line is treated as ordinary source"))
}
