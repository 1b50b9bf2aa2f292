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

package report

import (
	"fmt"

	"github.com/bufbuild/fprescan/source"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Internal compiler error. Indicates a panic within the prescanner.
	ICE Level = 1 + iota
	// Red. Indicates that the cooked stream is not a faithful rendition of
	// the input.
	Error
	// Yellow. Indicates something that probably should not be ignored.
	Warning
	// Cyan. This is the diagnostics version of "info".
	Remark

	noteLevel // Used internally within the diagnostic renderer.
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case ICE:
		return "internal compiler error"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Tag is a diagnostic tag: a machine-readable identification for a diagnostic.
//
// Tags should be lowercase identifiers separated by dashes, e.g. my-error-tag.
// If a package generates diagnostics with tags, it should expose those tags as
// constants.
type Tag string

// Apply implements [DiagnosticOption].
func (t Tag) Apply(d *Diagnostic) {
	if d.tag != "" {
		panic("fprescan/report: set diagnostic tag more than once")
	}
	d.tag = t
}

// Diagnostic is a type of error that can be rendered as a rich diagnostic.
//
// Not all Diagnostics are "errors", even though Diagnostic does embed error;
// some represent warnings, or perhaps debugging remarks.
//
// To construct a diagnostic, create one using a function like [Report.Error].
// Then, call [Diagnostic.With] to apply options to it. You should at minimum
// apply [Message] and either [InFile] or at least one [Snippet].
type Diagnostic struct {
	// The error that prompted this diagnostic, if any.
	err error

	tag     Tag
	message string
	level   Level

	// The file this diagnostic occurs in, if it has no associated
	// annotations. This is used for errors like "file not found" that cannot
	// be given a snippet.
	inFile string

	annotations        []annotation
	notes, help, debug []string

	// Stack trace information for the diagnostic, for use in debugging the
	// prescanner. Only populated when FPRESCAN_DEBUG is set.
	trace *trace
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.With] are ignored.
type DiagnosticOption interface {
	Apply(*Diagnostic)
}

// Err returns the error this diagnostic was created from, if it was created
// from a [Diagnose].
func (d *Diagnostic) Err() error {
	return d.err
}

// Message returns this diagnostic's message.
func (d *Diagnostic) Message() string {
	return d.message
}

// Level returns this diagnostic's level.
func (d *Diagnostic) Level() Level {
	return d.level
}

// InFile returns the file set with [InFile], if any.
func (d *Diagnostic) InFile() string {
	return d.inFile
}

// Is checks whether this diagnostic has a particular tag.
func (d *Diagnostic) Is(tag Tag) bool {
	return d.tag == tag
}

// Primary returns this diagnostic's primary span, if it has one.
//
// If it doesn't have one, it returns the zero span.
func (d *Diagnostic) Primary() source.Span {
	if len(d.annotations) == 0 {
		return source.Span{}
	}
	return d.annotations[0].Span
}

// Path returns the path of the file this diagnostic is about: that of the
// primary span, or else the one set with [InFile].
func (d *Diagnostic) Path() string {
	if primary := d.Primary(); !primary.IsZero() {
		return primary.Path()
	}
	return d.inFile
}

// Notes returns the notes attached to this diagnostic.
func (d *Diagnostic) Notes() []string {
	return d.notes
}

// With applies the given options to this diagnostic.
//
// Nil values are ignored.
func (d *Diagnostic) With(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.Apply(d)
		}
	}
	return d
}

// Message returns a Diagnostic option that sets the main diagnostic message.
func Message(format string, args ...any) DiagnosticOption {
	return message(fmt.Sprintf(format, args...))
}

// InFile is a DiagnosticOption that causes a diagnostic without a primary
// span to mention the given file.
type InFile string

// Apply implements [DiagnosticOption].
func (f InFile) Apply(d *Diagnostic) {
	if d.inFile != "" {
		panic("fprescan/report: set diagnostic path more than once")
	}
	d.inFile = string(f)
}

// Snippet returns a DiagnosticOption that adds a new snippet to a diagnostic.
//
// Any additional arguments to this function are passed to [fmt.Sprintf] to
// produce a message to go with the span. Snippet(span) is equivalent to
// Snippet(span, "").
//
// The first annotation added is the "primary" annotation, and will be rendered
// differently from the others.
//
// If at is nil or returns the zero span, this function returns nil.
func Snippet(at source.Spanner, args ...any) DiagnosticOption {
	if at == nil {
		return nil
	}
	span := at.Span()
	if span.IsZero() {
		return nil
	}

	a := annotation{Span: span}
	if len(args) > 0 {
		format, ok := args[0].(string)
		if !ok {
			panic("fprescan/report: expected string as first Snippet argument")
		}
		a.message = fmt.Sprintf(format, args[1:]...)
	}
	return a
}

// Note returns a DiagnosticOption that provides the user with context about the
// diagnostic, after the annotations.
func Note(format string, args ...any) DiagnosticOption {
	return note(fmt.Sprintf(format, args...))
}

// Help returns a DiagnosticOption that provides the user with a helpful prose
// suggestion for resolving the diagnostic.
func Help(format string, args ...any) DiagnosticOption {
	return help(fmt.Sprintf(format, args...))
}

// Debug returns a DiagnosticOption appends debugging information to a diagnostic that
// is not intended to be shown to normal users.
func Debug(format string, args ...any) DiagnosticOption {
	return debug(fmt.Sprintf(format, args...))
}

// annotation is an annotated source code snippet within a [Diagnostic].
type annotation struct {
	source.Span

	// A message to show under this snippet. May be empty.
	message string
}

func (a annotation) Apply(d *Diagnostic) {
	d.annotations = append(d.annotations, a)
}

type (
	message string
	note    string
	help    string
	debug   string
)

func (m message) Apply(d *Diagnostic) {
	if d.message != "" {
		panic("fprescan/report: set diagnostic message more than once")
	}
	d.message = string(m)
}

func (n note) Apply(d *Diagnostic)  { d.notes = append(d.notes, string(n)) }
func (n help) Apply(d *Diagnostic)  { d.help = append(d.help, string(n)) }
func (n debug) Apply(d *Diagnostic) { d.debug = append(d.debug, string(n)) }
