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
	"slices"
)

// Diagnose is an error that can be rendered as a diagnostic.
type Diagnose interface {
	error

	// Diagnose writes out this error to the given diagnostic.
	//
	// This function should not set Level; that is set by the diagnostics
	// framework.
	Diagnose(*Diagnostic)
}

// Report is a collection of diagnostics.
//
// Report is not thread-safe (in the sense that distinct goroutines should not
// all write to Report at the same time). Instead, the recommendation is to create
// multiple reports and then merge them, using [Report.Append].
type Report struct {
	// The actual diagnostics on this report. Generally, you'll want to use one of
	// the helpers like [Report.Error] instead of appending directly.
	Diagnostics []Diagnostic
}

// Error pushes an error diagnostic onto this report.
func (r *Report) Error(err Diagnose) *Diagnostic {
	return r.diagnose(err, Error)
}

// Warn pushes a warning diagnostic onto this report.
func (r *Report) Warn(err Diagnose) *Diagnostic {
	return r.diagnose(err, Warning)
}

func (r *Report) diagnose(err Diagnose, level Level) *Diagnostic {
	d := r.push(2, level)
	d.err = err
	err.Diagnose(d)
	if d.message == "" {
		d.message = err.Error()
	}
	return d
}

// Errorf creates an ad-hoc error diagnostic with the given message; analogous
// to [fmt.Errorf].
func (r *Report) Errorf(format string, args ...any) *Diagnostic {
	return r.push(1, Error).With(Message(format, args...))
}

// Warnf creates an ad-hoc warning diagnostic with the given message; analogous
// to [fmt.Errorf].
func (r *Report) Warnf(format string, args ...any) *Diagnostic {
	return r.push(1, Warning).With(Message(format, args...))
}

// Remarkf creates an ad-hoc remark diagnostic with the given message;
// analogous to [fmt.Errorf].
func (r *Report) Remarkf(format string, args ...any) *Diagnostic {
	return r.push(1, Remark).With(Message(format, args...))
}

// CatchICE will recover a panic (an internal compiler error, or ICE) and log it
// as an error diagnostic. This function should be called in a defer statement.
//
// When constructing the diagnostic, diagnose is called, to provide an
// opportunity to annotate it further.
//
// If resume is true, resumes the recovered panic.
func (r *Report) CatchICE(resume bool, diagnose func(*Diagnostic)) {
	panicked := recover()
	if panicked == nil {
		return
	}

	d := r.push(1, ICE).With(Message("%v", panicked))
	if err, ok := panicked.(error); ok {
		d.err = err
	}
	if stack := panicTrace(); stack != "" {
		d.With(Debug("%s", stack))
	}
	if diagnose != nil {
		diagnose(d)
	}

	if resume {
		panic(panicked)
	}
}

// Count returns the number of diagnostics at the given level.
func (r *Report) Count(level Level) int {
	var n int
	for i := range r.Diagnostics {
		if r.Diagnostics[i].level == level {
			n++
		}
	}
	return n
}

// HasErrors returns whether this report contains any errors or ICEs.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Diagnostics, func(d Diagnostic) bool {
		return d.level == Error || d.level == ICE
	})
}

// push is the core "make me a diagnostic" function.
func (r *Report) push(skip int, level Level) *Diagnostic {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		level: level,
		trace: captureTrace(skip + 1),
	})
	return &r.Diagnostics[len(r.Diagnostics)-1]
}

// ErrInFile wraps an [error] into a diagnostic on the given file.
type ErrInFile struct {
	Err  error
	Path string
}

var _ Diagnose = &ErrInFile{}

// Error implements [error].
func (e *ErrInFile) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ErrInFile) Unwrap() error {
	return e.Err
}

// Diagnose implements [Diagnose].
func (e *ErrInFile) Diagnose(d *Diagnostic) {
	d.With(
		Message("%v", e.Err),
		InFile(e.Path),
	)
}
