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
	"os"
	"runtime"
	rtdebug "runtime/debug"
	"strings"

	"github.com/petermattis/goid"
)

const (
	debugOff int = iota
	debugMinimal
	debugFull
)

// debugMode is the status of the FPRESCAN_DEBUG environment variable at
// startup. This cannot be set in any way except by environment variable. It is
// used to enable diagnostic-debugging functionality.
var debugMode = func() int {
	switch strings.ToLower(os.Getenv("FPRESCAN_DEBUG")) {
	case "", "0", "off", "false":
		return debugOff
	case "full":
		return debugFull
	default:
		return debugMinimal
	}
}()

// trace records where a diagnostic was created.
type trace struct {
	goroutine int64
	frames    []runtime.Frame
}

// captureTrace captures a trace for a diagnostic being created skip frames
// above the caller, if debugging is enabled.
func captureTrace(skip int) *trace {
	if debugMode == debugOff {
		return nil
	}

	t := &trace{goroutine: goid.Get()}
	pc := make([]uintptr, 64)
	pc = pc[:runtime.Callers(skip+2, pc)]

	var zero runtime.Frame
	frames := runtime.CallersFrames(pc)
	for {
		next, more := frames.Next()
		if next != zero {
			t.frames = append(t.frames, next)
		}
		if !more || (debugMode == debugMinimal && len(t.frames) == 1) {
			break
		}
	}
	return t
}

func (t *trace) lines() []string {
	if t == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("reported on goroutine %d", t.goroutine)}
	for _, frame := range t.frames {
		lines = append(lines, fmt.Sprintf("at %s\n  %s:%d", frame.Function, frame.File, frame.Line))
	}
	return lines
}

// panicTrace returns the stack of a recovered panic, for ICE diagnostics.
func panicTrace() string {
	if debugMode == debugOff {
		return ""
	}
	return string(rtdebug.Stack())
}
