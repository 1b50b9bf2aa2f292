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
	"strings"
)

// Form is a Fortran source form.
type Form int8

const (
	FreeForm Form = iota
	FixedForm
)

// ParseForm parses "free" or "fixed".
func ParseForm(name string) (Form, error) {
	switch strings.ToLower(name) {
	case "free":
		return FreeForm, nil
	case "fixed":
		return FixedForm, nil
	default:
		return 0, fmt.Errorf("unknown source form %q", name)
	}
}

// String implements [fmt.Stringer].
func (f Form) String() string {
	if f == FixedForm {
		return "fixed"
	}
	return "free"
}

// Feature is a language extension that can be toggled, and optionally
// warned about when used.
type Feature int8

const (
	// Backslash escapes in character literals.
	BackslashEscapes Feature = iota
	// 'D' in column 1 of a fixed-form line marks a compiled debug line
	// rather than a comment.
	OldDebugLines
	// '&' in column 1 continues a fixed-form line.
	FixedFormContinuationWithColumn1Ampersand
	// /* C-style */ comments in free form.
	ClassicCComments
	// Text other than a comment after a free-form '&'.
	CruftAfterAmpersand

	numFeatures
)

// ParseFeature looks up a feature by name.
func ParseFeature(name string) (Feature, error) {
	for f := range numFeatures {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown language feature %q", name)
}

// String implements [fmt.Stringer].
func (f Feature) String() string {
	switch f {
	case BackslashEscapes:
		return "backslash-escapes"
	case OldDebugLines:
		return "old-debug-lines"
	case FixedFormContinuationWithColumn1Ampersand:
		return "column1-ampersand"
	case ClassicCComments:
		return "c-comments"
	case CruftAfterAmpersand:
		return "cruft-after-ampersand"
	default:
		return fmt.Sprintf("Feature(%d)", int(f))
	}
}

// Features is the set of enabled and warned-about language features.
//
// The zero value enables every feature except [BackslashEscapes] and
// [OldDebugLines], and warns about none.
type Features struct {
	// Bits that differ from the defaults.
	toggled uint32
	warn    uint32
}

func (f Feature) bit() uint32 { return 1 << uint(f) }

func (f Feature) enabledByDefault() bool {
	return f != BackslashEscapes && f != OldDebugLines
}

// IsEnabled returns whether f is enabled.
func (fs Features) IsEnabled(f Feature) bool {
	return f.enabledByDefault() != (fs.toggled&f.bit() != 0)
}

// ShouldWarn returns whether uses of f should be reported.
func (fs Features) ShouldWarn(f Feature) bool {
	return fs.warn&f.bit() != 0
}

// Enable enables or disables f.
func (fs *Features) Enable(f Feature, on bool) *Features {
	if on == f.enabledByDefault() {
		fs.toggled &^= f.bit()
	} else {
		fs.toggled |= f.bit()
	}
	return fs
}

// Warn turns warnings about uses of f on or off.
func (fs *Features) Warn(f Feature, on bool) *Features {
	if on {
		fs.warn |= f.bit()
	} else {
		fs.warn &^= f.bit()
	}
	return fs
}

// WarnAll turns on warnings about every feature.
func (fs *Features) WarnAll() *Features {
	fs.warn = 1<<uint(numFeatures) - 1
	return fs
}
