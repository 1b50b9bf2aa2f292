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

import "fmt"

// ANSI foreground colors.
const (
	red     = 31
	yellow  = 33
	blue    = 34
	magenta = 35
	cyan    = 36
)

// pen is one color in its plain and bold weights.
type pen struct {
	normal, bold string
}

func ansi(color int) pen {
	return pen{
		normal: fmt.Sprintf("\033[0;%dm", color),
		bold:   fmt.Sprintf("\033[1;%dm", color),
	}
}

// styleSheet is the colors used for pretty-rendering diagnostics. The zero
// value renders without color.
type styleSheet struct {
	reset  string
	levels [noteLevel + 1]pen

	// Line numbers, gutters and secondary underlines, to set them apart from
	// the source text.
	accent pen
}

func newStyleSheet(r Renderer) styleSheet {
	if !r.Colorize {
		return styleSheet{}
	}

	c := styleSheet{reset: "\033[0m", accent: ansi(blue)}
	c.levels[ICE] = ansi(magenta)
	c.levels[Error] = ansi(red)
	c.levels[Warning] = ansi(yellow)
	if r.WarningsAreErrors {
		c.levels[Warning] = c.levels[Error]
	}
	c.levels[Remark] = ansi(cyan)
	c.levels[noteLevel] = c.accent
	return c
}

// pen returns the colors for diagnostics and underlines of the given level.
func (c styleSheet) pen(l Level) pen {
	if l < 0 || int(l) >= len(c.levels) {
		return pen{}
	}
	return c.levels[l]
}
