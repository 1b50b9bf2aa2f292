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
	"io"
	"slices"
	"strconv"
	"strings"
)

// Renderer configures a diagnostic rendering operation.
type Renderer struct {
	// If set, uses a compact one-line format for each diagnostic.
	Compact bool

	// If set, rendering results are enriched with ANSI color escapes.
	Colorize bool

	// Upgrades all warnings to errors.
	WarningsAreErrors bool

	// If set, remark diagnostics will be printed.
	ShowRemarks bool

	// If set, rendering a diagnostic will show the debug footer.
	ShowDebug bool
}

// Render renders a diagnostic report.
//
// In addition to returning the rendering result, returns the number of
// errors and warnings rendered.
//
// The error return is an error when writing to out.
func (r Renderer) Render(report *Report, out io.Writer) (errorCount, warningCount int, err error) {
	for i := range report.Diagnostics {
		d := &report.Diagnostics[i]
		if !r.ShowRemarks && d.level == Remark {
			continue
		}

		if _, err = fmt.Fprintln(out, r.Diagnostic(d)); err != nil {
			return errorCount, warningCount, err
		}
		if !r.Compact {
			if _, err = fmt.Fprintln(out); err != nil {
				return errorCount, warningCount, err
			}
		}

		switch {
		case d.level == Error, d.level == ICE:
			errorCount++
		case d.level == Warning && r.WarningsAreErrors:
			errorCount++
		case d.level == Warning:
			warningCount++
		}
	}
	if r.Compact {
		return errorCount, warningCount, nil
	}

	c := newStyleSheet(r)
	pluralize := func(count int, what string) string {
		if count == 1 {
			return "1 " + what
		}
		return fmt.Sprint(count, " ", what, "s")
	}

	switch {
	case errorCount > 0 && warningCount > 0:
		_, err = fmt.Fprint(out, c.pen(Error).bold, "encountered ", pluralize(errorCount, "error"),
			" and ", pluralize(warningCount, "warning"), c.reset, "\n")
	case errorCount > 0:
		_, err = fmt.Fprint(out, c.pen(Error).bold, "encountered ", pluralize(errorCount, "error"), c.reset, "\n")
	case warningCount > 0:
		_, err = fmt.Fprint(out, c.pen(Warning).bold, "encountered ", pluralize(warningCount, "warning"), c.reset, "\n")
	}
	return errorCount, warningCount, err
}

// RenderString is a helper for calling [Renderer.Render] with a [strings.Builder].
func (r Renderer) RenderString(report *Report) (text string, errorCount, warningCount int) {
	var buf strings.Builder
	e, w, _ := r.Render(report, &buf)
	return buf.String(), e, w
}

// Diagnostic renders a single diagnostic to a string.
func (r Renderer) Diagnostic(d *Diagnostic) string {
	level := d.level.String()
	if d.level == Warning && r.WarningsAreErrors {
		level = Error.String()
	}

	c := newStyleSheet(r)
	primary := d.Primary()

	// For the compact style, we imitate the Go compiler.
	if r.Compact {
		switch {
		case !primary.IsZero():
			start := primary.StartLoc()
			return fmt.Sprintf("%s%s: %s:%d:%d: %s%s",
				c.pen(d.level).normal, level,
				primary.Path(), start.Line, start.Column,
				d.message, c.reset)
		case d.inFile != "":
			return fmt.Sprintf("%s%s: %s: %s%s",
				c.pen(d.level).normal, level, d.inFile, d.message, c.reset)
		default:
			return fmt.Sprintf("%s%s: %s%s",
				c.pen(d.level).normal, level, d.message, c.reset)
		}
	}

	// Otherwise, we imitate the Rust compiler.
	var out strings.Builder
	fmt.Fprint(&out, c.pen(d.level).bold, level, ": ", d.message, c.reset)

	var greatestLine int
	for _, a := range d.annotations {
		greatestLine = max(greatestLine, a.StartLoc().Line)
	}
	lineBarWidth := max(2, len(strconv.Itoa(greatestLine)))

	for i, group := range groupByFile(d.annotations) {
		start := group[0].StartLoc()
		arrow := "-->"
		if i > 0 {
			arrow = ":::"
		}
		out.WriteByte('\n')
		out.WriteString(c.accent.normal)
		out.WriteString(strings.Repeat(" ", lineBarWidth))
		fmt.Fprintf(&out, "%s %s:%d:%d", arrow, group[0].Path(), start.Line, start.Column)
		out.WriteByte('\n')
		out.WriteString(strings.Repeat(" ", lineBarWidth))
		out.WriteString(" |")

		renderWindow(&out, &c, lineBarWidth, d.level, i == 0, group)
	}

	if len(d.annotations) == 0 && d.inFile != "" {
		out.WriteByte('\n')
		out.WriteString(c.accent.normal)
		out.WriteString(strings.Repeat(" ", lineBarWidth))
		fmt.Fprintf(&out, "--> %s", d.inFile)
	}

	type footer struct{ color, kind, text string }
	var footers []footer
	for _, note := range d.notes {
		footers = append(footers, footer{c.pen(Remark).bold, "note", note})
	}
	for _, help := range d.help {
		footers = append(footers, footer{c.pen(Remark).bold, "help", help})
	}
	if r.ShowDebug {
		for _, debug := range d.debug {
			footers = append(footers, footer{c.pen(Error).bold, "debug", debug})
		}
		for _, line := range d.trace.lines() {
			footers = append(footers, footer{c.pen(Error).bold, "debug", line})
		}
	}
	for _, f := range footers {
		out.WriteByte('\n')
		out.WriteString(c.accent.normal)
		out.WriteString(strings.Repeat(" ", lineBarWidth))
		out.WriteString(" = ")
		fmt.Fprint(&out, f.color, f.kind, ": ", c.reset)
		for i, line := range strings.Split(f.text, "\n") {
			if i > 0 {
				out.WriteByte('\n')
				out.WriteString(strings.Repeat(" ", lineBarWidth+3+len(f.kind)+2))
			}
			out.WriteString(line)
		}
	}

	out.WriteString(c.reset)
	return out.String()
}

// groupByFile splits annotations into runs that refer to the same file.
func groupByFile(annotations []annotation) [][]annotation {
	var groups [][]annotation
	for i, a := range annotations {
		if i == 0 || annotations[i-1].Path() != a.Path() {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], a)
	}
	return groups
}

// renderWindow renders the source lines touched by annotations, which all
// refer to the same file, each followed by its underlines.
//
// Spans that cross a line boundary are underlined to the end of their first
// line.
func renderWindow(
	out *strings.Builder,
	c *styleSheet,
	lineBarWidth int,
	level Level,
	hasPrimary bool,
	annotations []annotation,
) {
	type underline struct {
		start, end int // Rendered columns, 0-indexed.
		level      Level
		message    string
	}

	lines := make(map[int][]underline)
	for i, a := range annotations {
		loc := a.StartLoc()
		text := a.File.Line(loc.Line)
		lineStart, _ := a.LineOffsets(loc.Line)

		prefix := text[:min(len(text), a.Start-lineStart)]
		body := text[len(prefix):min(len(text), max(len(prefix), a.End-lineStart))]
		start := stringWidth(0, prefix, nil)
		end := max(start+1, stringWidth(start, body, nil))

		ul := underline{start: start, end: end, level: noteLevel, message: a.message}
		if i == 0 && hasPrimary {
			ul.level = level
		}
		lines[loc.Line] = append(lines[loc.Line], ul)
	}

	numbers := make([]int, 0, len(lines))
	for n := range lines {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	file := annotations[0].File
	for i, n := range numbers {
		if i > 0 && numbers[i-1]+1 != n {
			out.WriteByte('\n')
			out.WriteString(c.accent.normal)
			out.WriteString(strings.Repeat(" ", lineBarWidth-2))
			out.WriteString("...")
		}

		fmt.Fprintf(out, "\n%s%*d | %s", c.accent.normal, lineBarWidth, n, c.reset)
		stringWidth(0, file.Line(n), out)

		uls := lines[n]
		slices.SortStableFunc(uls, func(a, b underline) int { return a.start - b.start })
		for _, ul := range uls {
			out.WriteByte('\n')
			out.WriteString(c.accent.normal)
			out.WriteString(strings.Repeat(" ", lineBarWidth))
			out.WriteString(" | ")
			out.WriteString(strings.Repeat(" ", ul.start))
			out.WriteString(c.pen(ul.level).bold)
			mark := "^"
			if ul.level == noteLevel {
				mark = "-"
			}
			out.WriteString(strings.Repeat(mark, ul.end-ul.start))
			if ul.message != "" {
				out.WriteByte(' ')
				out.WriteString(ul.message)
			}
			out.WriteString(c.reset)
		}
	}
}
