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

package source

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bufbuild/fprescan/internal/interval"
)

// Provenance is a position in the global provenance space of an [AllSources].
//
// Every byte of every file, and every character the compiler inserts, has
// its own Provenance. The zero value is never allocated, so it means "no
// provenance".
type Provenance int

// Range is a contiguous run of [Provenance] values.
type Range struct {
	Start Provenance
	Size  int
}

// RangeOf is a shorthand for a single-character range.
func RangeOf(p Provenance) Range {
	return Range{Start: p, Size: 1}
}

// End returns the first provenance after this range.
func (r Range) End() Provenance {
	return r.Start + Provenance(r.Size)
}

// IsEmpty returns whether this range contains nothing.
func (r Range) IsEmpty() bool {
	return r.Size <= 0
}

// Contains returns whether p lies within this range.
func (r Range) Contains(p Provenance) bool {
	return r.Start <= p && p < r.End()
}

// At returns the provenance n characters into this range.
func (r Range) At(n int) Provenance {
	if n < 0 || n >= r.Size {
		panic(fmt.Sprintf("fprescan/source: offset %d out of range %v", n, r))
	}
	return r.Start + Provenance(n)
}

// Prefix returns the first n characters of this range.
func (r Range) Prefix(n int) Range {
	return Range{Start: r.Start, Size: max(0, min(n, r.Size))}
}

// Suffix returns this range with its first n characters removed.
func (r Range) Suffix(n int) Range {
	n = max(0, min(n, r.Size))
	return Range{Start: r.Start + Provenance(n), Size: r.Size - n}
}

// Cover returns the smallest range containing both r and that.
func (r Range) Cover(that Range) Range {
	switch {
	case r.IsEmpty():
		return that
	case that.IsEmpty():
		return r
	}
	start := min(r.Start, that.Start)
	end := max(r.End(), that.End())
	return Range{Start: start, Size: int(end - start)}
}

// String implements [fmt.Stringer].
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End())
}

// Origin is the thing a [Range] of provenance was allocated to.
type Origin struct {
	// The file the provenance refers to. For compiler insertions, this is a
	// synthetic file holding the inserted text.
	File *File

	// The provenance allocated to File.
	Range Range

	// Where File was included from. Empty for top-level files and compiler
	// insertions.
	Site Range

	// Whether this is text inserted by the compiler rather than read from a
	// file.
	Inserted bool
}

// NotFoundError is returned by [AllSources.Open] when no directory on the
// search path holds the requested file.
type NotFoundError struct {
	Path     string
	Searched []string
}

// Error implements [error].
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source file '%s' was not found", e.Path)
}

// Unwrap returns [fs.ErrNotExist].
func (e *NotFoundError) Unwrap() error {
	return fs.ErrNotExist
}

// AllSources owns the provenance space for one prescanning job: the files
// that took part in it, the text the compiler inserted into it, and the
// directory search path used to resolve includes.
//
// An AllSources is not safe for concurrent use.
type AllSources struct {
	opener       Opener
	includePaths []string
	searchStack  []string

	origins    interval.Map[Provenance, Origin]
	next       Provenance
	insertions [256]Provenance
}

// NewAllSources creates a new provenance space that opens files with opener
// and resolves relative paths against includePaths after any directory
// pushed with [AllSources.PushSearchPathDirectory].
func NewAllSources(opener Opener, includePaths ...string) *AllSources {
	return &AllSources{
		opener:       opener,
		includePaths: includePaths,
		next:         1,
	}
}

// PushSearchPathDirectory pushes a directory onto the search-path stack.
// Every push must be balanced by a [AllSources.PopSearchPathDirectory].
func (a *AllSources) PushSearchPathDirectory(dir string) {
	a.searchStack = append(a.searchStack, dir)
}

// PopSearchPathDirectory pops the most recently pushed directory.
func (a *AllSources) PopSearchPathDirectory() string {
	if len(a.searchStack) == 0 {
		panic("fprescan/source: search path stack underflow")
	}
	dir := a.searchStack[len(a.searchStack)-1]
	a.searchStack = a.searchStack[:len(a.searchStack)-1]
	return dir
}

// SearchPathDepth returns the number of pushed directories.
func (a *AllSources) SearchPathDepth() int {
	return len(a.searchStack)
}

// Open resolves and opens a file.
//
// An absolute path is opened as-is. A relative path is tried against each
// pushed directory, most recent first, and then against each include path.
// Any error other than one wrapping [fs.ErrNotExist] stops the search.
func (a *AllSources) Open(name string) (*File, error) {
	if path.IsAbs(name) {
		return a.opener.Open(name)
	}

	var searched []string
	try := func(dir string) (*File, error) {
		candidate := path.Join(dir, name)
		searched = append(searched, candidate)
		return a.opener.Open(candidate)
	}

	for i := len(a.searchStack) - 1; i >= 0; i-- {
		file, err := try(a.searchStack[i])
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return file, err
	}
	for _, dir := range a.includePaths {
		file, err := try(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return file, err
	}
	if len(searched) == 0 {
		file, err := try("")
		if !errors.Is(err, fs.ErrNotExist) {
			return file, err
		}
	}

	return nil, &NotFoundError{Path: name, Searched: searched}
}

// AddIncludedFile allocates provenance for every byte of file, recording
// that it was included from site. Pass an empty site for a top-level file.
func (a *AllSources) AddIncludedFile(file *File, site Range) Range {
	return a.allocate(Origin{File: file, Site: site})
}

// AddCompilerInsertion allocates provenance for text the compiler inserts
// into the cooked stream.
func (a *AllSources) AddCompilerInsertion(text string) Range {
	return a.allocate(Origin{
		File:     NewFile("<compiler insertion>", text),
		Inserted: true,
	})
}

// InsertionProvenance returns the provenance of a single inserted character.
// Repeated calls with the same character return the same provenance.
func (a *AllSources) InsertionProvenance(ch byte) Provenance {
	if p := a.insertions[ch]; p != 0 {
		return p
	}
	p := a.AddCompilerInsertion(string([]byte{ch})).Start
	a.insertions[ch] = p
	return p
}

func (a *AllSources) allocate(origin Origin) Range {
	// Allocate at least one value, so that an empty file still has a
	// distinct position to report diagnostics at.
	size := max(1, origin.File.Len())
	origin.Range = Range{Start: a.next, Size: size}
	a.next += Provenance(size)

	overlap := a.origins.Insert(origin.Range.Start, origin.Range.End()-1, origin)
	if overlap.Value != nil {
		panic(fmt.Sprintf("fprescan/source: provenance %v allocated twice", origin.Range))
	}
	return origin.Range
}

// Locate finds the origin that p was allocated to, and the byte offset of p
// within it.
func (a *AllSources) Locate(p Provenance) (origin Origin, offset int, ok bool) {
	found := a.origins.Get(p)
	if found.Value == nil {
		return Origin{}, 0, false
	}
	return *found.Value, int(p - found.Start), true
}

// Span converts a range into a [Span] within the file its start was
// allocated to. The span is clipped to the end of that file.
//
// Returns the zero span if r is not a known provenance.
func (a *AllSources) Span(r Range) Span {
	origin, offset, ok := a.Locate(r.Start)
	if !ok {
		return Span{}
	}
	end := min(offset+max(0, r.Size), origin.File.Len())
	return origin.File.Span(min(offset, end), end)
}

// Describe renders p as "path:line:col" for human consumption.
func (a *AllSources) Describe(p Provenance) string {
	origin, offset, ok := a.Locate(p)
	if !ok {
		return "<unknown>"
	}
	loc := origin.File.Location(offset)
	return fmt.Sprintf("%s:%d:%d", origin.File.Path(), loc.Line, loc.Column)
}

// IncludeStack returns the include sites through which p was reached,
// innermost first. It is empty for provenance in a top-level file.
func (a *AllSources) IncludeStack(p Provenance) []Range {
	var sites []Range
	for {
		origin, _, ok := a.Locate(p)
		if !ok || origin.Site.IsEmpty() {
			return sites
		}
		sites = append(sites, origin.Site)
		p = origin.Site.Start
	}
}

// Files returns the path of every file allocated so far, in allocation
// order, excluding compiler insertions.
func (a *AllSources) Files() []string {
	var paths []string
	for iv := range a.origins.Intervals() {
		if !iv.Value.Inserted {
			paths = append(paths, iv.Value.File.Path())
		}
	}
	return paths
}

// Format implements [fmt.Formatter], for debugging.
func (a *AllSources) Format(s fmt.State, _ rune) {
	var b strings.Builder
	for iv := range a.origins.Intervals() {
		fmt.Fprintf(&b, "%v: %q\n", iv.Value.Range, iv.Value.File.Path())
	}
	_, _ = s.Write([]byte(b.String()))
}
