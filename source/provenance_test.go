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

package source_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fprescan/source"
)

func TestRange(t *testing.T) {
	t.Parallel()

	r := source.Range{Start: 10, Size: 5}
	assert.Equal(t, source.Provenance(15), r.End())
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(14))
	assert.False(t, r.Contains(15))
	assert.Equal(t, source.Provenance(12), r.At(2))
	assert.Equal(t, source.Range{Start: 12, Size: 3}, r.Suffix(2))
	assert.Equal(t, source.Range{Start: 15, Size: 0}, r.Suffix(9))
	assert.Equal(t, source.Range{Start: 10, Size: 2}, r.Prefix(2))
	assert.Equal(t, source.Range{Start: 3, Size: 12}, r.Cover(source.Range{Start: 3, Size: 1}))
	assert.Equal(t, r, r.Cover(source.Range{}))
	assert.Panics(t, func() { r.At(5) })
}

func TestSearchPath(t *testing.T) {
	t.Parallel()

	files := source.NewMap(nil)
	files.Add("inc/a.h", "! inc/a.h\n")
	files.Add("src/a.h", "! src/a.h\n")
	files.Add("src/sub/b.h", "! src/sub/b.h\n")
	files.Add("/abs/c.h", "! /abs/c.h\n")
	files.Add("top.f90", "! top\n")

	sources := source.NewAllSources(files, "inc")

	// With nothing pushed, relative paths resolve against the include
	// paths only.
	file, err := sources.Open("a.h")
	require.NoError(t, err)
	assert.Equal(t, "inc/a.h", file.Path())

	sources.PushSearchPathDirectory("src")
	file, err = sources.Open("a.h")
	require.NoError(t, err)
	assert.Equal(t, "src/a.h", file.Path())

	sources.PushSearchPathDirectory("src/sub")
	file, err = sources.Open("a.h")
	require.NoError(t, err)
	assert.Equal(t, "src/a.h", file.Path(), "falls back to the outer directory")
	file, err = sources.Open("b.h")
	require.NoError(t, err)
	assert.Equal(t, "src/sub/b.h", file.Path())

	assert.Equal(t, "src/sub", sources.PopSearchPathDirectory())
	assert.Equal(t, "src", sources.PopSearchPathDirectory())
	assert.Equal(t, 0, sources.SearchPathDepth())
	assert.Panics(t, func() { sources.PopSearchPathDirectory() })

	file, err = sources.Open("/abs/c.h")
	require.NoError(t, err)
	assert.Equal(t, "/abs/c.h", file.Path())

	_, err = sources.Open("nope.h")
	require.ErrorIs(t, err, fs.ErrNotExist)
	var notFound *source.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []string{"inc/nope.h"}, notFound.Searched)
	assert.Equal(t, "source file 'nope.h' was not found", err.Error())

	file, err = source.NewAllSources(files).Open("top.f90")
	require.NoError(t, err)
	assert.Equal(t, "top.f90", file.Path())
}

func TestProvenance(t *testing.T) {
	t.Parallel()

	sources := source.NewAllSources(source.NewMap(nil))
	top := source.NewFile("top.f90", "include 'a.h'\nend\n")
	inc := source.NewFile("a.h", "x = 1\n")

	topRange := sources.AddIncludedFile(top, source.Range{})
	site := source.Range{Start: topRange.Start, Size: 13}
	incRange := sources.AddIncludedFile(inc, site)
	assert.Equal(t, top.Len(), topRange.Size)
	assert.Equal(t, topRange.End(), incRange.Start)

	origin, offset, ok := sources.Locate(incRange.At(4))
	require.True(t, ok)
	assert.Same(t, inc, origin.File)
	assert.Equal(t, 4, offset)
	assert.Equal(t, site, origin.Site)
	assert.Equal(t, "a.h:1:5", sources.Describe(incRange.At(4)))
	assert.Equal(t, "top.f90:2:1", sources.Describe(topRange.At(14)))

	assert.Equal(t, []source.Range{site}, sources.IncludeStack(incRange.At(0)))
	assert.Empty(t, sources.IncludeStack(topRange.At(0)))

	span := sources.Span(source.Range{Start: incRange.At(4), Size: 100})
	assert.Equal(t, "1\n", span.Text())

	blank := sources.InsertionProvenance(' ')
	assert.Equal(t, blank, sources.InsertionProvenance(' '))
	assert.NotEqual(t, blank, sources.InsertionProvenance('&'))
	origin, _, ok = sources.Locate(blank)
	require.True(t, ok)
	assert.True(t, origin.Inserted)

	assert.Equal(t, []string{"top.f90", "a.h"}, sources.Files())

	_, _, ok = sources.Locate(0)
	assert.False(t, ok)
	assert.True(t, sources.Span(source.Range{}).IsZero())
}

func TestCooked(t *testing.T) {
	t.Parallel()

	sources := source.NewAllSources(source.NewMap(nil))
	top := sources.AddIncludedFile(source.NewFile("top.f90", "abc\n"), source.Range{})
	inc := sources.AddIncludedFile(source.NewFile("inc.h", "xyz\n"), top.Prefix(1))

	a := source.NewFile("a.h", "")
	b := source.NewFile("b.h", "")

	var cooked source.Cooked
	cooked.PutRange("ab", top.Prefix(2))
	cooked.BeginInclude(a)
	cooked.BeginInclude(b)
	cooked.Put('y', inc.At(1))
	cooked.Put('z', inc.At(2))
	cooked.EndInclude()
	cooked.Put('x', inc.At(0))
	cooked.EndInclude()
	cooked.BeginInclude(b)
	cooked.EndInclude() // Empty includes leave no trace.
	cooked.Put('\n', top.At(3))

	assert.Equal(t, "abyzx\n", cooked.Text())
	assert.Equal(t, 6, cooked.Len())
	assert.Equal(t, top.At(0), cooked.Provenance(0))
	assert.Equal(t, top.At(1), cooked.Provenance(1))
	assert.Equal(t, inc.At(1), cooked.Provenance(2))
	assert.Equal(t, inc.At(2), cooked.Provenance(3))
	assert.Equal(t, inc.At(0), cooked.Provenance(4))
	assert.Equal(t, top.At(3), cooked.Provenance(5))
	assert.Equal(t, source.Provenance(0), cooked.Provenance(6))

	assert.Empty(t, cooked.IncludeChain(0))
	assert.Equal(t, []*source.File{b, a}, cooked.IncludeChain(2))
	assert.Equal(t, []*source.File{a}, cooked.IncludeChain(4))
	assert.Empty(t, cooked.IncludeChain(5))

	assert.Panics(t, func() { cooked.EndInclude() })
	assert.Panics(t, func() { cooked.PutRange("abc", top.Prefix(2)) })
}
