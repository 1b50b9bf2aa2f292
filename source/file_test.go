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
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fprescan/source"
)

func TestFS(t *testing.T) {
	t.Parallel()

	opener := &source.FS{FS: fstest.MapFS{
		"testdata/hello.f90": {Data: []byte("print *, 'hello'\r\n")},
	}}

	file, err := opener.Open("testdata/hello.f90")
	require.NoError(t, err)
	assert.Equal(t, "print *, 'hello'\n", file.Text())
	assert.Equal(t, "testdata", file.Dir())

	_, err = opener.Open("missing.f90")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMap(t *testing.T) {
	t.Parallel()

	opener := source.NewMap(nil)
	opener.Add("hello.f90", "end")

	file, err := opener.Open("hello.f90")
	require.NoError(t, err)
	assert.Equal(t, "end\n", file.Text())

	_, err = opener.Open("missing.f90")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpeners(t *testing.T) {
	t.Parallel()

	mapped := source.NewMap(nil)
	mapped.Add("overlaid.f90", "overlaid\n")

	opener := source.Openers{
		mapped,
		&source.FS{FS: fstest.MapFS{"disk.f90": {Data: []byte("disk\n")}}},
	}

	file, err := opener.Open("overlaid.f90")
	require.NoError(t, err)
	assert.Equal(t, "overlaid\n", file.Text())

	file, err = opener.Open("disk.f90")
	require.NoError(t, err)
	assert.Equal(t, "disk\n", file.Text())

	_, err = opener.Open("missing.f90")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, text, want string
		encoding         source.Encoding
		wantEncoding     source.Encoding
	}{
		{name: "empty", text: "", want: ""},
		{name: "newline", text: "x = 1", want: "x = 1\n"},
		{name: "crlf", text: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "lone-cr", text: "a\rb\n", want: "a\rb\n"},
		{
			name: "bom", text: "\xef\xbb\xbfend\n", want: "end\n",
			encoding: source.Latin1, wantEncoding: source.UTF8,
		},
		{
			name: "latin1", text: "'\xe9'\n", want: "'\xe9'\n",
			encoding: source.Latin1, wantEncoding: source.Latin1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := source.NewEncodedFile("test.f", tt.text, tt.encoding)
			assert.Equal(t, tt.want, file.Text())
			assert.Equal(t, tt.wantEncoding, file.Encoding())
		})
	}
}

func TestFileLocation(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test.f90", "a = 1\nb = 'é'\nc\n")
	assert.Equal(t, source.Location{Offset: 0, Line: 1, Column: 1}, file.Location(0))
	assert.Equal(t, source.Location{Offset: 4, Line: 1, Column: 5}, file.Location(4))
	assert.Equal(t, source.Location{Offset: 6, Line: 2, Column: 1}, file.Location(6))
	// The é is two bytes but one column.
	assert.Equal(t, source.Location{Offset: 13, Line: 2, Column: 7}, file.Location(13))
	assert.Equal(t, source.Location{Offset: 15, Line: 3, Column: 1}, file.Location(15))

	assert.Equal(t, "b = 'é'", file.Line(2))
	assert.Equal(t, "c", file.Line(3))
	assert.Equal(t, "", file.Line(4))

	var nilFile *source.File
	assert.Equal(t, source.Location{Line: 1, Column: 1}, nilFile.Location(10))
}

func TestEncodingDecode(t *testing.T) {
	t.Parallel()

	r, n := source.UTF8.Decode("é!")
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, n)

	_, n = source.UTF8.Decode("\xe9!")
	assert.Equal(t, 0, n)

	r, n = source.Latin1.Decode("\xe9!")
	assert.Equal(t, 'é', r)
	assert.Equal(t, 1, n)

	enc, err := source.ParseEncoding("Latin-1")
	require.NoError(t, err)
	assert.Equal(t, source.Latin1, enc)
	_, err = source.ParseEncoding("ebcdic")
	require.Error(t, err)
}
