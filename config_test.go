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

package fprescan_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fprescan"
	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/source"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	c, err := fprescan.LoadConfig(strings.NewReader(`
form: fixed
column_limit: 132
encoding: latin-1
include_paths: [inc, /usr/include]
defines: [A, B=2]
sentinels: [$foo]
openmp: true
features:
  enable: [backslash-escapes]
  disable: [c-comments]
  warn: [cruft-after-ampersand]
max_parallelism: 3
`))
	require.NoError(t, err)

	opener := new(source.OS)
	d := &fprescan.Driver{Opener: opener, IncludePaths: []string{"first"}}
	require.NoError(t, c.Apply(d))

	assert.True(t, d.ForceForm)
	assert.Equal(t, prescanner.FixedForm, d.Options.Form)
	assert.Equal(t, 132, d.Options.FixedFormColumnLimit)
	assert.Equal(t, source.Latin1, opener.Encoding)
	assert.Equal(t, []string{"first", "inc", "/usr/include"}, d.IncludePaths)
	assert.Equal(t, []fprescan.Define{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, d.Defines)
	assert.Equal(t, []string{"$foo", "$omp", "$"}, d.Options.Sentinels)
	assert.True(t, d.Options.Features.IsEnabled(prescanner.BackslashEscapes))
	assert.False(t, d.Options.Features.IsEnabled(prescanner.ClassicCComments))
	assert.True(t, d.Options.Features.ShouldWarn(prescanner.CruftAfterAmpersand))
	assert.False(t, d.Options.Features.ShouldWarn(prescanner.ClassicCComments))
	assert.Equal(t, 3, d.MaxParallelism)
}

func TestLoadConfigEmpty(t *testing.T) {
	t.Parallel()

	c, err := fprescan.LoadConfig(strings.NewReader(""))
	require.NoError(t, err)

	d := &fprescan.Driver{Opener: source.NewMap(nil), MaxParallelism: 7}
	require.NoError(t, c.Apply(d))
	assert.Equal(t, &fprescan.Driver{Opener: d.Opener, MaxParallelism: 7}, d)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := fprescan.LoadConfig(strings.NewReader("colour: red\n"))
	require.Error(t, err)

	tests := []struct {
		config, err string
	}{
		{"form: tabular\n", `fprescan: form: unknown source form "tabular"`},
		{"encoding: ebcdic\n", `fprescan: encoding: unknown encoding "ebcdic"`},
		{"encoding: latin-1\n", "fprescan: encoding: cannot set the encoding of a *source.Map"},
		{"features: {enable: [goto-less]}\n", `fprescan: features: unknown language feature "goto-less"`},
	}
	for _, test := range tests {
		c, err := fprescan.LoadConfig(strings.NewReader(test.config))
		require.NoError(t, err, test.config)
		err = c.Apply(&fprescan.Driver{Opener: source.NewMap(nil)})
		require.EqualError(t, err, test.err, test.config)
	}
}
