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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fprescan"
	"github.com/bufbuild/fprescan/internal/corpora"
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
)

// caseConfigPrefix introduces a line of YAML configuration in a test case.
// It is a comment in both source forms.
const caseConfigPrefix = "!% "

func TestCorpus(t *testing.T) {
	t.Parallel()

	corpus := corpora.Corpus{
		Root:       "testdata",
		Refresh:    "FPRESCAN_REFRESH",
		Extensions: []string{"f", "f90"},
		Outputs: []corpora.Output{
			{Extension: "cooked.txt"},
			{Extension: "stderr.txt"},
		},
	}

	corpus.Run(t, func(t *testing.T, path, text string, outputs []string) {
		var config []string
		for _, line := range strings.Split(text, "\n") {
			if yaml, ok := strings.CutPrefix(line, caseConfigPrefix); ok {
				config = append(config, yaml)
			}
		}
		c, err := fprescan.LoadConfig(strings.NewReader(strings.Join(config, "\n")))
		require.NoError(t, err)

		d := &fprescan.Driver{Opener: new(source.OS)}
		require.NoError(t, c.Apply(d))
		results, err := d.Prescan(context.Background(), path)
		require.NoError(t, err)
		res := results[0]

		stderr, _, _ := report.Renderer{Colorize: true, ShowDebug: true}.RenderString(res.Report)
		t.Log(stderr)
		if res.Report.Count(report.ICE) > 0 {
			t.Fail()
		}

		outputs[0] = res.Cooked.Text()
		outputs[1], _, _ = report.Renderer{Compact: true}.RenderString(res.Report)
	})
}
