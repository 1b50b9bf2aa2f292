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

// fprescan prescans Fortran source files and prints their cooked character
// streams.
//
// Usage:
//
//	fprescan [flags] file.f90 [file2.f ...]
//
// The cooked stream of each file is written to standard output, and its
// diagnostics to standard error. The exit status is 1 if any error was
// reported.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bufbuild/fprescan"
	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
)

var (
	flagFixedForm  = flag.Bool("ffixed-form", false, "treat every file as fixed form")
	flagFreeForm   = flag.Bool("ffree-form", false, "treat every file as free form")
	flagLineLength = flag.Int("ffixed-line-length", 0, "last column of a fixed-form statement (default 72)")
	flagBackslash  = flag.Bool("fbackslash", false, "interpret backslash escapes in character literals")
	flagOpenMP     = flag.Bool("fopenmp", false, "recognize OpenMP directives and conditional lines")
	flagOpenACC    = flag.Bool("fopenacc", false, "recognize OpenACC directives")
	flagDebugLines = flag.Bool("fdebug-lines", false, "compile fixed-form lines with D in column 1")
	flagConfig     = flag.String("config", "", "YAML configuration `file`; flags override it")
	flagJobs       = flag.Int("j", 0, "number of files to prescan at once")
	flagWerror     = flag.Bool("Werror", false, "treat warnings as errors")
	flagColor      = flag.Bool("color", false, "colorize diagnostics")
	flagCompact    = flag.Bool("compact", false, "print diagnostics on one line each")
	flagRemarks    = flag.Bool("remarks", false, "also print remarks, such as ignored preprocessor directives")
	flagProvenance = flag.Bool("provenance", false, "prefix each cooked line with its offset and source position")

	flagIncludes stringList
	flagDefines  stringList
)

func init() {
	flag.Var(&flagIncludes, "I", "add `dir` to the include search path (repeatable)")
	flag.Var(&flagDefines, "D", "predefine a macro as `NAME[=VALUE]` (repeatable)")
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: fprescan [flags] file.f90 [file2.f ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	d, err := newDriver()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fprescan:", err)
		os.Exit(2)
	}
	os.Exit(run(d, flag.Args()))
}

// newDriver builds a driver from the configuration file, if any, and then
// the flags.
func newDriver() (*fprescan.Driver, error) {
	d := &fprescan.Driver{Opener: new(source.OS)}
	if *flagConfig != "" {
		f, err := os.Open(*flagConfig)
		if err != nil {
			return nil, err
		}
		config, err := fprescan.LoadConfig(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		if err := config.Apply(d); err != nil {
			return nil, err
		}
	}

	switch {
	case *flagFixedForm && *flagFreeForm:
		return nil, errors.New("-ffixed-form and -ffree-form are mutually exclusive")
	case *flagFixedForm:
		d.Options.Form, d.ForceForm = prescanner.FixedForm, true
	case *flagFreeForm:
		d.Options.Form, d.ForceForm = prescanner.FreeForm, true
	}
	if *flagLineLength != 0 {
		d.Options.FixedFormColumnLimit = *flagLineLength
	}
	if *flagBackslash {
		d.Options.Features.Enable(prescanner.BackslashEscapes, true)
	}
	if *flagDebugLines {
		d.Options.Features.Enable(prescanner.OldDebugLines, true)
	}
	if *flagOpenMP {
		d.Options.Sentinels = append(d.Options.Sentinels, prescanner.OpenMPSentinels...)
	}
	if *flagOpenACC {
		d.Options.Sentinels = append(d.Options.Sentinels, prescanner.OpenACCSentinels...)
	}
	d.IncludePaths = append(d.IncludePaths, flagIncludes...)
	for _, def := range flagDefines {
		d.Defines = append(d.Defines, fprescan.ParseDefine(def))
	}
	if *flagJobs > 0 {
		d.MaxParallelism = *flagJobs
	}
	return d, nil
}

func run(d *fprescan.Driver, paths []string) int {
	results, err := d.Prescan(context.Background(), paths...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fprescan:", err)
		return 2
	}

	renderer := report.Renderer{
		Compact:           *flagCompact,
		Colorize:          *flagColor,
		WarningsAreErrors: *flagWerror,
		ShowRemarks:       *flagRemarks,
	}
	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()

	var status int
	for _, res := range results {
		if *flagProvenance {
			writeProvenance(stdout, res)
		} else {
			stdout.WriteString(res.Cooked.Text())
		}
		// Keep the cooked text and its diagnostics together.
		stdout.Flush()

		errs, _, _ := renderer.Render(res.Report, os.Stderr)
		if errs > 0 {
			status = 1
		}
	}
	return status
}

// writeProvenance writes each line of the cooked stream prefixed with the
// offset of its first character and where that character came from.
func writeProvenance(out io.Writer, res *fprescan.Result) {
	text := res.Cooked.Text()
	for offset := 0; offset < len(text); {
		end := strings.IndexByte(text[offset:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += offset + 1
		}
		where := res.Sources.Describe(res.Cooked.Provenance(offset))
		fmt.Fprintf(out, "%d\t%s\t%s", offset, where, text[offset:end])
		offset = end
	}
}
