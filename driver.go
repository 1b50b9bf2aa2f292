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

package fprescan

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/fprescan/preprocessor"
	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/report"
	"github.com/bufbuild/fprescan/source"
)

// Driver prescans top-level Fortran source files.
type Driver struct {
	// Opens source files, both top-level files and included ones. This field
	// is the only required field.
	Opener source.Opener

	// Directories searched for included files, after the directory of the
	// including file.
	IncludePaths []string

	// Options for every prescanner. Unless ForceForm is set, Options.Form is
	// ignored and the form of each file is chosen with [FormOf].
	Options   prescanner.Options
	ForceForm bool

	// Macros predefined in every file, in order.
	Defines []Define

	// The maximum number of files to prescan at once. If unspecified or set to
	// a non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
}

// Define is a predefined macro.
type Define struct {
	Name, Value string
}

// ParseDefine parses a macro definition of the form NAME or NAME=VALUE, as
// given to a -D flag. NAME alone defines NAME as 1.
func ParseDefine(def string) Define {
	name, value, ok := strings.Cut(def, "=")
	if !ok {
		value = "1"
	}
	return Define{Name: name, Value: value}
}

// Result is the outcome of prescanning one top-level file.
type Result struct {
	Path string

	// The cooked character stream.
	Cooked *source.Cooked
	// The provenance space Cooked refers to.
	Sources *source.AllSources
	// Diagnostics. A file that could not be opened has an empty Cooked and an
	// error here.
	Report *report.Report
}

// Prescan prescans the given files. Results are in the same order as paths.
//
// If ctx is cancelled, files that have not started yet are skipped; their
// results are nil, and ctx.Err() is returned along with the others.
func (d *Driver) Prescan(ctx context.Context, paths ...string) ([]*Result, error) {
	par := d.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}
	sema := semaphore.NewWeighted(int64(par))

	results := make([]*Result, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sema.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sema.Release(1)
			results[i] = d.prescan(path)
		}()
	}
	wg.Wait()

	return results, ctx.Err()
}

func (d *Driver) prescan(path string) (res *Result) {
	res = &Result{
		Path:    path,
		Cooked:  new(source.Cooked),
		Sources: source.NewAllSources(d.Opener, d.IncludePaths...),
		Report:  new(report.Report),
	}
	defer res.Report.CatchICE(false, func(diag *report.Diagnostic) {
		diag.With(report.InFile(path))
	})

	file, err := res.Sources.Open(path)
	if err != nil {
		res.Report.Error(&report.ErrInFile{Err: err, Path: path})
		return res
	}

	opts := d.Options
	if !d.ForceForm {
		opts.Form = FormOf(path)
	}
	engine := preprocessor.New(res.Sources)
	for _, def := range d.Defines {
		engine.Define(def.Name, def.Value)
	}

	p, err := prescanner.New(res.Sources, res.Cooked, res.Report, engine, opts)
	if err != nil {
		res.Report.Error(&report.ErrInFile{Err: err, Path: path})
		return res
	}
	p.Prescan(res.Sources.AddIncludedFile(file, source.Range{}))
	engine.Finish(res.Report)
	return res
}

// FormOf returns the source form conventionally used by files with the
// extension of path: fixed form for .f, .for, .ftn, .fpp and .f77 in either
// case, free form for everything else.
func FormOf(path string) prescanner.Form {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".f", ".for", ".ftn", ".fpp", ".f77":
		return prescanner.FixedForm
	default:
		return prescanner.FreeForm
	}
}
