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

// Package fprescan is the entry point for prescanning Fortran source files.
//
// Prescanning is the first phase of compiling Fortran. It turns the source
// text of a file, in either fixed or free form, into a cooked character
// stream for the parser: comments are dropped, continuation lines are joined,
// INCLUDE lines and #include directives are expanded, macros are replaced,
// letters outside character literals are folded to lower case, and compiler
// directives are normalized. Every character of the cooked stream remembers
// where it came from.
//
// The phases are implemented in these packages:
//
//   - [github.com/bufbuild/fprescan/source]: source files, the provenance
//     space and the cooked stream.
//   - [github.com/bufbuild/fprescan/prescanner]: the prescanner itself.
//   - [github.com/bufbuild/fprescan/preprocessor]: the macro preprocessor the
//     prescanner hands directives to.
//   - [github.com/bufbuild/fprescan/report]: diagnostics.
//
// This package ties them together. A [Driver] prescans any number of
// top-level files in parallel, each with a fresh provenance space, macro
// table and report. Its configuration can be loaded from a YAML file with
// [LoadConfig].
package fprescan
