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

/*
Package report provides the diagnostics framework of the prescanner. It offers
diagnostic construction and ASCII art rendering functionality.

Diagnostics are collected into a [Report], which is a helpful builder over
a slice of [Diagnostic]s. Each [Diagnostic] consists of a message plus
metadata for rendering, such as source code spans, notes, and suggestions.
Reports can be rendered using a [Renderer], either one line per diagnostic
in the style of the Go compiler, or with annotated source snippets in the
style of the Rust compiler.

# Defining Diagnostics

Generally, to define a diagnostic, you should define a new Go error type,
and then make it implement [Diagnose]. This has two benefits:

 1. When someone using the prescanner as a library looks through a Report,
    they can type assert [Diagnostic.Err] to programmatically determine the
    nature of a diagnostic.

 2. When emitting the diagnostic in different places you get the same UX.
    This means you should do this even if the error type will be unexported.

Sometimes, (2) is not enough of a benefit, in which case you can just use
Report.Errorf() and friends.

# Diagnostics Style Guide

Diagnostic messages do not begin with a capital letter and do not end in
punctuation, except where they quote Fortran keywords, which are written in
upper case. The compiler does not ask questions. The words "error",
"warning", "remark", "help", and "note" are never capitalized.

The first span in a diagnostic (the primary span) should be precisely the
text that resulted in the error. Try not to emit multiple diagnostics for the
same error.

# Debugging

Setting the FPRESCAN_DEBUG environment variable makes every diagnostic
record where it was reported, and on which goroutine; [Renderer.ShowDebug]
prints this information. FPRESCAN_DEBUG=full records the whole stack.
*/
package report
