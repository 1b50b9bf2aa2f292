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

// Package prescanner implements the lexical prescanner of a Fortran front
// end.
//
// A [Prescanner] reads fixed-form or free-form source and writes a cooked
// character stream in which comments are gone, continuation lines are
// joined, letters outside character literals are lower case, INCLUDE
// lines are replaced by the prescanned contents of the file they name, and
// preprocessor directives have been executed by a [MacroEngine]. Every
// cooked character remembers the [source.Provenance] it came from.
package prescanner
