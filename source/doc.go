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

// Package source provides source files, the global provenance space that
// every prescanned character is placed in, and the cooked character stream
// that prescanning produces.
//
// A [File] is opened through an [Opener]. Every file (and every piece of
// text the compiler synthesizes) that takes part in prescanning is allocated
// a contiguous [Range] of [Provenance] values by [AllSources]; a [Cooked]
// stream records, for every byte it holds, the provenance it came from.
package source
