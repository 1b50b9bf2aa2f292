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

package token

import (
	"strings"
)

// UnquoteCharLiteral returns the contents of a cooked character literal
// token, with any kind prefix dropped and doubled quote marks collapsed.
//
// Returns false if tok is not a complete character literal.
func UnquoteCharLiteral(tok string) (string, bool) {
	open := strings.IndexAny(tok, `'"`)
	if open < 0 {
		return "", false
	}
	quote := tok[open]

	var out strings.Builder
	for i := open + 1; i < len(tok); i++ {
		if tok[i] != quote {
			out.WriteByte(tok[i])
			continue
		}
		if i+1 < len(tok) && tok[i+1] == quote {
			out.WriteByte(quote)
			i++
			continue
		}
		return out.String(), i == len(tok)-1
	}
	return "", false
}
