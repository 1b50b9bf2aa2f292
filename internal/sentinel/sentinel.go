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

// Package sentinel implements the registry of compiler directive sentinels,
// such as the "$omp" of an OpenMP directive.
package sentinel

import (
	"fmt"
	"strings"
)

const (
	// MaxLen is the longest sentinel that can be registered.
	MaxLen = 4

	// The two filter hashes are the packed tag modulo these primes.
	prime1 = 1019
	prime2 = 1021
)

// Registry is a set of sentinels.
//
// Nearly every comment line is looked up, and nearly none of them is a
// directive; lookups first test a two-hash bit filter, which rejects most
// candidates without touching the exact set.
//
// A Registry must not be modified while it is being looked up from more
// than one goroutine. The zero value is an empty registry.
type Registry struct {
	filter [(prime2 + 63) / 64]uint64
	exact  map[string]string
}

// Register adds tag to the registry. Tags are case-insensitive and are
// stored in lower case.
func (r *Registry) Register(tag string) error {
	if tag == "" || len(tag) > MaxLen {
		return fmt.Errorf("sentinel %q must be between 1 and %d characters", tag, MaxLen)
	}
	for i := range len(tag) {
		if ch := tag[i]; ch <= ' ' || ch > '~' || ch == '!' {
			return fmt.Errorf("sentinel %q contains invalid character %q", tag, ch)
		}
	}

	tag = strings.ToLower(tag)
	key := pack([]byte(tag))
	r.set(key % prime1)
	r.set(key % prime2)
	if r.exact == nil {
		r.exact = make(map[string]string)
	}
	r.exact[tag] = tag
	return nil
}

// Lookup returns the canonical form of candidate, if it is registered.
// candidate may be in any case.
func (r *Registry) Lookup(candidate string) (string, bool) {
	n := len(candidate)
	if n == 0 || n > MaxLen {
		return "", false
	}
	var buf [MaxLen]byte
	for i := range n {
		buf[i] = toLower(candidate[i])
	}
	key := buf[:n]
	if !r.mayContain(key) {
		return "", false
	}
	tag, ok := r.exact[string(key)]
	return tag, ok
}

// mayContain runs only the filter test for a lower-case candidate. A false
// result means candidate is definitely not registered.
func (r *Registry) mayContain(candidate []byte) bool {
	key := pack(candidate)
	return r.test(key%prime1) && r.test(key%prime2)
}

// pack packs the bytes of tag, first byte highest, into a 64-bit key.
func pack(tag []byte) uint64 {
	var key uint64
	for i := range len(tag) {
		key = key<<8 | uint64(tag[i])
	}
	return key
}

func (r *Registry) set(bit uint64) {
	r.filter[bit/64] |= 1 << (bit % 64)
}

func (r *Registry) test(bit uint64) bool {
	return r.filter[bit/64]&(1<<(bit%64)) != 0
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
