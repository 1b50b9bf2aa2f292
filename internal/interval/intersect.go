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

package interval

import (
	"fmt"
	"iter"
	"slices"

	"github.com/tidwall/btree"
)

// Intersect is an interval intersection map: a collection of possibly
// overlapping intervals, such that given a point in K, one can query for all
// of the intervals in the collection which contain it, along with their
// values.
//
// A zero value is ready to use.
type Intersect[K Endpoint, V any] struct {
	// Keys in this map are the ends of the disjoint pieces the inserted
	// intervals are split into.
	tree    btree.Map[K, *Entry[K, []V]]
	pending []*Entry[K, []V] // Scratch space for Insert().
}

// Entry is an entry in an [Intersect]: a maximal range over which the same set
// of inserted intervals applies.
type Entry[K Endpoint, V any] struct {
	Start, End K // The range, inclusive.
	Value      V
}

// Contains returns whether an entry contains a given point.
func (e Entry[K, V]) Contains(point K) bool {
	return e.Start <= point && point <= e.End
}

// Get returns the values of all intervals which contain point, in insertion
// order.
//
// If no such interval exists, the returned [Entry].Value will be nil.
func (m *Intersect[K, V]) Get(point K) Entry[K, []V] {
	iter := m.tree.Iter()
	if !iter.Seek(point) || point < iter.Value().Start {
		return Entry[K, []V]{}
	}

	return *iter.Value()
}

// Entries returns an iterator over the pieces of this map, in order. Pieces
// are pairwise disjoint.
func (m *Intersect[K, V]) Entries() iter.Seq[Entry[K, []V]] {
	return func(yield func(Entry[K, []V]) bool) {
		iter := m.tree.Iter()
		for more := iter.First(); more; more = iter.Next() {
			if !yield(*iter.Value()) {
				return
			}
		}
	}
}

// Insert inserts a new interval into this map, with the given associated value.
// Both endpoints are inclusive.
//
// Returns true if the interval was disjoint from all others in the set.
func (m *Intersect[K, V]) Insert(start, end K, value V) (disjoint bool) {
	if start > end {
		panic(fmt.Sprintf("interval: start (%#v) > end (%#v)", start, end))
	}

	var prev *Entry[K, []V]
	for entry := range m.overlapping(start, end) {
		if prev == nil && start < entry.Start {
			// Gap between start and the first overlapping piece.
			m.pending = append(m.pending, &Entry[K, []V]{
				Start: start,
				End:   entry.Start - 1,
				Value: []V{value},
			})
		}

		// Values slices may be shared between pieces split from the same
		// entry, so never append to orig in place.
		orig := entry.Value

		// Split off the part of the piece after end.
		if entry.Contains(end) && end < entry.End {
			next := &Entry[K, []V]{
				Start: entry.Start,
				End:   end,
				Value: append(slices.Clip(orig), value),
			}
			entry.Start = end + 1
			m.pending = append(m.pending, next)
			entry = next
		}

		// Split off the part of the piece before start.
		if entry.Contains(start) && entry.Start < start {
			m.pending = append(m.pending, &Entry[K, []V]{
				Start: entry.Start,
				End:   start - 1,
				Value: orig,
			})
			entry.Start = start
		}

		if !slices.Contains(m.pending, entry) {
			entry.Value = append(slices.Clip(orig), value)
		}

		if prev != nil && prev.End+1 < entry.Start {
			// Gap between two overlapping pieces.
			m.pending = append(m.pending, &Entry[K, []V]{
				Start: prev.End + 1,
				End:   entry.Start - 1,
				Value: []V{value},
			})
		}

		prev = entry
	}

	if prev != nil && prev.End < end {
		m.pending = append(m.pending, &Entry[K, []V]{
			Start: prev.End + 1,
			End:   end,
			Value: []V{value},
		})
	}

	for _, entry := range m.pending {
		m.tree.Set(entry.End, entry)
	}
	m.pending = m.pending[:0]

	if prev == nil {
		m.tree.Set(end, &Entry[K, []V]{
			Start: start,
			End:   end,
			Value: []V{value},
		})
	}

	return prev == nil
}

// overlapping returns an iterator over the pieces that intersect [start, end].
func (m *Intersect[K, V]) overlapping(start, end K) iter.Seq[*Entry[K, []V]] {
	return func(yield func(*Entry[K, []V]) bool) {
		// Collect first: the caller mutates the tree through pending only
		// after iteration, but mutates entry bounds in place.
		var found []*Entry[K, []V]
		iter := m.tree.Iter()
		for more := iter.Seek(start); more; more = iter.Next() {
			if end < iter.Value().Start {
				break
			}
			found = append(found, iter.Value())
		}
		for _, entry := range found {
			if !yield(entry) {
				return
			}
		}
	}
}
