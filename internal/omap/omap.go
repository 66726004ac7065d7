// Package omap implements a name-keyed container that preserves
// insertion order while still supporting O(1) lookup by key. Every
// list-shaped resource table in this module (archive directories,
// texture tables, namespace contents, loose-lump buckets) is built on
// top of it.
package omap

import "sort"

// Map is an insertion-ordered map from K to V. The zero value is not
// ready to use; construct one with New.
type Map[K comparable, V any] struct {
	index  map[K]int
	keys   []K
	values []V
}

// New returns an empty OrderedMap.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]int)}
}

// Add appends a new entry under k unconditionally. If k already
// exists, the new value shadows the old one for Get/lookup purposes,
// but both entries remain in iteration order under their original
// key binding — callers that need strict per-archive order (the map
// extractor, the namespace partitioner) must iterate by position
// rather than rely on name uniqueness.
func (m *Map[K, V]) Add(k K, v V) {
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.values = append(m.values, v)
}

// Update replaces the value at k in place if present, or appends a
// fresh entry otherwise.
func (m *Map[K, V]) Update(k K, v V) {
	if i, ok := m.index[k]; ok {
		m.values[i] = v
		return
	}
	m.Add(k, v)
}

// Contains reports whether k has been added.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Get returns the value most recently bound to k, and whether k was
// found at all.
func (m *Map[K, V]) Get(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return m.values[i], true
}

// IndexOf returns the position of the most recent insertion under k,
// or -1 if k is absent.
func (m *Map[K, V]) IndexOf(k K) int {
	i, ok := m.index[k]
	if !ok {
		return -1
	}
	return i
}

// At returns the key/value pair at a given insertion position.
func (m *Map[K, V]) At(i int) (K, V) {
	return m.keys[i], m.values[i]
}

// Len returns the number of entries, counting every Add even under a
// repeated key.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Values returns the values in insertion order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, len(m.values))
	copy(out, m.values)
	return out
}

// Keys returns the keys in insertion order (may contain duplicates).
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Sort reorders entries by key ascending using less, and rewrites the
// key→position index to match the new order.
func (m *Map[K, V]) Sort(less func(a, b K) bool) {
	type pair struct {
		k K
		v V
	}
	pairs := make([]pair, len(m.keys))
	for i := range m.keys {
		pairs[i] = pair{m.keys[i], m.values[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return less(pairs[i].k, pairs[j].k) })
	for i, p := range pairs {
		m.keys[i] = p.k
		m.values[i] = p.v
		m.index[p.k] = i
	}
}
