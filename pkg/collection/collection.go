// Package collection holds the generic slice helpers the service layer
// leans on for snapshot shaping: grouping listings into leaderboards,
// mapping rows into API shapes, taking the top N.
//
//	byCrop := collection.GroupBy(listings, func(l models.Listing) string { return l.Crop })
//	top := collection.Take(collection.SortBy(entries, byCount), 5)
package collection

import "sort"

// Map builds a new slice by applying fn to every element.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i := range s {
		out[i] = fn(s[i])
	}
	return out
}

// Filter keeps the elements fn approves, preserving order.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether any element satisfies fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	for _, v := range s {
		if fn(v) {
			return true
		}
	}
	return false
}

// GroupBy buckets elements under the key fn assigns them.
func GroupBy[T any](s []T, fn func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, v := range s {
		k := fn(v)
		out[k] = append(out[k], v)
	}
	return out
}

// KeyBy indexes elements by the key fn assigns them; on duplicate keys
// the last element wins.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}

// Unique drops repeated values, keeping the first occurrence's position.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortBy sorts s in place with a stable sort and returns it for chaining.
// Stability matters for the leaderboards, where ties keep insert order.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	return s
}

// Sum totals fn over the elements.
func Sum[T any](s []T, fn func(T) float64) float64 {
	var total float64
	for _, v := range s {
		total += fn(v)
	}
	return total
}

// Take returns the first n elements, or all of them when n is larger.
func Take[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	if n < 0 {
		n = 0
	}
	return s[:n]
}
