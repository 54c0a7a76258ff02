// Package dedup collapses repeated error texts while preserving the order in
// which they were first seen.
package dedup

import "github.com/crimson-sun/synccheck/internal/model"

// Strings returns in without repeats, in first-occurrence order. Empty strings
// are dropped.
func Strings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Signals collapses signals that carry the same branch and message. The first
// occurrence is kept, including its Source.
func Signals(in []model.ErrorSignal) []model.ErrorSignal {
	if len(in) == 0 {
		return nil
	}
	type key struct{ branch, message string }
	seen := make(map[key]struct{}, len(in))
	out := make([]model.ErrorSignal, 0, len(in))
	for _, s := range in {
		k := key{s.Branch, s.Message}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
