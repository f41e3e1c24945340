package recollect

import (
	"slices"
	"strings"
)

// MergeHeaderList appends every header name from candidates that list does
// not already contain and returns the result. Candidates may be single
// names or comma-separated lists. Blank entries are skipped.
//
// Names are compared exactly as written, so "Accept" and "accept" are both
// kept. HTTP field names are case-insensitive; callers that want one entry
// per field must use consistent casing.
//
// list is never modified; merging the same candidates twice gives the same
// result as merging them once.
func MergeHeaderList(list []string, candidates ...string) []string {
	merged := make([]string, len(list), len(list)+len(candidates))
	copy(merged, list)
	for _, candidate := range candidates {
		for _, name := range strings.Split(candidate, ",") {
			name = strings.TrimSpace(name)
			if name == "" || slices.Contains(merged, name) {
				continue
			}
			merged = append(merged, name)
		}
	}
	return merged
}
