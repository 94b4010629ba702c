package urlstate

import (
	"net/url"
	"slices"
)

// Patch is a sparse update of URL query parameters. A key mapped to "" is
// removed; any other value replaces the current one.
type Patch map[string]string

// Apply returns a copy of current with patch applied. Parameters not named
// by the patch are preserved as they are.
func Apply(current url.Values, patch Patch) url.Values {
	next := make(url.Values, len(current)+len(patch))
	for key, values := range current {
		next[key] = slices.Clone(values)
	}

	for key, value := range patch {
		if value == "" {
			next.Del(key)
			continue
		}
		next.Set(key, value)
	}
	return next
}

// Toggle returns ids with id removed if present, or appended if absent. The
// order of the other ids is kept; ids itself is not modified.
func Toggle(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}
