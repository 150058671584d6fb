package permission

import "sort"

// Equal reports whether two permission lists describe the same set. Both
// sides are normalized and compared in sorted order, so element order and
// slash decoration never affect the result. nil and empty compare equal.
//
// This comparison is the tamper check's backbone: the store holds one list
// locally and the signed token carries the other, and any divergence means
// the local copy was edited outside the store.
func Equal(a, b []string) bool {
	as := normalizedSorted(a)
	bs := normalizedSorted(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func normalizedSorted(perms []string) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
