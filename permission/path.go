package permission

import "strings"

// Wildcard grants access to every path when present in a permission list.
const Wildcard = "*"

// Normalize strips leading and trailing slashes so that "/employees/" and
// "employees" compare equal. Interior slashes are preserved; they carry the
// nesting structure.
func Normalize(path string) string {
	return strings.Trim(path, "/")
}

// Grants reports whether the permission list authorizes the given path:
// either an exact match after normalization, or some permission p such that
// the path is nested under p (path == p + "/..."). The wildcard marker is
// not consulted here; callers check it with [ContainsWildcard] so the bypass
// stays visible at the decision site.
func Grants(perms []string, path string) bool {
	target := Normalize(path)
	if target == "" {
		return false
	}

	for _, p := range perms {
		p = Normalize(p)
		if p == "" {
			continue
		}
		if target == p {
			return true
		}
		if strings.HasPrefix(target, p+"/") {
			return true
		}
	}
	return false
}

// ContainsWildcard reports whether the list carries the wildcard marker.
func ContainsWildcard(perms []string) bool {
	for _, p := range perms {
		if Normalize(p) == Wildcard {
			return true
		}
	}
	return false
}
