package policy

import (
	"strconv"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

// CanonicalVersion strips prerelease and build-metadata suffixes from a
// version string. Well-formed SemVer goes through the semver parser so
// loose inputs like "v1.2.3-beta.1+build" canonicalize cleanly; version
// strings with more or fewer than three segments fall back to cutting the
// suffix off the raw string.
func CanonicalVersion(version string) string {
	trimmed := strings.TrimSpace(version)
	if v, err := masterminds.NewVersion(trimmed); err == nil {
		return strconv.FormatUint(v.Major(), 10) + "." +
			strconv.FormatUint(v.Minor(), 10) + "." +
			strconv.FormatUint(v.Patch(), 10)
	}
	if i := strings.IndexAny(trimmed, "-+"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimPrefix(trimmed, "v")
}

// parseTuple splits a version string on dots into a numeric tuple.
// Missing or non-numeric segments parse as 0.
func parseTuple(version string) []int {
	if version == "" {
		return nil
	}
	segments := strings.Split(version, ".")
	tuple := make([]int, len(segments))
	for i, segment := range segments {
		n, err := strconv.Atoi(strings.TrimSpace(segment))
		if err != nil || n < 0 {
			n = 0
		}
		tuple[i] = n
	}
	return tuple
}

// compareTuples compares two numeric tuples component-wise, left to
// right, zero-extending the shorter tuple. Returns -1, 0 or 1, so
// "1.4" and "1.4.0" compare equal.
func compareTuples(a, b []int) int {
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	for i := 0; i < size; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
