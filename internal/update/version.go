package update

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dot-separated sequence of non-negative integers, such as
// "1.0.15" or "2.1". Pre-release and build metadata are not supported.
type Version struct {
	Parts []int
	Raw   string
}

// ParseVersion parses a version string with an optional leading "v".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty version string", ErrInvalidVersion)
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	if trimmed == "" {
		return Version{}, fmt.Errorf("%w: %s", ErrInvalidVersion, s)
	}

	fields := strings.Split(trimmed, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		if f == "" || strings.TrimLeft(f, "0123456789") != "" {
			return Version{}, fmt.Errorf("%w: %s", ErrInvalidVersion, s)
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %s", ErrInvalidVersion, s)
		}
		parts = append(parts, n)
	}
	return Version{Parts: parts, Raw: s}, nil
}

// String returns the version without a "v" prefix, e.g. "1.0.15".
func (v Version) String() string {
	strs := make([]string, len(v.Parts))
	for i, p := range v.Parts {
		strs[i] = strconv.Itoa(p)
	}
	return strings.Join(strs, ".")
}

// Compare compares two versions after zero-padding the shorter one.
// Returns:
//
//	-1 if v < other
//	 0 if v == other
//	 1 if v > other
func (v Version) Compare(other Version) int {
	n := len(v.Parts)
	if len(other.Parts) > n {
		n = len(other.Parts)
	}
	for i := 0; i < n; i++ {
		a, b := partAt(v.Parts, i), partAt(other.Parts, i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan returns true if v > other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal returns true if v == other. "1.2" equals "1.2.0".
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsNewer reports whether latest is strictly newer than current.
// Either string failing to parse yields false.
func IsNewer(latest, current string) bool {
	l, err := ParseVersion(latest)
	if err != nil {
		return false
	}
	c, err := ParseVersion(current)
	if err != nil {
		return false
	}
	return l.GreaterThan(c)
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}
