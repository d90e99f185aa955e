package domain

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a Major.Minor.Build product version.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Build int `json:"build"`
}

// NewVersion creates a Version from its three components.
func NewVersion(major, minor, build int) Version {
	return Version{Major: major, Minor: minor, Build: build}
}

// ParseVersion parses a dotted version string.
//
// Parsing never fails: missing trailing components become 0 and each component
// contributes only its leading digits, so "1.2" is 1.2.0 and "5.1.2600.1" is 5.1.2600.
func ParseVersion(s string) Version {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 4)

	var fields [3]int
	for i := 0; i < len(fields) && i < len(parts); i++ {
		fields[i] = leadingInt(parts[i])
	}

	return Version{Major: fields[0], Minor: fields[1], Build: fields[2]}
}

// leadingInt returns the integer formed by the leading decimal digits of s, or 0.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to or after o.
// Components are compared in order: major, minor, build.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Build, o.Build)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether all three components match.
func (v Version) Equal(o Version) bool {
	return v == o
}

// String renders the version as "major.minor.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// InRange reports whether v lies within [minVersion, maxVersion].
// A nil bound is unbounded on that side.
func (v Version) InRange(minVersion, maxVersion *Version) bool {
	if minVersion != nil && v.Less(*minVersion) {
		return false
	}
	if maxVersion != nil && maxVersion.Less(v) {
		return false
	}
	return true
}
