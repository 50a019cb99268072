// Package versionname parses and orders release version strings of the
// form "MAJOR.MINOR.PATCH" with an optional "-experimental" or "-beta"
// suffix.
package versionname

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Flavor distinguishes a stable release from its pre-release variants.
// Ordered so that a smaller value ranks higher (Release, then Beta,
// then Experimental), which Less relies on for the tie-break.
type Flavor int

const (
	Release Flavor = iota
	Beta
	Experimental
)

var pattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-(experimental|beta))?$`)

// Name is a parsed version identifier. Invalid strings are retained
// verbatim (IsValid() == false) rather than rejected, matching the
// original launcher's VersionName, which never throws on a malformed
// release name — it just never gets installed or launched.
type Name struct {
	raw     string
	major   int
	minor   int
	patch   int
	flavor  Flavor
	isValid bool
}

// Parse builds a Name from its string form. It never errors: a string
// that doesn't match MAJOR.MINOR.PATCH[-experimental|-beta] is kept as
// an invalid Name rather than rejected.
func Parse(raw string) Name {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return Name{raw: raw, isValid: false}
	}

	// Masterminds/semver validates the numeric core; the launcher's own
	// flavor suffixes aren't valid semver prerelease tags, so we feed it
	// just "major.minor.patch" and keep suffix handling local.
	core := fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3])
	sv, err := semver.NewVersion(core)
	if err != nil {
		return Name{raw: raw, isValid: false}
	}

	flavor := Release
	switch m[4] {
	case "beta":
		flavor = Beta
	case "experimental":
		flavor = Experimental
	}

	return Name{
		raw:     raw,
		major:   int(sv.Major()),
		minor:   int(sv.Minor()),
		patch:   int(sv.Patch()),
		flavor:  flavor,
		isValid: true,
	}
}

// String returns the original string the Name was parsed from. Round
// trips: String(Parse(s)) == s for any s.
func (n Name) String() string { return n.raw }

// IsValid reports whether the name matched the expected format.
func (n Name) IsValid() bool { return n.isValid }

// Major returns the major version component, or 0 for invalid names.
func (n Name) Major() int { return n.major }

// Minor returns the minor version component, or 0 for invalid names.
func (n Name) Minor() int { return n.minor }

// Patch returns the patch version component, or 0 for invalid names.
func (n Name) Patch() int { return n.patch }

// IsExperimental reports whether the name carries the "-experimental" suffix.
func (n Name) IsExperimental() bool { return n.flavor == Experimental }

// IsBeta reports whether the name carries the "-beta" suffix.
func (n Name) IsBeta() bool { return n.flavor == Beta }

// Equal compares two names by their original string, per spec: equality
// is on the original string, not the parsed numeric value.
func (n Name) Equal(other Name) bool { return n.raw == other.raw }

// Less reports whether n sorts before other in the registry's descending
// order: greater (major, minor, patch) first, and at equal numerics,
// Release before Beta before Experimental.
func (n Name) Less(other Name) bool {
	if n.major != other.major {
		return n.major > other.major
	}
	if n.minor != other.minor {
		return n.minor > other.minor
	}
	if n.patch != other.patch {
		return n.patch > other.patch
	}
	return n.flavor < other.flavor
}

// Compare returns -1, 0, or 1 as n sorts before, at the same position
// as, or after other in descending registry order.
func (n Name) Compare(other Name) int {
	if n.Equal(other) {
		return 0
	}
	if n.Less(other) {
		return -1
	}
	return 1
}

// MustParseForTest is a test helper that parses a name and panics if it
// turns out invalid. Kept out of production code paths.
func MustParseForTest(raw string) Name {
	n := Parse(raw)
	if !n.isValid {
		panic("versionname: invalid test fixture: " + raw)
	}
	return n
}
