// Package postkit is the root of a rich-text post editing core. The model
// and its transactional editor live in package post; this package only
// carries the release version.
package postkit

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

//go:embed VERSION
var embeddedVersion string

// Release is a parsed SemVer 2.0.0 version. Build metadata is dropped.
type Release struct {
	Major, Minor, Patch int
	Pre                 string
}

func (r Release) String() string {
	s := fmt.Sprintf("%d.%d.%d", r.Major, r.Minor, r.Patch)
	if r.Pre != "" {
		s += "-" + r.Pre
	}
	return s
}

// ParseRelease parses v, which must not carry a leading "v".
func ParseRelease(v string) (Release, error) {
	m := semverRE.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return Release{}, fmt.Errorf("not a semver version: %q", v)
	}
	var r Release
	for i, dst := range []*int{&r.Major, &r.Minor, &r.Patch} {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Release{}, fmt.Errorf("version %q: %w", v, err)
		}
		*dst = n
	}
	r.Pre = m[4]
	return r, nil
}

// Version is the embedded release version, without "v".
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag is Version as a git tag.
func VersionTag() string {
	return "v" + Version()
}

// IsPrerelease reports whether the embedded version carries a pre-release
// suffix. An unparsable version counts as a pre-release.
func IsPrerelease() bool {
	r, err := ParseRelease(Version())
	return err != nil || r.Pre != ""
}
