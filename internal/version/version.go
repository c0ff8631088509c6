// Package version compares planner release versions.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Dev is the version of builds made without release ldflags.
const Dev = "dev"

func parse(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version %s: %w", v, err)
	}
	return parsed, nil
}

// Compare returns -1, 0 or 1 as v1 is older than, equal to or newer than v2.
func Compare(v1, v2 string) (int, error) {
	a, err := parse(v1)
	if err != nil {
		return 0, err
	}
	b, err := parse(v2)
	if err != nil {
		return 0, err
	}
	return a.Compare(b), nil
}

// IsValid reports whether v is a semantic version.
func IsValid(v string) bool {
	_, err := parse(v)
	return err == nil
}

// Compatible reports whether a client at clientVersion can talk to a server
// at serverVersion: both share a major version, and a 0.x client requires the
// same minor. Dev builds are compatible with everything.
func Compatible(clientVersion, serverVersion string) (bool, error) {
	if clientVersion == Dev || serverVersion == Dev {
		return true, nil
	}
	c, err := parse(clientVersion)
	if err != nil {
		return false, err
	}
	s, err := parse(serverVersion)
	if err != nil {
		return false, err
	}
	if c.Major() != s.Major() {
		return false, nil
	}
	if c.Major() == 0 {
		return c.Minor() == s.Minor(), nil
	}
	return true, nil
}
