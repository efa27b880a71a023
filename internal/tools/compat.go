package tools

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CompatibleWith reports whether the tool supports the given cluster
// version. Unparseable bounds are treated as absent rather than blocking
// the tool.
func (t Tool) CompatibleWith(v *semver.Version) bool {
	if t.MinVersion != "" {
		if min, err := semver.NewVersion(t.MinVersion); err == nil && v.LessThan(min) {
			return false
		}
	}
	if t.MaxVersion != "" {
		if max, err := semver.NewVersion(t.MaxVersion); err == nil && v.GreaterThan(max) {
			return false
		}
	}
	return true
}

// incompatibilityMessage renders the user-facing explanation for a tool
// rejected by the version gate.
func (t Tool) incompatibilityMessage(current *semver.Version) string {
	msg := fmt.Sprintf("Tool '%s' is not supported for this OpenSearch version (current version: %s).", t.Name(), current)

	var supported string
	switch {
	case t.MinVersion != "" && t.MaxVersion != "":
		supported = fmt.Sprintf("%s to %s", t.MinVersion, t.MaxVersion)
	case t.MinVersion != "":
		supported = t.MinVersion + " or later"
	case t.MaxVersion != "":
		supported = "up to " + t.MaxVersion
	}
	if supported != "" {
		msg += fmt.Sprintf(" Supported version: %s.", supported)
	}
	return msg
}
