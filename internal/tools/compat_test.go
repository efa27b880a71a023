package tools

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestCompatibleWith(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		min     string
		max     string
		version string
		want    bool
	}{
		{name: "unbounded", version: "1.0.0", want: true},
		{name: "above min", min: "2.12.0", version: "2.19.0", want: true},
		{name: "at min", min: "2.12.0", version: "2.12.0", want: true},
		{name: "below min", min: "2.12.0", version: "2.11.0", want: false},
		{name: "below max", max: "3.0.0", version: "2.19.0", want: true},
		{name: "above max", max: "3.0.0", version: "3.1.0", want: false},
		{name: "inside range", min: "1.0.0", max: "3.0.0", version: "2.0.0", want: true},
		{name: "unparseable min is ignored", min: "not-a-version", version: "0.1.0", want: true},
		{name: "unparseable max is ignored", max: "???", version: "99.0.0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tool := namedTool("ExampleTool", minVersion(tt.min), maxVersion(tt.max))
			v := semver.MustParse(tt.version)
			if got := tool.CompatibleWith(v); got != tt.want {
				t.Errorf("CompatibleWith(%s) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestIncompatibilityMessage(t *testing.T) {
	t.Parallel()

	current := semver.MustParse("2.11.0")

	tests := []struct {
		name string
		min  string
		max  string
		want string
	}{
		{
			name: "min only",
			min:  "2.12.0",
			want: "Tool 'ExampleTool' is not supported for this OpenSearch version (current version: 2.11.0). Supported version: 2.12.0 or later.",
		},
		{
			name: "max only",
			max:  "2.0.0",
			want: "Tool 'ExampleTool' is not supported for this OpenSearch version (current version: 2.11.0). Supported version: up to 2.0.0.",
		},
		{
			name: "range",
			min:  "1.0.0",
			max:  "2.0.0",
			want: "Tool 'ExampleTool' is not supported for this OpenSearch version (current version: 2.11.0). Supported version: 1.0.0 to 2.0.0.",
		},
		{
			name: "no bounds",
			want: "Tool 'ExampleTool' is not supported for this OpenSearch version (current version: 2.11.0).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tool := namedTool("ExampleTool", minVersion(tt.min), maxVersion(tt.max))
			if got := tool.incompatibilityMessage(current); got != tt.want {
				t.Errorf("incompatibilityMessage() =\n  %q\nwant\n  %q", got, tt.want)
			}
		})
	}
}
