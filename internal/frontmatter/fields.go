package frontmatter

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Fields is the strongly-typed front matter block recognized by blogsmith.
// Unknown keys are ignored on decode; they belong to theme-specific params
// the generator passes through untouched.
type Fields struct {
	Title  string   `yaml:"title"`
	Date   string   `yaml:"date"`
	Draft  bool     `yaml:"draft,omitempty"`
	Tags   []string `yaml:"tags,omitempty"`
	Series string   `yaml:"series,omitempty"`
	Cover  string   `yaml:"cover,omitempty"`
}

// dateLayouts are accepted `date:` formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Decode unmarshals raw YAML frontmatter into typed Fields.
func Decode(raw []byte) (Fields, error) {
	var f Fields
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fields{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return f, nil
}

// ParseDate parses the raw date string against the accepted layouts.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// Encode serializes typed Fields back to a YAML frontmatter block
// (without --- delimiters). Used by the `new` command skeletons.
func Encode(f Fields) ([]byte, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	return out, nil
}
