// Package manifest extracts a skill's declared requirements — required
// binaries, environment variables, and egress domains — from the YAML
// frontmatter of its SKILL.md file.
package manifest

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// EnvRequirements declares environment variable requirements at different
// levels of necessity.
type EnvRequirements struct {
	Required []string `yaml:"required,omitempty"`
	OneOf    []string `yaml:"one_of,omitempty"`
	Optional []string `yaml:"optional,omitempty"`
}

// Requirements declares CLI binaries and environment variables a skill
// needs, as found under the `metadata.forge.requires` frontmatter key.
type Requirements struct {
	Bins []string         `yaml:"bins,omitempty"`
	Env  *EnvRequirements `yaml:"env,omitempty"`
}

type forgeMeta struct {
	Requires      *Requirements `yaml:"requires,omitempty"`
	EgressDomains []string      `yaml:"egress_domains,omitempty"`
}

type frontmatter struct {
	Name        string                    `yaml:"name,omitempty"`
	Description string                    `yaml:"description,omitempty"`
	Metadata    map[string]map[string]any `yaml:"metadata,omitempty"`
}

// Descriptor is the extracted shape of a skill's declared requirements.
type Descriptor struct {
	Name          string
	Description   string
	RequiredBins  []string
	RequiredEnv   []string
	OneOfEnv      []string
	OptionalEnv   []string
	EgressDomains []string
	HasFrontmatter bool
}

// Parse extracts a Descriptor from the raw content of a SKILL.md file.
// A file with no frontmatter yields a zero-value Descriptor with
// HasFrontmatter false, not an error.
func Parse(content []byte) (Descriptor, error) {
	fm, hasFM := extractFrontmatter(content)
	if !hasFM {
		return Descriptor{}, nil
	}

	var meta frontmatter
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return Descriptor{}, err
	}

	d := Descriptor{
		Name:           meta.Name,
		Description:    meta.Description,
		HasFrontmatter: true,
	}

	forgeRaw, ok := meta.Metadata["forge"]
	if !ok || forgeRaw == nil {
		return d, nil
	}

	data, err := yaml.Marshal(forgeRaw)
	if err != nil {
		return d, nil
	}
	var fg forgeMeta
	if err := yaml.Unmarshal(data, &fg); err != nil {
		return d, nil
	}

	d.EgressDomains = fg.EgressDomains
	if fg.Requires != nil {
		d.RequiredBins = fg.Requires.Bins
		if fg.Requires.Env != nil {
			d.RequiredEnv = fg.Requires.Env.Required
			d.OneOfEnv = fg.Requires.Env.OneOf
			d.OptionalEnv = fg.Requires.Env.Optional
		}
	}
	return d, nil
}

// extractFrontmatter splits content at leading --- delimiters, returning the
// frontmatter block and whether one was present.
func extractFrontmatter(content []byte) ([]byte, bool) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return nil, false
	}

	afterOpen := 3
	nlIdx := bytes.IndexByte(trimmed[afterOpen:], '\n')
	if nlIdx < 0 {
		return nil, false
	}
	fmStart := afterOpen + nlIdx + 1

	rest := trimmed[fmStart:]
	closeIdx := bytes.Index(rest, []byte("\n---"))
	if closeIdx < 0 {
		return nil, false
	}

	return rest[:closeIdx], true
}
