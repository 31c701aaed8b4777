package scenario

// Loading of parameter sets from YAML (or JSON) files. Two layouts are accepted,
// an ordered list of sets, or a mapping of label to set. Either way the returned
// list keeps the order the sets appear in the file.

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid parameter set")

type file struct {
	Scenarios yaml.Node `yaml:"scenarios"`
}

// Validate checks the set can be turned into a meaningful run.
func (p ParameterSet) Validate() error {
	if p.NRounds <= 0 {
		return fmt.Errorf("%w %q: nrounds must be positive, got %d", ErrInvalid, p.Label, p.NRounds)
	}
	if p.BufSize <= 0 {
		return fmt.Errorf("%w %q: bufsize must be positive, got %d", ErrInvalid, p.Label, p.BufSize)
	}
	return nil
}

// ValidateAll validates every set and fills in missing labels. Labels
// must be unique.
func ValidateAll(sets []ParameterSet) ([]ParameterSet, error) {
	seen := make(map[string]struct{}, len(sets))
	result := make([]ParameterSet, 0, len(sets))
	for i, p := range sets {
		if p.Label == "" {
			p.Label = fmt.Sprintf("scenario-%d", i)
		}
		if _, ok := seen[p.Label]; ok {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrInvalid, p.Label)
		}
		seen[p.Label] = struct{}{}

		if err := p.Validate(); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// Load reads parameter sets from path.
func Load(fs afero.Fs, path string) ([]ParameterSet, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios file: %w", err)
	}

	sets, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenarios file %s: %w", path, err)
	}

	return sets, nil
}

// Parse decodes parameter sets from YAML or JSON. The document may either
// be the scenarios themselves, or an object holding them under `scenarios`.
func Parse(data []byte) ([]ParameterSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		var f file
		if err := root.Decode(&f); err == nil && !f.Scenarios.IsZero() {
			root = &f.Scenarios
		}
	}

	var sets []ParameterSet

	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&sets); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		// Content alternates key, value
		for i := 0; i+1 < len(root.Content); i += 2 {
			var p ParameterSet
			if err := root.Content[i+1].Decode(&p); err != nil {
				return nil, fmt.Errorf("scenario %q: %w", root.Content[i].Value, err)
			}
			p.Label = root.Content[i].Value
			sets = append(sets, p)
		}
	default:
		return nil, fmt.Errorf("%w: expected a list or a mapping of scenarios at line %d", ErrInvalid, root.Line)
	}

	return ValidateAll(sets)
}
