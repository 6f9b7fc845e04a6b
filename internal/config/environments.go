package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"prism-console/internal/domain"
)

type environmentsFile struct {
	Environments []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"environments"`
}

// LoadEnvironments reads deployment environments from a YAML file:
//
//	environments:
//	  - name: UAT
//	    description: User acceptance
//
// Names are upper-cased. Duplicate or empty names are rejected.
func LoadEnvironments(path string) ([]domain.Environment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read environments file: %w", err)
	}
	var f environmentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse environments file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Environments))
	out := make([]domain.Environment, 0, len(f.Environments))
	for i, e := range f.Environments {
		name := strings.ToUpper(strings.TrimSpace(e.Name))
		if name == "" {
			return nil, fmt.Errorf("environments[%d]: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("environments[%d]: duplicate environment %q", i, name)
		}
		seen[name] = true
		out = append(out, domain.Environment{Name: name, Description: e.Description})
	}
	return out, nil
}
