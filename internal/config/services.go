package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KyleAMathews/fig/internal/validation"
	"github.com/KyleAMathews/fig/models"
)

// LoadServices reads a fig.yml file: a mapping of service name to
// service spec. Names are stamped from the map keys and the batch is
// validated before being returned.
//
// The returned specs are sorted by name so that repeated runs over the
// same file feed the dependency sorter identical input and produce an
// identical order.
func LoadServices(path string) ([]models.ServiceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseServices(data)
}

// ParseServices parses fig.yml content already in memory.
func ParseServices(data []byte) ([]models.ServiceSpec, error) {
	var raw map[string]models.ServiceSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse service definitions: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]models.ServiceSpec, 0, len(raw))
	for _, name := range names {
		spec := raw[name]
		spec.Name = name
		specs = append(specs, spec)
	}

	if result := validation.New().ValidateSpecs(specs); !result.Valid {
		return nil, fmt.Errorf("invalid service definitions: %w", result.Err())
	}

	return specs, nil
}
