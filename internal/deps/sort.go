// Package deps orders service specs so that every link target is placed
// before the services that depend on it.
package deps

import (
	"fmt"

	"github.com/KyleAMathews/fig/models"
)

// DependencyError reports an invalid link relationship between service
// specs: a self-link, a mutual (two-service) cycle, or a link to a name
// that does not exist in the batch. Callers distinguish it from other
// failures with errors.As.
type DependencyError struct {
	Message string
}

func (e *DependencyError) Error() string {
	return e.Message
}

// SortServiceSpecs returns the input specs in dependency order: every
// spec with links is preceded by the specs it links to.
//
// The ordering walks the linked specs as a stack, popping from the end.
// That pop order is load-bearing: it decides tie-breaks between
// independent chains, and downstream consumers rely on it staying
// stable across releases. Do not swap it for a queue-based sort.
//
// Specs that neither link nor are linked to come first in the result.
// Leaf link targets are pulled to the front of the ordered tail the
// first time a dependent references them.
//
// Only self-links and mutual links between two specs are rejected.
// Longer cycles pass through; each spec is processed at most once, so
// the walk always terminates.
func SortServiceSpecs(specs []models.ServiceSpec) ([]models.ServiceSpec, error) {
	var dependent []models.ServiceSpec
	for _, spec := range specs {
		if spec.HasLinks() {
			dependent = append(dependent, spec)
		}
	}

	// Every name that appears as a link target somewhere.
	linked := make(map[string]bool)
	for _, spec := range dependent {
		for _, target := range spec.Links {
			linked[target] = true
		}
	}

	// Services that neither depend nor are depended upon.
	var nonDependent []models.ServiceSpec
	for _, spec := range specs {
		if !spec.HasLinks() && !linked[spec.Name] {
			nonDependent = append(nonDependent, spec)
		}
	}

	var sorted []models.ServiceSpec
	for len(dependent) > 0 {
		n := dependent[len(dependent)-1]
		dependent = dependent[:len(dependent)-1]

		if containsName(n.Links, n.Name) {
			return nil, &DependencyError{
				Message: fmt.Sprintf("a service can not link to itself: %s", n.Name),
			}
		}

		sorted = append(sorted, n)

		for _, target := range n.Links {
			linkedSpec, ok := findSpec(specs, target)
			if !ok {
				return nil, &DependencyError{
					Message: fmt.Sprintf("service %s links to undefined service %s", n.Name, target),
				}
			}

			if containsName(linkedSpec.Links, n.Name) {
				return nil, &DependencyError{
					Message: fmt.Sprintf("circular dependency between %s and %s", n.Name, linkedSpec.Name),
				}
			}

			// A leaf target must precede everything sorted so far. Targets
			// with links of their own are handled by their own stack pop.
			if !linkedSpec.HasLinks() && !specsContain(sorted, linkedSpec.Name) {
				sorted = append([]models.ServiceSpec{linkedSpec}, sorted...)
			}
		}
	}

	result := make([]models.ServiceSpec, 0, len(nonDependent)+len(sorted))
	result = append(result, nonDependent...)
	result = append(result, sorted...)
	return result, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func findSpec(specs []models.ServiceSpec, name string) (models.ServiceSpec, bool) {
	for _, spec := range specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return models.ServiceSpec{}, false
}

func specsContain(specs []models.ServiceSpec, name string) bool {
	for _, spec := range specs {
		if spec.Name == name {
			return true
		}
	}
	return false
}
