package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceSpec is the declarative description of one service as it appears
// in fig.yml, before any container exists for it.
//
// Example YAML representation:
//
//	web:
//	  build: ./web
//	  command: python app.py
//	  links:
//	    - db
//	  ports:
//	    - "8000:8000"
//	db:
//	  image: postgres:15
//
// Exactly one of Build or Image should be set. Links name other services
// in the same file and imply build/start ordering.
type ServiceSpec struct {
	// Name is the unique service name, stamped from the fig.yml map key.
	Name string `yaml:"-" validate:"required"`

	// Image is a pre-built image reference (mutually exclusive with Build).
	Image string `yaml:"image,omitempty"`

	// Build is a path to a directory containing a Dockerfile.
	Build string `yaml:"build,omitempty"`

	// Command overrides the image command. Accepts a string or a list in YAML.
	Command CommandSpec `yaml:"command,omitempty"`

	// Links lists names of services this one depends on.
	Links []string `yaml:"links,omitempty"`

	// Ports lists port mappings in "HOST:CONTAINER", "CONTAINER" or
	// "IP:HOST:CONTAINER" form.
	Ports []string `yaml:"ports,omitempty"`

	// Volumes lists bind mounts in "HOST:CONTAINER[:MODE]" form.
	Volumes []string `yaml:"volumes,omitempty"`

	// Environment holds environment variables for the container.
	Environment map[string]string `yaml:"environment,omitempty"`

	// Extra captures unrecognized spec fields so they survive a
	// load/store round trip without this package knowing about them.
	Extra map[string]interface{} `yaml:",inline"`
}

// HasLinks reports whether the spec depends on any other service.
func (s ServiceSpec) HasLinks() bool {
	return len(s.Links) > 0
}

// CommandSpec is a container command that YAML may give as either a single
// string or a list of arguments.
type CommandSpec []string

// UnmarshalYAML accepts both scalar and sequence forms. The scalar form
// is split on whitespace into arguments; quoting is not interpreted, so
// arguments containing spaces need the list form.
func (c *CommandSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return fmt.Errorf("command must be a string or a list of strings: %w", err)
		}
		fields := strings.Fields(single)
		if len(fields) == 0 {
			*c = nil
			return nil
		}
		*c = CommandSpec(fields)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("command must be a string or a list of strings: %w", err)
		}
		*c = CommandSpec(list)
		return nil
	default:
		return fmt.Errorf("command must be a string or a list of strings")
	}
}
