package models

import (
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
)

// stateRunning matches the Engine API state string for a live container.
const stateRunning = "running"

// Label keys stamped on every container fig creates. Listing operations
// filter on these rather than parsing container names.
const (
	LabelProject = "fig.project"
	LabelService = "fig.service"
	LabelNumber  = "fig.number"
)

// Container is fig's view of one Docker container belonging to a service.
type Container struct {
	// ID is the full container ID as reported by the Engine API.
	ID string `json:"id"`

	// Name is the container name without the leading slash.
	Name string `json:"name"`

	// Image is the image the container was created from.
	Image string `json:"image"`

	// Service is the owning service name, read from the fig.service label.
	Service string `json:"service"`

	// Number is the per-service instance number, starting at 1.
	Number int `json:"number"`

	// State is the Engine-reported state (created, running, exited, ...).
	State string `json:"state"`

	// Status is the human-readable status line from the Engine API.
	Status string `json:"status,omitempty"`
}

// IsRunning reports whether the Engine considers the container running.
func (c Container) IsRunning() bool {
	return c.State == stateRunning
}

// ContainerFromSummary converts an Engine API list entry.
func ContainerFromSummary(s container.Summary) Container {
	name := ""
	if len(s.Names) > 0 {
		name = strings.TrimPrefix(s.Names[0], "/")
	}

	number := 0
	if raw, ok := s.Labels[LabelNumber]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			number = n
		}
	}

	return Container{
		ID:      s.ID,
		Name:    name,
		Image:   s.Image,
		Service: s.Labels[LabelService],
		Number:  number,
		State:   string(s.State),
		Status:  s.Status,
	}
}
