package models

import (
	"testing"

	"github.com/docker/docker/api/types/container"
)

func TestContainerFromSummary(t *testing.T) {
	c := ContainerFromSummary(container.Summary{
		ID:     "abc123",
		Names:  []string{"/myapp_web_1"},
		Image:  "myapp_web",
		State:  "running",
		Status: "Up 2 minutes",
		Labels: map[string]string{
			LabelProject: "myapp",
			LabelService: "web",
			LabelNumber:  "1",
		},
	})

	if c.ID != "abc123" {
		t.Errorf("Expected ID 'abc123', got %q", c.ID)
	}
	if c.Name != "myapp_web_1" {
		t.Errorf("Expected leading slash stripped, got %q", c.Name)
	}
	if c.Service != "web" {
		t.Errorf("Expected service 'web', got %q", c.Service)
	}
	if c.Number != 1 {
		t.Errorf("Expected number 1, got %d", c.Number)
	}
	if !c.IsRunning() {
		t.Error("Expected running container")
	}
}

func TestContainerFromSummary_MissingLabels(t *testing.T) {
	c := ContainerFromSummary(container.Summary{
		ID:    "abc123",
		State: "exited",
	})

	if c.Name != "" {
		t.Errorf("Expected empty name, got %q", c.Name)
	}
	if c.Number != 0 {
		t.Errorf("Expected number 0, got %d", c.Number)
	}
	if c.IsRunning() {
		t.Error("Expected stopped container")
	}
}
