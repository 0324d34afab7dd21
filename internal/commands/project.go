package commands

import (
	"context"
	"fmt"

	"github.com/KyleAMathews/fig/internal/config"
	"github.com/KyleAMathews/fig/internal/docker"
	"github.com/KyleAMathews/fig/internal/project"
)

// loadProject reads the service definition file, connects to the Docker
// daemon and constructs the project every command operates on.
func loadProject(ctx context.Context) (*project.Project, docker.APIClient, error) {
	specs, err := config.LoadServices(cfg.Project.File)
	if err != nil {
		return nil, nil, err
	}

	client, err := docker.New(ctx, cfg.Docker.Host)
	if err != nil {
		return nil, nil, err
	}

	p, err := project.FromSpecs(cfg.ProjectName(), specs, client, nil)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to build project: %w", err)
	}

	return p, client, nil
}
