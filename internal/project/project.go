// Package project implements the project façade: a named, dependency-
// ordered collection of services with bulk lifecycle operations that fan
// out across a selected subset.
package project

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/KyleAMathews/fig/internal/deps"
	"github.com/KyleAMathews/fig/internal/docker"
	"github.com/KyleAMathews/fig/internal/service"
	"github.com/KyleAMathews/fig/models"
)

// NoSuchServiceError reports a lookup of a service name that does not
// exist in the project.
type NoSuchServiceError struct {
	Name string
}

func (e *NoSuchServiceError) Error() string {
	return fmt.Sprintf("no such service: %s", e.Name)
}

// ServiceContainer pairs a container with the service that owns it, as
// returned by RecreateContainers.
type ServiceContainer struct {
	Service   *service.Service
	Container models.Container
}

// Project is a collection of services sharing one Docker client. The
// Services slice is in dependency order, established once at
// construction; every bulk operation iterates it (or a filtered view of
// it) in that order.
type Project struct {
	Name     string
	Services []*service.Service

	client docker.APIClient
	logger *log.Logger
}

// FromSpecs builds a project from a batch of service specs. The specs
// are sorted into dependency order first, so each service's links can
// be resolved to already-constructed handles. logger may be nil.
func FromSpecs(name string, specs []models.ServiceSpec, client docker.APIClient, logger *log.Logger) (*Project, error) {
	sorted, err := deps.SortServiceSpecs(specs)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Name:   name,
		client: client,
		logger: logger,
	}

	for _, spec := range sorted {
		var links []*service.Service
		for _, linkName := range spec.Links {
			linked, err := p.GetService(linkName)
			if err != nil {
				return nil, err
			}
			links = append(links, linked)
		}
		p.Services = append(p.Services, service.New(client, name, spec, links, logger))
	}

	return p, nil
}

// FromConfig builds a project from a mapping of service name to spec,
// the shape a fig.yml parses into. Names are stamped from the map keys
// and the specs are sorted by name, so the same config always feeds the
// dependency sorter identical input regardless of map iteration order.
func FromConfig(name string, config map[string]models.ServiceSpec, client docker.APIClient, logger *log.Logger) (*Project, error) {
	serviceNames := make([]string, 0, len(config))
	for serviceName := range config {
		serviceNames = append(serviceNames, serviceName)
	}
	sort.Strings(serviceNames)

	specs := make([]models.ServiceSpec, 0, len(config))
	for _, serviceName := range serviceNames {
		spec := config[serviceName]
		spec.Name = serviceName
		specs = append(specs, spec)
	}
	return FromSpecs(name, specs, client, logger)
}

// GetService retrieves a service by name.
func (p *Project) GetService(name string) (*service.Service, error) {
	for _, s := range p.Services {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, &NoSuchServiceError{Name: name}
}

// GetServices returns the project's services filtered by the given
// names, or all services when names is empty. The result preserves the
// project's dependency order regardless of the order names were given
// in. Any unknown name fails the whole call.
func (p *Project) GetServices(names []string) ([]*service.Service, error) {
	if len(names) == 0 {
		return p.Services, nil
	}

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		s, err := p.GetService(name)
		if err != nil {
			return nil, err
		}
		requested[s.Name] = true
	}

	var selected []*service.Service
	for _, s := range p.Services {
		if requested[s.Name] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

// RecreateContainers recreates the containers of the selected services,
// in project order. It returns the replaced containers and their
// replacements, each paired with the owning service.
func (p *Project) RecreateContainers(ctx context.Context, serviceNames []string) ([]ServiceContainer, []ServiceContainer, error) {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return nil, nil, err
	}

	var oldContainers, newContainers []ServiceContainer
	for _, s := range services {
		previous, fresh, err := s.RecreateContainers(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range previous {
			oldContainers = append(oldContainers, ServiceContainer{Service: s, Container: c})
		}
		for _, c := range fresh {
			newContainers = append(newContainers, ServiceContainer{Service: s, Container: c})
		}
	}
	return oldContainers, newContainers, nil
}

// Start starts the selected services in dependency order.
func (p *Project) Start(ctx context.Context, serviceNames []string, opts service.StartOptions) error {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return err
	}
	for _, s := range services {
		if err := s.Start(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops the selected services.
func (p *Project) Stop(ctx context.Context, serviceNames []string, opts service.StopOptions) error {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return err
	}
	for _, s := range services {
		if err := s.Stop(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// Kill signals the selected services' containers.
func (p *Project) Kill(ctx context.Context, serviceNames []string, opts service.KillOptions) error {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return err
	}
	for _, s := range services {
		if err := s.Kill(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// Build builds the selected services that have a build directory.
// Image-backed services are skipped with a note rather than an error.
func (p *Project) Build(ctx context.Context, serviceNames []string, opts service.BuildOptions) error {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return err
	}
	for _, s := range services {
		if !s.CanBeBuilt() {
			p.printf("%s uses an image, skipping", s.Name)
			continue
		}
		if err := s.Build(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// RemoveStopped removes the selected services' stopped containers.
func (p *Project) RemoveStopped(ctx context.Context, serviceNames []string, opts service.RemoveOptions) error {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return err
	}
	for _, s := range services {
		if err := s.RemoveStopped(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// Containers returns the containers of the selected services, flattened
// in project order. all includes stopped containers.
func (p *Project) Containers(ctx context.Context, serviceNames []string, all bool) ([]models.Container, error) {
	services, err := p.GetServices(serviceNames)
	if err != nil {
		return nil, err
	}

	var containers []models.Container
	for _, s := range services {
		cs, err := s.Containers(ctx, all)
		if err != nil {
			return nil, err
		}
		containers = append(containers, cs...)
	}
	return containers, nil
}

func (p *Project) printf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
