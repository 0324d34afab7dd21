// Package service implements the per-service container operations a
// project fans out to: building images, creating, starting, stopping and
// recreating containers through the Docker Engine API.
package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/moby/go-archive"

	"github.com/KyleAMathews/fig/internal/docker"
	"github.com/KyleAMathews/fig/models"
)

// Service is one constructed service inside a project. Links hold
// references to the services this one depends on; they are always
// constructed before this service, so the slice never contains nil.
type Service struct {
	Name    string
	Project string
	Spec    models.ServiceSpec
	Links   []*Service

	client docker.APIClient
	logger *log.Logger
}

// New constructs a service handle. logger may be nil, in which case the
// package-level default logger is used.
func New(client docker.APIClient, project string, spec models.ServiceSpec, links []*Service, logger *log.Logger) *Service {
	return &Service{
		Name:    spec.Name,
		Project: project,
		Spec:    spec,
		Links:   links,
		client:  client,
		logger:  logger,
	}
}

// StartOptions holds options for Start.
type StartOptions struct{}

// StopOptions holds options for Stop.
type StopOptions struct {
	// Timeout is the seconds to wait before the daemon kills the
	// container. Nil uses the daemon default.
	Timeout *int
}

// KillOptions holds options for Kill.
type KillOptions struct {
	// Signal to send, "KILL" when empty.
	Signal string
}

// BuildOptions holds options for Build.
type BuildOptions struct {
	NoCache bool
}

// RemoveOptions holds options for RemoveStopped.
type RemoveOptions struct {
	RemoveVolumes bool
}

// CanBeBuilt reports whether the spec declares a build directory. A
// service backed only by a pre-built image cannot be built.
func (s *Service) CanBeBuilt() bool {
	return s.Spec.Build != ""
}

// ImageName returns the image this service's containers run: the spec's
// image reference, or the project-scoped tag fig builds into.
func (s *Service) ImageName() string {
	if s.CanBeBuilt() {
		return fmt.Sprintf("%s_%s", s.Project, s.Name)
	}
	return s.Spec.Image
}

// Build tars the build directory and builds the image tagged with
// ImageName. Callers should check CanBeBuilt first.
func (s *Service) Build(ctx context.Context, opts BuildOptions) error {
	if !s.CanBeBuilt() {
		return fmt.Errorf("service %s has no build directory", s.Name)
	}

	s.printf("Building %s...", s.Name)

	buildCtx, err := archive.TarWithOptions(s.Spec.Build, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to tar build context %s: %w", s.Spec.Build, err)
	}
	defer buildCtx.Close()

	resp, err := s.client.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:    []string{s.ImageName()},
		NoCache: opts.NoCache,
		Remove:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to build image for service %s: %w", s.Name, err)
	}
	defer resp.Body.Close()

	// The body streams build progress; it must be drained for the build
	// to complete.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read build output for service %s: %w", s.Name, err)
	}

	return nil
}

// Containers lists this service's containers, identified by the labels
// stamped at creation time. all includes stopped containers.
func (s *Service) Containers(ctx context.Context, all bool) ([]models.Container, error) {
	args := filters.NewArgs(
		filters.Arg("label", fmt.Sprintf("%s=%s", models.LabelProject, s.Project)),
		filters.Arg("label", fmt.Sprintf("%s=%s", models.LabelService, s.Name)),
	)

	summaries, err := s.client.ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for service %s: %w", s.Name, err)
	}

	containers := make([]models.Container, 0, len(summaries))
	for _, summary := range summaries {
		containers = append(containers, models.ContainerFromSummary(summary))
	}
	return containers, nil
}

// Start makes sure the service has at least one container and that all
// of its containers are running. A container is created on first start.
func (s *Service) Start(ctx context.Context, opts StartOptions) error {
	containers, err := s.Containers(ctx, true)
	if err != nil {
		return err
	}

	if len(containers) == 0 {
		created, err := s.createContainer(ctx, s.nextNumber(containers), "")
		if err != nil {
			return err
		}
		containers = []models.Container{created}
	}

	for _, c := range containers {
		if c.IsRunning() {
			continue
		}
		if err := s.client.ContainerStart(ctx, c.ID, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start container %s: %w", c.Name, err)
		}
	}
	return nil
}

// Stop stops all running containers of the service.
func (s *Service) Stop(ctx context.Context, opts StopOptions) error {
	containers, err := s.Containers(ctx, false)
	if err != nil {
		return err
	}

	for _, c := range containers {
		if err := s.client.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: opts.Timeout}); err != nil {
			return fmt.Errorf("failed to stop container %s: %w", c.Name, err)
		}
	}
	return nil
}

// Kill sends a signal to all running containers of the service.
func (s *Service) Kill(ctx context.Context, opts KillOptions) error {
	signal := opts.Signal
	if signal == "" {
		signal = "KILL"
	}

	containers, err := s.Containers(ctx, false)
	if err != nil {
		return err
	}

	for _, c := range containers {
		if err := s.client.ContainerKill(ctx, c.ID, signal); err != nil {
			return fmt.Errorf("failed to kill container %s: %w", c.Name, err)
		}
	}
	return nil
}

// RemoveStopped removes the service's containers that are not running.
func (s *Service) RemoveStopped(ctx context.Context, opts RemoveOptions) error {
	containers, err := s.Containers(ctx, true)
	if err != nil {
		return err
	}

	for _, c := range containers {
		if c.IsRunning() {
			continue
		}
		if err := s.client.ContainerRemove(ctx, c.ID, container.RemoveOptions{
			RemoveVolumes: opts.RemoveVolumes,
		}); err != nil {
			return fmt.Errorf("failed to remove container %s: %w", c.Name, err)
		}
	}
	return nil
}

// RecreateContainers replaces every existing container of the service
// with a fresh one carrying the same number and any data volumes of its
// predecessor. With no existing containers it creates and starts one.
// It returns the replaced containers and the containers now running.
func (s *Service) RecreateContainers(ctx context.Context) ([]models.Container, []models.Container, error) {
	existing, err := s.Containers(ctx, true)
	if err != nil {
		return nil, nil, err
	}

	if len(existing) == 0 {
		created, err := s.createContainer(ctx, 1, "")
		if err != nil {
			return nil, nil, err
		}
		if err := s.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
			return nil, nil, fmt.Errorf("failed to start container %s: %w", created.Name, err)
		}
		return nil, []models.Container{created}, nil
	}

	var oldContainers, newContainers []models.Container
	for _, previous := range existing {
		replacement, err := s.recreateContainer(ctx, previous)
		if err != nil {
			return nil, nil, err
		}
		oldContainers = append(oldContainers, previous)
		newContainers = append(newContainers, replacement)
	}
	return oldContainers, newContainers, nil
}

// recreateContainer replaces one container: stop, create the successor
// under an interim name with the predecessor's volumes, remove the
// predecessor, rename, start.
func (s *Service) recreateContainer(ctx context.Context, previous models.Container) (models.Container, error) {
	s.printf("Recreating %s...", previous.Name)

	if previous.IsRunning() {
		if err := s.client.ContainerStop(ctx, previous.ID, container.StopOptions{}); err != nil {
			return models.Container{}, fmt.Errorf("failed to stop container %s: %w", previous.Name, err)
		}
	}

	number := previous.Number
	if number == 0 {
		number = 1
	}

	// The canonical name is still held by the predecessor, so the
	// successor is created under an interim name and renamed once the
	// predecessor is gone.
	interim := fmt.Sprintf("%s_%s_%s", s.Project, s.Name, uuid.NewString()[:8])
	created, err := s.createContainerNamed(ctx, interim, number, previous.ID)
	if err != nil {
		return models.Container{}, err
	}

	if err := s.client.ContainerRemove(ctx, previous.ID, container.RemoveOptions{}); err != nil {
		return models.Container{}, fmt.Errorf("failed to remove container %s: %w", previous.Name, err)
	}

	canonical := s.containerName(number)
	if err := s.client.ContainerRename(ctx, created.ID, canonical); err != nil {
		return models.Container{}, fmt.Errorf("failed to rename container %s: %w", interim, err)
	}
	created.Name = canonical

	if err := s.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return models.Container{}, fmt.Errorf("failed to start container %s: %w", canonical, err)
	}
	created.State = "running"

	return created, nil
}

// createContainer creates a container under its canonical name.
// volumesFrom optionally names a container whose volumes carry over.
func (s *Service) createContainer(ctx context.Context, number int, volumesFrom string) (models.Container, error) {
	return s.createContainerNamed(ctx, s.containerName(number), number, volumesFrom)
}

func (s *Service) createContainerNamed(ctx context.Context, name string, number int, volumesFrom string) (models.Container, error) {
	if !s.CanBeBuilt() {
		if err := s.pullImage(ctx); err != nil {
			return models.Container{}, err
		}
	}

	config, hostConfig, err := s.containerConfigs(ctx, number)
	if err != nil {
		return models.Container{}, err
	}
	if volumesFrom != "" {
		hostConfig.VolumesFrom = []string{volumesFrom}
	}

	resp, err := s.client.ContainerCreate(ctx, config, hostConfig, nil, nil, name)
	if err != nil {
		return models.Container{}, fmt.Errorf("failed to create container for service %s: %w", s.Name, err)
	}

	return models.Container{
		ID:      resp.ID,
		Name:    name,
		Image:   config.Image,
		Service: s.Name,
		Number:  number,
		State:   "created",
	}, nil
}

// containerConfigs translates the spec into Engine API create payloads.
func (s *Service) containerConfigs(ctx context.Context, number int) (*container.Config, *container.HostConfig, error) {
	mappings, err := models.ParsePorts(s.Spec.Ports)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ports for service %s: %w", s.Name, err)
	}

	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, m := range mappings {
		port := nat.Port(fmt.Sprintf("%s/%s", m.ContainerPort, m.Protocol))
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{
			HostIP:   m.HostIP,
			HostPort: m.HostPort,
		})
	}

	links, err := s.containerLinks(ctx)
	if err != nil {
		return nil, nil, err
	}

	config := &container.Config{
		Image:        s.ImageName(),
		Cmd:          strslice.StrSlice(s.Spec.Command),
		Env:          envList(s.Spec.Environment),
		ExposedPorts: exposed,
		Labels: map[string]string{
			models.LabelProject: s.Project,
			models.LabelService: s.Name,
			models.LabelNumber:  strconv.Itoa(number),
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: bindings,
		Binds:        s.Spec.Volumes,
		Links:        links,
	}

	return config, hostConfig, nil
}

// containerLinks resolves each linked service to a Docker container link
// "name:alias". The link alias is the linked service's name, so the
// dependent container reaches it under a stable hostname.
func (s *Service) containerLinks(ctx context.Context) ([]string, error) {
	var links []string
	for _, linked := range s.Links {
		containers, err := linked.Containers(ctx, false)
		if err != nil {
			return nil, err
		}

		target := linked.containerName(1)
		if len(containers) > 0 {
			target = containers[0].Name
		}
		links = append(links, fmt.Sprintf("%s:%s", target, linked.Name))
	}
	return links, nil
}

func (s *Service) pullImage(ctx context.Context) error {
	reader, err := s.client.ImagePull(ctx, s.Spec.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", s.Spec.Image, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to read pull output for image %s: %w", s.Spec.Image, err)
	}
	return nil
}

func (s *Service) containerName(number int) string {
	return fmt.Sprintf("%s_%s_%d", s.Project, s.Name, number)
}

// nextNumber returns the lowest unused instance number given the
// containers that already exist.
func (s *Service) nextNumber(existing []models.Container) int {
	highest := 0
	for _, c := range existing {
		if c.Number > highest {
			highest = c.Number
		}
	}
	return highest + 1
}

func (s *Service) printf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// envList renders an environment map as KEY=VALUE pairs in a stable
// order.
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return list
}
