// Package dockertest provides an in-memory docker.APIClient for tests.
package dockertest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// CreateCall records one ContainerCreate invocation.
type CreateCall struct {
	Name       string
	Config     *container.Config
	HostConfig *container.HostConfig
}

// FakeClient implements docker.APIClient against in-memory state. The
// zero value is ready to use. Containers present before an operation
// are seeded through the Summaries field; label filters and the All
// flag are honored the way the Engine API honors them.
type FakeClient struct {
	mu sync.Mutex

	// Summaries is the containers ContainerList serves (post filtering).
	Summaries []container.Summary

	// Recorded calls, in order.
	Creates  []CreateCall
	Started  []string
	Stopped  []string
	// StopTimeouts records the Timeout of each ContainerStop call,
	// parallel to Stopped.
	StopTimeouts []*int
	Killed   []string
	Removed  []string
	Renamed  map[string]string
	Builds   []build.ImageBuildOptions
	Pulls    []string

	// Optional injected failures.
	StartErr  error
	StopErr   error
	KillErr   error
	RemoveErr error
	ListErr   error
	BuildErr  error
	PullErr   error

	nextID int
}

func (f *FakeClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.Creates = append(f.Creates, CreateCall{
		Name:       containerName,
		Config:     config,
		HostConfig: hostConfig,
	})
	return container.CreateResponse{ID: fmt.Sprintf("created-%d", f.nextID)}, nil
}

func (f *FakeClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StartErr != nil {
		return f.StartErr
	}
	f.Started = append(f.Started, containerID)
	return nil
}

func (f *FakeClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StopErr != nil {
		return f.StopErr
	}
	f.Stopped = append(f.Stopped, containerID)
	f.StopTimeouts = append(f.StopTimeouts, options.Timeout)
	return nil
}

func (f *FakeClient) ContainerKill(ctx context.Context, containerID, signal string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.KillErr != nil {
		return f.KillErr
	}
	f.Killed = append(f.Killed, fmt.Sprintf("%s:%s", containerID, signal))
	return nil
}

func (f *FakeClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.Removed = append(f.Removed, containerID)
	return nil
}

func (f *FakeClient) ContainerRename(ctx context.Context, containerID, newContainerName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Renamed == nil {
		f.Renamed = make(map[string]string)
	}
	f.Renamed[containerID] = newContainerName
	return nil
}

func (f *FakeClient) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var out []container.Summary
	for _, s := range f.Summaries {
		if !options.All && string(s.State) != "running" {
			continue
		}
		if matchesLabels(s, options.Filters.Get("label")) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeClient) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	return container.InspectResponse{}, nil
}

func (f *FakeClient) ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.BuildErr != nil {
		return build.ImageBuildResponse{}, f.BuildErr
	}
	// Drain the context like the daemon would.
	if buildContext != nil {
		io.Copy(io.Discard, buildContext) //nolint:errcheck
	}
	f.Builds = append(f.Builds, options)
	return build.ImageBuildResponse{Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

func (f *FakeClient) ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PullErr != nil {
		return nil, f.PullErr
	}
	f.Pulls = append(f.Pulls, refStr)
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *FakeClient) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, nil
}

func (f *FakeClient) Close() error {
	return nil
}

func matchesLabels(s container.Summary, labelFilters []string) bool {
	for _, lf := range labelFilters {
		parts := strings.SplitN(lf, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if s.Labels[parts[0]] != parts[1] {
			return false
		}
	}
	return true
}
