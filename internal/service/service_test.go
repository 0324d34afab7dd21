package service

import (
	"context"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleAMathews/fig/internal/docker/dockertest"
	"github.com/KyleAMathews/fig/models"
)

func runningContainer(id, project, service string, number string) container.Summary {
	return container.Summary{
		ID:    id,
		Names: []string{"/" + project + "_" + service + "_" + number},
		State: "running",
		Labels: map[string]string{
			models.LabelProject: project,
			models.LabelService: service,
			models.LabelNumber:  number,
		},
	}
}

func stoppedContainer(id, project, service string, number string) container.Summary {
	s := runningContainer(id, project, service, number)
	s.State = "exited"
	return s
}

func TestCanBeBuilt(t *testing.T) {
	buildable := New(&dockertest.FakeClient{}, "figtest", models.ServiceSpec{Name: "web", Build: "./web"}, nil, nil)
	imageBacked := New(&dockertest.FakeClient{}, "figtest", models.ServiceSpec{Name: "db", Image: "postgres:15"}, nil, nil)

	assert.True(t, buildable.CanBeBuilt())
	assert.False(t, imageBacked.CanBeBuilt())
}

func TestImageName(t *testing.T) {
	buildable := New(&dockertest.FakeClient{}, "figtest", models.ServiceSpec{Name: "web", Build: "./web"}, nil, nil)
	imageBacked := New(&dockertest.FakeClient{}, "figtest", models.ServiceSpec{Name: "db", Image: "postgres:15"}, nil, nil)

	assert.Equal(t, "figtest_web", buildable.ImageName())
	assert.Equal(t, "postgres:15", imageBacked.ImageName())
}

func TestBuild_TagsProjectImage(t *testing.T) {
	client := &dockertest.FakeClient{}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Build: t.TempDir()}, nil, nil)

	err := s.Build(context.Background(), BuildOptions{NoCache: true})
	require.NoError(t, err)

	require.Len(t, client.Builds, 1)
	assert.Equal(t, []string{"figtest_web"}, client.Builds[0].Tags)
	assert.True(t, client.Builds[0].NoCache)
}

func TestBuild_FailsWithoutBuildDirectory(t *testing.T) {
	s := New(&dockertest.FakeClient{}, "figtest", models.ServiceSpec{Name: "db", Image: "postgres:15"}, nil, nil)

	err := s.Build(context.Background(), BuildOptions{})
	assert.Error(t, err)
}

func TestContainers_FiltersByServiceLabels(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("web-1", "figtest", "web", "1"),
			runningContainer("db-1", "figtest", "db", "1"),
			runningContainer("other", "otherproject", "web", "1"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	containers, err := s.Containers(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, containers, 1)
	assert.Equal(t, "web-1", containers[0].ID)
	assert.Equal(t, "figtest_web_1", containers[0].Name)
	assert.Equal(t, "web", containers[0].Service)
	assert.Equal(t, 1, containers[0].Number)
}

func TestStart_CreatesFirstContainer(t *testing.T) {
	client := &dockertest.FakeClient{}
	s := New(client, "figtest", models.ServiceSpec{
		Name:        "web",
		Image:       "web:latest",
		Command:     models.CommandSpec{"python", "app.py"},
		Ports:       []string{"8000:8000"},
		Environment: map[string]string{"B": "2", "A": "1"},
	}, nil, nil)

	err := s.Start(context.Background(), StartOptions{})
	require.NoError(t, err)

	require.Len(t, client.Creates, 1)
	created := client.Creates[0]
	assert.Equal(t, "figtest_web_1", created.Name)
	assert.Equal(t, "web:latest", created.Config.Image)
	assert.Equal(t, []string{"python", "app.py"}, []string(created.Config.Cmd))
	assert.Equal(t, []string{"A=1", "B=2"}, created.Config.Env)
	assert.Equal(t, "figtest", created.Config.Labels[models.LabelProject])
	assert.Equal(t, "web", created.Config.Labels[models.LabelService])
	assert.Equal(t, "1", created.Config.Labels[models.LabelNumber])

	port := nat.Port("8000/tcp")
	assert.Contains(t, created.Config.ExposedPorts, port)
	require.Len(t, created.HostConfig.PortBindings[port], 1)
	assert.Equal(t, "8000", created.HostConfig.PortBindings[port][0].HostPort)

	assert.Equal(t, []string{"web:latest"}, client.Pulls)
	assert.Len(t, client.Started, 1)
}

func TestStart_OnlyStartsStoppedContainers(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("web-1", "figtest", "web", "1"),
			stoppedContainer("web-2", "figtest", "web", "2"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	err := s.Start(context.Background(), StartOptions{})
	require.NoError(t, err)

	assert.Empty(t, client.Creates)
	assert.Equal(t, []string{"web-2"}, client.Started)
}

func TestStart_LinksResolveToLinkedContainer(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("db-1", "figtest", "db", "1"),
		},
	}
	db := New(client, "figtest", models.ServiceSpec{Name: "db", Image: "postgres:15"}, nil, nil)
	web := New(client, "figtest", models.ServiceSpec{
		Name:  "web",
		Image: "web:latest",
		Links: []string{"db"},
	}, []*Service{db}, nil)

	err := web.Start(context.Background(), StartOptions{})
	require.NoError(t, err)

	require.Len(t, client.Creates, 1)
	assert.Equal(t, []string{"figtest_db_1:db"}, client.Creates[0].HostConfig.Links)
}

func TestStop_StopsOnlyRunningContainers(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("web-1", "figtest", "web", "1"),
			stoppedContainer("web-2", "figtest", "web", "2"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	err := s.Stop(context.Background(), StopOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"web-1"}, client.Stopped)
}

func TestStop_PassesTimeoutThrough(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("web-1", "figtest", "web", "1"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	timeout := 3
	err := s.Stop(context.Background(), StopOptions{Timeout: &timeout})
	require.NoError(t, err)

	require.Len(t, client.StopTimeouts, 1)
	require.NotNil(t, client.StopTimeouts[0])
	assert.Equal(t, 3, *client.StopTimeouts[0])
}

func TestKill_DefaultsToSIGKILL(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("web-1", "figtest", "web", "1"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	err := s.Kill(context.Background(), KillOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"web-1:KILL"}, client.Killed)
}

func TestRemoveStopped_SkipsRunningContainers(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("web-1", "figtest", "web", "1"),
			stoppedContainer("web-2", "figtest", "web", "2"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	err := s.RemoveStopped(context.Background(), RemoveOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"web-2"}, client.Removed)
}

func TestRecreateContainers_ReplacesExisting(t *testing.T) {
	client := &dockertest.FakeClient{
		Summaries: []container.Summary{
			runningContainer("old-1", "figtest", "web", "1"),
		},
	}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	old, fresh, err := s.RecreateContainers(context.Background())
	require.NoError(t, err)

	require.Len(t, old, 1)
	require.Len(t, fresh, 1)
	assert.Equal(t, "old-1", old[0].ID)
	assert.Equal(t, "figtest_web_1", fresh[0].Name)
	assert.True(t, fresh[0].IsRunning())

	// Replacement lifecycle: stop old, create interim, remove old,
	// rename to the canonical name, start.
	assert.Equal(t, []string{"old-1"}, client.Stopped)
	assert.Equal(t, []string{"old-1"}, client.Removed)
	require.Len(t, client.Creates, 1)
	assert.NotEqual(t, "figtest_web_1", client.Creates[0].Name)
	assert.Equal(t, "figtest_web_1", client.Renamed[fresh[0].ID])
	assert.Equal(t, []string{fresh[0].ID}, client.Started)

	// Data volumes carry over from the predecessor.
	assert.Equal(t, []string{"old-1"}, client.Creates[0].HostConfig.VolumesFrom)
}

func TestRecreateContainers_CreatesWhenNoneExist(t *testing.T) {
	client := &dockertest.FakeClient{}
	s := New(client, "figtest", models.ServiceSpec{Name: "web", Image: "web:latest"}, nil, nil)

	old, fresh, err := s.RecreateContainers(context.Background())
	require.NoError(t, err)

	assert.Empty(t, old)
	require.Len(t, fresh, 1)
	assert.Equal(t, "figtest_web_1", fresh[0].Name)
	assert.Len(t, client.Started, 1)
}
