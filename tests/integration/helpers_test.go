package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/eugenetaranov/esxictl/internal/connector/docker"
	"github.com/eugenetaranov/esxictl/internal/esxi"
)

// setupHost starts a container that fakes the esxcli/vim-cmd surface and
// returns a connected host handle driving it through the docker connector.
// Each test gets its own container so power-state mutations do not bleed
// between tests.
func setupHost(t *testing.T, ctx context.Context) (*esxi.Host, testcontainers.Container) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	req := testcontainers.ContainerRequest{
		FromDockerfile: testcontainers.FromDockerfile{
			Context:    ".",
			Dockerfile: "Dockerfile",
		},
		WaitingFor: wait.ForExec([]string{"test", "-x", "/usr/local/bin/vim-cmd"}).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start fake esx container")

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	conn := docker.New(container.GetContainerID())
	h := esxi.NewHost("fake-esx", conn)
	require.NoError(t, h.Connect(ctx))

	t.Cleanup(func() {
		_ = h.Close()
	})

	return h, container
}

// execInContainer runs a command in the container and returns the exit code
// and stdout. The Docker stream multiplexes stdout/stderr, so demux it.
func execInContainer(ctx context.Context, container testcontainers.Container, cmd []string) (int, string, error) {
	exitCode, reader, err := container.Exec(ctx, cmd)
	if err != nil {
		return exitCode, "", err
	}

	var stdout, stderr bytes.Buffer
	_, _ = stdcopy.StdCopy(&stdout, &stderr, reader)

	return exitCode, stdout.String(), nil
}

// readHostFile returns the trimmed content of a file inside the container.
func readHostFile(t *testing.T, ctx context.Context, container testcontainers.Container, path string) string {
	t.Helper()

	exitCode, content, err := execInContainer(ctx, container, []string{"cat", path})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode, "failed to read %s", path)

	return strings.TrimSpace(content)
}

// requireCode asserts that err carries the expected esxi failure code.
func requireCode(t *testing.T, err error, want esxi.Code) {
	t.Helper()

	require.Error(t, err)
	code, found := esxi.CodeOf(err)
	require.True(t, found, "expected esxi error, got %T: %v", err, err)
	require.Equal(t, want, code)
}
