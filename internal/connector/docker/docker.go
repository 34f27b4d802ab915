// Package docker provides a connector for executing commands in Docker containers.
// The integration tests use it to drive a container that fakes the esxcli surface.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/eugenetaranov/esxictl/internal/connector"
)

// Connector executes commands inside a Docker container.
type Connector struct {
	container string
	user      string
	connected bool
}

// Option configures the Docker connector.
type Option func(*Connector)

// WithUser sets the user for command execution.
func WithUser(user string) Option {
	return func(c *Connector) {
		c.user = user
	}
}

// New creates a new Docker connector for the specified container.
func New(container string, opts ...Option) *Connector {
	c := &Connector{
		container: container,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect verifies the container exists and is running.
func (c *Connector) Connect(ctx context.Context) error {
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("docker command not found: %w", err)
	}

	running, err := c.containerRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("container '%s' is not running", c.container)
	}

	c.connected = true
	return nil
}

// IsConnected reports whether the container is still running.
func (c *Connector) IsConnected() bool {
	if !c.connected {
		return false
	}

	running, err := c.containerRunning(context.Background())
	return err == nil && running
}

func (c *Connector) containerRunning(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "docker", "inspect", "-f", "{{.State.Running}}", c.container)
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("container '%s' not found or not accessible: %w", c.container, err)
	}
	return strings.TrimSpace(string(output)) == "true", nil
}

// Execute runs a command inside the container.
func (c *Connector) Execute(ctx context.Context, cmd string) (*connector.Result, error) {
	args := c.buildExecArgs(cmd)

	execCmd := exec.CommandContext(ctx, "docker", args...)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	result := &connector.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("failed to execute command in container: %w", err)
		}
	}

	return result, nil
}

// buildExecArgs builds the docker exec command arguments.
func (c *Connector) buildExecArgs(cmd string) []string {
	args := []string{"exec", "-i"}

	if c.user != "" {
		args = append(args, "-u", c.user)
	}

	args = append(args, c.container, "/bin/sh", "-c", cmd)

	return args
}

// Close marks the connector as disconnected. Safe to call repeatedly.
func (c *Connector) Close() error {
	c.connected = false
	return nil
}

// String returns a description of the connection.
func (c *Connector) String() string {
	if c.user != "" {
		return fmt.Sprintf("docker://%s@%s", c.user, c.container)
	}
	return fmt.Sprintf("docker://%s", c.container)
}

// Ensure Connector implements the connector.Connector interface.
var _ connector.Connector = (*Connector)(nil)
