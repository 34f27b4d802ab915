// Package connector defines the interface for executing commands on a target host.
package connector

import (
	"context"
	"strings"
)

// Result holds the captured output of one command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// StdoutLines returns stdout split into lines, without the trailing
// empty line produced by a final newline.
func (r *Result) StdoutLines() []string {
	return splitLines(r.Stdout)
}

// StderrLines returns stderr split into lines.
func (r *Result) StderrLines() []string {
	return splitLines(r.Stderr)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// Connector is the interface for connecting to and executing commands on a target.
type Connector interface {
	// Connect establishes a connection to the target. Transport errors are
	// returned unchanged.
	Connect(ctx context.Context) error

	// IsConnected reports whether the connection is established and alive.
	// It is side-effect-free and safe to call repeatedly.
	IsConnected() bool

	// Execute runs a command on the target, blocking until the remote
	// process exits, and returns the full captured result. No timeout is
	// imposed at this layer.
	Execute(ctx context.Context, cmd string) (*Result, error)

	// Close terminates the connection. It is idempotent.
	Close() error

	// String returns a human-readable description of the connection.
	String() string
}
