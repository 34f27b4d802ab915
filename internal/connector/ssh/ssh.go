// Package ssh provides a connector for executing commands over SSH.
package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	gossh "golang.org/x/crypto/ssh"

	"github.com/eugenetaranov/esxictl/internal/connector"
)

// Connector executes commands on a remote host over SSH.
type Connector struct {
	host     string
	user     string
	password string
	port     int
	timeout  time.Duration

	client *gossh.Client
}

// Option configures the SSH connector.
type Option func(*Connector)

// WithPort sets the SSH port. The default is 22.
func WithPort(port int) Option {
	return func(c *Connector) {
		c.port = port
	}
}

// WithDialTimeout sets the timeout for establishing the TCP connection.
// It does not limit command execution time.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.timeout = d
	}
}

// New creates a new SSH connector for the given host and credentials.
func New(host, user, password string, opts ...Option) *Connector {
	c := &Connector{
		host:     host,
		user:     user,
		password: password,
		port:     22,
		timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect dials the host and performs the SSH handshake. Host keys are
// accepted on first use without pinning. Transport errors are returned
// unchanged.
func (c *Connector) Connect(ctx context.Context) error {
	config := &gossh.ClientConfig{
		User:            c.user,
		Auth:            []gossh.AuthMethod{gossh.Password(c.password)},
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         c.timeout,
	}

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	dialer := net.Dialer{Timeout: c.timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	sshConn, chans, reqs, err := gossh.NewClientConn(netConn, addr, config)
	if err != nil {
		netConn.Close()
		return err
	}

	c.client = gossh.NewClient(sshConn, chans, reqs)
	return nil
}

// IsConnected reports whether the SSH transport exists and still answers
// a keepalive request.
func (c *Connector) IsConnected() bool {
	if c.client == nil {
		return false
	}

	_, _, err := c.client.SendRequest("keepalive@openssh.com", true, nil)
	return err == nil
}

// Execute runs a command in a fresh SSH session and returns the result.
// It blocks until the remote process exits.
func (c *Connector) Execute(ctx context.Context, cmd string) (*connector.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if c.client == nil {
		return nil, fmt.Errorf("not connected to %s", c.host)
	}

	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	err = session.Run(cmd)

	result := &connector.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*gossh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			// Session-level failure, not a remote exit code
			return nil, fmt.Errorf("failed to run command: %w", err)
		}
	}

	return result, nil
}

// Close terminates the SSH connection. Safe to call when already closed.
func (c *Connector) Close() error {
	if c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.client = nil
	return err
}

// String returns a description of the connection.
func (c *Connector) String() string {
	return fmt.Sprintf("ssh://%s@%s:%d", c.user, c.host, c.port)
}

// Ensure Connector implements the connector.Connector interface.
var _ connector.Connector = (*Connector)(nil)
