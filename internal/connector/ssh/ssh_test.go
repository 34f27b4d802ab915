package ssh

import (
	"context"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	c := New("esx1.lab.local", "root", "secret")

	if c.port != 22 {
		t.Errorf("expected default port 22, got %d", c.port)
	}
	if c.timeout != 30*time.Second {
		t.Errorf("expected default dial timeout 30s, got %s", c.timeout)
	}
}

func TestOptions(t *testing.T) {
	c := New("esx1", "root", "secret",
		WithPort(2222),
		WithDialTimeout(5*time.Second),
	)

	if c.port != 2222 {
		t.Errorf("expected port 2222, got %d", c.port)
	}
	if c.timeout != 5*time.Second {
		t.Errorf("expected dial timeout 5s, got %s", c.timeout)
	}
}

func TestString(t *testing.T) {
	c := New("esx1.lab.local", "root", "secret", WithPort(2222))

	want := "ssh://root@esx1.lab.local:2222"
	if c.String() != want {
		t.Errorf("expected %q, got %q", want, c.String())
	}
}

func TestNotConnected(t *testing.T) {
	c := New("esx1", "root", "secret")

	if c.IsConnected() {
		t.Error("expected not connected before Connect")
	}

	if _, err := c.Execute(context.Background(), "echo hi"); err == nil {
		t.Error("expected error executing without a connection")
	}

	// Close before connect is a no-op
	if err := c.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	c := New("esx1", "root", "secret")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Execute(ctx, "echo hi"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
