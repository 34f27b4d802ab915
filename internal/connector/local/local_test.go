package local

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestConnectLifecycle(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("unsupported platform: %s", runtime.GOOS)
	}

	c := New()

	if c.IsConnected() {
		t.Error("expected not connected before Connect")
	}

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsConnected() {
		t.Error("expected connected after Connect")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.IsConnected() {
		t.Error("expected not connected after Close")
	}

	// Close is idempotent
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error on second Close: %v", err)
	}
}

func TestExecute(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("unsupported platform: %s", runtime.GOOS)
	}

	c := New()
	ctx := context.Background()

	t.Run("captures stdout and exit code", func(t *testing.T) {
		res, err := c.Execute(ctx, "echo hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", res.ExitCode)
		}
		if res.Stdout != "hello\n" {
			t.Errorf("expected %q, got %q", "hello\n", res.Stdout)
		}
	})

	t.Run("captures stderr and nonzero exit", func(t *testing.T) {
		res, err := c.Execute(ctx, "echo oops 1>&2; exit 3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ExitCode != 3 {
			t.Errorf("expected exit code 3, got %d", res.ExitCode)
		}
		if !strings.Contains(res.Stderr, "oops") {
			t.Errorf("expected stderr to contain 'oops', got %q", res.Stderr)
		}
	})
}

func TestWithShell(t *testing.T) {
	c := New(WithShell("/bin/bash", "-c"))
	if c.shell != "/bin/bash" {
		t.Errorf("expected /bin/bash, got %s", c.shell)
	}
}

func TestString(t *testing.T) {
	c := New()
	if !strings.HasPrefix(c.String(), "local://") && c.String() != "local" {
		t.Errorf("unexpected description: %s", c.String())
	}
}
