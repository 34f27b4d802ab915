package esxi

import (
	"context"

	"github.com/eugenetaranov/esxictl/internal/connector"
)

// fakeConn is a scripted connector. Execute looks responses up by exact
// command string and records every call.
type fakeConn struct {
	connected bool
	responses map[string]*connector.Result
	calls     []string
	execErr   error
}

func newFakeConn(responses map[string]*connector.Result) *fakeConn {
	return &fakeConn{
		connected: true,
		responses: responses,
	}
}

func (f *fakeConn) Connect(ctx context.Context) error {
	f.connected = true
	return nil
}

func (f *fakeConn) IsConnected() bool {
	return f.connected
}

func (f *fakeConn) Execute(ctx context.Context, cmd string) (*connector.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.execErr != nil {
		return nil, f.execErr
	}
	if res, ok := f.responses[cmd]; ok {
		return res, nil
	}
	return &connector.Result{
		Stderr:   "sh: unknown command\n",
		ExitCode: 127,
	}, nil
}

func (f *fakeConn) Close() error {
	f.connected = false
	return nil
}

func (f *fakeConn) String() string {
	return "fake://test"
}

func ok(stdout string) *connector.Result {
	return &connector.Result{Stdout: stdout}
}

func failed(exitCode int, stderr string) *connector.Result {
	return &connector.Result{Stderr: stderr, ExitCode: exitCode}
}

// called reports whether cmd was issued.
func (f *fakeConn) called(cmd string) bool {
	for _, c := range f.calls {
		if c == cmd {
			return true
		}
	}
	return false
}
