package esxi

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// PowerState is a vm power state as reported by vim-cmd. It is derived
// fresh on every query and never cached on the handle.
type PowerState string

const (
	PowerStateOn        PowerState = "on"
	PowerStateOff       PowerState = "off"
	PowerStateSuspended PowerState = "suspended"
	PowerStateUnknown   PowerState = "unknown"

	// powerStateNone marks operations with no idempotence short-circuit.
	powerStateNone PowerState = ""
)

// Per-vm commands, parameterized by the numeric vm id.
const (
	cmdPowerState = "vim-cmd vmsvc/power.getstate %d"
	cmdPowerOp    = "vim-cmd vmsvc/power.%s %d"
)

// faultRe extracts the fault identifier from stderr lines such as
// "vim.fault.InvalidState: ...".
var faultRe = regexp.MustCompile(`vim\.fault\.(\w+)`)

// VM is an immutable snapshot of one vm registered on a host. It holds a
// non-owning reference to the host whose session it shares; discarding a vm
// handle never closes the session.
type VM struct {
	ID        int
	Name      string
	Datastore string
	File      string
	GuestOS   string
	Version   string

	host *Host
}

// Host returns the owning host handle.
func (v *VM) Host() *Host {
	return v.host
}

// String returns a short description of the vm.
func (v *VM) String() string {
	return fmt.Sprintf("vm %d (%s)", v.ID, v.Name)
}

// PowerState queries the vm's current power state.
func (v *VM) PowerState(ctx context.Context) (PowerState, error) {
	if !v.host.Connected() {
		return PowerStateUnknown, newError(CodeSessionNotConnected)
	}

	res, err := v.host.conn.Execute(ctx, fmt.Sprintf(cmdPowerState, v.ID))
	if err != nil {
		return PowerStateUnknown, err
	}
	if res.ExitCode != 0 {
		return PowerStateUnknown, newError(CodePowerStateQueryFailed)
	}

	// The state is prefaced by the word "Powered"; suspended vms report
	// "Suspended" on its own. First match wins.
	for _, line := range res.StdoutLines() {
		if strings.Contains(line, "Powered ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				switch strings.TrimSpace(fields[1]) {
				case "on":
					return PowerStateOn, nil
				case "off":
					return PowerStateOff, nil
				default:
					return PowerStateUnknown, nil
				}
			}
		}
		if strings.Contains(line, "Suspended") {
			return PowerStateSuspended, nil
		}
	}

	return PowerStateUnknown, nil
}

// PowerOn powers the vm on. No-op when it is already on.
func (v *VM) PowerOn(ctx context.Context) error {
	return v.power(ctx, "on", CodePowerOnFailed, PowerStateOn)
}

// PowerOff powers the vm off hard. No-op when it is already off.
func (v *VM) PowerOff(ctx context.Context) error {
	return v.power(ctx, "off", CodePowerOffFailed, PowerStateOff)
}

// Hibernate hibernates the vm. No-op when it is already suspended.
func (v *VM) Hibernate(ctx context.Context) error {
	return v.power(ctx, "hibernate", CodeHibernateFailed, PowerStateSuspended)
}

// Shutdown asks the guest to shut down. No-op when the vm is already off.
// Requires VMware Tools in the guest.
func (v *VM) Shutdown(ctx context.Context) error {
	return v.power(ctx, "shutdown", CodeVMShutdownFailed, PowerStateOff)
}

// Suspend suspends the vm. No-op when it is already suspended.
func (v *VM) Suspend(ctx context.Context) error {
	return v.power(ctx, "suspend", CodeSuspendFailed, PowerStateSuspended)
}

// Reboot asks the guest to reboot. Issued unconditionally, with no
// current-state short-circuit.
func (v *VM) Reboot(ctx context.Context) error {
	return v.power(ctx, "reboot", CodeRebootFailed, powerStateNone)
}

// Reset resets the vm hard. Issued unconditionally.
func (v *VM) Reset(ctx context.Context) error {
	return v.power(ctx, "reset", CodeResetFailed, powerStateNone)
}

// SuspendResume is declared for contract completeness but performs no
// remote action; callers must not assume it does anything.
func (v *VM) SuspendResume(ctx context.Context) error {
	return newError(CodeNotImplemented)
}

// power runs one vim-cmd power operation. When target is set, the operation
// is idempotent: the current state is queried first and the command is not
// issued when the vm already reports the target state. On nonzero exit the
// first stderr line is inspected for a vim.fault marker to enrich the error.
func (v *VM) power(ctx context.Context, op string, code Code, target PowerState) error {
	if !v.host.Connected() {
		return newError(CodeSessionNotConnected)
	}

	if target != powerStateNone {
		state, err := v.PowerState(ctx)
		if err != nil {
			return err
		}
		if state == target {
			return nil
		}
	}

	res, err := v.host.conn.Execute(ctx, fmt.Sprintf(cmdPowerOp, op, v.ID))
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return v.diagnose(ctx, code, res.StderrLines())
	}

	return nil
}

// diagnose builds the failure error for a power operation. When the first
// stderr line carries a vim.fault identifier, the error's reason embeds the
// fault name and the freshly re-queried power state.
func (v *VM) diagnose(ctx context.Context, code Code, stderr []string) error {
	if len(stderr) > 0 {
		if m := faultRe.FindStringSubmatch(stderr[0]); m != nil {
			state, err := v.PowerState(ctx)
			if err != nil {
				state = PowerStateUnknown
			}
			reason := fmt.Sprintf(
				"(%s) The attempted operation cannot be performed in the current state. (%s)",
				m[1], capitalize(string(state)),
			)
			return newError(code, reason)
		}
	}

	return newError(code)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
