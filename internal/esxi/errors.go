package esxi

import (
	"errors"
	"fmt"
)

// Code identifies one failure kind in the client's error table. Codes are
// stable; callers should branch on the code rather than the message text.
type Code int

const (
	// CodeSessionNotConnected is returned by every operation invoked while
	// the SSH session is not alive.
	CodeSessionNotConnected Code = 1000 + iota

	// CodeMaintenanceModeQueryFailed indicates the maintenance mode query
	// command exited nonzero.
	CodeMaintenanceModeQueryFailed

	// CodeMaintenanceModeEnterFailed indicates the host refused to enter
	// maintenance mode.
	CodeMaintenanceModeEnterFailed

	// CodeMaintenanceModeExitFailed indicates the host refused to exit
	// maintenance mode.
	CodeMaintenanceModeExitFailed

	// CodeMaintenanceModeParseFailed indicates the maintenance mode query
	// succeeded but its output contained no recognizable status line.
	CodeMaintenanceModeParseFailed

	// CodeShutdownInvalidCommand indicates the host shutdown argument was
	// neither "poweroff" nor "reboot".
	CodeShutdownInvalidCommand

	// CodeShutdownFailed indicates the host shutdown command exited nonzero.
	CodeShutdownFailed

	// CodeVMListFailed indicates the vm listing command exited nonzero.
	CodeVMListFailed

	// CodePowerStateQueryFailed indicates the per-vm power state query
	// exited nonzero.
	CodePowerStateQueryFailed

	// CodePowerOnFailed through CodeResetFailed are the per-vm power
	// operation failures.
	CodePowerOnFailed
	CodePowerOffFailed
	CodeHibernateFailed
	CodeVMShutdownFailed
	CodeSuspendFailed
	CodeRebootFailed
	CodeResetFailed

	// CodeNotImplemented is returned by declared operations that perform
	// no action.
	CodeNotImplemented
)

// messages maps each code to its fixed human-readable message.
var messages = map[Code]string{
	CodeSessionNotConnected:        "ssh session not connected to host",
	CodeMaintenanceModeQueryFailed: "unable to get maintenance mode state",
	CodeMaintenanceModeEnterFailed: "unable to enable maintenance mode on host",
	CodeMaintenanceModeExitFailed:  "unable to disable maintenance mode on host",
	CodeMaintenanceModeParseFailed: "maintenance mode state not present in command output",
	CodeShutdownInvalidCommand:     "shutdown command must be either 'poweroff' or 'reboot'",
	CodeShutdownFailed:             "unable to shut down host",
	CodeVMListFailed:               "unable to get list of vms from host",
	CodePowerStateQueryFailed:      "unable to query the power state of the vm",
	CodePowerOnFailed:              "unable to power on the vm",
	CodePowerOffFailed:             "unable to power off the vm",
	CodeHibernateFailed:            "unable to hibernate the vm",
	CodeVMShutdownFailed:           "unable to shut down the vm",
	CodeSuspendFailed:              "unable to suspend the vm",
	CodeRebootFailed:               "unable to reboot the vm",
	CodeResetFailed:                "unable to reset the vm",
	CodeNotImplemented:             "operation not implemented",
}

// Error is the structured error raised by every host and vm operation.
// Transport-level failures are not wrapped into it; they surface unchanged
// from the connector.
type Error struct {
	// Code is the stable numeric identifier of the failure kind.
	Code Code

	// Message is the fixed message associated with the code.
	Message string

	// Reason optionally carries lower-level detail, such as an extracted
	// fault identifier and the vm's state at failure time.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("esxi %d: %s: %s", e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("esxi %d: %s", e.Code, e.Message)
}

// newError constructs an Error from a code and an optional reason. The
// message always comes from the fixed table.
func newError(code Code, reason ...string) *Error {
	e := &Error{
		Code:    code,
		Message: messages[code],
	}
	if len(reason) > 0 {
		e.Reason = reason[0]
	}
	return e
}

// CodeOf extracts the failure code from an error. It returns false for nil
// errors and for transport errors that did not originate in this package.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
