// Package esxi controls an ESXi host over a remote shell session, turning
// esxcli and vim-cmd output into typed values and a fixed error table.
package esxi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/eugenetaranov/esxictl/internal/connector"
)

// Maintenance mode states as reported by esxcli.
const (
	MaintenanceEnabled  = "Enabled"
	MaintenanceDisabled = "Disabled"
)

// Host shutdown commands accepted by Shutdown.
const (
	ShutdownPoweroff = "poweroff"
	ShutdownReboot   = "reboot"
)

// Commands issued to the host. The vm listing pipeline lets awk collapse the
// semi-structured getallvms table into colon-joined rows.
const (
	cmdMaintenanceModeGet   = "esxcli system maintenanceMode get"
	cmdMaintenanceModeEnter = "vim-cmd hostsvc/maintenance_mode_enter"
	cmdMaintenanceModeExit  = "vim-cmd hostsvc/maintenance_mode_exit"
	cmdShutdown             = "esxcli system shutdown %s"
	cmdListVMs              = `vim-cmd vmsvc/getallvms | awk '$3 ~ /^\[/ {print $1":"$2":"$3":"$4":"$5":"$6}'`
)

// Host represents one ESXi host reachable over a single command-execution
// session. It owns the session; vm handles derived from it share the
// session without owning it.
type Host struct {
	name string
	conn connector.Connector
}

// NewHost creates a handle for the named host using the given connector.
// The connector is not connected yet; call Connect first.
func NewHost(name string, conn connector.Connector) *Host {
	return &Host{
		name: name,
		conn: conn,
	}
}

// Name returns the host identifier the handle was created with.
func (h *Host) Name() string {
	return h.name
}

// Connect establishes the session. Transport errors surface unchanged.
func (h *Host) Connect(ctx context.Context) error {
	return h.conn.Connect(ctx)
}

// Connected reports whether the session is established and alive. The check
// is never cached; it is re-done before every operation.
func (h *Host) Connected() bool {
	return h.conn.IsConnected()
}

// Close disconnects the session. Safe to call when already disconnected.
func (h *Host) Close() error {
	return h.conn.Close()
}

// MaintenanceMode returns the host's maintenance mode state, either
// MaintenanceEnabled or MaintenanceDisabled. Output with no recognizable
// status token is a parse failure, not an empty result.
func (h *Host) MaintenanceMode(ctx context.Context) (string, error) {
	if !h.Connected() {
		return "", newError(CodeSessionNotConnected)
	}

	res, err := h.conn.Execute(ctx, cmdMaintenanceModeGet)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", newError(CodeMaintenanceModeQueryFailed)
	}

	for _, line := range res.StdoutLines() {
		if !strings.Contains(line, MaintenanceEnabled) && !strings.Contains(line, MaintenanceDisabled) {
			continue
		}
		for _, tok := range strings.Fields(line) {
			tok = strings.TrimSuffix(strings.TrimSpace(tok), ":")
			if tok == MaintenanceEnabled || tok == MaintenanceDisabled {
				return tok, nil
			}
		}
	}

	return "", newError(CodeMaintenanceModeParseFailed)
}

// EnterMaintenanceMode enables maintenance mode on the host. It is a no-op
// when maintenance mode is already enabled.
func (h *Host) EnterMaintenanceMode(ctx context.Context) error {
	if !h.Connected() {
		return newError(CodeSessionNotConnected)
	}

	state, err := h.MaintenanceMode(ctx)
	if err != nil {
		return err
	}
	if state == MaintenanceEnabled {
		return nil
	}

	res, err := h.conn.Execute(ctx, cmdMaintenanceModeEnter)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return newError(CodeMaintenanceModeEnterFailed)
	}

	return nil
}

// ExitMaintenanceMode disables maintenance mode on the host. It is a no-op
// when maintenance mode is already disabled.
func (h *Host) ExitMaintenanceMode(ctx context.Context) error {
	if !h.Connected() {
		return newError(CodeSessionNotConnected)
	}

	state, err := h.MaintenanceMode(ctx)
	if err != nil {
		return err
	}
	if state == MaintenanceDisabled {
		return nil
	}

	res, err := h.conn.Execute(ctx, cmdMaintenanceModeExit)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return newError(CodeMaintenanceModeExitFailed)
	}

	return nil
}

// Shutdown powers off or reboots the host. The command is matched
// case-insensitively against ShutdownPoweroff and ShutdownReboot; anything
// else fails before touching the session. Maintenance mode is not required:
// callers wanting that safety check query MaintenanceMode first.
func (h *Host) Shutdown(ctx context.Context, command string) error {
	if !h.Connected() {
		return newError(CodeSessionNotConnected)
	}

	command = strings.ToLower(command)
	if command != ShutdownPoweroff && command != ShutdownReboot {
		return newError(CodeShutdownInvalidCommand)
	}

	res, err := h.conn.Execute(ctx, fmt.Sprintf(cmdShutdown, command))
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return newError(CodeShutdownFailed)
	}

	return nil
}

// VMs lists all vms registered on the host. The result is an immutable
// snapshot; re-listing produces new handles. An empty registry yields an
// empty slice, not an error.
func (h *Host) VMs(ctx context.Context) ([]*VM, error) {
	if !h.Connected() {
		return nil, newError(CodeSessionNotConnected)
	}

	res, err := h.conn.Execute(ctx, cmdListVMs)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, newError(CodeVMListFailed)
	}

	vms := []*VM{}
	for _, line := range res.StdoutLines() {
		vm, ok := parseVMRow(h, line)
		if ok {
			vms = append(vms, vm)
		}
	}

	return vms, nil
}

// parseVMRow parses one colon-joined row of the listing pipeline into a vm
// handle. The header row and malformed rows are skipped.
func parseVMRow(h *Host, line string) (*VM, bool) {
	fields := strings.Split(strings.TrimSpace(line), ":")
	if len(fields) != 6 {
		return nil, false
	}
	if strings.EqualFold(fields[0], "vmid") {
		return nil, false
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil, false
	}

	return &VM{
		ID:        id,
		Name:      fields[1],
		Datastore: fields[2],
		File:      fields[3],
		GuestOS:   fields[4],
		Version:   fields[5],
		host:      h,
	}, true
}

// RunningVMs lists the vms whose power state is currently on. The state is
// re-queried per vm, never cached.
func (h *Host) RunningVMs(ctx context.Context) ([]*VM, error) {
	all, err := h.VMs(ctx)
	if err != nil {
		return nil, err
	}

	running := []*VM{}
	for _, vm := range all {
		state, err := vm.PowerState(ctx)
		if err != nil {
			return nil, err
		}
		if state == PowerStateOn {
			running = append(running, vm)
		}
	}

	return running, nil
}

// FindVMByName returns the first vm whose name matches case-insensitively,
// or nil when no vm matches. vm names are not guaranteed unique.
func (h *Host) FindVMByName(ctx context.Context, name string) (*VM, error) {
	vms, err := h.VMs(ctx)
	if err != nil {
		return nil, err
	}

	for _, vm := range vms {
		if strings.EqualFold(vm.Name, name) {
			return vm, nil
		}
	}

	return nil, nil
}

// FindVMByID returns the vm with the given id, or nil when absent.
func (h *Host) FindVMByID(ctx context.Context, id int) (*VM, error) {
	vms, err := h.VMs(ctx)
	if err != nil {
		return nil, err
	}

	for _, vm := range vms {
		if vm.ID == id {
			return vm, nil
		}
	}

	return nil, nil
}
