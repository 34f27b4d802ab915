// Package output provides formatted terminal output for host and vm operations.
package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eugenetaranov/esxictl/internal/esxi"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// Output handles formatted output.
type Output struct {
	w        io.Writer
	useColor bool
}

// New creates a new output handler.
func New(w io.Writer) *Output {
	return &Output{
		w:        w,
		useColor: true,
	}
}

// SetColor enables or disables color output.
func (o *Output) SetColor(enabled bool) {
	o.useColor = enabled
}

// color returns the string wrapped in color codes if enabled.
func (o *Output) color(c, s string) string {
	if !o.useColor {
		return s
	}
	return c + s + colorReset
}

func (o *Output) printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}

// Info prints a plain informational line.
func (o *Output) Info(format string, args ...any) {
	o.printf(format+"\n", args...)
}

// Success prints a green ok line.
func (o *Output) Success(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorGreen, "ok:"), fmt.Sprintf(format, args...))
}

// Error prints a red error line.
func (o *Output) Error(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorRed, "error:"), fmt.Sprintf(format, args...))
}

// MaintenanceMode prints the host maintenance mode state.
func (o *Output) MaintenanceMode(host, state string) {
	c := colorYellow
	if state == esxi.MaintenanceDisabled {
		c = colorGreen
	}
	o.printf("%s maintenance mode: %s\n", o.color(colorBold, host), o.color(c, state))
}

// PowerState prints one vm's power state.
func (o *Output) PowerState(vm *esxi.VM, state esxi.PowerState) {
	o.printf("%s: %s\n", vm, o.color(stateColor(state), string(state)))
}

// VMTable prints a table of vms. When states is non-nil it must hold one
// power state per vm id; a missing entry renders as a dash.
func (o *Output) VMTable(vms []*esxi.VM, states map[int]esxi.PowerState) {
	if len(vms) == 0 {
		o.Info("no vms found")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)

	header := "ID\tNAME\tDATASTORE\tGUEST OS\tVERSION"
	if states != nil {
		header += "\tSTATE"
	}
	fmt.Fprintln(tw, o.color(colorBold, header))

	for _, vm := range vms {
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s", vm.ID, vm.Name, vm.Datastore, vm.GuestOS, vm.Version)
		if states != nil {
			state, ok := states[vm.ID]
			if !ok {
				row += "\t-"
			} else {
				row += "\t" + o.color(stateColor(state), string(state))
			}
		}
		fmt.Fprintln(tw, row)
	}

	tw.Flush()
}

func stateColor(state esxi.PowerState) string {
	switch state {
	case esxi.PowerStateOn:
		return colorGreen
	case esxi.PowerStateOff:
		return colorRed
	case esxi.PowerStateSuspended:
		return colorYellow
	default:
		return colorCyan
	}
}
