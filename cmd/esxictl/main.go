// Package main is the entrypoint for the esxictl CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eugenetaranov/esxictl/internal/config"
	"github.com/eugenetaranov/esxictl/internal/connector"
	"github.com/eugenetaranov/esxictl/internal/connector/local"
	"github.com/eugenetaranov/esxictl/internal/connector/ssh"
	"github.com/eugenetaranov/esxictl/internal/esxi"
	"github.com/eugenetaranov/esxictl/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagConfig   string
	flagTarget   string
	flagLocal    bool
	noColor      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		out := output.New(os.Stderr)
		out.SetColor(!noColor)
		out.Error("%v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "esxictl",
	Short: "esxictl - Control an ESXi host over SSH",
	Long: `esxictl controls an ESXi host through its SSH shell: host maintenance
mode, host shutdown/reboot, and per-vm power operations.

Ensure SSH is enabled on the host. Unless configured otherwise, SSH is
disabled again after the host reboots.

Connection settings come either from flags (--host, --user, --password)
or from a hosts file (--config hosts.yaml --target <alias>). With --local
the commands run in a local shell instead, for use on the host itself.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagHost, "host", "H", "", "ESXi host to connect to")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", config.DefaultPort, "SSH port")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "root", "SSH username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "SSH password (or set ESXICTL_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Hosts file (yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagTarget, "target", "t", "", "Host alias from the hosts file")
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "Run esxcli/vim-cmd in a local shell (on the host itself)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(vmCmd)
}

// resolveSettings merges the hosts file and flags into one connection config.
func resolveSettings() (config.HostConfig, error) {
	if flagConfig != "" {
		cfg, err := config.ParseFile(flagConfig)
		if err != nil {
			return config.HostConfig{}, err
		}
		if flagTarget == "" {
			return config.HostConfig{}, fmt.Errorf("--target is required with --config")
		}
		return cfg.Lookup(flagTarget)
	}

	if flagHost == "" {
		return config.HostConfig{}, fmt.Errorf("--host is required (or use --config/--target)")
	}

	password := flagPassword
	if password == "" {
		password = os.Getenv("ESXICTL_PASSWORD")
	}

	return config.HostConfig{
		Host:     flagHost,
		Port:     flagPort,
		User:     flagUser,
		Password: password,
	}, nil
}

// withHost connects to the target host, runs fn, and disconnects. The
// context is cancelled on SIGINT/SIGTERM.
func withHost(fn func(ctx context.Context, h *esxi.Host, out *output.Output) error) error {
	var name string
	var conn connector.Connector

	if flagLocal {
		name = "local"
		conn = local.New()
	} else {
		hc, err := resolveSettings()
		if err != nil {
			return err
		}
		name = hc.Host
		conn = ssh.New(hc.Host, hc.User, hc.Password, ssh.WithPort(hc.Port))
	}

	out := output.New(os.Stdout)
	out.SetColor(!noColor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, disconnecting...")
		cancel()
	}()

	h := esxi.NewHost(name, conn)

	if err := h.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", name, err)
	}
	defer h.Close()

	return fn(ctx, h, out)
}

// resolveVM locates a vm by numeric id or, failing that, by name.
func resolveVM(ctx context.Context, h *esxi.Host, arg string) (*esxi.VM, error) {
	var vm *esxi.VM
	var err error

	if id, convErr := strconv.Atoi(arg); convErr == nil {
		vm, err = h.FindVMByID(ctx, id)
	} else {
		vm, err = h.FindVMByName(ctx, arg)
	}
	if err != nil {
		return nil, err
	}
	if vm == nil {
		return nil, fmt.Errorf("vm not found: %s", arg)
	}

	return vm, nil
}

// hostCmd groups host-level operations.
var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host-level operations",
}

func init() {
	hostCmd.AddCommand(maintenanceCmd)
	hostCmd.AddCommand(hostShutdownCmd)
}

var maintenanceCmd = &cobra.Command{
	Use:       "maintenance get|enter|exit",
	Short:     "Query or change the host's maintenance mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"get", "enter", "exit"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, h *esxi.Host, out *output.Output) error {
			switch args[0] {
			case "get":
				state, err := h.MaintenanceMode(ctx)
				if err != nil {
					return err
				}
				out.MaintenanceMode(h.Name(), state)
				return nil
			case "enter":
				if err := h.EnterMaintenanceMode(ctx); err != nil {
					return err
				}
				out.Success("maintenance mode enabled on %s", h.Name())
				return nil
			case "exit":
				if err := h.ExitMaintenanceMode(ctx); err != nil {
					return err
				}
				out.Success("maintenance mode disabled on %s", h.Name())
				return nil
			default:
				return fmt.Errorf("unknown maintenance action: %s", args[0])
			}
		})
	},
}

var hostShutdownCmd = &cobra.Command{
	Use:   "shutdown poweroff|reboot",
	Short: "Power off or reboot the host",
	Long: `Power off or reboot the ESXi host.

The host is not required to be in maintenance mode; enter it first if
guest workloads should be evacuated.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{esxi.ShutdownPoweroff, esxi.ShutdownReboot},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, h *esxi.Host, out *output.Output) error {
			if err := h.Shutdown(ctx, args[0]); err != nil {
				return err
			}
			out.Success("%s issued on %s", args[0], h.Name())
			return nil
		})
	},
}

// vmCmd groups per-vm operations.
var vmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Per-vm power operations",
}

var listRunning bool

func init() {
	vmListCmd.Flags().BoolVar(&listRunning, "running", false, "Only list running vms")

	vmCmd.AddCommand(vmListCmd)
	vmCmd.AddCommand(vmStateCmd)

	for _, op := range powerOps {
		vmCmd.AddCommand(newPowerCmd(op))
	}
}

var vmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vms registered on the host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, h *esxi.Host, out *output.Output) error {
			var vms []*esxi.VM
			var err error

			if listRunning {
				vms, err = h.RunningVMs(ctx)
			} else {
				vms, err = h.VMs(ctx)
			}
			if err != nil {
				return err
			}

			states := make(map[int]esxi.PowerState, len(vms))
			for _, vm := range vms {
				state, err := vm.PowerState(ctx)
				if err != nil {
					return err
				}
				states[vm.ID] = state
			}

			out.VMTable(vms, states)
			return nil
		})
	},
}

var vmStateCmd = &cobra.Command{
	Use:   "state <vm>",
	Short: "Query a vm's power state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, h *esxi.Host, out *output.Output) error {
			vm, err := resolveVM(ctx, h, args[0])
			if err != nil {
				return err
			}

			state, err := vm.PowerState(ctx)
			if err != nil {
				return err
			}

			out.PowerState(vm, state)
			return nil
		})
	},
}

// powerOp describes one vm power subcommand.
type powerOp struct {
	use   string
	short string
	run   func(ctx context.Context, vm *esxi.VM) error
}

var powerOps = []powerOp{
	{"on", "Power a vm on", func(ctx context.Context, vm *esxi.VM) error { return vm.PowerOn(ctx) }},
	{"off", "Power a vm off hard", func(ctx context.Context, vm *esxi.VM) error { return vm.PowerOff(ctx) }},
	{"shutdown", "Ask the guest to shut down", func(ctx context.Context, vm *esxi.VM) error { return vm.Shutdown(ctx) }},
	{"suspend", "Suspend a vm", func(ctx context.Context, vm *esxi.VM) error { return vm.Suspend(ctx) }},
	{"hibernate", "Hibernate a vm", func(ctx context.Context, vm *esxi.VM) error { return vm.Hibernate(ctx) }},
	{"reboot", "Ask the guest to reboot", func(ctx context.Context, vm *esxi.VM) error { return vm.Reboot(ctx) }},
	{"reset", "Reset a vm hard", func(ctx context.Context, vm *esxi.VM) error { return vm.Reset(ctx) }},
}

func newPowerCmd(op powerOp) *cobra.Command {
	return &cobra.Command{
		Use:   op.use + " <vm>",
		Short: op.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(func(ctx context.Context, h *esxi.Host, out *output.Output) error {
				vm, err := resolveVM(ctx, h, args[0])
				if err != nil {
					return err
				}

				if err := op.run(ctx, vm); err != nil {
					return err
				}

				out.Success("%s: %s", op.use, vm)
				return nil
			})
		},
	}
}
