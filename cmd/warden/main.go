package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/warden"
	"github.com/bft-labs/warden/internal/cliconfig"
	"github.com/bft-labs/warden/pkg/log"
)

const longHelp = `warden supervises groups of processes from a single daemon per
application name and controls that daemon from the command line.

Run "warden daemon" under your service manager, then use status, start,
stop, restart and unmonitor from any shell on the same host. A target is
either a group name, which addresses every process in the group, or a
process name.`

var exampleUsage = strings.TrimSpace(`
  warden --name web daemon --config /etc/warden/web.toml
  warden --name web status
  warden --name web status --table
  warden --name web restart api
`)

// exitUnavailable is returned when no daemon answers on the command channel.
const exitUnavailable = 2

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli holds the state shared by every subcommand.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  log.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "warden",
		Short:         "Supervise groups of processes from a single daemon",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &c.cfg, c.cfgPath); err != nil {
				return err
			}
			c.logger = log.NewZerologAdapter(os.Stderr, c.cfg.LogFormat, c.cfg.LogLevel)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file, TOML or YAML (default: $HOME/.warden/config.toml)")
	flags.StringVar(&c.cfg.Name, "name", c.cfg.Name, "application name")
	flags.StringVar(&c.cfg.BaseDir, "base-dir", c.cfg.BaseDir, "directory holding pids/ and socks/")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&c.cfg.LogFormat, "log-format", c.cfg.LogFormat, "log format (auto, console, json)")
	flags.DurationVar(&c.cfg.DialTimeout, "dial-timeout", c.cfg.DialTimeout, "time allowed to connect to the daemon")
	flags.DurationVar(&c.cfg.ResponseTimeout, "timeout", c.cfg.ResponseTimeout, "time allowed for the daemon to answer")

	root.AddCommand(
		newDaemonCmd(c),
		newStatusCmd(c),
		newControlCmd(c, warden.VerbStart, "Start processes"),
		newControlCmd(c, warden.VerbStop, "Stop processes"),
		newControlCmd(c, warden.VerbRestart, "Restart processes"),
		newControlCmd(c, warden.VerbUnmonitor, "Stop supervising processes without stopping them"),
	)
	return root
}

// The daemon renames the process from the main goroutine, and thread names
// only show up in ps when set on the main thread.
func init() { runtime.LockOSThread() }

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), logger: log.NewNoopLogger()}
	if err := newRootCmd(c).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "warden:", err)
		if errors.Is(err, warden.ErrChannelUnavailable) {
			os.Exit(exitUnavailable)
		}
		os.Exit(1)
	}
}
