package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/warden"
	"github.com/bft-labs/warden/pkg/log"
)

func newDaemonCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the supervising server in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := warden.NewEnv(c.logger, warden.ShutdownSignals...)
			defer env.Close()

			opts := options(c.cfg, env)
			opts.SetTitle = true
			opts.OnStateChange = func(previous, current warden.State, reason string) {
				switch current {
				case warden.StateRunning:
					c.logger.Info("daemon ready", log.String("name", c.cfg.Name))
				case warden.StateCrashed:
					c.logger.Error("daemon crashed",
						log.String("name", c.cfg.Name),
						log.String("from", previous.String()),
						log.String("reason", reason),
					)
				}
			}
			a, err := warden.New(c.cfg.Name, opts)
			if err != nil {
				return err
			}

			for _, pc := range c.cfg.Processes {
				sig, err := pc.Signal()
				if err != nil {
					return err
				}
				p, err := warden.NewProcess(warden.ProcessConfig{
					Name:        pc.Name,
					Command:     pc.Command,
					Dir:         pc.Dir,
					Env:         pc.Env,
					StopSignal:  sig,
					StopTimeout: pc.StopTimeout,
					FlapCount:   pc.FlapCount,
					FlapWindow:  pc.FlapWindow,
				}, c.logger.With(log.String("group", pc.Group)))
				if err != nil {
					return err
				}
				if err := a.AddProcess(p, pc.Group); err != nil {
					return err
				}
			}

			c.logger.Info("starting daemon",
				log.String("name", c.cfg.Name),
				log.String("base_dir", c.cfg.BaseDir),
				log.Int("processes", len(c.cfg.Processes)),
			)
			return a.StartServer(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&c.cfg.TickInterval, "tick", c.cfg.TickInterval, "supervision tick period")
	flags.DurationVar(&c.cfg.KillWait, "kill-wait", c.cfg.KillWait, "time to wait for a previous daemon to exit")
	flags.DurationVar(&c.cfg.ShutdownTimeout, "shutdown-timeout", c.cfg.ShutdownTimeout, "maximum graceful shutdown time")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	var asTable bool
	cmd := &cobra.Command{
		Use:   "status [target]",
		Short: "Show process states",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newClient(c)
			if err != nil {
				return err
			}
			out, err := a.Status(cmd.Context(), target(args))
			if err != nil {
				return err
			}
			if asTable {
				out = renderStatusTable(parseStatus(out)) + "\n"
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "render the report as a table")
	return cmd
}

func newControlCmd(c *cli, verb warden.Verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(verb) + " [target]",
		Short: short,
		Long:  short + ". Without a target every process is addressed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newClient(c)
			if err != nil {
				return err
			}
			out, err := a.Control(cmd.Context(), verb, target(args))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newClient(c *cli) (*warden.Application, error) {
	return warden.New(c.cfg.Name, options(c.cfg, warden.NewEnv(c.logger)))
}

func target(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
