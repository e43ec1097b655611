package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/herdctl/herd"
	"github.com/herdctl/herd/internal/history/sqlite"
	"github.com/herdctl/herd/internal/logger"
)

type command struct {
	flags *GlobalFlags
}

// manager builds the lifecycle manager for one command invocation. The
// returned cleanup flushes the diagnostic log and closes the history sink.
func (c *command) manager() (*herd.Manager, func(), error) {
	cfg, err := herd.LoadConfig(c.flags.BaseDir)
	if err != nil {
		return nil, nil, err
	}
	if c.flags.LogLevel != "" {
		cfg.Log.Level = c.flags.LogLevel
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	log, logCloser := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		FilePath: cfg.DiagLogPath(),
		Stderr:   os.Stderr,
	})
	slog.SetDefault(log)

	mgr := herd.New(cfg)
	mgr.SetLogger(log)

	closers := []func(){func() { _ = logCloser.Close() }}
	if cfg.History.DSN != "" {
		sink, err := sqlite.New(cfg.History.DSN)
		if err != nil {
			log.Warn("history sink unavailable", "dsn", cfg.History.DSN, "error", err)
		} else {
			mgr.SetHistorySink(sink)
			closers = append(closers, func() { _ = sink.Close() })
		}
	}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return mgr, cleanup, nil
}

func (c *command) Spawn(name, task string, f SpawnFlags) error {
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := mgr.Spawn(name, task, herd.SpawnOptions{Type: f.Type, WorkDir: f.WorkDir})
	if err != nil {
		return err
	}
	fmt.Printf("spawned %s (pid %d)\n", rec.Name, rec.PID)
	fmt.Printf("  log: %s\n", rec.LogPath)
	return nil
}

func (c *command) SpawnMulti(countArg, prefix, task string, f SpawnFlags) error {
	count, err := strconv.Atoi(countArg)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", herd.ErrInvalidCount, countArg)
	}
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := mgr.SpawnMany(count, prefix, task, herd.SpawnOptions{Type: f.Type, WorkDir: f.WorkDir})
	if err != nil {
		return err
	}
	for _, item := range res.Items {
		if item.Err != nil {
			fmt.Printf("  %s: %v\n", item.Name, item.Err)
		} else {
			fmt.Printf("  %s: ok\n", item.Name)
		}
	}
	fmt.Printf("spawned %d of %d agents", res.Succeeded, count)
	if res.Failed > 0 {
		fmt.Printf(" (%d failed)", res.Failed)
	}
	fmt.Println()
	// Partial per-item failure is communicated by the summary, not the exit
	// status.
	return nil
}

func (c *command) List() error {
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()

	recs, err := mgr.List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no agents registered")
		return nil
	}
	fmt.Print(renderAgentTable(recs))
	return nil
}

func (c *command) Stop(name string, all bool) error {
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()

	if all {
		res, err := mgr.StopAll()
		if err != nil {
			return err
		}
		for _, n := range res.Stopped {
			fmt.Printf("stopped %s\n", n)
		}
		names := make([]string, 0, len(res.Failed))
		for n := range res.Failed {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("could not stop %s: %v\n", n, res.Failed[n])
		}
		fmt.Printf("%d stopped, %d failed\n", len(res.Stopped), len(res.Failed))
		return nil
	}

	res, err := mgr.Stop(name)
	if err != nil {
		return err
	}
	if res.AlreadyStopped {
		fmt.Printf("%s was already stopped\n", name)
	} else {
		fmt.Printf("stopped %s (pid %d)\n", name, res.PID)
	}
	return nil
}

func (c *command) Clean() error {
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := mgr.Clean()
	if err != nil {
		return err
	}
	for _, n := range res.Removed {
		fmt.Printf("removed %s\n", n)
	}
	fmt.Printf("cleaned %d agents\n", len(res.Removed))
	return nil
}

func (c *command) Logs(name string) error {
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()
	return mgr.Logs(name, os.Stdout)
}

func (c *command) Attach(name string) error {
	mgr, cleanup, err := c.manager()
	if err != nil {
		return err
	}
	defer cleanup()

	// Interrupt ends the viewing session only; agent and registry are
	// untouched.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return mgr.Attach(ctx, name, os.Stdout)
}

func createSpawnCommand(c *command, f *SpawnFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spawn <name> [task]",
		Short: "Spawn a detached agent and record it in the registry",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := ""
			if len(args) > 1 {
				task = args[1]
			}
			return c.Spawn(args[0], task, *f)
		},
	}
	cmd.Flags().StringVar(&f.Type, "type", "", `agent type (default "claude")`)
	cmd.Flags().StringVar(&f.WorkDir, "workdir", "", "working directory for the agent")
	return cmd
}

func createSpawnMultiCommand(c *command, f *SpawnFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spawn-multi <count> <prefix> [task]",
		Short: "Spawn several agents with {n}/{N} task templating",
		Long: `Spawn <count> agents named <prefix>-1 .. <prefix>-<count>. The literal
tokens {n} and {N} in the task are replaced with each agent's 1-based index.
Failed items are reported in the summary; the rest of the batch proceeds.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := ""
			if len(args) > 2 {
				task = args[2]
			}
			return c.SpawnMulti(args[0], args[1], task, *f)
		},
	}
	cmd.Flags().StringVar(&f.Type, "type", "", `agent type (default "claude")`)
	cmd.Flags().StringVar(&f.WorkDir, "workdir", "", "working directory for the agents")
	return cmd
}

func createListCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents with re-validated liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List()
		},
	}
}

func createAttachCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <name>",
		Short: "Follow an agent's output (Ctrl-C detaches, agent keeps running)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Attach(args[0])
		},
	}
}

func createStopCommand(c *command, f *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <name> | stop --all",
		Short: "Terminate an agent (or every running agent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !f.All && len(args) == 0 {
				_ = cmd.Usage()
				return fmt.Errorf("requires an agent name or --all")
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return c.Stop(name, f.All)
		},
	}
	cmd.Flags().BoolVar(&f.All, "all", false, "stop every running agent")
	return cmd
}

func createCleanCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove stopped agents and their prompt files (logs are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Clean()
		},
	}
}

func createLogsCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <name>",
		Short: "Dump an agent's log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Logs(args[0])
		},
	}
}
