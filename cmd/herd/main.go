package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildRoot assembles the CLI. Every subcommand is a verb over the lifecycle
// manager or the batch spawner.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	spawnFlags := &SpawnFlags{}
	multiFlags := &SpawnFlags{}
	stopFlags := &StopFlags{}

	c := &command{flags: globalFlags}

	root := &cobra.Command{
		Use:           "herd",
		Short:         "Spawn and supervise detached AI coding agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&globalFlags.BaseDir, "base-dir", "",
		"state directory (default $HERD_HOME or ~/.herd)")
	root.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "",
		"diagnostic log level: debug, info, warn, error")

	root.AddCommand(
		createSpawnCommand(c, spawnFlags),
		createSpawnMultiCommand(c, multiFlags),
		createListCommand(c),
		createAttachCommand(c),
		createStopCommand(c, stopFlags),
		createCleanCommand(c),
		createLogsCommand(c),
	)
	return root
}
