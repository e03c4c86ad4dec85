// Package cli implements the arbor command-line tool: it loads YAML scene
// descriptions, propagates them and prints or stores the resulting documents.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	StableIDs bool
}

// NewRootCommand creates the root command for the arbor CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "arbor",
		Short: "arbor - scene graph transform tool",
		Long:  "Build scene graphs from YAML descriptions, propagate their transforms and inspect or store the snapshots.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			arbor.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.StableIDs, "stable-ids", false, "derive node uuids from creation order instead of randomly")

	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// newScene builds the scene a command works on.
func newScene(opts *RootOptions) *arbor.Scene {
	var sc *arbor.Scene
	if opts.StableIDs {
		sc = arbor.NewScene(arbor.WithIDSource(StableSequence()))
	} else {
		sc = arbor.NewScene()
	}
	sc.SetDebugMode(opts.Verbose)
	return sc
}
