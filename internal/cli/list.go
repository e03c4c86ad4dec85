package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor/internal/snapstore"
)

// StoreOptions holds flags for commands that read the snapshot store.
type StoreOptions struct {
	DBPath string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to list snapshots: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no snapshots")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%d nodes\t%s\n",
					e.ID, e.Label, e.RootName, e.RootUUID, e.NodeCount, e.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
			}
			store, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.Load(cmd.Context(), id)
			if errors.Is(err, snapstore.ErrNotFound) {
				cmd.SilenceUsage = true
				return fmt.Errorf("snapshot %d not found", id)
			}
			if err != nil {
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to load snapshot: %w", err)
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func openStore(cmd *cobra.Command, opts *StoreOptions) (*snapstore.Store, error) {
	store, err := snapstore.Open(opts.DBPath)
	if err != nil {
		cmd.SilenceUsage = true
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}
