package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/internal/snapstore"
)

// SnapshotOptions holds flags for the snapshot command.
type SnapshotOptions struct {
	Indent bool
	DBPath string
	Label  string
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot <scene.yaml>",
		Short: "Build a scene and print its JSON documents",
		Long: `Build the scene described by a YAML file, propagate every root and
print the resulting document as JSON. A single root prints as an object,
several roots as an array. With --db each root is also stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := buildScene(rootOpts, args[0])
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			docs := scene.Snapshot()

			if opts.DBPath != "" {
				if err := saveDocuments(cmd, opts, docs); err != nil {
					cmd.SilenceUsage = true
					return err
				}
			}

			var v any = docs
			if len(docs) == 1 {
				v = docs[0]
			}
			var data []byte
			if opts.Indent {
				data, err = json.MarshalIndent(v, "", "  ")
			} else {
				data, err = json.Marshal(v)
			}
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Indent, "indent", true, "indent the JSON output")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "store the snapshot in this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for stored snapshots (defaults to the file name)")

	return cmd
}

func buildScene(rootOpts *RootOptions, path string) (*arbor.Scene, error) {
	spec, err := LoadSceneSpec(path)
	if err != nil {
		return nil, err
	}
	scene := newScene(rootOpts)
	if _, err := spec.Build(scene); err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	scene.ForceUpdate()
	return scene, nil
}

func saveDocuments(cmd *cobra.Command, opts *SnapshotOptions, docs []arbor.Document) error {
	store, err := snapstore.Open(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	label := opts.Label
	if label == "" {
		label = cmd.Flags().Arg(0)
	}
	for _, doc := range docs {
		id, err := store.Save(cmd.Context(), label, doc)
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		arbor.Logger().Info("snapshot saved", "id", id, "root", doc.UUID, "nodes", doc.Count())
	}
	return nil
}
