package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	var showUUID bool

	cmd := &cobra.Command{
		Use:   "tree <scene.yaml>",
		Short: "Print the scene hierarchy with world positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := buildScene(rootOpts, args[0])
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			for _, r := range scene.Roots() {
				printTree(cmd.OutOrStdout(), r, showUUID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showUUID, "uuid", false, "include node uuids")

	return cmd
}

func printTree(w io.Writer, root *arbor.Node, showUUID bool) {
	base := root.Depth()
	root.Walk(func(n *arbor.Node) {
		p := n.WorldPosition()
		indent := strings.Repeat("  ", n.Depth()-base)
		name := n.Name
		if name == "" {
			name = "<" + n.Type + ">"
		}
		if showUUID {
			fmt.Fprintf(w, "%s%s [%s] (%g, %g, %g)\n", indent, name, n.UUID(), p[0], p[1], p[2])
			return
		}
		fmt.Fprintf(w, "%s%s (%g, %g, %g)\n", indent, name, p[0], p[1], p[2])
	})
}
