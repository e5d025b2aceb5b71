package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/script"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <flow.yaml>",
	Short: "Export the flow graph visualization",
	Long:  `Compiles the flow and outputs a Mermaid diagram (graph TD) representing its navigation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadFlow(args[0])
		if err != nil {
			return err
		}
		diagram, err := flowDiagram(def)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), diagram)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func flowDiagram(def *script.Definition) (string, error) {
	root, err := script.Compile(def)
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(root.Graph().Reachable(root.ID()), nil), nil
}
