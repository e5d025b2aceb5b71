package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/pkg/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate <flow.yaml>",
	Short: "Check a flow file for consistency",
	Long:  `Decodes the flow and reports unknown keys, missing or duplicate ids, dangling jumps and malformed conditions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := script.Load(args[0])
		if err != nil {
			return err
		}
		if err := def.Validate(); err != nil {
			out := cmd.ErrOrStderr()
			for _, v := range script.ValidationErrors(err) {
				fmt.Fprintf(out, "  - %s\n", v)
			}
			return fmt.Errorf("validation failed: %w", script.ErrInvalidFlow)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Flow %q is valid (%d steps)\n", def.Name, len(def.Steps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
