package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
)

// NewKeyCommand creates the key subcommand group for working with canonical
// coordinate keys.
func NewKeyCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Compute and parse canonical coordinate keys",
	}

	cmd.AddCommand(newKeyComputeCommand(root), newKeyParseCommand(root))
	return cmd
}

type keyComputeOptions struct {
	X float64
	Y float64
	Z float64
}

func newKeyComputeCommand(root *RootOptions) *cobra.Command {
	opts := &keyComputeOptions{}

	cmd := &cobra.Command{
		Use:     "compute",
		Short:   "Compute the canonical key for a coordinate",
		Example: `  quadrant key compute --x 0.5 --y 0.25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := designspace.Coordinate{X: opts.X}
			if cmd.Flags().Changed("y") {
				coord.Y = designspace.Float(opts.Y)
			}
			if cmd.Flags().Changed("z") {
				coord.Z = designspace.Float(opts.Z)
			}
			fmt.Fprintln(cmd.OutOrStdout(), designspace.KeyOf(coord))
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.X, "x", 0, "x component")
	f.Float64Var(&opts.Y, "y", 0, "y component")
	f.Float64Var(&opts.Z, "z", 0, "z component")

	return cmd
}

func newKeyParseCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "parse <key>",
		Short:   "Parse a canonical key back into its components",
		Example: `  quadrant key parse "0.50000|0.25000|-"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := designspace.ParseKey(args[0])
			if err != nil {
				return err
			}

			if root.OutputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), coord)
			}
			rows := [][]string{{
				formatOptional(designspace.Float(coord.X)),
				formatOptional(coord.Y),
				formatOptional(coord.Z),
			}}
			fmt.Fprint(cmd.OutOrStdout(), formatTable([]string{"X", "Y", "Z"}, rows))
			return nil
		},
	}
	return cmd
}
