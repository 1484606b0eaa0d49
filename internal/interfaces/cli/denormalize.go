package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
)

type denormalizeOptions struct {
	EntriesFile string
	Profile     string
	X           float64
	Y           float64
	Z           float64
}

// NewDenormalizeCommand creates the denormalize subcommand.  It maps a
// rank-space point back to approximate raw scores against a catalog file.
func NewDenormalizeCommand(root *RootOptions) *cobra.Command {
	opts := &denormalizeOptions{}

	cmd := &cobra.Command{
		Use:     "denormalize",
		Short:   "Map a rank-space point back to approximate raw scores",
		Example: `  quadrant denormalize --entries catalog.json --x 0.5 --y 0.25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDenormalize(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.EntriesFile, "entries", "", "path to the entry catalog JSON file (required)")
	f.StringVar(&opts.Profile, "profile", "A", "axis profile (A pairs x/y, B pairs x/z)")
	f.Float64Var(&opts.X, "x", 0, "rank-space x component")
	f.Float64Var(&opts.Y, "y", 0, "rank-space y component (profile A)")
	f.Float64Var(&opts.Z, "z", 0, "rank-space z component (profile B)")
	_ = cmd.MarkFlagRequired("entries")

	return cmd
}

func runDenormalize(cmd *cobra.Command, root *RootOptions, opts *denormalizeOptions) error {
	profile, err := designspace.ParseAxisProfile(opts.Profile)
	if err != nil {
		return err
	}

	entries, err := loadEntries(opts.EntriesFile)
	if err != nil {
		return err
	}

	policy := designspace.DefaultPolicy()
	projection, err := designspace.DeriveProjection(1, entries, profile, policy)
	if err != nil {
		return err
	}

	point := designspace.NormalizedPoint{X: opts.X}
	if profile == designspace.ProfileB {
		if cmd.Flags().Changed("z") {
			point.Z = designspace.Float(opts.Z)
		}
	} else if cmd.Flags().Changed("y") {
		point.Y = designspace.Float(opts.Y)
	}

	coord := designspace.NewDenormalizer().Denormalize(point, projection.RankMap, profile)

	if root.OutputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), coord)
	}

	rows := [][]string{{
		strconv.FormatFloat(coord.X, 'f', 5, 64),
		formatOptional(coord.Y),
		formatOptional(coord.Z),
	}}
	fmt.Fprint(cmd.OutOrStdout(), formatTable([]string{"X", "Y", "Z"}, rows))
	return nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 5, 64)
}
