package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
)

// recommendOptions holds the recommend command flags.
type recommendOptions struct {
	EntriesFile string
	Profile     string
	X           float64
	Y           float64
	Z           float64
	Raw         bool
	MaxRank     int
}

// NewRecommendCommand creates the recommend subcommand.  It loads a catalog
// file, derives a projection and prints the tie-grouped neighbor ranking
// around the query point.
func NewRecommendCommand(root *RootOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the nearest catalog entries around a query point",
		Example: `  quadrant recommend --entries catalog.json --x 0.5 --y 0.5
  quadrant recommend --entries catalog.json --profile B --raw --x 42 --z 0.7 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.EntriesFile, "entries", "", "path to the entry catalog JSON file (required)")
	f.StringVar(&opts.Profile, "profile", "A", "axis profile (A pairs x/y, B pairs x/z)")
	f.Float64Var(&opts.X, "x", 0, "query x component")
	f.Float64Var(&opts.Y, "y", 0, "query y component (profile A)")
	f.Float64Var(&opts.Z, "z", 0, "query z component (profile B)")
	f.BoolVar(&opts.Raw, "raw", false, "treat the query as raw scores and normalize it first")
	f.IntVar(&opts.MaxRank, "max-rank", designspace.DefaultMaxRank, "maximum rank group to return")
	_ = cmd.MarkFlagRequired("entries")

	return cmd
}

func runRecommend(cmd *cobra.Command, root *RootOptions, opts *recommendOptions) error {
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

	coord := queryCoordinate(cmd, opts, profile)
	query := designspace.NormalizedPoint{X: coord.X, Y: coord.Y, Z: coord.Z}
	if opts.Raw {
		query = designspace.NewNormalizer(policy).NormalizeQuery(coord, projection.RankMap, profile)
	}

	groups := designspace.NewRanker(policy).Recommend(query, projection.Entries, profile, opts.MaxRank)

	if root.OutputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), groups)
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		for _, e := range g.Entries {
			rows = append(rows, []string{
				strconv.Itoa(g.Rank),
				strconv.FormatFloat(g.Distance, 'f', 5, 64),
				strconv.FormatInt(e.ID, 10),
				e.Name,
				strconv.FormatFloat(e.Norm.X, 'f', 5, 64),
			})
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), formatTable(
		[]string{"RANK", "DISTANCE", "ID", "NAME", "NORM_X"}, rows))
	return nil
}

// queryCoordinate builds the query from the axis flags.  Only the active
// profile's secondary axis is carried, and only when the flag was set.
func queryCoordinate(cmd *cobra.Command, opts *recommendOptions, profile designspace.AxisProfile) designspace.Coordinate {
	coord := designspace.Coordinate{X: opts.X}
	if profile == designspace.ProfileB {
		if cmd.Flags().Changed("z") {
			coord.Z = designspace.Float(opts.Z)
		}
		return coord
	}
	if cmd.Flags().Changed("y") {
		coord.Y = designspace.Float(opts.Y)
	}
	return coord
}

// loadEntries reads an entry catalog from a JSON file.  Both a bare array and
// an {"entries": [...]} wrapper are accepted.
func loadEntries(path string) ([]designspace.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []designspace.Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var wrapper struct {
		Entries []designspace.Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return wrapper.Entries, nil
}
