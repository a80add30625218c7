package cfg

import (
	"fmt"

	"batchtube/internal/domain/keys"
	"batchtube/internal/files"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initDupesCmd builds the duplicate-finder command for download folders.
func initDupesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupes [dir]",
		Short: "Find duplicate or similarly named videos in a download folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			fs := afero.NewOsFs()

			groups, err := files.FindDuplicatesByHash(fs, root)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No exact duplicates found")
			}
			for digest, paths := range groups {
				fmt.Printf("Duplicate content (%s):\n", digest[:12])
				for _, p := range paths {
					fmt.Printf("  %s\n", p)
				}
			}

			if !viper.GetBool(keys.SimilarNames) {
				return nil
			}
			pairs, err := files.FindSimilarNames(fs, root, viper.GetFloat64(keys.SimilarThreshold))
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				fmt.Println("No similarly named videos found")
			}
			for _, pair := range pairs {
				fmt.Printf("Similar names (%.0f%%):\n  %s\n  %s\n", pair.Score*100, pair.A, pair.B)
			}
			return nil
		},
	}
	cmd.Flags().Bool(keys.SimilarNames, false, "Also report similarly named files")
	cmd.Flags().Float64(keys.SimilarThreshold, 0.8, "Name similarity threshold (0.0-1.0)")
	if err := viper.BindPFlag(keys.SimilarNames, cmd.Flags().Lookup(keys.SimilarNames)); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag(keys.SimilarThreshold, cmd.Flags().Lookup(keys.SimilarThreshold)); err != nil {
		panic(err)
	}
	return cmd
}
