package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	classifyPlaceID string
	classifyName    string
	classifyTags    []string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single venue, using the cache when fresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entry, err := env.Cache.GetOrRefresh(ctx, classifyPlaceID, classifyTags, classifyName)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyPlaceID, "place-id", "", "provider place ID (required)")
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "venue name")
	classifyCmd.Flags().StringSliceVar(&classifyTags, "tags", nil, "category tags from search")
	_ = classifyCmd.MarkFlagRequired("place-id")
	rootCmd.AddCommand(classifyCmd)
}
