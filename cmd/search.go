package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchLat    float64
	searchLon    float64
	searchRadius int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find and rank open nightlife venues near a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ranked, err := env.Pipeline.Run(ctx, searchLat, searchLon, searchRadius)
		if err != nil {
			return err
		}

		zap.L().Info("search complete", zap.Int("venues", len(ranked)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	},
}

func init() {
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "latitude (required)")
	searchCmd.Flags().Float64Var(&searchLon, "lon", 0, "longitude (required)")
	searchCmd.Flags().IntVar(&searchRadius, "radius", 2000, "starting search radius in meters")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(searchCmd)
}
