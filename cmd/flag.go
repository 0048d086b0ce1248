package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/encontro/venues-cli/internal/store"
	"github.com/encontro/venues-cli/internal/venue"
)

var (
	flagPlaceID  string
	flagReporter string
	flagType     string
	flagNote     string
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "File a community flag against a venue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		err = env.Cache.RecordCommunityFlag(ctx, flagPlaceID, flagReporter, venue.FlagType(flagType), flagNote)
		if eris.Is(err, store.ErrAlreadyReported) {
			fmt.Println("already reported by this user")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Println("flag recorded")
		return nil
	},
}

func init() {
	flagCmd.Flags().StringVar(&flagPlaceID, "place-id", "", "provider place ID (required)")
	flagCmd.Flags().StringVar(&flagReporter, "reporter", "", "reporting user ID (required)")
	flagCmd.Flags().StringVar(&flagType, "type", string(venue.FlagNotNightlife), "flag type: not_nightlife, closed, wrong_category")
	flagCmd.Flags().StringVar(&flagNote, "note", "", "optional free-text note")
	_ = flagCmd.MarkFlagRequired("place-id")
	_ = flagCmd.MarkFlagRequired("reporter")
	rootCmd.AddCommand(flagCmd)
}
