package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/civicsnap/civic-cli/internal/scorer"
	"github.com/civicsnap/civic-cli/pkg/openstates"
)

var (
	legislatorsZip   string
	legislatorsState string
)

var legislatorsCmd = &cobra.Command{
	Use:   "legislators",
	Short: "Fetch ranked legislators by ZIP or state",
	Long:  "Looks up legislators either by the coordinates of a ZIP code (district match) or by state jurisdiction, ranked senators-first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (legislatorsZip == "") == (legislatorsState == "") {
			return eris.New("exactly one of --zip or --state is required")
		}

		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if legislatorsZip != "" {
			loc, err := env.service.Geocode(cmd.Context(), legislatorsZip)
			if err != nil {
				return err
			}
			reps, err := env.service.Legislators(cmd.Context(), loc.Lat, loc.Lng)
			if err != nil {
				return err
			}
			return printJSON(reps)
		}

		jurisdiction, err := openstates.JurisdictionID(legislatorsState)
		if err != nil {
			return err
		}
		resp, err := env.legislature.PeopleByJurisdiction(cmd.Context(), jurisdiction, 0, 0)
		if err != nil {
			return err
		}
		return printJSON(scorer.Rank(resp.Results))
	},
}

func init() {
	legislatorsCmd.Flags().StringVar(&legislatorsZip, "zip", "", "ZIP code to locate legislators for")
	legislatorsCmd.Flags().StringVar(&legislatorsState, "state", "", "state name or abbreviation")
	rootCmd.AddCommand(legislatorsCmd)
}
