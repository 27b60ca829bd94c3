package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/civicsnap/civic-cli/internal/scorer"
	"github.com/civicsnap/civic-cli/pkg/openstates"
)

var (
	billsSession      string
	billsUpdatedSince string
	billsPage         int
	billsPerPage      int
	billsSort         string
)

var billsCmd = &cobra.Command{
	Use:   "bills <state>",
	Short: "Fetch and categorize bills for a state",
	Long:  "Fetches bills for a state (name or abbreviation) from OpenStates, derives categories and impact tiers, and prints them sorted by impact.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		jurisdiction, err := openstates.JurisdictionID(args[0])
		if err != nil {
			return err
		}

		resp, err := env.legislature.SearchBills(cmd.Context(), openstates.BillQuery{
			Jurisdiction: jurisdiction,
			Session:      billsSession,
			UpdatedSince: billsUpdatedSince,
			Page:         billsPage,
			PerPage:      billsPerPage,
			Sort:         billsSort,
		})
		if err != nil {
			return err
		}

		issues := env.categorizer.BuildIssues(resp.Results, time.Now())

		return printJSON(struct {
			Jurisdiction string                `json:"jurisdiction"`
			Issues       []scorer.Issue        `json:"issues"`
			Pagination   openstates.Pagination `json:"pagination"`
		}{jurisdiction, issues, resp.Pagination})
	},
}

func init() {
	billsCmd.Flags().StringVar(&billsSession, "session", "", "legislative session filter")
	billsCmd.Flags().StringVar(&billsUpdatedSince, "updated-since", "", "only bills updated since this date (YYYY-MM-DD)")
	billsCmd.Flags().IntVar(&billsPage, "page", 1, "result page")
	billsCmd.Flags().IntVar(&billsPerPage, "per-page", 0, "results per page (default from config)")
	billsCmd.Flags().StringVar(&billsSort, "sort", "", "sort order (default from config)")
	rootCmd.AddCommand(billsCmd)
}
