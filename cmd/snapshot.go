package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <zip>",
	Short: "Aggregate the full civic snapshot for a ZIP code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.service.Snapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		zap.L().Info("snapshot assembled",
			zap.String("zip", snap.Zip),
			zap.Bool("issues_ok", snap.Issues.OK),
			zap.Bool("legislators_ok", snap.Legislators.OK),
		)

		return printJSON(snap)
	},
}

func init() { rootCmd.AddCommand(snapshotCmd) }
