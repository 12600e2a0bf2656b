package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show follower, following and post counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		stats, err := manager.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Println(renderStatsCard(manager.Username(), stats))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
