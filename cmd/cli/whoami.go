package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile of the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		profile, err := manager.Whoami(ctx)
		if err != nil {
			return err
		}

		fmt.Println(renderProfileCard(profile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
