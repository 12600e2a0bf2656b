package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "Look up a profile by username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		profile, err := manager.Profile(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Println(renderProfileCard(profile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
}
