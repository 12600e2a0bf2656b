package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sessionCmd inspects the persisted session envelope without touching
// the network.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Stored Session"))
		fmt.Println()

		info, ok := manager.SessionInfo()
		if !ok {
			fmt.Println(infoStyle.Render("No session stored. Run 'gramctl login' to create one."))
			return nil
		}

		fmt.Println("  " + activeStyle.Render("PRESENT"))
		fmt.Printf("  Username:       @%s\n", info.Username)
		fmt.Printf("  Created:        %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Last validated: %s\n", info.ValidatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
