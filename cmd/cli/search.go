package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gramctl-io/gramctl/internal/sessions"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for accounts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		users, err := manager.Search(ctx, args[0], searchLimit)
		if err != nil {
			return err
		}

		if len(users) == 0 {
			fmt.Println(infoStyle.Render(fmt.Sprintf("No accounts found for %q", args[0])))
			return nil
		}

		fmt.Println(renderUserTable(users))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", sessions.DefaultSearchLimit,
		fmt.Sprintf("Maximum results (capped at %d)", sessions.MaxSearchLimit))

	rootCmd.AddCommand(searchCmd)
}
