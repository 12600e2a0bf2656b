package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gramctl-io/gramctl/internal/sessions"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "List the most recent posts from your timeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		posts, err := manager.Feed(ctx, feedLimit)
		if err != nil {
			return err
		}

		if len(posts) == 0 {
			fmt.Println(infoStyle.Render("Your feed is empty."))
			return nil
		}

		fmt.Println(renderFeedTable(posts))
		return nil
	},
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "l", sessions.DefaultFeedLimit,
		fmt.Sprintf("Maximum posts (capped at %d)", sessions.MaxFeedLimit))

	rootCmd.AddCommand(feedCmd)
}
