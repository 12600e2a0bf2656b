package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var logoutYes bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Long:  "Discards the in-memory session and deletes the persisted session file. Logging out twice is harmless.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !logoutYes {
			var confirmed bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Log out?").
						Description("The stored session will be deleted and the next command will require a fresh login").
						Value(&confirmed),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("logout prompt cancelled: %w", err)
			}
			if !confirmed {
				fmt.Println("Logout cancelled.")
				return nil
			}
		}

		if err := manager.Logout(); err != nil {
			return err
		}

		fmt.Println(successStyle.Render("Logged out."))
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(logoutCmd)
}
