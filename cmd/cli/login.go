package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/gramctl-io/gramctl/internal/sessions"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Instagram",
	Long:  "Authenticates with Instagram and persists the session for later commands. Missing credentials are prompted for.",
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := promptCredentials(); err != nil {
		return err
	}

	fmt.Println("Logging in as", headerStyle.Render("@"+loginUsername), "...")

	err := manager.Login(ctx, loginUsername, loginPassword)

	var challenge *sessions.ChallengeError
	switch {
	case err == nil:
		fmt.Println()
		fmt.Println(successStyle.Render("Login successful!"))
		fmt.Println("Session saved. Other gramctl commands will reuse it.")
		return nil

	case errors.As(err, &challenge):
		fmt.Println()
		fmt.Println(warningStyle.Render("Verification required"))
		fmt.Println(challenge.Guidance)
		return fmt.Errorf("login requires verification")

	default:
		return err
	}
}

// promptCredentials asks for whichever of the two credentials the flags
// did not supply.
func promptCredentials() error {
	var fields []huh.Field

	if len(loginUsername) == 0 {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&loginUsername).
			Validate(func(s string) error {
				if len(s) == 0 {
					return fmt.Errorf("username is required")
				}
				return nil
			}))
	}

	if len(loginPassword) == 0 {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&loginPassword).
			Validate(func(s string) error {
				if len(s) == 0 {
					return fmt.Errorf("password is required")
				}
				return nil
			}))
	}

	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return fmt.Errorf("login prompt cancelled: %w", err)
	}

	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Instagram username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Instagram password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
}
