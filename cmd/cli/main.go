package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gramctl-io/gramctl/internal/common"
	"github.com/gramctl-io/gramctl/internal/config"
	"github.com/gramctl-io/gramctl/internal/instagram"
	"github.com/gramctl-io/gramctl/internal/sessions"
)

// Global configuration instance and the session manager every command
// talks through.
var cfg *config.Config
var manager *sessions.Manager

// loadConfig loads the configuration based on the --config flag or the
// default search locations.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// check if verbose flag is set
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	clientOpts := []instagram.ClientOption{
		instagram.WithTimeout(cfg.API.Timeout),
	}
	if len(cfg.API.UserAgent) > 0 {
		clientOpts = append(clientOpts, instagram.WithUserAgent(cfg.API.UserAgent))
	}

	manager = sessions.NewManager(
		sessions.NewStore(cfg.Session.Path),
		instagram.NewClient(clientOpts...),
		sessions.WithPolicy(cfg.RetryPolicy()),
		sessions.WithThrottle(cfg.NewThrottle()),
	)

	return nil
}

// commandContext returns a context cancelled by Ctrl-C so retry and
// throttle waits unwind immediately on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:   "gramctl",
	Short: "gramctl - Instagram from your terminal",
	Long: `gramctl is a terminal client for Instagram.

Log in once and your session is reused across invocations. Look up
profiles, search accounts, browse your feed and publish photos without
leaving the shell.`,
	PersistentPreRunE: preRunConfigE,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.Version = common.GetVersion()

	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ~/.config/gramctl/config.yaml)")
}

// Execute runs the CLI. Surfaced errors have already been rendered as
// actionable messages; the caller only decides the exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(userMessage(err)))
	}
	return err
}
