package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gramctl-io/gramctl/internal/models"
)

var postCaption string

type uploadDone struct {
	confirm models.PostConfirmation
	err     error
}

// uploadModel shows a spinner while the upload runs, then quits with
// the outcome. Pressing q or Ctrl-C cancels the upload.
type uploadModel struct {
	spinner  spinner.Model
	filePath string
	cancel   context.CancelFunc
	done     *uploadDone
	quitting bool
}

func newUploadModel(filePath string, cancel context.CancelFunc) uploadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))

	return uploadModel{
		spinner:  s,
		filePath: filePath,
		cancel:   cancel,
	}
}

func (m uploadModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m uploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case uploadDone:
		m.done = &msg
		return m, tea.Quit
	}

	return m, nil
}

func (m uploadModel) View() string {
	if m.done != nil || m.quitting {
		return ""
	}
	return fmt.Sprintf("\n %s Uploading %s...\n\n", m.spinner.View(), m.filePath)
}

var postCmd = &cobra.Command{
	Use:   "post <photo>",
	Short: "Publish a photo",
	Long:  "Uploads a .jpg, .jpeg or .png photo and publishes it with an optional caption.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		model := newUploadModel(args[0], cancel)
		program := tea.NewProgram(model)

		go func() {
			confirm, err := manager.Post(ctx, args[0], postCaption)
			program.Send(uploadDone{confirm: confirm, err: err})
		}()

		final, err := program.Run()
		if err != nil {
			return fmt.Errorf("upload display failed: %w", err)
		}

		result := final.(uploadModel)
		if result.quitting {
			return fmt.Errorf("upload cancelled")
		}
		if result.done == nil {
			return fmt.Errorf("upload did not complete")
		}
		if result.done.err != nil {
			return result.done.err
		}

		fmt.Println(successStyle.Render("Photo published!"))
		fmt.Println("Media ID:", result.done.confirm.MediaID)
		if len(result.done.confirm.Code) > 0 {
			fmt.Println("Link:", infoStyle.Render("https://www.instagram.com/p/"+result.done.confirm.Code+"/"))
		}
		return nil
	},
}

func init() {
	postCmd.Flags().StringVarP(&postCaption, "caption", "c", "", "Caption for the post")

	rootCmd.AddCommand(postCmd)
}
