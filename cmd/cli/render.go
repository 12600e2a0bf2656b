package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gramctl-io/gramctl/internal/common"
	"github.com/gramctl-io/gramctl/internal/models"
	"github.com/gramctl-io/gramctl/internal/sessions"
)

// captionWidth caps the caption column of table output.
const captionWidth = 50

// userMessage maps a surfaced error to the actionable line shown to the
// user. Raw error chains never reach the terminal.
func userMessage(err error) string {
	var challenge *sessions.ChallengeError

	switch {
	case errors.Is(err, sessions.ErrNotLoggedIn):
		return "You are not logged in. Run 'gramctl login' first."
	case errors.Is(err, sessions.ErrSessionExpired):
		return "Session expired, please log in again."
	case errors.Is(err, sessions.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.As(err, &challenge):
		return challenge.Guidance
	}

	switch models.ClassificationOf(err) {
	case models.ClassRateLimited:
		return "Instagram is rate limiting this account. Wait a few minutes and try again."
	case models.ClassTransient:
		return fmt.Sprintf("Network trouble reaching Instagram: %v", err)
	case models.ClassNotFound:
		return fmt.Sprintf("Not found: %v", err)
	default:
		return err.Error()
	}
}

// renderProfileCard renders a bordered profile summary.
func renderProfileCard(profile models.Profile) string {
	var body strings.Builder

	name := "@" + profile.Username
	if profile.Verified {
		name += " ✔"
	}
	body.WriteString(headerStyle.Render(name))
	body.WriteString("\n")

	if len(profile.FullName) > 0 {
		body.WriteString(profile.FullName + "\n")
	}
	if len(profile.Biography) > 0 {
		body.WriteString(subtleStyle.Render(profile.Biography) + "\n")
	}
	body.WriteString("\n")

	row := func(label, value string) {
		body.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Posts", common.FormatCount(profile.Posts))
	row("Followers", common.FormatCount(profile.Followers))
	row("Following", common.FormatCount(profile.Following))

	if profile.Private {
		row("Visibility", warningStyle.Render("private"))
	}
	if len(profile.ExternalURL) > 0 {
		row("Link", infoStyle.Render(profile.ExternalURL))
	}

	return cardStyle.Render(strings.TrimRight(body.String(), "\n"))
}

// renderStatsCard renders the headline counters.
func renderStatsCard(username string, stats models.AccountStats) string {
	var body strings.Builder

	body.WriteString(headerStyle.Render("@"+username) + "\n\n")

	row := func(label string, value int) {
		body.WriteString(labelStyle.Render(label) + common.FormatCount(value) + "\n")
	}
	row("Posts", stats.Posts)
	row("Followers", stats.Followers)
	row("Following", stats.Following)

	return cardStyle.Render(strings.TrimRight(body.String(), "\n"))
}

// renderUserTable renders search results as an aligned table.
func renderUserTable(users []models.UserSummary) string {
	var out strings.Builder

	out.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-24s %-24s %12s", "USERNAME", "NAME", "FOLLOWERS")))
	out.WriteString("\n")

	for _, user := range users {
		username := "@" + user.Username
		if user.Verified {
			username += " ✔"
		}
		out.WriteString(fmt.Sprintf("%-24s %-24s %12s\n",
			common.Truncate(username, 24),
			common.Truncate(user.FullName, 24),
			common.FormatCount(user.Followers)))
	}

	return strings.TrimRight(out.String(), "\n")
}

// renderFeedTable renders feed entries as an aligned table.
func renderFeedTable(posts []models.PostSummary) string {
	var out strings.Builder

	out.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-3s %-18s %-*s %8s %8s",
		"#", "USERNAME", captionWidth, "CAPTION", "LIKES", "COMMENTS")))
	out.WriteString("\n")

	for i, post := range posts {
		caption := common.Truncate(common.FirstLine(post.Caption), captionWidth)
		out.WriteString(fmt.Sprintf("%-3d %-18s %-*s %8s %8s\n",
			i+1,
			common.Truncate("@"+post.Username, 18),
			captionWidth, caption,
			common.FormatCount(post.Likes),
			common.FormatCount(post.Comments)))
	}

	return strings.TrimRight(out.String(), "\n")
}
