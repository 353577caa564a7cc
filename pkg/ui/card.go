package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"igapi/pkg/models"
	"igapi/pkg/textutil"
)

// ProfileCard renders a profile as a bordered card with compact counts
func ProfileCard(p *models.Profile) string {
	title := "@" + p.Username
	if p.IsVerified {
		title += " ✓"
	}

	lines := []string{titleStyle.Render(title)}
	if p.FullName != "" {
		lines = append(lines, p.FullName)
	}
	if p.Biography != "" {
		lines = append(lines, "", dimStyle.Render(textutil.TruncateText(p.Biography, 200, "...")))
	}

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("posts", p.PostsCount),
		stat("followers", p.Followers),
		stat("following", p.Followees),
	)
	lines = append(lines, "", stats)

	if p.ExternalURL != nil && *p.ExternalURL != "" {
		lines = append(lines, "", labelStyle.Render("link ")+valueStyle.Render(*p.ExternalURL))
	}
	if p.IsPrivate {
		lines = append(lines, "", warningStyle.Render("private account"))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func stat(label string, n int64) string {
	return lipgloss.NewStyle().PaddingRight(3).Render(
		valueStyle.Render(textutil.FormatNumber(n)) + " " + dimStyle.Render(label),
	)
}

// SessionRow is one stored session as shown by `auth list`
type SessionRow struct {
	Username  string
	SessionID string
	Modified  time.Time
}

// SessionTable renders stored sessions, one per line
func SessionTable(rows []SessionRow) string {
	if len(rows) == 0 {
		return dimStyle.Render("no stored sessions")
	}

	width := len("username")
	for _, r := range rows {
		if len(r.Username) > width {
			width = len(r.Username)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n",
		labelStyle.Render(pad("username", width)),
		labelStyle.Render(pad("session", 11)),
		labelStyle.Render("updated"))
	for _, r := range rows {
		updated := "-"
		if !r.Modified.IsZero() {
			updated = r.Modified.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", pad(r.Username, width), dimStyle.Render(pad(r.SessionID, 11)), updated)
	}
	return strings.TrimRight(b.String(), "\n")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
