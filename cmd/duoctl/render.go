package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vytor/duodash/internal/models"
)

const progressBarWidth = 20

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58CC02"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).Width(16)
	valueStyle    = lipgloss.NewStyle().Bold(true)
	unlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC800"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAFAF"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#58CC02")).Padding(0, 1)
)

func renderReport(r statsReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Achievements"))
	b.WriteString("\n")

	current := fmt.Sprintf("%d", r.Stats.CurrentStreak)
	if r.Stats.CurrentStreakCapped {
		current += "+"
	}
	rows := [][2]string{
		{"Current streak", current + " days"},
		{"Longest streak", fmt.Sprintf("%d days", r.Stats.MaxStreak)},
		{"Best day", fmt.Sprintf("%d XP", r.Stats.MaxDailyXP)},
		{"Active days", fmt.Sprintf("%d", r.Stats.TotalDays)},
		{"Total XP", fmt.Sprintf("%d", r.Stats.TotalXP)},
	}
	var summary []string
	for _, row := range rows {
		summary = append(summary, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), valueStyle.Render(row[1])))
	}
	b.WriteString(boxStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("Badges %d/%d", r.Unlocked, len(r.Badges))))
	b.WriteString("\n")
	for _, badge := range sortedBadges(r.Badges) {
		b.WriteString(renderBadge(badge))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBadge(badge models.Badge) string {
	if badge.Unlocked {
		line := fmt.Sprintf("★ %-28s %s", badge.Name, badge.UnlockedDate)
		return unlockedStyle.Render(line)
	}
	line := fmt.Sprintf("☆ %-28s %s %d/%d %s", badge.Name, progressBar(badge.Progress), badge.Current, badge.Threshold, badge.Unit)
	return lockedStyle.Render(line)
}

func progressBar(progress float64) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * progressBarWidth)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled) + "]"
}

// sortedBadges lists unlocked badges first, keeping catalog order within each group.
func sortedBadges(badges []models.Badge) []models.Badge {
	out := append([]models.Badge(nil), badges...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Unlocked && !out[j].Unlocked
	})
	return out
}
