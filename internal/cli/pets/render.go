package pets

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/pet"
)

var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorSuccess = lipgloss.Color("#66bb6a")
	colorWarning = lipgloss.Color("#fff59d")
	colorError   = lipgloss.Color("#ef5350")
	colorMuted   = lipgloss.Color("#888888")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(10)
)

// isTerminal reports whether w is a terminal that can show colors
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var faces = map[constants.Mood]string{
	constants.MoodHappy:    "(^‿^)",
	constants.MoodNeutral:  "(•_•)",
	constants.MoodSad:      "(╥_╥)",
	constants.MoodSick:     "(×_×)",
	constants.MoodSleeping: "(-_-) zZ",
}

// Face returns the ASCII face for a mood
func Face(m constants.Mood) string {
	if f, ok := faces[m]; ok {
		return f
	}
	return faces[constants.MoodNeutral]
}

func healthColor(health int) lipgloss.Color {
	switch {
	case health >= pet.HappyHealth:
		return colorSuccess
	case health >= pet.SadHealth:
		return colorWarning
	default:
		return colorError
	}
}

// bar draws a fixed-width meter for a 0-100 value
func bar(value, width int) string {
	value = max(0, min(value, 100))
	filled := value * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderCard formats the pet status. Styled output adds a border and colors.
func RenderCard(p models.Pet, styled bool) string {
	progress := pet.LevelProgress(p.TotalXP)
	hat := p.Hat
	if hat == "" {
		hat = "none"
	} else if item, ok := pet.Lookup(hat); ok {
		hat = item.Name
	}

	rows := [][2]string{
		{"Mood", fmt.Sprintf("%s %s", Face(p.Mood), p.Mood)},
		{"Health", fmt.Sprintf("%s %d/%d", bar(p.Health, 20), p.Health, pet.MaxHealth)},
		{"Level", fmt.Sprintf("%d  %s %d%%", p.Level, bar(progress, 20), progress)},
		{"XP", fmt.Sprintf("%d to spend, %d lifetime", p.XP, p.TotalXP)},
		{"Hat", hat},
		{"Items", fmt.Sprintf("%d owned", len(p.Inventory))},
	}

	title := p.Name
	if p.Color != "" {
		title = fmt.Sprintf("%s the %s pet", p.Name, p.Color)
	}

	if !styled {
		var b strings.Builder
		b.WriteString(title + "\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %-8s %s\n", r[0]+":", r[1])
		}
		return b.String()
	}

	lines := []string{titleStyle.Render(title), ""}
	for _, r := range rows {
		value := r[1]
		if r[0] == "Health" {
			value = lipgloss.NewStyle().Foreground(healthColor(p.Health)).Render(value)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r[0]), value))
	}
	return cardStyle.Render(strings.Join(lines, "\n")) + "\n"
}
