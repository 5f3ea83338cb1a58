package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#626262"})

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D94F70", Dark: "#F25D94"}).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2)
)

func sectionTitle(s string) string {
	return titleStyle.Render(s)
}

func hintLine(s string) string {
	return hintStyle.Render(s)
}

func statusLine(status, notice string) string {
	if notice != "" {
		return noticeStyle.Render(notice)
	}
	return hintStyle.Render(status)
}
