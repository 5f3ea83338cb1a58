package view

import "github.com/charmbracelet/lipgloss"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	gain      = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	loss      = lipgloss.AdaptiveColor{Light: "#D94F70", Dark: "#F25D94"}

	titleStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	emptyCardStyle = cardStyle.
			Faint(true).
			BorderStyle(lipgloss.HiddenBorder())

	symbolStyle = lipgloss.NewStyle().Bold(true)

	gainStyle = lipgloss.NewStyle().Foreground(gain)
	lossStyle = lipgloss.NewStyle().Foreground(loss)
	dimStyle  = lipgloss.NewStyle().Foreground(subtle)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(highlight).
			Padding(0, 2).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(subtle).
				Padding(0, 2)

	selectedMark   = gainStyle.Render("[x]")
	unselectedMark = dimStyle.Render("[ ]")
)
