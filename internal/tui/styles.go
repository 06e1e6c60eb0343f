package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors - amber-on-dark watchtower aesthetic.
var (
	colorAmber    = lipgloss.Color("#FFB000")
	colorAmberDim = lipgloss.Color("#A06800")
	colorGreen    = lipgloss.Color("#00FF66")
	colorCyan     = lipgloss.Color("#00CCFF")
	colorRed      = lipgloss.Color("#FF3366")
	colorMuted    = lipgloss.Color("#666677")
	colorBg       = lipgloss.Color("#0A0A0F")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAmber)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Background(colorBg).
			Padding(0, 1)

	stateConnectedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	stateWaitingStyle = lipgloss.NewStyle().
				Foreground(colorAmberDim)

	stateStoppedStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAmberDim)

	logChatStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	logAIStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	logErrorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	logMutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)
