package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the table renderers.
var Styles = struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style
	High   lipgloss.Style
}{
	Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1),
	Cell:   lipgloss.NewStyle().Padding(0, 1),
	Border: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	High:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1),
}
