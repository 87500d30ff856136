package tui

import "github.com/charmbracelet/lipgloss"

var (
	estiloTitulo = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("61")).
			Padding(0, 1)

	estiloPestana = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("245"))

	estiloPestanaActiva = lipgloss.NewStyle().
				Padding(0, 1).
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62"))

	estiloFila = lipgloss.NewStyle().
			Padding(0, 1)

	estiloFilaActiva = lipgloss.NewStyle().
				Padding(0, 1).
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	estiloEtiqueta = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	estiloErrorCampo = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	estiloAvisoExito = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("28")).
				Padding(0, 1)

	estiloAvisoError = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("124")).
				Padding(0, 1)

	estiloAyuda = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	estiloPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)
