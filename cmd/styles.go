package main

import "github.com/charmbracelet/lipgloss"

var styles = NewPalette("#7D56F4", "#04B575", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	count lipgloss.Style
	label lipgloss.Style
}

func NewPalette(t, c, l string) *Palette {
	return &Palette{
		title: NewBold(t),
		count: NewBold(c).Width(10).Align(lipgloss.Right),
		label: NewStyle(l).Width(12),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}
