package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m model) View() string {
	var b strings.Builder
	pad := strings.Repeat(" ", marginCols)

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("%s%s %s  %s  %s  %s\n\n",
		pad, statusIcon, cyan.Render("rigidbox"), dim.Render(m.profile), statusText,
		dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	for _, line := range strings.Split(m.term.String(), "\n") {
		b.WriteString(pad + line + "\n")
	}

	b.WriteString(m.viewStats(pad))
	b.WriteString("\n" + dim.Render(pad+"s sphere  b box  r reset  ± strength  [] bounce  click push  space pause  q quit") + "\n")
	return b.String()
}

func (m model) viewStats(pad string) string {
	var b strings.Builder

	sleeping := 0
	for _, o := range m.frame.Objects {
		if o.Sleeping {
			sleeping++
		}
	}
	hovered := dimmer.Render("none")
	if m.frame.Hovered != 0 {
		hovered = red.Render(fmt.Sprintf("#%d", m.frame.Hovered))
	}
	speedCap := "off"
	if c := m.sb.SpeedCap(); c > 0 {
		speedCap = fmt.Sprintf("%.1f", c)
	}

	b.WriteString(fmt.Sprintf("\n%s%s %s  %s %s  %s %s  %s %s\n", pad,
		dim.Render("objects"), white.Render(fmt.Sprint(len(m.frame.Objects))),
		dim.Render("asleep"), white.Render(fmt.Sprint(sleeping)),
		dim.Render("culled"), white.Render(fmt.Sprint(m.sb.Culled())),
		dim.Render("hover"), hovered))
	b.WriteString(fmt.Sprintf("%s%s %s  %s %s  %s %s  %s %s\n", pad,
		dim.Render("strength"), white.Render(fmt.Sprintf("%.0f", m.sb.Strength())),
		dim.Render("bounce"), white.Render(fmt.Sprintf("%.2f", m.sb.Bounce())),
		dim.Render("cap"), white.Render(speedCap),
		dim.Render("t"), white.Render(fmt.Sprintf("%.1fs", m.frame.Elapsed))))

	b.WriteString(pad + dim.Render("hit ") + meter(m.soundLevel, 24) + "\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(48),
			asciigraph.Precision(0),
			asciigraph.Caption("objects"),
		)
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString(pad + cyan.Render(line) + "\n")
		}
	}
	if m.status != "" {
		b.WriteString(pad + dim.Render(m.status) + "\n")
	}
	return b.String()
}

func meter(level float64, width int) string {
	filled := int(level * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return yellow.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", width-filled))
}
