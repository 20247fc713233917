package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-intake/internal/indicator"
	"health-intake/internal/intake"
	"health-intake/internal/platform/logger"
	"health-intake/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(14)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#DC2626"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DC2626"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#16A34A"))
)

func hex(c report.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

// tierBox draws the advice in the blood-pressure tier's colours.
func tierBox(t indicator.Tier, text string) string {
	band := report.BandFor(t)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(hex(band.Border)).
		Background(hex(band.Fill)).
		Foreground(hex(band.Text)).
		Padding(0, 1).
		Render(text)
}

func stepHeader(s intake.Step) string {
	return titleStyle.Render(fmt.Sprintf("STEP %d/%d  %s", int(s), intake.StepCount, s.Title()))
}

// renderReview lays the confirmation page out for the terminal.
func renderReview(r intake.PatientRecord) string {
	var b strings.Builder
	b.WriteString(stepHeader(intake.StepReview))
	b.WriteString("\n")
	for _, l := range r.Review() {
		value := l.Value
		if l.Highlight {
			value = alertStyle.Render(value)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(l.Label), value))
		b.WriteString("\n")
	}
	if r.BPComment != "" {
		b.WriteString(tierBox(r.BloodPressureTier(), r.BPComment))
		b.WriteString("\n")
	}
	return b.String()
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(level, "console", "intake-cli")
}
