package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"finmodel/pkg/core/pipeline"
	"finmodel/pkg/core/store"
	"finmodel/pkg/core/valuation"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(20)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

func money(v float64) string { return store.FormatCell(v, store.DefaultPlaces) }

func line(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderResult draws the headline numbers of one run.
func renderResult(res *pipeline.Result) string {
	lines := []string{
		line("Run", res.RunID.String()),
		line("Years", fmt.Sprintf("%d", len(res.IncomeStatement))),
		line("Enterprise value", money(res.EnterpriseValue)),
		line("Discount rate", fmt.Sprintf("%s (%s)", store.FormatCell(res.DiscountRate, 4), res.RateSource)),
	}
	if n := len(res.BalanceSheet); n > 0 {
		last := res.BalanceSheet[n-1]
		lines = append(lines,
			line(fmt.Sprintf("Total assets %d", last.Year), money(last.TotalAssets)),
			line(fmt.Sprintf("Cash %d", last.Year), money(last.Cash)),
		)
	}
	if res.Balance.AllBalanced {
		lines = append(lines, line("Balance checks", okStyle.Render("✓ all years pass")))
	} else {
		lines = append(lines, line("Balance checks", errorStyle.Render(fmt.Sprintf("✗ %d violation(s)", len(res.Balance.Violations)))))
	}
	for _, w := range res.Warnings {
		lines = append(lines, warnStyle.Render("⚠ "+w.String()))
	}
	if res.BenchmarkError != "" {
		lines = append(lines, warnStyle.Render("⚠ benchmark: "+res.BenchmarkError))
	}
	return titleStyle.Render(res.Name) + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}

// renderOutcomes draws one line per batch scenario.
func renderOutcomes(outcomes []pipeline.BatchOutcome) string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			lines = append(lines, line(o.Name, errorStyle.Render("✗ "+o.Err.Error())))
			continue
		}
		lines = append(lines, line(o.Name, okStyle.Render("✓ ")+"EV "+money(o.Result.EnterpriseValue)))
	}
	return titleStyle.Render("Batch") + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}

// renderForecast draws the flat forecaster's output.
func renderForecast(res *valuation.FlatForecastResult) string {
	lines := make([]string, 0, len(res.Rows)+4)
	for _, r := range res.Rows {
		lines = append(lines, line(fmt.Sprintf("%d", r.Year), fmt.Sprintf("FCF %s  PV %s", money(r.FCF), money(r.DiscountedFCF))))
	}
	lines = append(lines,
		line("PV explicit", money(res.PVExplicit)),
		line("Terminal value", money(res.TerminalValue)),
		line("PV terminal", money(res.PVTerminal)),
		line("Enterprise value", okStyle.Render(money(res.EnterpriseValue))),
	)
	return titleStyle.Render("Flat forecast") + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}

// renderTable draws a stored table as aligned text.
func renderTable(t *store.Table, rows [][]string) string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) && len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}
	var b strings.Builder
	for i, c := range t.Columns {
		b.WriteString(lipgloss.NewStyle().Bold(true).Width(widths[i] + 2).Render(c))
	}
	for _, row := range rows {
		b.WriteString("\n")
		for i, c := range row {
			if i < len(widths) {
				b.WriteString(lipgloss.NewStyle().Width(widths[i] + 2).Render(c))
			}
		}
	}
	return titleStyle.Render(t.Name) + "\n" + b.String()
}
