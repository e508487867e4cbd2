package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).PaddingBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(28)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func amount(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// RenderConsole prints the client table and the portfolio summary.
func RenderConsole(w io.Writer, d Data) error {
	rows := make([][]string, 0, len(d.Result.Clients))

	for _, m := range d.Result.Metrics() {
		rows = append(rows, []string{
			m.ClientID,
			strconv.Itoa(m.TotalLoans),
			strconv.Itoa(m.ClosedLoans),
			m.ClosedRatio.StringFixed(metrics.RatioPlaces),
			amount(m.Expired30Plus),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("CLIENT", "LOANS", "CLOSED", "RATIO", "EXPIRED 30+").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			if col > 0 {
				return cellStyle.Align(lipgloss.Right)
			}

			return cellStyle
		})

	s := d.Summary

	lines := []string{
		titleStyle.Render("Credit risk report"),
		t.String(),
		"",
		line("Clients", humanize.Comma(int64(s.Clients))),
		line("Deals", humanize.Comma(int64(s.Deals))),
		line("Deal elements read", humanize.Comma(int64(d.Result.DealsProcessed()))),
		line("Records", humanize.Comma(int64(s.Records))),
		line("Average loans per client", s.AvgLoansPerClient.StringFixed(deal.MoneyPlaces)),
		line("Overall closure rate", s.MeanClosedRatio.StringFixed(metrics.RatioPlaces)),
		line("Total expired 30+", amount(s.TotalExpired30Plus)),
		line("Clients with expired debt", humanize.Comma(int64(s.ClientsWithExpired))),
	}

	if s.FirstPeriod != nil {
		lines = append(lines, line("Periods", s.FirstPeriod.String()+" .. "+s.LastPeriod.String()))
	}

	for i, r := range s.TopRisk {
		share := r.Share.Mul(decimal.NewFromInt(100)).StringFixed(1)
		lines = append(lines, line(fmt.Sprintf("Top risk #%d", i+1), fmt.Sprintf("%s  %s (%s%%)", r.ClientID, amount(r.Amount), share)))
	}

	for _, f := range d.Result.Failures {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("FAILED %s: %v", f.ClientID, f.Err)))
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("writing console report: %w", err)
		}
	}

	return nil
}

func line(label, value string) string {
	return labelStyle.Render(label) + value
}
