package report

import (
	"fmt"
	"io"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
)

const (
	sheetMetrics   = "Metrics"
	sheetDetails   = "Details"
	sheetPortfolio = "Portfolio"
)

// WriteWorkbook writes the run as an XLSX workbook with one sheet per view.
func WriteWorkbook(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetMetrics); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	for _, name := range []string{sheetDetails, sheetPortfolio} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeMetricsSheet(f, d, bold); err != nil {
		return err
	}

	if err := writeDetailsSheet(f, d.Result.Records(), bold); err != nil {
		return err
	}

	if err := writePortfolioSheet(f, d); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}

	return nil
}

func setHeader(f *excelize.File, sheet string, header []string, style int) error {
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}

	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}

	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeMetricsSheet(f *excelize.File, d Data, style int) error {
	if err := setHeader(f, sheetMetrics, metricsHeader, style); err != nil {
		return err
	}

	for i, m := range d.Result.Metrics() {
		values := []any{
			m.ClientID,
			m.TotalLoans,
			m.ClosedLoans,
			m.ClosedRatio.InexactFloat64(),
			m.Expired30Plus.InexactFloat64(),
		}

		if err := setRow(f, sheetMetrics, i+2, values); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheetMetrics, "A", "E", 24)
}

func writeDetailsSheet(f *excelize.File, records []deal.Record, style int) error {
	if err := setHeader(f, sheetDetails, detailHeader(), style); err != nil {
		return err
	}

	values := make([]any, len(detailColumns))

	for i, r := range records {
		for j, c := range detailColumns {
			values[j] = cellValue(c.value(r))
		}

		if err := setRow(f, sheetDetails, i+2, values); err != nil {
			return err
		}
	}

	return nil
}

func writePortfolioSheet(f *excelize.File, d Data) error {
	s := d.Summary

	rows := [][]any{
		{"run_id", d.Run.ID.String()},
		{"generated_at", d.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"total_clients", s.Clients},
		{"total_deals", s.Deals},
		{"deals_processed", d.Result.DealsProcessed()},
		{"total_records", s.Records},
		{"failed_documents", s.FailedDocuments},
		{"average_loans_per_client", s.AvgLoansPerClient.InexactFloat64()},
		{"overall_closure_rate", s.MeanClosedRatio.InexactFloat64()},
		{"total_expired_debt", s.TotalExpired30Plus.InexactFloat64()},
		{"clients_with_expired_debt", s.ClientsWithExpired},
	}

	if s.FirstPeriod != nil {
		rows = append(rows,
			[]any{"earliest_period", s.FirstPeriod.String()},
			[]any{"latest_period", s.LastPeriod.String()},
		)
	}

	for i, r := range s.TopRisk {
		rows = append(rows, []any{fmt.Sprintf("top_risk_%d", i+1), r.ClientID, r.Amount.InexactFloat64(), r.Share.InexactFloat64()})
	}

	for i, r := range rows {
		if err := setRow(f, sheetPortfolio, i+1, r); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheetPortfolio, "A", "A", 28)
}

// cellValue keeps numbers numeric in the sheet; dates are ISO strings.
func cellValue(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case civil.Date:
		return t.String()
	}

	return v
}
