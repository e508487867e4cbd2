package report

import (
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

var metricsHeader = []string{
	"client_id",
	"total_loans_count",
	"closed_loans_count",
	"closed_loans_ratio",
	"expired_30_plus_amount",
}

// column is one field of the detailed export. value returns nil for a
// missing field, otherwise a string, int, decimal.Decimal or civil.Date.
type column struct {
	header string
	value  func(r deal.Record) any
}

var detailColumns = []column{
	{"client_id", func(r deal.Record) any { return r.ClientID }},
	{"client_file", func(r deal.Record) any { return r.Source }},
	{"deal_id", func(r deal.Record) any { return r.DealID }},
	{"transaction_amount", func(r deal.Record) any { return optDecimal(r.Terms.Amount) }},
	{"transaction_type", func(r deal.Record) any { return optString(r.Terms.TransactionType) }},
	{"currency", func(r deal.Record) any { return optString(r.Terms.Currency) }},
	{"collateral_type", func(r deal.Record) any { return optString(r.Terms.CollateralType) }},
	{"subject_role", func(r deal.Record) any { return optString(r.Terms.SubjectRole) }},
	{"collateral_value", func(r deal.Record) any { return optDecimal(r.Terms.CollateralValue) }},
	{"redemption_plan", func(r deal.Record) any { return optString(r.Terms.RedemptionPlan) }},
	{"provider", func(r deal.Record) any { return optString(r.Terms.Provider) }},
	{"period_year", periodInt(func(p *deal.Period) *int { return p.Year })},
	{"period_month", periodInt(func(p *deal.Period) *int { return p.Month })},
	{"start_date", periodDate(func(p *deal.Period) *civil.Date { return p.StartDate })},
	{"planned_end_date", periodDate(func(p *deal.Period) *civil.Date { return p.PlannedEndDate })},
	{"actual_end_date", periodDate(func(p *deal.Period) *civil.Date { return p.ActualEndDate })},
	{"deal_status", func(r deal.Record) any {
		if r.Period == nil || r.Period.Status == nil {
			return nil
		}

		return int(*r.Period.Status)
	}},
	{"current_limit", periodDecimal(func(p *deal.Period) decimal.NullDecimal { return p.CurrentLimit })},
	{"planned_payment", periodDecimal(func(p *deal.Period) decimal.NullDecimal { return p.PlannedPayment })},
	{"current_debt", periodDecimal(func(p *deal.Period) decimal.NullDecimal { return p.CurrentDebt })},
	{"overdue_debt", periodDecimal(func(p *deal.Period) decimal.NullDecimal { return p.OverdueDebt })},
	{"days_overdue", periodInt(func(p *deal.Period) *int { return p.DaysOverdue })},
	{"payment_made", periodInt(func(p *deal.Period) *int { return p.PaymentMade })},
	{"arrears_present", periodInt(func(p *deal.Period) *int { return p.ArrearsPresent })},
	{"calculation_date", periodDate(func(p *deal.Period) *civil.Date { return p.CalculationDate })},
}

func detailHeader() []string {
	h := make([]string, len(detailColumns))
	for i, c := range detailColumns {
		h[i] = c.header
	}

	return h
}

func optString(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

func optDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}

	return d.Decimal
}

func periodInt(get func(*deal.Period) *int) func(deal.Record) any {
	return func(r deal.Record) any {
		if r.Period == nil {
			return nil
		}

		if v := get(r.Period); v != nil {
			return *v
		}

		return nil
	}
}

func periodDate(get func(*deal.Period) *civil.Date) func(deal.Record) any {
	return func(r deal.Record) any {
		if r.Period == nil {
			return nil
		}

		if v := get(r.Period); v != nil {
			return *v
		}

		return nil
	}
}

func periodDecimal(get func(*deal.Period) decimal.NullDecimal) func(deal.Record) any {
	return func(r deal.Record) any {
		if r.Period == nil {
			return nil
		}

		return optDecimal(get(r.Period))
	}
}

// text renders a column value for CSV output. Money keeps two decimals.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case decimal.Decimal:
		return t.StringFixed(deal.MoneyPlaces)
	case civil.Date:
		return t.String()
	}

	return ""
}

func metricsRow(m metrics.ClientMetrics) []string {
	return []string{
		m.ClientID,
		strconv.Itoa(m.TotalLoans),
		strconv.Itoa(m.ClosedLoans),
		m.ClosedRatio.StringFixed(metrics.RatioPlaces),
		m.Expired30Plus.StringFixed(deal.MoneyPlaces),
	}
}
