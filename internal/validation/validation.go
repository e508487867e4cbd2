package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
	"github.com/MrJamesThe3rd/creditrisk/internal/pipeline"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check names, as they appear in reports.
const (
	CheckFailedDocument   = "failed_document"
	CheckRatioRange       = "ratio_range"
	CheckExpiredNegative  = "expired_negative"
	CheckLoanCount        = "loan_count"
	CheckMergedDeals      = "merged_deals"
	CheckClosedCount      = "closed_count"
	CheckRecalculation    = "recalculation"
	CheckDuplicatePeriods = "duplicate_periods"
	CheckNegativeOverdue  = "negative_days_overdue"
	CheckNegativeAmount   = "negative_amount"
	CheckMissingAmount    = "missing_amount"
	CheckOverdueAboveDebt = "overdue_above_debt"
	CheckDateOrder        = "date_order"
	CheckNoDeals          = "no_deals"
)

type Issue struct {
	Severity Severity
	Check    string
	ClientID string
	Message  string
}

type Report struct {
	Clients int
	Records int
	Issues  []Issue
}

// Passed reports whether no error-level issue was found.
func (r Report) Passed() bool {
	return r.Count(SeverityError) == 0
}

func (r Report) Count(s Severity) int {
	n := 0

	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}

	return n
}

type checker struct {
	report Report
}

func (c *checker) add(s Severity, check, clientID, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{
		Severity: s,
		Check:    check,
		ClientID: clientID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Check verifies the metrics of a run against the records they came from and
// looks for data quality problems in those records.
func Check(res *pipeline.Result) Report {
	c := &checker{}

	for _, f := range res.Failures {
		c.add(SeverityError, CheckFailedDocument, f.ClientID, "%s: %v", f.Path, f.Err)
	}

	for _, cr := range res.Clients {
		c.report.Clients++
		c.report.Records += len(cr.Records)

		c.checkMetrics(cr)
		c.checkRecords(cr.Metrics.ClientID, cr.Records)
	}

	return c.report
}

func (c *checker) checkMetrics(cr pipeline.ClientResult) {
	m := cr.Metrics
	one := decimal.NewFromInt(1)

	if m.ClosedRatio.IsNegative() || m.ClosedRatio.GreaterThan(one) {
		c.add(SeverityError, CheckRatioRange, m.ClientID, "closed ratio %s outside [0, 1]", m.ClosedRatio)
	}

	if m.Expired30Plus.IsNegative() {
		c.add(SeverityError, CheckExpiredNegative, m.ClientID, "expired amount %s is negative", m.Expired30Plus)
	}

	if m.ClosedLoans > m.TotalLoans {
		c.add(SeverityError, CheckClosedCount, m.ClientID, "closed loans %d exceed total %d", m.ClosedLoans, m.TotalLoans)
	}

	if cr.UniqueDeals != m.TotalLoans {
		c.add(SeverityError, CheckLoanCount, m.ClientID, "document has %d distinct deals, metrics count %d loans", cr.UniqueDeals, m.TotalLoans)
	}

	if merged := cr.DealCount - cr.UniqueDeals; merged > 0 {
		c.add(SeverityWarning, CheckMergedDeals, m.ClientID, "%d deal elements reuse another deal's reference", merged)
	}

	if m.TotalLoans == 0 {
		c.add(SeverityWarning, CheckNoDeals, m.ClientID, "client has no deals")
	}

	want := metrics.Aggregate(m.ClientID, cr.Records)
	if want.ClosedLoans != m.ClosedLoans ||
		!want.ClosedRatio.Equal(m.ClosedRatio) ||
		!want.Expired30Plus.Equal(m.Expired30Plus) {
		c.add(SeverityError, CheckRecalculation, m.ClientID,
			"recalculated closed=%d ratio=%s expired=%s, reported closed=%d ratio=%s expired=%s",
			want.ClosedLoans, want.ClosedRatio, want.Expired30Plus,
			m.ClosedLoans, m.ClosedRatio, m.Expired30Plus)
	}
}

type periodKey struct {
	dealID      string
	year, month string
}

func optInt(v *int) string {
	if v == nil {
		return "null"
	}

	return fmt.Sprint(*v)
}

func (c *checker) checkRecords(clientID string, records []deal.Record) {
	seen := make(map[periodKey]struct{}, len(records))

	var duplicates, negOverdue, negAmount, missingAmount, overdueAbove, badDates int

	for _, r := range records {
		if r.Terms.Amount.Valid && r.Terms.Amount.Decimal.IsNegative() {
			negAmount++
		}

		if !r.Terms.Amount.Valid {
			missingAmount++
		}

		p := r.Period
		if p == nil {
			continue
		}

		k := periodKey{dealID: r.DealID, year: optInt(p.Year), month: optInt(p.Month)}
		if _, ok := seen[k]; ok {
			duplicates++
		}

		seen[k] = struct{}{}

		if p.DaysOverdue != nil && *p.DaysOverdue < 0 {
			negOverdue++
		}

		if p.OverdueDebt.Valid && p.CurrentDebt.Valid && p.OverdueDebt.Decimal.GreaterThan(p.CurrentDebt.Decimal) {
			overdueAbove++
		}

		if p.StartDate != nil && p.PlannedEndDate != nil && !p.StartDate.Before(*p.PlannedEndDate) {
			badDates++
		}
	}

	if duplicates > 0 {
		c.add(SeverityError, CheckDuplicatePeriods, clientID, "%d duplicate (deal, year, month) records", duplicates)
	}

	if negOverdue > 0 {
		c.add(SeverityError, CheckNegativeOverdue, clientID, "%d records with negative days overdue", negOverdue)
	}

	if negAmount > 0 {
		c.add(SeverityWarning, CheckNegativeAmount, clientID, "%d records with negative transaction amount", negAmount)
	}

	if missingAmount > 0 {
		c.add(SeverityWarning, CheckMissingAmount, clientID, "%d records without transaction amount", missingAmount)
	}

	if overdueAbove > 0 {
		c.add(SeverityWarning, CheckOverdueAboveDebt, clientID, "%d records with overdue debt above current debt", overdueAbove)
	}

	if badDates > 0 {
		c.add(SeverityWarning, CheckDateOrder, clientID, "%d records starting on or after planned end", badDates)
	}
}
