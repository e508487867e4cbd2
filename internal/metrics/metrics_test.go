package metrics_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

func intp(v int) *int { return &v }

func statusp(v int) *deal.Status {
	s := deal.Status(v)
	return &s
}

func datep(y, m, d int) *civil.Date {
	return &civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

type recordBuilder struct {
	seq     int
	records []deal.Record
}

func (b *recordBuilder) add(dealID string, p *deal.Period) *recordBuilder {
	b.seq++
	b.records = append(b.records, deal.Record{ClientID: "1001", DealID: dealID, Seq: b.seq, Period: p})

	return b
}

func TestAggregate_Scenarios(t *testing.T) {
	type testCase struct {
		name        string
		records     []deal.Record
		wantTotal   int
		wantClosed  int
		wantRatio   string
		wantExpired string
	}

	tests := []testCase{
		{
			name: "A: three open deals",
			records: new(recordBuilder).
				add("D1", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1)}).
				add("D2", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1)}).
				add("D3", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1)}).
				records,
			wantTotal:   3,
			wantClosed:  0,
			wantRatio:   "0.0000",
			wantExpired: "0.00",
		},
		{
			name: "B: status and end date both close",
			records: new(recordBuilder).
				add("D1", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(2)}).
				add("D2", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1), ActualEndDate: datep(2024, 1, 1)}).
				add("D3", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1)}).
				records,
			wantTotal:   3,
			wantClosed:  2,
			wantRatio:   "0.6667",
			wantExpired: "0.00",
		},
		{
			name: "C: only more than 30 days overdue counts",
			records: new(recordBuilder).
				add("D1", &deal.Period{Year: intp(2024), Month: intp(1), DaysOverdue: intp(45), OverdueDebt: money("1000.00")}).
				add("D2", &deal.Period{Year: intp(2024), Month: intp(1), DaysOverdue: intp(20), OverdueDebt: money("500.00")}).
				records,
			wantTotal:   2,
			wantClosed:  0,
			wantRatio:   "0.0000",
			wantExpired: "1000.00",
		},
		{
			name:        "D: no deals",
			records:     nil,
			wantTotal:   0,
			wantClosed:  0,
			wantRatio:   "0.0000",
			wantExpired: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metrics.Aggregate("1001", tt.records)

			assert.Equal(t, "1001", got.ClientID)
			assert.Equal(t, tt.wantTotal, got.TotalLoans)
			assert.Equal(t, tt.wantClosed, got.ClosedLoans)
			assert.Equal(t, tt.wantRatio, got.ClosedRatio.StringFixed(metrics.RatioPlaces))
			assert.Equal(t, tt.wantExpired, got.Expired30Plus.StringFixed(deal.MoneyPlaces))
		})
	}
}

func TestAggregate_UsesLatestPeriodOnly(t *testing.T) {
	records := new(recordBuilder).
		add("D1", &deal.Period{Year: intp(2023), Month: intp(11), Status: statusp(1), DaysOverdue: intp(90), OverdueDebt: money("300")}).
		add("D1", &deal.Period{Year: intp(2023), Month: intp(12), Status: statusp(1), DaysOverdue: intp(60), OverdueDebt: money("200")}).
		add("D1", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1), DaysOverdue: intp(10), OverdueDebt: money("100")}).
		add("D2", &deal.Period{Year: intp(2023), Month: intp(6), Status: statusp(3)}).
		add("D2", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(1)}).
		records

	got := metrics.Aggregate("1001", records)

	assert.Equal(t, 2, got.TotalLoans)
	assert.Equal(t, 0, got.ClosedLoans)
	assert.True(t, got.Expired30Plus.IsZero())
}

func TestAggregate_EmptyDealCountsAsOpen(t *testing.T) {
	records := new(recordBuilder).
		add("EMPTY", nil).
		add("D1", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(5)}).
		records

	got := metrics.Aggregate("1001", records)

	assert.Equal(t, 2, got.TotalLoans)
	assert.Equal(t, 1, got.ClosedLoans)
	assert.Equal(t, "0.5000", got.ClosedRatio.StringFixed(metrics.RatioPlaces))
}

func TestAggregate_IgnoresMissingAndNegativeOverdue(t *testing.T) {
	records := new(recordBuilder).
		add("D1", &deal.Period{Year: intp(2024), Month: intp(1), DaysOverdue: intp(31)}).
		add("D2", &deal.Period{Year: intp(2024), Month: intp(1), DaysOverdue: intp(31), OverdueDebt: money("-50")}).
		add("D3", &deal.Period{Year: intp(2024), Month: intp(1), OverdueDebt: money("70")}).
		add("D4", &deal.Period{Year: intp(2024), Month: intp(1), DaysOverdue: intp(30), OverdueDebt: money("80")}).
		add("D5", &deal.Period{Year: intp(2024), Month: intp(1), DaysOverdue: intp(31), OverdueDebt: money("10.005")}).
		records

	got := metrics.Aggregate("1001", records)

	assert.Equal(t, "10.01", got.Expired30Plus.StringFixed(deal.MoneyPlaces))
	assert.False(t, got.Expired30Plus.IsNegative())
}

func TestAggregate_RatioBounds(t *testing.T) {
	for total := 0; total <= 7; total++ {
		for closed := 0; closed <= total; closed++ {
			b := new(recordBuilder)

			for i := 0; i < total; i++ {
				status := 1
				if i < closed {
					status = 2
				}

				b.add(string(rune('A'+i)), &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(status)})
			}

			got := metrics.Aggregate("1001", b.records)

			require.Equal(t, closed, got.ClosedLoans)
			assert.False(t, got.ClosedRatio.IsNegative())
			assert.True(t, got.ClosedRatio.LessThanOrEqual(decimal.NewFromInt(1)))
		}
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	records := new(recordBuilder).
		add("D1", &deal.Period{Year: intp(2024), Month: intp(1), Status: statusp(2), DaysOverdue: intp(40), OverdueDebt: money("12.5")}).
		add("D2", nil).
		records

	first := metrics.Aggregate("1001", records)
	second := metrics.Aggregate("1001", records)

	assert.Equal(t, first.ClosedRatio.String(), second.ClosedRatio.String())
	assert.Equal(t, first.Expired30Plus.String(), second.Expired30Plus.String())
	assert.Equal(t, first.TotalLoans, second.TotalLoans)
}

func TestResolve(t *testing.T) {
	records := new(recordBuilder).
		add("B", &deal.Period{Year: intp(2024), Month: intp(2), Status: statusp(1)}).
		add("A", nil).
		add("B", &deal.Period{Year: intp(2024), Month: intp(3), ActualEndDate: datep(2024, 3, 5)}).
		records

	states := metrics.Resolve(records)
	require.Len(t, states, 2)

	assert.Equal(t, "B", states[0].DealID)
	require.NotNil(t, states[0].Latest)
	assert.Equal(t, 3, *states[0].Latest.Month)
	assert.True(t, states[0].Closed)

	assert.Equal(t, "A", states[1].DealID)
	assert.Nil(t, states[1].Latest)
	assert.False(t, states[1].Closed)
}
