package deal_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
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

func period(seq int, dealID string, year, month int) deal.Record {
	return deal.Record{
		ClientID: "1001",
		DealID:   dealID,
		Seq:      seq,
		Period:   &deal.Period{Year: intp(year), Month: intp(month)},
	}
}

func TestClosed(t *testing.T) {
	tests := []struct {
		name   string
		period *deal.Period
		want   bool
	}{
		{name: "no period is open", period: nil, want: false},
		{name: "open status without end date", period: &deal.Period{Status: statusp(1)}, want: false},
		{name: "status above open", period: &deal.Period{Status: statusp(2)}, want: true},
		{name: "highest status code", period: &deal.Period{Status: statusp(13)}, want: true},
		{name: "open status with actual end date", period: &deal.Period{Status: statusp(1), ActualEndDate: datep(2024, 1, 1)}, want: true},
		{name: "missing status with actual end date", period: &deal.Period{ActualEndDate: datep(2024, 1, 1)}, want: true},
		{name: "missing status and end date", period: &deal.Period{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deal.Closed(tt.period))
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.False(t, deal.Status(0).Valid())
	assert.True(t, deal.StatusOpen.Valid())
	assert.True(t, deal.Status(13).Valid())
	assert.False(t, deal.Status(14).Valid())
}

func TestLatest(t *testing.T) {
	records := []deal.Record{
		period(1, "D1", 2023, 12),
		period(2, "D1", 2024, 2),
		period(3, "D1", 2024, 1),
	}

	got, ok := deal.Latest(records)
	require.True(t, ok)
	assert.Equal(t, 2, got.Seq)
}

func TestLatest_YearDominatesMonth(t *testing.T) {
	records := []deal.Record{
		period(1, "D1", 2024, 1),
		period(2, "D1", 2023, 12),
	}

	got, ok := deal.Latest(records)
	require.True(t, ok)
	assert.Equal(t, 2024, *got.Period.Year)
}

func TestLatest_NoPeriods(t *testing.T) {
	_, ok := deal.Latest(nil)
	assert.False(t, ok)

	_, ok = deal.Latest([]deal.Record{{DealID: "D1", Seq: 1}})
	assert.False(t, ok)
}

func TestLatest_DoesNotReorderInput(t *testing.T) {
	records := []deal.Record{
		period(1, "D1", 2024, 3),
		period(2, "D1", 2024, 1),
	}

	_, _ = deal.Latest(records)

	assert.Equal(t, 1, records[0].Seq)
	assert.Equal(t, 2, records[1].Seq)
}

func TestComparePeriods(t *testing.T) {
	missingMonth := deal.Record{Seq: 5, Period: &deal.Period{Year: intp(2024)}}

	assert.Negative(t, deal.ComparePeriods(period(1, "D", 2023, 5), period(2, "D", 2024, 1)))
	assert.Positive(t, deal.ComparePeriods(period(1, "D", 2024, 2), period(2, "D", 2024, 1)))
	assert.Negative(t, deal.ComparePeriods(missingMonth, period(1, "D", 2024, 1)))
	assert.Negative(t, deal.ComparePeriods(deal.Record{Seq: 9}, period(1, "D", 1990, 1)))
	assert.Negative(t, deal.ComparePeriods(period(1, "D", 2024, 1), period(2, "D", 2024, 1)))
	assert.Zero(t, deal.ComparePeriods(period(1, "D", 2024, 1), period(1, "D", 2024, 1)))
}

func TestNormalize_PrefersActualEndDate(t *testing.T) {
	ended := period(1, "D1", 2024, 5)
	ended.Period.ActualEndDate = datep(2024, 5, 20)

	open := period(2, "D1", 2024, 5)

	got := deal.Normalize([]deal.Record{ended, open})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Seq)
	require.NotNil(t, got[0].Period.ActualEndDate)
	assert.Equal(t, "2024-05-20", got[0].Period.ActualEndDate.String())
}

func TestNormalize_LastSeenWinsOtherwise(t *testing.T) {
	first := period(1, "D1", 2024, 5)
	first.Period.DaysOverdue = intp(10)

	second := period(2, "D1", 2024, 5)
	second.Period.DaysOverdue = intp(40)

	got := deal.Normalize([]deal.Record{first, second})
	require.Len(t, got, 1)
	assert.Equal(t, 40, *got[0].Period.DaysOverdue)

	bothEnded := []deal.Record{first, second}
	bothEnded[0].Period = &deal.Period{Year: intp(2024), Month: intp(5), ActualEndDate: datep(2024, 1, 1)}
	bothEnded[1].Period = &deal.Period{Year: intp(2024), Month: intp(5), ActualEndDate: datep(2024, 2, 1)}

	got = deal.Normalize(bothEnded)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Seq)
}

func TestNormalize_OrdersByDealThenPeriod(t *testing.T) {
	records := []deal.Record{
		period(1, "B", 2024, 2),
		period(2, "A", 2024, 1),
		period(3, "B", 2023, 11),
		period(4, "A", 2023, 12),
	}

	got := deal.Normalize(records)
	require.Len(t, got, 4)

	var order []int
	for _, r := range got {
		order = append(order, r.Seq)
	}

	assert.Equal(t, []int{3, 1, 4, 2}, order)
}

func TestNormalize_EmptyDealMarker(t *testing.T) {
	records := []deal.Record{
		{DealID: "EMPTY", Seq: 1},
		{DealID: "MIXED", Seq: 2},
		period(3, "MIXED", 2024, 1),
	}

	got := deal.Normalize(records)
	require.Len(t, got, 2)

	assert.Equal(t, "EMPTY", got[0].DealID)
	assert.False(t, got[0].HasPeriod())
	assert.Equal(t, "MIXED", got[1].DealID)
	assert.True(t, got[1].HasPeriod())
}

func TestNormalize_RoundsMoneyAndCurrency(t *testing.T) {
	cur := " uah "
	r := period(1, "D1", 2024, 1)
	r.Terms.Amount = money("1000.005")
	r.Terms.Currency = &cur
	r.Period.OverdueDebt = money("12.344")

	got := deal.Normalize([]deal.Record{r})
	require.Len(t, got, 1)

	assert.Equal(t, "1000.01", got[0].Terms.Amount.Decimal.StringFixed(2))
	assert.Equal(t, "UAH", *got[0].Terms.Currency)
	assert.Equal(t, "12.34", got[0].Period.OverdueDebt.Decimal.StringFixed(2))

	assert.Equal(t, " uah ", *r.Terms.Currency)
	assert.Equal(t, "12.344", r.Period.OverdueDebt.Decimal.String())
}

func TestNormalize_KeepsNulls(t *testing.T) {
	r := period(1, "D1", 2024, 1)

	got := deal.Normalize([]deal.Record{r})
	require.Len(t, got, 1)

	assert.False(t, got[0].Period.OverdueDebt.Valid)
	assert.Nil(t, got[0].Period.DaysOverdue)
	assert.Nil(t, got[0].Terms.Currency)
}

func TestNormalize_MissingPeriodKeyIsDistinct(t *testing.T) {
	noYear := deal.Record{DealID: "D1", Seq: 1, Period: &deal.Period{Month: intp(1)}}
	full := period(2, "D1", 2024, 1)

	got := deal.Normalize([]deal.Record{noYear, full})
	assert.Len(t, got, 2)
}
