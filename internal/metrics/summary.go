package metrics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
)

// TopRiskLimit is how many clients Summary.TopRisk lists.
const TopRiskLimit = 3

// YearMonth is a reporting period.
type YearMonth struct {
	Year  int
	Month int
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

func (ym YearMonth) before(other YearMonth) bool {
	return ym.Year < other.Year || (ym.Year == other.Year && ym.Month < other.Month)
}

// RiskClient is a client ranked by expired exposure. Share is its fraction
// of the portfolio's expired total.
type RiskClient struct {
	ClientID string
	Amount   decimal.Decimal
	Share    decimal.Decimal
}

// Summary is the portfolio rollup over every successfully processed client.
type Summary struct {
	Clients            int
	Deals              int
	Records            int
	FailedDocuments    int
	AvgLoansPerClient  decimal.Decimal
	MeanClosedRatio    decimal.Decimal
	TotalExpired30Plus decimal.Decimal
	ClientsWithExpired int
	TopRisk            []RiskClient
	FirstPeriod        *YearMonth
	LastPeriod         *YearMonth
}

// Summarize reduces per-client metrics and the normalized records behind
// them. It only sums and averages, so callers can reproduce every figure.
func Summarize(clients []ClientMetrics, records []deal.Record, failed int) Summary {
	s := Summary{
		Clients:            len(clients),
		Records:            len(records),
		FailedDocuments:    failed,
		AvgLoansPerClient:  decimal.Zero,
		MeanClosedRatio:    decimal.Zero,
		TotalExpired30Plus: decimal.Zero,
	}

	ratioSum := decimal.Zero

	var ranked []RiskClient

	for _, c := range clients {
		s.Deals += c.TotalLoans
		ratioSum = ratioSum.Add(c.ClosedRatio)
		s.TotalExpired30Plus = s.TotalExpired30Plus.Add(c.Expired30Plus)

		if c.Expired30Plus.IsPositive() {
			s.ClientsWithExpired++
			ranked = append(ranked, RiskClient{ClientID: c.ClientID, Amount: c.Expired30Plus})
		}
	}

	if s.Clients > 0 {
		n := decimal.NewFromInt(int64(s.Clients))
		s.AvgLoansPerClient = decimal.NewFromInt(int64(s.Deals)).DivRound(n, deal.MoneyPlaces)
		s.MeanClosedRatio = ratioSum.DivRound(n, RatioPlaces)
	}

	s.TotalExpired30Plus = s.TotalExpired30Plus.Round(deal.MoneyPlaces)

	slices.SortFunc(ranked, func(a, b RiskClient) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.ClientID, b.ClientID)
	})

	if len(ranked) > TopRiskLimit {
		ranked = ranked[:TopRiskLimit]
	}

	for i := range ranked {
		ranked[i].Share = ranked[i].Amount.DivRound(s.TotalExpired30Plus, RatioPlaces)
	}

	s.TopRisk = ranked
	s.FirstPeriod, s.LastPeriod = periodRange(records)

	return s
}

func periodRange(records []deal.Record) (*YearMonth, *YearMonth) {
	var first, last *YearMonth

	for _, r := range records {
		if !r.HasPeriod() || r.Period.Year == nil || r.Period.Month == nil {
			continue
		}

		ym := YearMonth{Year: *r.Period.Year, Month: *r.Period.Month}

		if first == nil || ym.before(*first) {
			v := ym
			first = &v
		}

		if last == nil || last.before(ym) {
			v := ym
			last = &v
		}
	}

	return first, last
}
