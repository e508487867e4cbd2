package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
)

const (
	// OverdueThresholdDays is the strict lower bound of days overdue for a
	// deal's overdue debt to count as expired.
	OverdueThresholdDays = 30

	RatioPlaces = 4
)

// ClientMetrics is the per-client risk summary. Values are final: the ratio
// carries RatioPlaces decimals and the amount deal.MoneyPlaces decimals.
type ClientMetrics struct {
	ClientID      string
	TotalLoans    int
	ClosedLoans   int
	ClosedRatio   decimal.Decimal
	Expired30Plus decimal.Decimal
}

// DealState is the resolved view of a single deal: its latest period, if
// any, and the closure verdict derived from it.
type DealState struct {
	DealID string
	Latest *deal.Period
	Closed bool
}

// Resolve groups a client's records by deal and resolves each deal's latest
// period. Deals keep the order of their first record.
func Resolve(records []deal.Record) []DealState {
	var (
		order  []string
		byDeal = make(map[string][]deal.Record)
	)

	for _, r := range records {
		if _, ok := byDeal[r.DealID]; !ok {
			order = append(order, r.DealID)
		}

		byDeal[r.DealID] = append(byDeal[r.DealID], r)
	}

	states := make([]DealState, 0, len(order))

	for _, id := range order {
		s := DealState{DealID: id}

		if latest, ok := deal.Latest(byDeal[id]); ok {
			s.Latest = latest.Period
		}

		s.Closed = deal.Closed(s.Latest)
		states = append(states, s)
	}

	return states
}

// Aggregate computes the metrics of one client from its normalized records.
// An empty record set yields zero counts and a zero ratio.
func Aggregate(clientID string, records []deal.Record) ClientMetrics {
	m := ClientMetrics{
		ClientID:      clientID,
		ClosedRatio:   decimal.Zero,
		Expired30Plus: decimal.Zero,
	}

	for _, s := range Resolve(records) {
		m.TotalLoans++

		if s.Closed {
			m.ClosedLoans++
		}

		m.Expired30Plus = m.Expired30Plus.Add(expiredAmount(s.Latest))
	}

	if m.TotalLoans > 0 {
		m.ClosedRatio = decimal.NewFromInt(int64(m.ClosedLoans)).
			DivRound(decimal.NewFromInt(int64(m.TotalLoans)), RatioPlaces)
	}

	m.Expired30Plus = m.Expired30Plus.Round(deal.MoneyPlaces)

	return m
}

// expiredAmount is the overdue debt a latest period contributes. Missing or
// non-positive amounts contribute nothing.
func expiredAmount(p *deal.Period) decimal.Decimal {
	if p == nil || p.DaysOverdue == nil || *p.DaysOverdue <= OverdueThresholdDays {
		return decimal.Zero
	}

	if !p.OverdueDebt.Valid || !p.OverdueDebt.Decimal.IsPositive() {
		return decimal.Zero
	}

	return p.OverdueDebt.Decimal
}
