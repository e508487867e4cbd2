package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

type jsonReport struct {
	RunID            string          `json:"run_id"`
	GeneratedAt      time.Time       `json:"generated_at"`
	AnalysisSummary  jsonAnalysis    `json:"analysis_summary"`
	ClientMetrics    []jsonClient    `json:"client_metrics"`
	PortfolioSummary jsonPortfolio   `json:"portfolio_summary"`
	DataQuality      jsonQuality     `json:"data_quality"`
	Failures         []jsonFailure   `json:"failures"`
	Validation       *jsonValidation `json:"validation,omitempty"`
}

type jsonAnalysis struct {
	TotalClients    int    `json:"total_clients"`
	TotalDeals      int    `json:"total_deals"`
	DealsProcessed  int    `json:"deals_processed"`
	TotalRecords    int    `json:"total_historical_records"`
	FailedDocuments int    `json:"failed_documents"`
	AnalysisDate    string `json:"analysis_date"`
}

type jsonClient struct {
	ClientID      string      `json:"client_id"`
	TotalLoans    int         `json:"total_loans_count"`
	ClosedLoans   int         `json:"closed_loans_count"`
	ClosedRatio   json.Number `json:"closed_loans_ratio"`
	Expired30Plus json.Number `json:"expired_30_plus_amount"`
}

type jsonRisk struct {
	ClientID string      `json:"client_id"`
	Amount   json.Number `json:"expired_30_plus_amount"`
	Share    json.Number `json:"share"`
}

type jsonPortfolio struct {
	AvgLoansPerClient  json.Number `json:"average_loans_per_client"`
	OverallClosureRate json.Number `json:"overall_closure_rate"`
	TotalExpiredDebt   json.Number `json:"total_expired_debt"`
	ClientsWithExpired int         `json:"clients_with_expired_debt"`
	TopRisk            []jsonRisk  `json:"top_risk_clients"`
}

type jsonQuality struct {
	RecordsProcessed int            `json:"records_processed"`
	UniqueClients    int            `json:"unique_clients"`
	EarliestPeriod   string         `json:"earliest_period,omitempty"`
	LatestPeriod     string         `json:"latest_period,omitempty"`
	Warnings         map[string]int `json:"warnings"`
}

type jsonFailure struct {
	ClientID string `json:"client_id"`
	Path     string `json:"path"`
	Error    string `json:"error"`
}

type jsonIssue struct {
	Severity string `json:"severity"`
	Check    string `json:"check"`
	ClientID string `json:"client_id,omitempty"`
	Message  string `json:"message"`
}

type jsonValidation struct {
	Status string      `json:"status"`
	Issues []jsonIssue `json:"issues"`
}

func number(d decimal.Decimal, places int32) json.Number {
	return json.Number(d.StringFixed(places))
}

// WriteJSON writes the analysis report as indented JSON.
func WriteJSON(w io.Writer, d Data) error {
	s := d.Summary

	out := jsonReport{
		RunID:       d.Run.ID.String(),
		GeneratedAt: d.GeneratedAt.UTC(),
		AnalysisSummary: jsonAnalysis{
			TotalClients:    s.Clients,
			TotalDeals:      s.Deals,
			DealsProcessed:  d.Result.DealsProcessed(),
			TotalRecords:    s.Records,
			FailedDocuments: s.FailedDocuments,
			AnalysisDate:    d.GeneratedAt.Format(time.DateOnly),
		},
		ClientMetrics: []jsonClient{},
		PortfolioSummary: jsonPortfolio{
			AvgLoansPerClient:  number(s.AvgLoansPerClient, deal.MoneyPlaces),
			OverallClosureRate: number(s.MeanClosedRatio, metrics.RatioPlaces),
			TotalExpiredDebt:   number(s.TotalExpired30Plus, deal.MoneyPlaces),
			ClientsWithExpired: s.ClientsWithExpired,
			TopRisk:            []jsonRisk{},
		},
		DataQuality: jsonQuality{
			RecordsProcessed: s.Records,
			UniqueClients:    s.Clients,
			Warnings:         make(map[string]int),
		},
		Failures: []jsonFailure{},
	}

	for _, m := range d.Result.Metrics() {
		out.ClientMetrics = append(out.ClientMetrics, jsonClient{
			ClientID:      m.ClientID,
			TotalLoans:    m.TotalLoans,
			ClosedLoans:   m.ClosedLoans,
			ClosedRatio:   number(m.ClosedRatio, metrics.RatioPlaces),
			Expired30Plus: number(m.Expired30Plus, deal.MoneyPlaces),
		})
	}

	for _, r := range s.TopRisk {
		out.PortfolioSummary.TopRisk = append(out.PortfolioSummary.TopRisk, jsonRisk{
			ClientID: r.ClientID,
			Amount:   number(r.Amount, deal.MoneyPlaces),
			Share:    number(r.Share, metrics.RatioPlaces),
		})
	}

	if s.FirstPeriod != nil {
		out.DataQuality.EarliestPeriod = s.FirstPeriod.String()
		out.DataQuality.LatestPeriod = s.LastPeriod.String()
	}

	counts := d.Result.WarningCounts()
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		out.DataQuality.Warnings[string(k)] = counts[k]
	}

	for _, f := range d.Result.Failures {
		out.Failures = append(out.Failures, jsonFailure{ClientID: f.ClientID, Path: f.Path, Error: f.Err.Error()})
	}

	if v := d.Validation; v != nil {
		jv := &jsonValidation{Status: "PASSED", Issues: []jsonIssue{}}
		if !v.Passed() {
			jv.Status = "FAILED"
		}

		for _, i := range v.Issues {
			jv.Issues = append(jv.Issues, jsonIssue{
				Severity: string(i.Severity),
				Check:    i.Check,
				ClientID: i.ClientID,
				Message:  i.Message,
			})
		}

		out.Validation = jv
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return nil
}
