package deal

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Status is the bureau status code of a deal in a given period.
type Status int

const (
	StatusOpen Status = 1

	minStatus Status = 1
	maxStatus Status = 13
)

// Valid reports whether the code is inside the bureau status table.
func (s Status) Valid() bool {
	return s >= minStatus && s <= maxStatus
}

// Terms holds the deal-level attributes shared by every period of a deal.
type Terms struct {
	Amount          decimal.NullDecimal
	TransactionType *string
	Currency        *string
	CollateralType  *string
	CollateralValue decimal.NullDecimal
	SubjectRole     *string
	RedemptionPlan  *string
	Provider        *string
}

// Period is one monthly snapshot of a deal.
type Period struct {
	Year            *int
	Month           *int
	StartDate       *civil.Date
	PlannedEndDate  *civil.Date
	ActualEndDate   *civil.Date // non-nil means the deal ended, whatever its status says
	Status          *Status
	CurrentLimit    decimal.NullDecimal
	PlannedPayment  decimal.NullDecimal
	CurrentDebt     decimal.NullDecimal
	OverdueDebt     decimal.NullDecimal
	DaysOverdue     *int
	PaymentMade     *int
	ArrearsPresent  *int
	CalculationDate *civil.Date
}

// Record is one flattened (deal, period) row.
// Period is nil for a deal that carries no history at all.
type Record struct {
	ClientID string
	Source   string
	DealID   string
	Seq      int // position in the source document
	Terms    Terms
	Period   *Period
}

// HasPeriod reports whether the record carries period data.
func (r Record) HasPeriod() bool {
	return r.Period != nil
}

// WarningKind classifies recoverable anomalies found while extracting a document.
type WarningKind string

const (
	WarnFieldCoercion    WarningKind = "field_coercion"
	WarnEmptyDeal        WarningKind = "empty_deal"
	WarnMissingDealID    WarningKind = "missing_deal_id"
	WarnStatusOutOfRange WarningKind = "status_out_of_range"
)

// Warning is a field- or deal-level anomaly. It never aborts a document.
type Warning struct {
	Kind    WarningKind
	DealID  string
	Field   string
	Value   string
	Message string
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%s: deal %s: %s", w.Kind, w.DealID, w.Message)
	}

	return fmt.Sprintf("%s: deal %s: %s=%q: %s", w.Kind, w.DealID, w.Field, w.Value, w.Message)
}

// Extraction is the raw output of reading one client document.
type Extraction struct {
	ClientID  string
	Source    string
	DealCount int
	Records   []Record
	Warnings  []Warning
}

// UniqueDeals counts distinct deal references. It is below DealCount when
// several deal elements share a reference and were merged.
func (e *Extraction) UniqueDeals() int {
	seen := make(map[string]struct{}, e.DealCount)
	for _, r := range e.Records {
		seen[r.DealID] = struct{}{}
	}

	return len(seen)
}
