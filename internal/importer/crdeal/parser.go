package crdeal

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	enc "github.com/MrJamesThe3rd/creditrisk/internal/encoding"
)

var errNoRoot = errors.New("document has no root element")

// Parser reads the bureau crdeal format. It streams the document, so memory
// grows with the number of extracted records only.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse flattens every deal of one client document into records.
//
// A returned error means the document as a whole could not be read. Anything
// recoverable below that level ends up in Extraction.Warnings.
func (p *Parser) Parse(clientID string, r io.Reader) (*deal.Extraction, error) {
	utf8Reader, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	decoder := xml.NewDecoder(utf8Reader)
	decoder.CharsetReader = enc.PassthroughCharsetReader

	b := &builder{clientID: clientID}

	var (
		sawRoot   bool
		depth     int
		dealDepth int
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++

			if !sawRoot {
				sawRoot = true
				continue
			}

			switch t.Name.Local {
			case elemDeal:
				if b.current != nil {
					continue
				}

				dealDepth = depth
				b.beginDeal(attrMap(t.Attr))
			case elemPeriod:
				if b.current != nil {
					b.addPeriod(attrMap(t.Attr))
				}
			}
		case xml.EndElement:
			if b.current != nil && depth == dealDepth {
				b.endDeal()
			}

			depth--
		}
	}

	if !sawRoot {
		return nil, errNoRoot
	}

	return &deal.Extraction{
		ClientID:  clientID,
		DealCount: b.deals,
		Records:   b.records,
		Warnings:  b.warnings,
	}, nil
}

type openDeal struct {
	id      string
	terms   deal.Terms
	periods int
}

type builder struct {
	clientID string
	seq      int
	deals    int
	current  *openDeal
	records  []deal.Record
	warnings []deal.Warning
}

func (b *builder) beginDeal(attrs map[string]string) {
	b.deals++

	id := attrs[attrDealRef]
	if id == "" {
		id = fmt.Sprintf("unknown-%d", b.deals)
		b.warnings = append(b.warnings, deal.Warning{
			Kind:    deal.WarnMissingDealID,
			DealID:  id,
			Field:   attrDealRef,
			Message: "deal has no reference, synthetic id assigned",
		})
	}

	f := b.fields(attrs, id)

	b.current = &openDeal{
		id: id,
		terms: deal.Terms{
			Amount:          f.money(attrAmount),
			TransactionType: f.text(attrTransactionType),
			Currency:        f.text(attrCurrency),
			CollateralType:  f.text(attrCollateralType),
			CollateralValue: f.money(attrCollateralValue),
			SubjectRole:     f.text(attrSubjectRole),
			RedemptionPlan:  f.text(attrRedemptionPlan),
			Provider:        f.text(attrProvider),
		},
	}
}

func (b *builder) addPeriod(attrs map[string]string) {
	f := b.fields(attrs, b.current.id)

	p := &deal.Period{
		Year:            f.integer(attrYear),
		Month:           f.integer(attrMonth),
		StartDate:       f.date(attrStartDate),
		PlannedEndDate:  f.date(attrPlannedEndDate),
		ActualEndDate:   f.date(attrActualEndDate),
		Status:          f.status(attrStatus),
		CurrentLimit:    f.money(attrCurrentLimit),
		PlannedPayment:  f.money(attrPlannedPayment),
		CurrentDebt:     f.money(attrCurrentDebt),
		OverdueDebt:     f.money(attrOverdueDebt),
		DaysOverdue:     f.integer(attrDaysOverdue),
		PaymentMade:     f.integer(attrPaymentMade),
		ArrearsPresent:  f.integer(attrArrearsPresent),
		CalculationDate: f.date(attrCalculationDate),
	}

	b.current.periods++
	b.emit(p)
}

func (b *builder) endDeal() {
	if b.current.periods == 0 {
		b.warnings = append(b.warnings, deal.Warning{
			Kind:    deal.WarnEmptyDeal,
			DealID:  b.current.id,
			Message: "deal has no history periods",
		})
		b.emit(nil)
	}

	b.current = nil
}

func (b *builder) emit(p *deal.Period) {
	b.seq++
	b.records = append(b.records, deal.Record{
		ClientID: b.clientID,
		DealID:   b.current.id,
		Seq:      b.seq,
		Terms:    b.current.terms,
		Period:   p,
	})
}

func (b *builder) fields(attrs map[string]string, dealID string) *fieldReader {
	return &fieldReader{attrs: attrs, dealID: dealID, warnings: &b.warnings}
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = strings.TrimSpace(a.Value)
	}

	return m
}
