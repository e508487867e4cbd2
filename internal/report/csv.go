package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

// WriteMetricsCSV writes one row per client in the given order.
func WriteMetricsCSV(w io.Writer, clients []metrics.ClientMetrics) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(metricsHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, m := range clients {
		if err := cw.Write(metricsRow(m)); err != nil {
			return fmt.Errorf("writing client %s: %w", m.ClientID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteDetailedCSV writes the normalized records. Missing values are empty cells.
func WriteDetailedCSV(w io.Writer, records []deal.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(detailHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(detailColumns))

	for _, r := range records {
		for i, c := range detailColumns {
			row[i] = text(c.value(r))
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record of deal %s: %w", r.DealID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}
