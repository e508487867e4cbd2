package report

import (
	"time"

	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
	"github.com/MrJamesThe3rd/creditrisk/internal/pipeline"
	"github.com/MrJamesThe3rd/creditrisk/internal/validation"
)

// Data is everything the writers render for one run.
type Data struct {
	Run         metrics.Run
	GeneratedAt time.Time
	Result      *pipeline.Result
	Summary     metrics.Summary
	Validation  *validation.Report
}

// NewData summarizes a finished run.
func NewData(run metrics.Run, res *pipeline.Result, generatedAt time.Time) Data {
	return Data{
		Run:         run,
		GeneratedAt: generatedAt,
		Result:      res,
		Summary:     metrics.Summarize(res.Metrics(), res.Records(), len(res.Failures)),
	}
}
