// benchmark/types.go
package benchmark

import "time"

// Case is one synthetic input of a given target size. Cases are generated once per
// run and never mutated; their order is the execution order within each round.
type Case struct {
	ID          string `json:"caseId"`
	TargetWords int    `json:"targetWords"`
	ActualWords int    `json:"actualWords"`
	Text        string `json:"text"`
}

// Measurement holds the timings and artifact details of a successful call.
type Measurement struct {
	RequestMs     float64  `json:"requestMs"`
	DownloadMs    *float64 `json:"downloadMs,omitempty"`
	TotalMs       float64  `json:"totalMs"`
	ArtifactBytes *int     `json:"artifactBytes,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	ArtifactURL   string   `json:"artifactUrl,omitempty"`
	JobID         string   `json:"jobId,omitempty"`
	DelayMs       *float64 `json:"delayMs,omitempty"`
	ExecutionMs   *float64 `json:"executionMs,omitempty"`
}

// Outcome is the per-case, per-round result record. Exactly one of Measurement
// and Error is set.
type Outcome struct {
	Round       int    `json:"round"`
	CaseID      string `json:"caseId"`
	TargetWords int    `json:"targetWords"`
	ActualWords int    `json:"actualWords"`
	*Measurement
	Error string `json:"error,omitempty"`
}

// OK reports whether the outcome carries a measurement.
func (o Outcome) OK() bool {
	return o.Measurement != nil && o.Error == ""
}

// Summary holds statistics over the successful total durations of a run.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
}

// Report is the persisted artifact of one run.
type Report struct {
	RunID           string    `json:"runId"`
	Label           string    `json:"label"`
	Endpoint        string    `json:"endpoint"`
	EndpointLabel   string    `json:"endpointLabel"`
	Voice           string    `json:"voice"`
	Rounds          int       `json:"rounds"`
	IncludeDownload bool      `json:"includeDownload"`
	Warmup          bool      `json:"warmup"`
	PacingMs        int64     `json:"pacingMs"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
	Results         []Outcome `json:"results"`
	Failures        int       `json:"failures"`
	Summary         *Summary  `json:"summary"`
}

// SuccessfulTotals returns the total durations of every successful outcome, in log order.
func (r Report) SuccessfulTotals() []float64 {
	var totals []float64
	for _, o := range r.Results {
		if o.OK() {
			totals = append(totals, o.TotalMs)
		}
	}
	return totals
}
