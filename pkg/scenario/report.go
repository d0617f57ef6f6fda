package scenario

import (
	"github.com/joshuapare/halfbit/mem/alloc"
)

// Report is the outcome of a scenario run.
type Report struct {
	Name      string       `json:"name"`
	Allocator string       `json:"allocator"`
	Steps     []StepResult `json:"steps"`
	Live      []LiveBlock  `json:"live,omitempty"`
	LiveBytes uint64       `json:"live_bytes"`
	Peak      uint64       `json:"peak_bytes"`
	Stats     Stats        `json:"stats"`
}

// StepResult records what one step did.
type StepResult struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	ID     string `json:"id"`
	Result string `json:"result"`
	Detail string `json:"detail,omitempty"`
}

// LiveBlock is a block still allocated when the run ended.
type LiveBlock struct {
	Seq   int    `json:"seq"`
	Size  uint64 `json:"size"`
	Align uint64 `json:"align"`
}

// Stats counts the allocator calls a run made.
type Stats struct {
	Allocs   int `json:"allocs"`
	Frees    int `json:"frees"`
	Grows    int `json:"grows"`
	Shrinks  int `json:"shrinks"`
	Failures int `json:"failures"`
}

// Failed returns the steps whose result did not match, in order.
func (r *Report) Failed(sc *Scenario) []StepResult {
	var failed []StepResult
	for _, res := range r.Steps {
		if res.Index < len(sc.Steps) && res.Result != sc.Steps[res.Index].ExpectedOutcome() {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *Report) fill(tr *alloc.Tracker) {
	stats := tr.Stats()
	r.LiveBytes = uint64(stats.LiveBytes)
	r.Peak = uint64(stats.PeakBytes)
	r.Stats = Stats{
		Allocs:   stats.Allocs,
		Frees:    stats.Frees,
		Grows:    stats.Grows,
		Shrinks:  stats.Shrinks,
		Failures: stats.Failures,
	}
	for _, b := range tr.Live() {
		r.Live = append(r.Live, LiveBlock{
			Seq:   b.Seq,
			Size:  uint64(b.Size),
			Align: uint64(b.Align.Get()),
		})
	}
}
