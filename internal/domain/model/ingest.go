package model

import (
	"encoding/json"
	"time"
)

// SymbolResult is the outcome of one symbol's connect/fetch/write/disconnect cycle.
type SymbolResult struct {
	Symbol  string        `json:"symbol"`
	Bars    int           `json:"bars"`
	Written int           `json:"written"`
	Elapsed time.Duration `json:"elapsed"`
	Err     error         `json:"-"`
}

// OK reports whether the symbol was written without error.
func (r SymbolResult) OK() bool { return r.Err == nil }

// MarshalJSON renders Err as a message and Elapsed as a duration string.
func (r SymbolResult) MarshalJSON() ([]byte, error) {
	type view struct {
		Symbol  string `json:"symbol"`
		Bars    int    `json:"bars"`
		Written int    `json:"written"`
		Elapsed string `json:"elapsed"`
		Error   string `json:"error,omitempty"`
	}
	v := view{Symbol: r.Symbol, Bars: r.Bars, Written: r.Written, Elapsed: r.Elapsed.String()}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return json.Marshal(v)
}

// IngestReport summarises a full pass over the symbol list.
type IngestReport struct {
	RunID    string         `json:"run_id"`
	Mode     DataMode       `json:"mode"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Results  []SymbolResult `json:"results"`
}

// Failed lists the symbols that did not make it into the store.
func (r *IngestReport) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res.Symbol)
		}
	}
	return out
}

// Written returns the total number of points written in the run.
func (r *IngestReport) Written() int {
	n := 0
	for _, res := range r.Results {
		n += res.Written
	}
	return n
}

// IngestJob is one symbol scheduled within a run. Seq is its position in the
// symbol list and orders the report.
type IngestJob struct {
	Seq    int
	Symbol string
}

// IngestOutcome pairs a finished job with its result.
type IngestOutcome struct {
	Job    IngestJob
	Result SymbolResult
}
