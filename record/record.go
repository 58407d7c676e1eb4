// Package record persists run results as JSON files. Numeric fields are
// rounded to two decimals, which keeps result files small without losing
// anything the downstream analysis cares about.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"ccnd/benders"
)

// Iteration is one decomposition iteration in a stored record.
type Iteration struct {
	Lower     *float64 `json:"lower"`
	Cuts      int      `json:"cuts"`
	Evaluated int      `json:"evaluated"`
	RunTime   float64  `json:"run_time"`
}

// Record is the serialized form of a run.
type Record struct {
	Instance string  `json:"instance"`
	Alpha    float64 `json:"alpha"`
	Family   string  `json:"family,omitempty"`

	Status     string             `json:"status"`
	Optimal    bool               `json:"is_optimal"`
	Objective  float64            `json:"objective"`
	LowerBound *float64           `json:"lower_bound"`
	UpperBound *float64           `json:"upper_bound"`
	RunTime    float64            `json:"run_time"`
	NumCuts    int                `json:"num_cuts"`
	CutKinds   map[string]int     `json:"cut_kinds,omitempty"`
	Decisions  map[string]float64 `json:"decisions"`
	Costs      map[string]float64 `json:"decision_costs"`

	ExcludedScenarios   []int   `json:"excluded_scenarios,omitempty"`
	ExcludedProbability float64 `json:"excluded_probability"`

	Iterations []Iteration `json:"iterations"`
}

// FromResult converts a run result into its stored form.
func FromResult(res *benders.Result, instance string, alpha float64, family string) *Record {
	rec := &Record{
		Instance:            instance,
		Alpha:               alpha,
		Family:              family,
		Status:              res.Status.String(),
		Optimal:             res.Optimal(),
		Objective:           round2(res.Cost),
		LowerBound:          round2Bound(res.LowerBound),
		UpperBound:          round2Bound(res.UpperBound),
		RunTime:             round2(res.Runtime.Seconds()),
		NumCuts:             res.NumCuts,
		CutKinds:            res.CutKinds,
		Decisions:           res.Decisions,
		Costs:               res.DecisionCosts,
		ExcludedScenarios:   res.ExcludedScenarios,
		ExcludedProbability: round2(res.ExcludedProbability),
	}
	for _, rc := range res.History {
		rec.Iterations = append(rec.Iterations, Iteration{
			Lower:     round2Bound(rc.Lower),
			Cuts:      rc.Cuts,
			Evaluated: rc.Evaluated,
			RunTime:   round2(rc.Runtime.Seconds()),
		})
	}

	return rec
}

// RootRecord is the serialized form of a root-relaxation run.
type RootRecord struct {
	LPRunTime    float64 `json:"lp_run_time"`
	LPObjective  float64 `json:"lp_objective"`
	MIPRunTime   float64 `json:"mip_run_time"`
	MIPObjective float64 `json:"mip_objective"`
}

// FromRootResult converts a root-relaxation result into its stored form.
func FromRootResult(res *benders.RootResult) *RootRecord {
	return &RootRecord{
		LPRunTime:    round2(res.LPRunTime.Seconds()),
		LPObjective:  round2(res.LPObjective),
		MIPRunTime:   round2(res.MIPRunTime.Seconds()),
		MIPObjective: round2(res.MIPObjective),
	}
}

// ToFile writes the record as JSON.
func (r *RootRecord) ToFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("record: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("record: write %s: %w", path, err)
	}

	return nil
}

// RootFromFile reads a previously stored root record.
func RootFromFile(path string) (*RootRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("record: read %s: %w", path, err)
	}
	var rec RootRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record: parse %s: %w", path, err)
	}

	return &rec, nil
}

// ToFile writes the record as JSON.
func (r *Record) ToFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("record: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("record: write %s: %w", path, err)
	}

	return nil
}

// FromFile reads a previously stored record.
func FromFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("record: read %s: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record: parse %s: %w", path, err)
	}

	return &rec, nil
}

// round2 rounds a finite-by-construction value to two decimals.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// round2Bound rounds a bound to two decimals. Bounds stay non-finite until
// the run tightens them; those serialize as null, not as a zero cost.
func round2Bound(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	r := math.Round(v*100) / 100

	return &r
}
