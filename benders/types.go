package benders

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors of the decomposition engine.
var (
	// ErrMasterInfeasible is the terminal "no design satisfies the
	// accumulated cuts at this risk level" condition. It is surfaced as
	// StatusInfeasible on the Result, not returned from Solve.
	ErrMasterInfeasible = errors.New("benders: master problem infeasible")

	// ErrBadOptions reports an invalid option combination.
	ErrBadOptions = errors.New("benders: invalid options")

	// ErrNilInstance is returned when no instance is supplied.
	ErrNilInstance = errors.New("benders: instance is nil")

	// ErrNilSolver is returned when no solver collaborator is supplied.
	ErrNilSolver = errors.New("benders: solver is nil")
)

// Family selects the subproblem formulation used to produce feasibility
// cuts (the slack placement in the phase-1 LP).
type Family int

const (
	// BB is the basic Benders formulation: one slack per constraint.
	// Cheapest cuts, usually the weakest.
	BB Family = iota

	// MIS places a single slack on the design-linked (capacity) rows,
	// after Fischetti et al. (2010); duals then identify a minimal
	// infeasible subsystem.
	MIS

	// SNC applies the standard normalisation condition of Balas (1997):
	// a single slack across all rows.
	SNC

	// FlowMIS restricts the single slack to the demand rows, exploiting
	// flow conservation structure for sparser subsystems.
	FlowMIS
)

// String returns the canonical family name as used by the CLI.
func (f Family) String() string {
	switch f {
	case BB:
		return "BB"
	case MIS:
		return "MIS"
	case SNC:
		return "SNC"
	case FlowMIS:
		return "FlowMIS"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily maps a name onto a Family, ignoring case.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(s) {
	case "bb":
		return BB, nil
	case "mis":
		return MIS, nil
	case "snc":
		return SNC, nil
	case "flowmis":
		return FlowMIS, nil
	default:
		return 0, fmt.Errorf("%w: unknown cut family %q", ErrBadOptions, s)
	}
}

// CutKind tags a cut with the mechanism that generated it.
type CutKind int

const (
	// KindClassical: dual feasibility cut from the BB formulation.
	KindClassical CutKind = iota
	// KindMIS: dual cut from the MIS formulation.
	KindMIS
	// KindSNC: dual cut from the SNC formulation.
	KindSNC
	// KindFlowMIS: dual cut from the FlowMIS formulation.
	KindFlowMIS
	// KindMetric: cut-set inequality read off a minimum cut (also used
	// for the static valid inequalities seeded into the master).
	KindMetric
	// KindCombinatorial: no-good cut over the unbuilt arcs.
	KindCombinatorial
)

// String renders the kind for logs and result records.
func (k CutKind) String() string {
	switch k {
	case KindClassical:
		return "classical"
	case KindMIS:
		return "mis"
	case KindSNC:
		return "snc"
	case KindFlowMIS:
		return "flowmis"
	case KindMetric:
		return "metric"
	case KindCombinatorial:
		return "combinatorial"
	default:
		return fmt.Sprintf("CutKind(%d)", int(k))
	}
}

// dualKind maps a formulation onto the kind of the cuts its duals yield.
func (f Family) dualKind() CutKind {
	switch f {
	case MIS:
		return KindMIS
	case SNC:
		return KindSNC
	case FlowMIS:
		return KindFlowMIS
	default:
		return KindClassical
	}
}

// Options configures a decomposition session.
//
// The zero value is not usable; start from DefaultOptions.
type Options struct {
	// Alpha is the acceptable risk level: the probability mass of
	// scenarios the design may leave unroutable. Must lie in [0, 1].
	Alpha float64

	// Family selects the subproblem formulation (BB, MIS, SNC, FlowMIS).
	Family Family

	// CombinatorialCuts additionally derives a no-good cut for every
	// infeasible scenario. Off by default (extra master size).
	CombinatorialCuts bool

	// MetricCuts strengthens the constant of dual feasibility cuts via
	// shortest paths under the dual arc prices (Costa et al. 2009).
	// On by default.
	MetricCuts bool

	// CutsetCuts seeds the master with static cut-set valid inequalities
	// and separates violated ones from minimum cuts during the run.
	// On by default.
	CutsetCuts bool

	// MasterScenario enables the master-scenario technique: scenarios are
	// promoted lazily into the required set, and the chance-constrained
	// mean-value scenario is embedded into the master as an always-valid
	// relaxation (partial Benders). On by default. When off, every
	// scenario is required from the first iteration.
	MasterScenario bool

	// GapTol is the absolute optimality gap below which the run stops.
	GapTol float64

	// FeasTol decides when a phase-1 subproblem objective counts as zero.
	FeasTol float64

	// MaxIterations bounds the number of master resolves.
	MaxIterations int

	// TimeLimit bounds the wall clock of the whole run; checked at
	// iteration boundaries only. Zero means unlimited.
	TimeLimit time.Duration

	// Workers sizes the scenario evaluation pool. Zero means NumCPU.
	Workers int

	// Logger receives per-iteration progress; nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the engine defaults: FlowMIS cuts with metric
// strengthening, cut-set inequalities and the master-scenario technique on,
// combinatorial cuts off.
func DefaultOptions() Options {
	return Options{
		Alpha:          0,
		Family:         FlowMIS,
		MetricCuts:     true,
		CutsetCuts:     true,
		MasterScenario: true,
		GapTol:         1e-6,
		FeasTol:        1e-6,
		MaxIterations:  1000,
		Workers:        runtime.NumCPU(),
	}
}

// validate normalizes and checks the options.
func (o *Options) validate() error {
	if o.Alpha < 0 || o.Alpha > 1 {
		return fmt.Errorf("%w: alpha %g outside [0,1]", ErrBadOptions, o.Alpha)
	}
	if o.Family < BB || o.Family > FlowMIS {
		return fmt.Errorf("%w: unknown cut family %d", ErrBadOptions, int(o.Family))
	}
	if o.GapTol <= 0 {
		o.GapTol = 1e-6
	}
	if o.FeasTol <= 0 {
		o.FeasTol = 1e-6
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 1000
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return nil
}

// TerminationStatus classifies how a run ended.
type TerminationStatus int

const (
	// StatusOptimal: gap closed within GapTol.
	StatusOptimal TerminationStatus = iota
	// StatusTimeLimit: wall-clock budget exhausted; best incumbent kept.
	StatusTimeLimit
	// StatusIterationLimit: MaxIterations reached; best incumbent kept.
	StatusIterationLimit
	// StatusInfeasible: no design satisfies the chance constraint at the
	// requested alpha.
	StatusInfeasible
	// StatusFeasible: the incumbent design covers every required scenario
	// but the master stopped short of proving optimality, with neither
	// limit exhausted.
	StatusFeasible
)

// String renders the status.
func (s TerminationStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusTimeLimit:
		return "time-limit"
	case StatusIterationLimit:
		return "iteration-limit"
	case StatusInfeasible:
		return "infeasible"
	case StatusFeasible:
		return "feasible"
	default:
		return fmt.Sprintf("TerminationStatus(%d)", int(s))
	}
}
