package benders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"ccnd/ndp"
	"ccnd/solver"
)

// Session runs the full decomposition on one instance. Sessions are single
// use: build one with NewSession, call Solve once.
type Session struct {
	inst   *ndp.Instance
	opts   Options
	effCap []float64

	master *Master
	subs   []*SubProblem
	gen    *cutGenerator
	mgr    *scenarioManager
	log    *zap.Logger
}

// NewSession validates the inputs and assembles the master, one evaluator
// per scenario, and the scenario manager.
func NewSession(inst *ndp.Instance, slv solver.Interface, opts Options) (*Session, error) {
	if inst == nil {
		return nil, ErrNilInstance
	}
	if slv == nil {
		return nil, ErrNilSolver
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	effCap := effectiveCapacities(inst)
	s := &Session{
		inst:   inst,
		opts:   opts,
		effCap: effCap,
		master: NewMaster(inst, effCap, opts, slv),
		gen:    newCutGenerator(inst, effCap, opts),
		mgr:    newScenarioManager(inst.NumScenarios(), opts.MasterScenario),
		log:    opts.Logger,
	}
	for scen := range inst.Scenarios {
		s.subs = append(s.subs, newSubProblem(inst, scen, opts.Family, effCap, slv, opts.FeasTol, opts.CutsetCuts))
	}

	return s, nil
}

// effectiveCapacities clamps every arc capacity to the largest total
// scenario demand. Flow through an arc never exceeds that total, so the
// clamp changes no verdict while keeping all formulations finite.
func effectiveCapacities(inst *ndp.Instance) []float64 {
	var maxTotal float64
	for s := range inst.Scenarios {
		if d := inst.TotalDemand(s); d > maxTotal {
			maxTotal = d
		}
	}

	caps := make([]float64, inst.NumArcs())
	for a, arc := range inst.Arcs {
		caps[a] = arc.Capacity
		if math.IsInf(caps[a], 1) || caps[a] > maxTotal {
			caps[a] = maxTotal
		}
	}

	return caps
}

// Solve iterates master solves and scenario evaluations until the design
// covers every scenario the master commits to, or a limit trips. The
// returned Result is always non-nil when the error is nil, including for
// infeasible instances.
func (s *Session) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()

	pool, err := ants.NewPool(s.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("benders: worker pool: %w", err)
	}
	defer pool.Release()

	s.log.Info("starting decomposition",
		zap.Int("arcs", s.inst.NumArcs()),
		zap.Int("commodities", s.inst.NumCommodities()),
		zap.Int("scenarios", s.inst.NumScenarios()),
		zap.Float64("alpha", s.opts.Alpha),
		zap.Stringer("family", s.opts.Family),
		zap.Int("workers", s.opts.Workers),
	)

	bounds := newBoundTracker()
	status := StatusIterationLimit
	var final *MasterSolution

	var deadline time.Time
	if s.opts.TimeLimit > 0 {
		deadline = start.Add(s.opts.TimeLimit)
	}

	for iter := 0; iter < s.opts.MaxIterations; iter++ {
		iterStart := time.Now()

		var remaining time.Duration
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				status = StatusTimeLimit
				break
			}
		}

		ms, err := s.master.Solve(ctx, remaining)
		if errors.Is(err, ErrMasterInfeasible) {
			s.log.Info("master infeasible", zap.Int("iteration", iter), zap.Int("cuts", s.master.NumCuts()))
			return s.buildResult(StatusInfeasible, nil, bounds, start), nil
		}
		if err != nil {
			return nil, err
		}
		final = ms
		if ms.Proven {
			bounds.observeLower(ms.Objective)
		}

		picked := s.mgr.selectScenarios(ms.Z)
		certs, err := s.evaluateAll(ctx, pool, picked, ms.Y)
		if err != nil {
			return nil, fmt.Errorf("benders: design [%s]: %w", designString(s.inst, ms.Y), err)
		}

		added, infeasible := 0, 0
		var warnings []string
		for i, scen := range picked {
			cert := certs[i]
			if cert.Warning != "" {
				warnings = append(warnings, cert.Warning)
			}
			if cert.Feasible {
				continue
			}
			infeasible++
			for _, cut := range s.gen.cutsFor(cert, s.subs[scen].model, ms.Y, scen) {
				if s.master.AddCut(cut) {
					added++
					s.log.Debug("cut added",
						zap.Int("scenario", scen),
						zap.Stringer("kind", cut.Kind),
						zap.Bool("strengthened", cut.Strengthened),
						zap.Float64("gamma", cut.Gamma),
					)
				}
			}
		}

		if infeasible == 0 {
			bounds.observeUpper(ms.Objective)
			switch {
			case bounds.converged(s.opts.GapTol):
				status = StatusOptimal
			case !deadline.IsZero():
				// The gap stayed open because the master solve was cut
				// short by the wall-clock budget.
				status = StatusTimeLimit
			default:
				status = StatusFeasible
			}
			bounds.record(iter, added, len(picked), time.Since(iterStart), warnings)
			break
		}
		if added == 0 {
			return nil, fmt.Errorf("benders: design [%s]: %d infeasible scenarios but no violated cut",
				designString(s.inst, ms.Y), infeasible)
		}

		bounds.record(iter, added, len(picked), time.Since(iterStart), warnings)
		s.log.Info("iteration",
			zap.Int("iteration", iter),
			zap.Float64("lower", bounds.lower),
			zap.Int("evaluated", len(picked)),
			zap.Int("infeasible", infeasible),
			zap.Int("cuts", added),
			zap.Int("pool", s.master.NumCuts()),
			zap.Duration("runtime", time.Since(iterStart)),
		)
	}

	if final != nil {
		s.mgr.finalize(final.Z)
	}
	res := s.buildResult(status, final, bounds, start)
	s.log.Info("decomposition finished",
		zap.Stringer("status", res.Status),
		zap.Int("iterations", res.Iterations()),
		zap.Float64("cost", res.Cost),
		zap.Int("cuts", res.NumCuts),
		zap.Duration("runtime", res.Runtime),
	)

	return res, nil
}

// evaluateAll certifies the selected scenarios against design y on the
// worker pool. Results come back indexed by position, so the caller sees
// them in ascending scenario order regardless of completion order.
func (s *Session) evaluateAll(ctx context.Context, pool *ants.Pool, picked []int, y []float64) ([]*Certificate, error) {
	certs := make([]*Certificate, len(picked))
	errs := make([]error, len(picked))

	var wg sync.WaitGroup
	for i, scen := range picked {
		wg.Add(1)
		sub := s.subs[scen]
		if err := pool.Submit(func() {
			defer wg.Done()
			certs[i], errs[i] = sub.Evaluate(ctx, y)
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("benders: submit scenario %d: %w", scen, err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return certs, nil
}

// buildResult assembles the Result from the terminal state. A nil master
// solution (time limit before the first solve finished, or an infeasible
// master) yields an empty design.
func (s *Session) buildResult(status TerminationStatus, final *MasterSolution, bounds *boundTracker, start time.Time) *Result {
	res := &Result{
		Status:        status,
		Decisions:     make(map[string]float64, s.inst.NumArcs()),
		DecisionCosts: make(map[string]float64, s.inst.NumArcs()),
		LowerBound:    bounds.lower,
		UpperBound:    bounds.upper,
		NumCuts:       s.master.NumCuts(),
		CutKinds:      make(map[string]int),
		History:       bounds.history,
		Runtime:       time.Since(start),
	}
	for _, cut := range s.master.Cuts() {
		res.CutKinds[cut.Kind.String()]++
	}
	for a, arc := range s.inst.Arcs {
		name := arc.String()
		res.DecisionCosts[name] = arc.FixedCost
		if final != nil {
			res.Decisions[name] = final.Y[a]
			res.Cost += arc.FixedCost * final.Y[a]
		} else {
			res.Decisions[name] = 0
		}
	}
	for _, scen := range s.mgr.excluded() {
		res.ExcludedScenarios = append(res.ExcludedScenarios, scen)
		res.ExcludedProbability += s.inst.Scenarios[scen].Probability
	}

	return res
}

// designString lists the built arcs for log and error context.
func designString(inst *ndp.Instance, y []float64) string {
	var parts []string
	for a, arc := range inst.Arcs {
		if y[a] > 0.5 {
			parts = append(parts, arc.String())
		}
	}
	if len(parts) == 0 {
		return "empty"
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}

	return out
}
