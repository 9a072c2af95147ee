package solver

import (
	"context"
	"fmt"

	"github.com/nextmv-io/sdk/mip"

	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
)

type mipVar struct {
	name string
	v    mip.Bool
}

func (v *mipVar) Name() string { return v.name }

// MIPSolver adapts a nextmv MIP model to the narrow solver contract, using
// the HiGHS provider as the branch-and-bound engine.
type MIPSolver struct {
	provider mip.SolverProvider
	model    mip.Model
	vars     []*mipVar
}

// NewMIPSolver creates an empty MIP backend over the HiGHS provider.
func NewMIPSolver() *MIPSolver {
	return &MIPSolver{
		provider: "highs",
		model:    mip.NewModel(),
	}
}

func (s *MIPSolver) NewBoolVar(name string) interfaces.Variable {
	v := &mipVar{name: name, v: s.model.NewBool()}
	s.vars = append(s.vars, v)
	return v
}

func (s *MIPSolver) AddConstraint(expr interfaces.LinearExpr, relation interfaces.Relation, bound float64, name string) {
	var sense mip.Sense
	switch relation {
	case interfaces.LessOrEqual:
		sense = mip.LessThanOrEqual
	case interfaces.Equal:
		sense = mip.Equal
	case interfaces.GreaterOrEqual:
		sense = mip.GreaterThanOrEqual
	}
	c := s.model.NewConstraint(sense, bound)
	for _, t := range expr {
		c.NewTerm(t.Coef, t.Var.(*mipVar).v)
	}
}

func (s *MIPSolver) SetObjective(expr interfaces.LinearExpr, maximize bool) {
	obj := s.model.Objective()
	if maximize {
		obj.SetMaximize()
	} else {
		obj.SetMinimize()
	}
	for _, t := range expr {
		obj.NewTerm(t.Coef, t.Var.(*mipVar).v)
	}
}

// Solve submits the model to HiGHS. The provider has no cancellation hook,
// so the context is only honored between submission attempts; the time limit
// is enforced natively.
func (s *MIPSolver) Solve(ctx context.Context, opts interfaces.SolveOptions) (*interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &interfaces.SolverError{Backend: "highs", Err: err}
	}

	backend, err := mip.NewSolver(s.provider, s.model)
	if err != nil {
		return nil, &interfaces.SolverError{Backend: "highs", Err: fmt.Errorf("creating solver: %w", err)}
	}

	solution, err := backend.Solve(buildSolveOptions(opts))
	if err != nil {
		return nil, &interfaces.SolverError{Backend: "highs", Err: err}
	}

	if solution == nil || !solution.HasValues() {
		return interfaces.NewResult(interfaces.StatusNoSolution, 0, nil), nil
	}

	logger.Log.Debug("HiGHS solve finished",
		"optimal", solution.IsOptimal(),
		"objective", solution.ObjectiveValue(),
		"runtime", solution.RunTime())

	values := make(map[interfaces.Variable]float64, len(s.vars))
	for _, v := range s.vars {
		values[v] = solution.Value(v.v)
	}
	return interfaces.NewResult(interfaces.StatusOptimalOrWithinGap, solution.ObjectiveValue(), values), nil
}

// buildSolveOptions maps the generic solve options onto the provider's
// option struct.
func buildSolveOptions(opts interfaces.SolveOptions) mip.SolveOptions {
	solveOpts := mip.SolveOptions{Verbosity: mip.Off}
	if opts.Verbose {
		solveOpts.Verbosity = mip.High
	}
	solveOpts.MIP.Gap.Relative = opts.GapTolerance
	if opts.TimeLimit > 0 {
		solveOpts.Duration = opts.TimeLimit
	}
	return solveOpts
}

// ExportModel is not supported by the HiGHS provider.
func (s *MIPSolver) ExportModel(path string) error {
	return fmt.Errorf("highs backend cannot export models (requested path %q)", path)
}
