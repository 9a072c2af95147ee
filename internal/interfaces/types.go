package interfaces

import (
	"fmt"
	"time"
)

// Relation is the comparison sense of a linear constraint.
type Relation int

const (
	LessOrEqual Relation = iota
	Equal
	GreaterOrEqual
)

// String returns the mathematical symbol for the relation.
func (r Relation) String() string {
	switch r {
	case LessOrEqual:
		return "<="
	case Equal:
		return "="
	case GreaterOrEqual:
		return ">="
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Term is one coefficient·variable product of a linear expression.
type Term struct {
	Coef float64
	Var  Variable
}

// LinearExpr is a sum of terms. Variables may appear at most once.
type LinearExpr []Term

// SolveOptions carries the per-run solver configuration. It is passed
// explicitly into Solve rather than mutated on the backend, so a backend
// value can be reused across table tests without hidden state.
type SolveOptions struct {
	// GapTolerance is the relative optimality gap at which the backend may
	// stop: 0.005 means a solution provably within 0.5% of the optimum is
	// accepted. Must be nonnegative.
	GapTolerance float64

	// TimeLimit bounds the search wall time. Zero means no limit.
	TimeLimit time.Duration

	// Verbose enables backend-native progress output.
	Verbose bool
}

// Status is the outcome of a solve.
type Status int

const (
	// StatusOptimalOrWithinGap means the backend found a feasible solution
	// within the requested gap of the optimum.
	StatusOptimalOrWithinGap Status = iota

	// StatusNoSolution means the backend proved there is no feasible
	// solution (or found none before exhausting its search).
	StatusNoSolution
)

// Result holds the outcome of a solve and the assigned variable values.
type Result struct {
	Status    Status
	Objective float64

	values map[Variable]float64
}

// NewResult builds a Result from a value assignment. Backends hand over
// ownership of the map.
func NewResult(status Status, objective float64, values map[Variable]float64) *Result {
	return &Result{Status: status, Objective: objective, values: values}
}

// Value returns the assigned value of v, in the backend's tolerance-rounded
// boolean domain [0,1]. Unknown variables report 0.
func (r *Result) Value(v Variable) float64 {
	return r.values[v]
}

// SolverError wraps an internal backend failure (numerical trouble, resource
// exhaustion, a broken subprocess). It is propagated opaquely: the caller
// never retries or relaxes the gap.
type SolverError struct {
	Backend string
	Err     error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver backend %q failed: %v", e.Backend, e.Err)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}
