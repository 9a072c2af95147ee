package interfaces

import (
	"context"
)

// Solver is the narrow contract the formulation layer needs from a discrete
// optimization backend: boolean variables, linear constraints, a linear
// objective, and a blocking solve bounded by a relative optimality gap.
// The search algorithm behind it (branch-and-bound, cutting planes, plain
// enumeration) is opaque, as is any internal parallelism.
type Solver interface {
	// NewBoolVar creates a boolean decision variable. The name is used for
	// model dumps and diagnostics only.
	NewBoolVar(name string) Variable

	// AddConstraint adds the linear constraint `expr relation bound`.
	AddConstraint(expr LinearExpr, relation Relation, bound float64, name string)

	// SetObjective installs the linear objective. Maximization when
	// maximize is true, minimization otherwise. Calling it again replaces
	// the previous objective.
	SetObjective(expr LinearExpr, maximize bool)

	// Solve runs the backend until it has a solution provably within the
	// configured gap of the optimum, or has proven that no feasible
	// solution exists. It blocks for the duration of the search.
	Solve(ctx context.Context, opts SolveOptions) (*Result, error)

	// ExportModel writes the built model to path in a human-inspectable
	// text form. Backends that cannot serialize their model return an
	// error; callers treat export as best-effort.
	ExportModel(path string) error
}

// Variable is an opaque, comparable handle to a boolean decision variable.
// A handle is only meaningful to the Solver that issued it.
type Variable interface {
	Name() string
}
