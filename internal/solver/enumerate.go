// Package solver provides the optimization backends behind the narrow
// interfaces.Solver contract: a MIP adapter for real instances and an
// exhaustive in-memory enumerator for small ones and for tests.
package solver

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
)

type enumVar struct {
	name  string
	index int
}

func (v *enumVar) Name() string { return v.name }

type enumConstraint struct {
	name     string
	expr     interfaces.LinearExpr
	relation interfaces.Relation
	bound    float64
}

// Enumerator is a pure-Go backend that searches the full boolean assignment
// space depth-first, pruning branches whose partial sums already violate a
// constraint or cannot beat the incumbent. It is exact, single-threaded and
// only suitable for small models.
type Enumerator struct {
	vars        []*enumVar
	constraints []enumConstraint
	objective   interfaces.LinearExpr
	maximize    bool
}

// NewEnumerator creates an empty enumeration backend.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

func (e *Enumerator) NewBoolVar(name string) interfaces.Variable {
	v := &enumVar{name: name, index: len(e.vars)}
	e.vars = append(e.vars, v)
	return v
}

func (e *Enumerator) AddConstraint(expr interfaces.LinearExpr, relation interfaces.Relation, bound float64, name string) {
	e.constraints = append(e.constraints, enumConstraint{
		name:     name,
		expr:     expr,
		relation: relation,
		bound:    bound,
	})
}

func (e *Enumerator) SetObjective(expr interfaces.LinearExpr, maximize bool) {
	e.objective = expr
	e.maximize = maximize
}

// search carries the mutable state of one solve.
type search struct {
	backend *Enumerator

	// objCoef[i] is the (sign-normalized) objective coefficient of variable
	// i; the search always maximizes.
	objCoef []float64

	// rows[i] lists the constraints variable i participates in, with its
	// coefficient there.
	rows [][]rowRef

	// sum[c] is the assigned-terms partial sum of constraint c; slackMin[c]
	// and slackMax[c] are the smallest and largest contributions the still
	// unassigned variables of c can add.
	sum      []float64
	slackMin []float64
	slackMax []float64

	values []int8 // -1 unassigned, otherwise 0/1

	best      []int8
	bestObj   float64
	bestFound bool

	// upper is the trivial objective bound (all profitable variables set);
	// once the incumbent is provably within the gap of it, the search stops.
	upper    float64
	gap      float64
	done     bool
	deadline time.Time
	ctx      context.Context
	nodes    int
}

type rowRef struct {
	constraint int
	coef       float64
}

// Solve exhaustively searches for the best feasible assignment. The gap
// tolerance is honored against the naive objective upper bound, so the
// search can stop early on instances where the bound is tight.
func (e *Enumerator) Solve(ctx context.Context, opts interfaces.SolveOptions) (*interfaces.Result, error) {
	if opts.GapTolerance < 0 {
		return nil, &interfaces.SolverError{Backend: "enumerate", Err: fmt.Errorf("negative gap tolerance %v", opts.GapTolerance)}
	}

	s := &search{
		backend: e,
		objCoef: make([]float64, len(e.vars)),
		rows:    make([][]rowRef, len(e.vars)),
		values:  make([]int8, len(e.vars)),
		gap:     opts.GapTolerance,
		ctx:     ctx,
	}
	if opts.TimeLimit > 0 {
		s.deadline = time.Now().Add(opts.TimeLimit)
	}

	sign := 1.0
	if !e.maximize {
		sign = -1.0
	}
	for _, t := range e.objective {
		s.objCoef[t.Var.(*enumVar).index] += sign * t.Coef
	}
	for i := range s.objCoef {
		s.upper += math.Max(0, s.objCoef[i])
	}

	s.sum = make([]float64, len(e.constraints))
	s.slackMin = make([]float64, len(e.constraints))
	s.slackMax = make([]float64, len(e.constraints))
	for ci, c := range e.constraints {
		for _, t := range c.expr {
			idx := t.Var.(*enumVar).index
			s.rows[idx] = append(s.rows[idx], rowRef{constraint: ci, coef: t.Coef})
			s.slackMin[ci] += math.Min(0, t.Coef)
			s.slackMax[ci] += math.Max(0, t.Coef)
		}
	}
	for i := range s.values {
		s.values[i] = -1
	}

	start := time.Now()
	if err := s.descend(0, 0); err != nil {
		return nil, &interfaces.SolverError{Backend: "enumerate", Err: err}
	}
	logger.Log.Debug("Enumeration finished",
		"variables", len(e.vars),
		"constraints", len(e.constraints),
		"nodes", s.nodes,
		"feasibleFound", s.bestFound,
		"elapsed", time.Since(start))

	if !s.bestFound {
		return interfaces.NewResult(interfaces.StatusNoSolution, 0, nil), nil
	}

	values := make(map[interfaces.Variable]float64, len(e.vars))
	for i, v := range e.vars {
		values[v] = float64(s.best[i])
	}
	return interfaces.NewResult(interfaces.StatusOptimalOrWithinGap, sign*s.bestObj, values), nil
}

// descend assigns variable i and recurses. objSoFar is the objective of the
// assigned prefix.
func (s *search) descend(i int, objSoFar float64) error {
	s.nodes++
	if s.nodes%1024 == 0 {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			return fmt.Errorf("time limit exceeded after %d nodes", s.nodes)
		}
	}
	if s.done {
		return nil
	}

	// Bound: even taking every remaining profitable variable cannot beat
	// the incumbent.
	if s.bestFound {
		remaining := 0.0
		for j := i; j < len(s.values); j++ {
			remaining += math.Max(0, s.objCoef[j])
		}
		if objSoFar+remaining <= s.bestObj {
			return nil
		}
	}

	if i == len(s.values) {
		if !s.bestFound || objSoFar > s.bestObj {
			s.bestObj = objSoFar
			s.bestFound = true
			s.best = append([]int8(nil), s.values...)
			if s.bestObj >= (1-s.gap)*s.upper {
				s.done = true
			}
		}
		return nil
	}

	for _, val := range []int8{1, 0} {
		s.values[i] = val
		feasible := true
		for _, r := range s.rows[i] {
			s.sum[r.constraint] += float64(val) * r.coef
			s.slackMin[r.constraint] -= math.Min(0, r.coef)
			s.slackMax[r.constraint] -= math.Max(0, r.coef)
			if !s.satisfiable(r.constraint) {
				feasible = false
			}
		}
		// Unrelated constraints cannot have become violated, so only the
		// touched rows were rechecked.
		if feasible {
			if err := s.descend(i+1, objSoFar+float64(val)*s.objCoef[i]); err != nil {
				return err
			}
		}
		for _, r := range s.rows[i] {
			s.sum[r.constraint] -= float64(val) * r.coef
			s.slackMin[r.constraint] += math.Min(0, r.coef)
			s.slackMax[r.constraint] += math.Max(0, r.coef)
		}
		if s.done {
			break
		}
	}
	s.values[i] = -1
	return nil
}

// satisfiable reports whether constraint ci can still be satisfied by some
// completion of the current partial assignment.
func (s *search) satisfiable(ci int) bool {
	c := &s.backend.constraints[ci]
	low := s.sum[ci] + s.slackMin[ci]
	high := s.sum[ci] + s.slackMax[ci]
	const eps = 1e-9
	switch c.relation {
	case interfaces.LessOrEqual:
		return low <= c.bound+eps
	case interfaces.GreaterOrEqual:
		return high >= c.bound-eps
	case interfaces.Equal:
		return low <= c.bound+eps && high >= c.bound-eps
	default:
		return false
	}
}

// ExportModel writes the model in CPLEX LP text format for inspection.
func (e *Enumerator) ExportModel(path string) error {
	var b strings.Builder
	if e.maximize {
		b.WriteString("Maximize\n obj:")
	} else {
		b.WriteString("Minimize\n obj:")
	}
	writeExpr(&b, e.objective)
	b.WriteString("\nSubject To\n")
	for _, c := range e.constraints {
		fmt.Fprintf(&b, " %s:", c.name)
		writeExpr(&b, c.expr)
		fmt.Fprintf(&b, " %s %g\n", c.relation, c.bound)
	}
	b.WriteString("Binary\n")
	for _, v := range e.vars {
		fmt.Fprintf(&b, " %s\n", v.name)
	}
	b.WriteString("End\n")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeExpr(b *strings.Builder, expr interfaces.LinearExpr) {
	for _, t := range expr {
		if t.Coef >= 0 {
			fmt.Fprintf(b, " + %g %s", t.Coef, t.Var.Name())
		} else {
			fmt.Fprintf(b, " - %g %s", -t.Coef, t.Var.Name())
		}
	}
}
