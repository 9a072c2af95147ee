// Package formulation turns an instance into a discrete optimization model:
// assignment variables y[v,c] for every video/cache pair, serving variables
// z[e,v,c] for every profitable request/cache combination, the capacity,
// linking and single-source constraint families, and a latency-savings
// objective to maximize.
package formulation

import (
	"context"
	"fmt"

	"github.com/cachecast/cache-placement-optimizer/internal/instance"
	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
)

// EmptyModelError reports a degenerate instance with no videos or no caches.
// There is no decision to make, so nothing is submitted to the solver.
type EmptyModelError struct {
	Videos int
	Caches int
}

func (e *EmptyModelError) Error() string {
	return fmt.Sprintf("degenerate instance: %d videos, %d caches", e.Videos, e.Caches)
}

// Triple identifies one serving variable z[e,v,c].
type Triple struct {
	Endpoint int
	Video    int
	Cache    int
}

// ServingVar is a surviving z variable together with its objective
// coefficient: request count times the latency saved over the datacenter.
type ServingVar struct {
	Var  interfaces.Variable
	Gain float64
}

// Model holds the variable handles of one built formulation. It is created
// once per run and consulted again only to read the solved assignment back.
type Model struct {
	solver interfaces.Solver

	numVideos int
	numCaches int

	y       [][]interfaces.Variable // [video][cache]
	serving map[Triple]ServingVar
}

// Build constructs variables, constraints and objective over the instance
// and submits them to the solver. The returned model keeps the variable
// handles needed to interpret the solver's assignment.
func Build(in *instance.Instance, s interfaces.Solver) (*Model, error) {
	if in.NumVideos == 0 || in.NumCaches == 0 {
		return nil, &EmptyModelError{Videos: in.NumVideos, Caches: in.NumCaches}
	}

	m := &Model{
		solver:    s,
		numVideos: in.NumVideos,
		numCaches: in.NumCaches,
		serving:   make(map[Triple]ServingVar),
	}

	// y[v,c] is created for the full cross-product: the capacity constraints
	// range over every pair regardless of whether any request profits from it.
	m.y = make([][]interfaces.Variable, in.NumVideos)
	for v := 0; v < in.NumVideos; v++ {
		m.y[v] = make([]interfaces.Variable, in.NumCaches)
		for c := 0; c < in.NumCaches; c++ {
			m.y[v][c] = s.NewBoolVar(fmt.Sprintf("y_v%d_c%d", v, c))
		}
	}

	// z[e,v,c] exists only where serving from the cache strictly beats the
	// datacenter. Pruning here is what keeps dense instances tractable: a
	// variable with save <= 0 could never be profitably set and would only
	// enlarge the model.
	pairCaches := make(map[instance.RequestKey][]int)
	for key, count := range in.Requests {
		if count <= 0 {
			continue
		}
		ep := in.Endpoints[key.Endpoint]
		for c, latency := range ep.CacheLatencies {
			save := ep.DCLatency - latency
			if save <= 0 {
				continue
			}
			t := Triple{Endpoint: key.Endpoint, Video: key.Video, Cache: c}
			m.serving[t] = ServingVar{
				Var:  s.NewBoolVar(fmt.Sprintf("z_e%d_v%d_c%d", t.Endpoint, t.Video, t.Cache)),
				Gain: float64(count) * float64(save),
			}
			pairCaches[key] = append(pairCaches[key], c)
		}
	}

	// Capacity: per cache, the stored videos fit in X.
	for c := 0; c < in.NumCaches; c++ {
		expr := make(interfaces.LinearExpr, 0, in.NumVideos)
		for v := 0; v < in.NumVideos; v++ {
			expr = append(expr, interfaces.Term{Coef: float64(in.VideoSizes[v]), Var: m.y[v][c]})
		}
		s.AddConstraint(expr, interfaces.LessOrEqual, float64(in.CacheCapacity),
			fmt.Sprintf("cap_cache_%d", c))
	}

	// Linking: z - y <= 0, a request can only be served from a cache that
	// actually holds the video.
	for t, sv := range m.serving {
		expr := interfaces.LinearExpr{
			{Coef: 1, Var: sv.Var},
			{Coef: -1, Var: m.y[t.Video][t.Cache]},
		}
		s.AddConstraint(expr, interfaces.LessOrEqual, 0,
			fmt.Sprintf("link_e%d_v%d_c%d", t.Endpoint, t.Video, t.Cache))
	}

	// Single-source: each (endpoint, video) group is served from at most one
	// cache, summed over exactly the caches that survived pruning. A group
	// with no surviving variable is implicitly served from the datacenter.
	for key, caches := range pairCaches {
		expr := make(interfaces.LinearExpr, 0, len(caches))
		for _, c := range caches {
			sv := m.serving[Triple{Endpoint: key.Endpoint, Video: key.Video, Cache: c}]
			expr = append(expr, interfaces.Term{Coef: 1, Var: sv.Var})
		}
		s.AddConstraint(expr, interfaces.LessOrEqual, 1,
			fmt.Sprintf("unique_e%d_v%d", key.Endpoint, key.Video))
	}

	// The objective is total latency savings relative to the datacenter
	// path, not total latency: unprofitable triples are invisible to the
	// model, and the datacenter cost is a constant.
	objective := make(interfaces.LinearExpr, 0, len(m.serving))
	gains := make([]float64, 0, len(m.serving))
	for _, sv := range m.serving {
		objective = append(objective, interfaces.Term{Coef: sv.Gain, Var: sv.Var})
		gains = append(gains, sv.Gain)
	}
	s.SetObjective(objective, true)

	logger.Log.Info("Model built",
		"assignmentVars", in.NumVideos*in.NumCaches,
		"servingVars", len(m.serving),
		"requestGroups", len(in.Requests),
		"servedGroups", len(pairCaches))
	if len(gains) > 0 {
		logger.Log.Debug("Gain distribution", "summary", summarizeGains(gains))
	}

	return m, nil
}

// Solve hands the built model to the backend and blocks until it converges
// within the gap or proves there is no solution.
func (m *Model) Solve(ctx context.Context, opts interfaces.SolveOptions) (*interfaces.Result, error) {
	return m.solver.Solve(ctx, opts)
}

// Export writes the model to path for inspection. Best-effort.
func (m *Model) Export(path string) error {
	return m.solver.ExportModel(path)
}

// NumVideos returns the video dimension of the assignment variables.
func (m *Model) NumVideos() int { return m.numVideos }

// NumCaches returns the cache dimension of the assignment variables.
func (m *Model) NumCaches() int { return m.numCaches }

// Assignment returns the handle of y[v,c].
func (m *Model) Assignment(video, cache int) interfaces.Variable {
	return m.y[video][cache]
}

// ServingVars exposes the surviving z variables keyed by their triple.
func (m *Model) ServingVars() map[Triple]ServingVar {
	return m.serving
}
