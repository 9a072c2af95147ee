// Package pipeline runs the sequential optimization flow: parse the
// instance, build the formulation, solve, extract the plan and write it out.
// There is no concurrency here; any parallelism lives inside the solver
// backend and is opaque.
package pipeline

import (
	"context"
	"time"

	"github.com/cachecast/cache-placement-optimizer/internal/config"
	"github.com/cachecast/cache-placement-optimizer/internal/extractor"
	"github.com/cachecast/cache-placement-optimizer/internal/formulation"
	"github.com/cachecast/cache-placement-optimizer/internal/instance"
	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
	"github.com/cachecast/cache-placement-optimizer/internal/solver"
)

// Result reports one completed run.
type Result struct {
	Plan      extractor.Plan
	Objective float64
}

// Run executes one full optimization over inputPath and writes the plan to
// outputPath. Every failure is terminal: the run either produces one
// complete, gap-bounded-optimal plan or produces nothing.
func Run(ctx context.Context, cfg *config.Config, inputPath, outputPath string) (*Result, error) {
	start := time.Now()
	in, err := instance.ParseFile(inputPath)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Instance read", "path", inputPath, "elapsed", time.Since(start))

	backend, err := solver.New(cfg.Backend)
	if err != nil {
		return nil, err
	}

	buildStart := time.Now()
	model, err := formulation.Build(in, backend)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Formulation completed", "elapsed", time.Since(buildStart))

	if cfg.ExportPath != "" {
		if err := model.Export(cfg.ExportPath); err != nil {
			logger.Log.Warn("Model export failed", "path", cfg.ExportPath, "reason", err)
		} else {
			logger.Log.Info("Model exported", "path", cfg.ExportPath)
		}
	}

	solveStart := time.Now()
	result, err := model.Solve(ctx, interfaces.SolveOptions{
		GapTolerance: cfg.GapTolerance,
		TimeLimit:    cfg.TimeLimit,
		Verbose:      cfg.Verbose,
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Solve finished", "elapsed", time.Since(solveStart))

	plan, err := extractor.Extract(model, result)
	if err != nil {
		return nil, err
	}

	if err := extractor.WriteFile(outputPath, plan); err != nil {
		return nil, err
	}
	logger.Log.Info("Solution written",
		"path", outputPath,
		"objective", result.Objective,
		"totalElapsed", time.Since(start))

	return &Result{Plan: plan, Objective: result.Objective}, nil
}
