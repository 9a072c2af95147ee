package solver

import (
	"fmt"

	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
)

// Backend names accepted by the factory.
const (
	BackendHighs     = "highs"
	BackendEnumerate = "enumerate"
)

// New creates a fresh solver backend by name. Each call returns an empty
// model; backends are never reused across runs.
func New(backend string) (interfaces.Solver, error) {
	switch backend {
	case BackendHighs:
		logger.Log.Info("Creating HiGHS MIP backend")
		return NewMIPSolver(), nil
	case BackendEnumerate:
		logger.Log.Info("Creating in-memory enumeration backend")
		return NewEnumerator(), nil
	default:
		return nil, fmt.Errorf("unsupported solver backend %q", backend)
	}
}
