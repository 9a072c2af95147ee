package solver

import (
	"testing"
	"time"

	"github.com/nextmv-io/sdk/mip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
)

// The MIP adapter is exercised through its modeling surface only: solving
// requires the HiGHS plugin binary, which tests cannot assume is installed.

func TestMIPSolverModelBuilding(t *testing.T) {
	s := NewMIPSolver()

	y := s.NewBoolVar("y_v0_c0")
	z := s.NewBoolVar("z_e0_v0_c0")
	require.Equal(t, "y_v0_c0", y.Name())
	require.Equal(t, "z_e0_v0_c0", z.Name())

	s.AddConstraint(interfaces.LinearExpr{{Coef: 5, Var: y}},
		interfaces.LessOrEqual, 10, "cap_cache_0")
	s.AddConstraint(interfaces.LinearExpr{{Coef: 1, Var: z}, {Coef: -1, Var: y}},
		interfaces.LessOrEqual, 0, "link_e0_v0_c0")
	s.SetObjective(interfaces.LinearExpr{{Coef: 24, Var: z}}, true)

	assert.Len(t, s.model.Vars(), 2)
	assert.Len(t, s.model.Constraints(), 2)
	assert.True(t, s.model.Objective().IsMaximize())
	require.Len(t, s.model.Objective().Terms(), 1)
	assert.Equal(t, 24.0, s.model.Objective().Terms()[0].Coefficient())
}

func TestBuildSolveOptions(t *testing.T) {
	opts := buildSolveOptions(interfaces.SolveOptions{
		GapTolerance: 0.01,
		TimeLimit:    30 * time.Second,
		Verbose:      true,
	})
	assert.Equal(t, 0.01, opts.MIP.Gap.Relative)
	assert.Equal(t, 30*time.Second, opts.Duration)
	assert.Equal(t, mip.High, opts.Verbosity)

	quiet := buildSolveOptions(interfaces.SolveOptions{GapTolerance: 0.005})
	assert.Equal(t, 0.005, quiet.MIP.Gap.Relative)
	assert.Equal(t, mip.Off, quiet.Verbosity)
	assert.Zero(t, quiet.Duration, "no time limit means the provider default")
}

func TestMIPSolverExportUnsupported(t *testing.T) {
	s := NewMIPSolver()
	assert.Error(t, s.ExportModel("model.lp"))
}
