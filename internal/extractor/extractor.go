// Package extractor interprets a solved model: it rounds the assignment
// variables into a placement plan and serializes the plan to the standard
// output format.
package extractor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/cachecast/cache-placement-optimizer/internal/formulation"
	"github.com/cachecast/cache-placement-optimizer/internal/interfaces"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
)

// ErrNoSolution is returned when the solver reported zero feasible
// solutions. The run is terminal: no output file is produced.
var ErrNoSolution = errors.New("solver found no feasible solution")

// assignedThreshold rounds the solver's tolerance-fuzzed boolean values.
const assignedThreshold = 0.5

// Plan maps a cache index to the videos stored there, ascending. Caches
// holding nothing do not appear.
type Plan map[int][]int

// Extract reads the solved y values back through the model's handles and
// builds the placement plan. Video order within a cache is ascending by
// construction, independent of solver iteration order.
func Extract(m *formulation.Model, result *interfaces.Result) (Plan, error) {
	if result.Status == interfaces.StatusNoSolution {
		return nil, ErrNoSolution
	}

	plan := make(Plan)
	for c := 0; c < m.NumCaches(); c++ {
		for v := 0; v < m.NumVideos(); v++ {
			if result.Value(m.Assignment(v, c)) > assignedThreshold {
				plan[c] = append(plan[c], v)
			}
		}
	}

	logger.Log.Info("Placement plan extracted",
		"cachesUsed", len(plan),
		"objective", result.Objective)
	return plan, nil
}

// Write serializes the plan: the number of used caches, then one line per
// used cache with its id followed by its videos. Caches appear in ascending
// id order.
func Write(w io.Writer, plan Plan) error {
	bw := bufio.NewWriter(w)

	caches := make([]int, 0, len(plan))
	for c := range plan {
		caches = append(caches, c)
	}
	sort.Ints(caches)

	fmt.Fprintf(bw, "%d\n", len(caches))
	for _, c := range caches {
		bw.WriteString(strconv.Itoa(c))
		for _, v := range plan[c] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes the plan to path, creating or truncating it.
func WriteFile(path string, plan Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating solution file: %w", err)
	}
	if err := Write(f, plan); err != nil {
		f.Close()
		return fmt.Errorf("writing solution file: %w", err)
	}
	return f.Close()
}
