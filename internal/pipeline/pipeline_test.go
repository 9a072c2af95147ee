package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cachecast/cache-placement-optimizer/internal/config"
	"github.com/cachecast/cache-placement-optimizer/internal/extractor"
	"github.com/cachecast/cache-placement-optimizer/internal/formulation"
	"github.com/cachecast/cache-placement-optimizer/internal/instance"
	"github.com/cachecast/cache-placement-optimizer/internal/solver"
)

var _ = Describe("Pipeline", func() {
	var (
		ctx        context.Context
		cfg        *config.Config
		dir        string
		inputPath  string
		outputPath string
	)

	writeInstance := func(contents string) {
		Expect(os.WriteFile(inputPath, []byte(contents), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		cfg = &config.Config{
			GapTolerance: config.DefaultGapTolerance,
			Backend:      solver.BackendEnumerate,
		}
		dir = GinkgoT().TempDir()
		inputPath = filepath.Join(dir, "videos.in")
		outputPath = filepath.Join(dir, "videos.out")
	})

	Context("worked example", func() {
		// One video of size 5, capacity 10, endpoint 10ms from the
		// datacenter and 2ms from the only cache, three requests.
		BeforeEach(func() {
			writeInstance("1 1 1 1 10\n5\n10 1\n0 2\n0 0 3\n")
		})

		It("places the video and reports the saved latency", func() {
			result, err := Run(ctx, cfg, inputPath, outputPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Objective).To(BeNumerically("==", 24), "3 requests * 8ms saved")
			Expect(result.Plan).To(Equal(extractor.Plan{0: {0}}))

			data, err := os.ReadFile(outputPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("1\n0 0\n"))
		})

		It("exports the model when configured", func() {
			cfg.ExportPath = filepath.Join(dir, "model.lp")
			_, err := Run(ctx, cfg, inputPath, outputPath)
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(cfg.ExportPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("z_e0_v0_c0"))
		})
	})

	Context("capacity-bound instance", func() {
		// Two videos of size 8 and a single cache of capacity 10: only one
		// video fits, and the one with more requests wins.
		BeforeEach(func() {
			writeInstance("2 1 2 1 10\n8 8\n10 1\n0 2\n0 0 5\n1 0 3\n")
		})

		It("stores at most one of the oversized videos", func() {
			result, err := Run(ctx, cfg, inputPath, outputPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Plan[0]).To(HaveLen(1))
			Expect(result.Plan).To(Equal(extractor.Plan{0: {0}}), "5 requests beat 3")
			Expect(result.Objective).To(BeNumerically("==", 40))
		})
	})

	Context("no profitable placement", func() {
		// The cache is slower than the datacenter, so every triple is
		// pruned and the optimum is zero.
		BeforeEach(func() {
			writeInstance("1 1 1 1 10\n5\n10 1\n0 30\n0 0 3\n")
		})

		It("still produces a capacity-feasible plan with objective zero", func() {
			result, err := Run(ctx, cfg, inputPath, outputPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Objective).To(BeZero())

			in, err := instance.ParseFile(inputPath)
			Expect(err).NotTo(HaveOccurred())
			for _, videos := range result.Plan {
				used := 0
				for _, v := range videos {
					used += in.VideoSizes[v]
				}
				Expect(used).To(BeNumerically("<=", in.CacheCapacity))
			}

			_, err = os.Stat(outputPath)
			Expect(err).NotTo(HaveOccurred(), "an output file is still written")
		})
	})

	Context("degenerate instance", func() {
		BeforeEach(func() {
			writeInstance("1 1 1 0 10\n5\n10 0\n0 0 3\n")
		})

		It("fails with an empty-model error and writes nothing", func() {
			_, err := Run(ctx, cfg, inputPath, outputPath)

			var empty *formulation.EmptyModelError
			Expect(errors.As(err, &empty)).To(BeTrue())
			Expect(outputPath).NotTo(BeAnExistingFile())
		})
	})

	Context("malformed instance", func() {
		BeforeEach(func() {
			writeInstance("1 1 1 1 10\n5\n10 1\n0 2\n0 7 3\n")
		})

		It("fails before model construction and writes nothing", func() {
			_, err := Run(ctx, cfg, inputPath, outputPath)

			var malformed *instance.MalformedInstanceError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(outputPath).NotTo(BeAnExistingFile())
		})
	})

	Context("unknown backend", func() {
		BeforeEach(func() {
			cfg.Backend = "gurobi"
			writeInstance("1 1 1 1 10\n5\n10 1\n0 2\n0 0 3\n")
		})

		It("fails before building the model", func() {
			_, err := Run(ctx, cfg, inputPath, outputPath)
			Expect(err).To(MatchError(ContainSubstring("unsupported solver backend")))
			Expect(outputPath).NotTo(BeAnExistingFile())
		})
	})
})
