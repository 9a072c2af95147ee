/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// cache-placement-optimizer reads a video caching instance, formulates it as
// a mixed-integer program, solves it to within a relative gap, and writes
// the resulting placement plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/cachecast/cache-placement-optimizer/internal/config"
	"github.com/cachecast/cache-placement-optimizer/internal/logger"
	"github.com/cachecast/cache-placement-optimizer/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		outputPath = flag.String("out", "", "solution file path (default: <input> with .out extension)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <instance-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Error(err, "Failed to load configuration")
		os.Exit(1)
	}
	if cfg.Verbose {
		logger.Log.SetLevel(zapcore.DebugLevel)
	}

	out := *outputPath
	if out == "" {
		out = strings.TrimSuffix(inputPath, ".in") + ".out"
	}

	if _, err := pipeline.Run(context.Background(), cfg, inputPath, out); err != nil {
		logger.Log.Error(err, "Run failed", "input", inputPath)
		os.Exit(1)
	}
}
