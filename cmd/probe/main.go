// Command probe verifies a running launch dashboard over its HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/launchdash/internal/probe"
	"github.com/okian/launchdash/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		ranges  = flag.Int("ranges", probe.DefaultRanges, "Number of random payload ranges per site")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Log every passing check")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	stats, err := probe.Run(ctx, &probe.Config{
		BaseURL: *baseURL,
		Ranges:  *ranges,
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	})
	if stats != nil {
		probe.WriteReport(os.Stdout, stats)
	}
	if err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		if errors.Is(err, probe.ErrPropertyViolation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
