package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/fuse/estimator"
	"github.com/tailored-agentic-units/fuse/observability"
	"github.com/tailored-agentic-units/fuse/variable"
	"github.com/tailored-agentic-units/fuse/wire"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to estimator config file, JSON or YAML (optional)")
		load       = flag.String("load", "", "Path to a JSON variable dump to seed the graph instead of the demo trajectory")
		steps      = flag.Int("steps", 5, "Number of demo trajectory steps")
		iterations = flag.Int("iterations", 3, "Number of smoothing iterations")
		serve      = flag.String("serve", "", "Serve the inspect service on this address after smoothing (overrides config)")
		metrics    = flag.Bool("metrics", false, "Expose event counters at /metrics (overrides config)")
		dump       = flag.Bool("dump", false, "Write the final graph as JSON to stdout instead of printing it")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := estimator.DefaultConfig()
	if *configFile != "" {
		loaded, err := estimator.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *serve != "" {
		cfg.Inspect.Addr = *serve
	}
	if *metrics {
		cfg.Metrics = true
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	e, err := estimator.New(&cfg)
	if err != nil {
		log.Fatalf("Failed to create estimator: %v", err)
	}

	if *load != "" {
		if err := seedFromFile(e, *load); err != nil {
			log.Fatalf("Failed to load variables: %v", err)
		}
	} else if err := seedTrajectory(e.Graph(), *steps); err != nil {
		log.Fatalf("Failed to build demo trajectory: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for range *iterations {
		if err := e.Optimize(ctx, smooth); err != nil {
			log.Fatalf("Smoothing failed: %v", err)
		}
	}

	if *dump {
		data, err := wire.MarshalJSON(e.Graph())
		if err != nil {
			log.Fatalf("Failed to encode graph: %v", err)
		}
		os.Stdout.Write(data)
		fmt.Println()
	} else {
		for v := range e.Graph().All() {
			fmt.Print(variable.Sprint(v))
		}
		fmt.Printf("\nVariables: %d\n", e.Graph().Len())
	}

	if cfg.Inspect.Enabled() {
		if err := e.Serve(ctx); err != nil {
			log.Fatalf("Serve failed: %v", err)
		}
	}
}

func seedFromFile(e *estimator.Estimator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	vars, err := wire.UnmarshalJSON(data)
	if err != nil {
		return err
	}
	for _, v := range vars {
		if _, err := e.Graph().Add(v); err != nil {
			return err
		}
	}
	return nil
}
