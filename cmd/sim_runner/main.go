// Headless batch runner: reads a JSON configuration, runs the simulation to
// completion (or a tick limit) without audio or rendering, and emits the
// final state as JSON. Useful for scripted experiments over grid sizes,
// fill ratios and speed presets.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/retrodisk/defragsim/simulator"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON configuration file (optional, defaults used if omitted)")
	maxTicks := flag.Int("ticks", 1000000, "Maximum number of ticks to simulate")
	outputFile := flag.String("output", "", "Path to output JSON file (prints to stdout if not specified)")
	seed := flag.Int64("seed", 0, "Random seed override (0 = keep config value)")
	flag.Parse()

	config := simulator.DefaultConfig()
	if *configFile != "" {
		configData, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(configData, &config); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing config JSON: %v\n", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		config.RandomSeed = *seed
	}
	// Demo mode would loop forever in a batch run.
	config.DemoMode = false

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	sess, err := simulator.NewSession(config, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Running %dx%d grid at %.0f%% fill for up to %d ticks...\n",
		config.Width, config.Height, config.FillPercent, *maxTicks)
	startTime := time.Now()

	ticks := 0
	for ; ticks < *maxTicks && sess.Phase() != simulator.PhaseFinished; ticks++ {
		sess.Advance()
	}

	elapsed := time.Since(startTime)
	snap := sess.Snapshot()
	fmt.Fprintf(os.Stderr, "Simulation ran %d ticks in %v (phase=%s)\n", ticks, elapsed, snap.Phase)

	counts := make(map[string]int)
	for _, c := range snap.Cells {
		counts[c.String()]++
	}

	results := map[string]interface{}{
		"config":   config,
		"ticks":    ticks,
		"realTime": elapsed.Seconds(),
		"phase":    snap.Phase,
		"stats":    snap.Stats,
		"counts":   counts,
	}

	output, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling results: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}
