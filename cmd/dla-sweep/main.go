package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"dla/internal/app"
	"dla/internal/sims/aggregation"
)

type paramSet struct {
	stickyness float64
	tolerance  float64
}

func (p paramSet) String() string {
	return fmt.Sprintf("stickyness=%.2f tolerance=%.2f", p.stickyness, p.tolerance)
}

type scenarioResult struct {
	params    paramSet
	size      int
	radius    float64
	gyration  float64
	dimension float64
	attempts  int
	outside   int
	rejected  int
	elapsed   time.Duration
	timedOut  bool
	err       error
}

func main() {
	particles := flag.Int("particles", 2000, "cluster size to grow per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	seed := flag.Int64("seed", 1337, "seed used for every scenario")
	timeout := flag.Duration("timeout", 30*time.Second, "time limit per scenario")
	configPath := flag.String("config", "", "TOML file with base settings")
	stickyList := flag.String("stickyness", "1,0.5,0.2,0.1", "comma-separated stickyness values")
	toleranceList := flag.String("tolerance", "1,2,3", "comma-separated stick tolerance values")
	var overrides app.KVList
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()
	if err := checkFlags(*particles, *workers, *timeout); err != nil {
		log.Fatal(err)
	}

	base := aggregation.DefaultConfig()
	if *configPath != "" {
		loaded, err := aggregation.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		base = loaded
	}
	for _, kv := range overrides {
		key, value, _ := strings.Cut(kv, "=")
		if !aggregation.Apply(&base, strings.TrimSpace(key), strings.TrimSpace(value)) {
			log.Fatalf("invalid override %q", kv)
		}
	}
	base.Seed = *seed
	base.MaxParticles = *particles

	stickies, err := parseFloats(*stickyList)
	if err != nil {
		log.Fatalf("stickyness: %v", err)
	}
	tolerances, err := parseFloats(*toleranceList)
	if err != nil {
		log.Fatalf("tolerance: %v", err)
	}
	var sets []paramSet
	for _, s := range stickies {
		for _, tol := range tolerances {
			sets = append(sets, paramSet{stickyness: s, tolerance: tol})
		}
	}

	fmt.Printf("Sweeping %d parameter sets (%d workers, %d particles, %s mode)\n", len(sets), *workers, *particles, base.Mode)

	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(base, params, *timeout)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		if res.err != nil {
			fmt.Printf("Scenario %s failed: %v\n", res.params, res.err)
			continue
		}
		all = append(all, res)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].params.stickyness != all[j].params.stickyness {
			return all[i].params.stickyness > all[j].params.stickyness
		}
		return all[i].params.tolerance < all[j].params.tolerance
	})

	fmt.Printf("\nResults (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for _, res := range all {
		note := ""
		if res.timedOut {
			note = " (timed out)"
		}
		fmt.Printf("%s size=%d radius=%.3f rg=%.3f dim=%.3f attempts=%d outside=%d rejected=%d took=%s%s\n",
			res.params, res.size, res.radius, res.gyration, res.dimension, res.attempts, res.outside, res.rejected,
			res.elapsed.Round(time.Millisecond), note)
	}
}

func runScenario(base aggregation.Config, params paramSet, timeout time.Duration) scenarioResult {
	cfg := base
	cfg.Engine.Stickyness = params.stickyness
	cfg.Engine.StickTolerance = params.tolerance
	res := scenarioResult{params: params}

	world, err := aggregation.NewWithConfig(cfg)
	if err != nil {
		res.err = err
		return res
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	for !world.Done() {
		if err := world.StepContext(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				res.timedOut = true
				break
			}
			res.err = err
			return res
		}
	}
	res.elapsed = time.Since(start)

	cluster := world.Engine().Cluster()
	stats := world.Stats()
	res.size = cluster.Size()
	res.radius = cluster.Radius()
	res.gyration = cluster.GyrationRadius()
	res.dimension = cluster.FractalDimension()
	res.attempts = stats.Attempts
	res.outside = stats.Outside
	res.rejected = stats.Rejected
	return res
}

func checkFlags(particles, workers int, timeout time.Duration) error {
	switch {
	case particles < 1:
		return fmt.Errorf("-particles must be at least 1, got %d", particles)
	case workers < 1:
		return fmt.Errorf("-workers must be at least 1, got %d", workers)
	case timeout <= 0:
		return fmt.Errorf("-timeout must be positive, got %s", timeout)
	}
	return nil
}

func parseFloats(list string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", list)
	}
	return out, nil
}
