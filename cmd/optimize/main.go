// Package main searches steering weights and neighbor radii with CMA-ES for
// a school that holds a target alignment and spread.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/shoal/config"
)

type options struct {
	configPath string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	targets    Targets
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 3600, "Simulation length per run in ticks")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&opts.targets.Polarization, "target-polarization", 0.8, "Desired mean heading alignment")
	flag.Float64Var(&opts.targets.Spread, "target-spread", 0, "Desired mean distance to centroid (0 = school_width/4)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	if opts.outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	base := config.Cfg()
	if opts.targets.Spread <= 0 {
		opts.targets.Spread = base.Flock.SchoolWidth / 4
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), seeds, base, opts.targets)

	f, err := os.Create(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer f.Close()
	evals := newEvalLog(f, params)

	pop := opts.population
	if pop == 0 {
		pop = 4 + 3*params.Dim()/2
	}
	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n", params.Dim(), pop, opts.maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, targets: polarization=%.2f spread=%.2f\n",
		opts.seeds, opts.maxTicks, opts.targets.Polarization, opts.targets.Spread)

	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Clamped values are the ones the simulation actually used
			applied := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(applied)
			n, err := evals.record(fitness, evaluator.LastQuality(), applied)
			if err != nil {
				log.Printf("writing eval log: %v", err)
			}

			elapsed := time.Since(start)
			eta := time.Duration(opts.maxEvals-n) * (elapsed / time.Duration(n))
			fmt.Printf("Eval %d/%d: quality=%.3f (best=%.3f) | elapsed: %s, ETA: %s\n",
				n, opts.maxEvals, evaluator.LastQuality(), evals.bestQuality(),
				formatDuration(elapsed), formatDuration(eta))
			return fitness
		},
	}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}

	result, err := optimize.Minimize(problem, params.Normalize(params.ExtractFromConfig(base)), settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	best := evals.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evals.count, formatDuration(time.Since(start)))
	if best == nil {
		return nil
	}
	fmt.Printf("Best quality: %.4f\n\nBest parameters:\n", evals.bestQuality())
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, best[i])
	}

	// Reload so the written file keeps the user's untouched values.
	out, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(out, best)
	path := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := out.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", path)
	return nil
}

// evalLog appends one CSV row per evaluation and tracks the best vector.
type evalLog struct {
	w           *csv.Writer
	count       int
	bestFitness float64
	best        []float64
}

func newEvalLog(w io.Writer, params *ParamVector) *evalLog {
	l := &evalLog{w: csv.NewWriter(w), bestFitness: 1e9}
	header := []string{"eval", "fitness", "quality"}
	for _, s := range params.Specs {
		header = append(header, s.Name)
	}
	l.w.Write(header)
	return l
}

// record logs one evaluation and returns its 1-based number.
func (l *evalLog) record(fitness, quality float64, values []float64) (int, error) {
	l.count++
	if fitness < l.bestFitness {
		l.bestFitness = fitness
		l.best = values
	}
	row := []string{strconv.Itoa(l.count), fmtFloat(fitness), fmtFloat(quality)}
	for _, v := range values {
		row = append(row, fmtFloat(v))
	}
	l.w.Write(row)
	l.w.Flush()
	return l.count, l.w.Error()
}

// bestQuality is the quality of the best vector; fitness is its negation.
func (l *evalLog) bestQuality() float64 {
	return -l.bestFitness
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatDuration renders d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
