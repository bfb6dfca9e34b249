// Command optimize searches brain hyperparameters with CMA-ES, scoring
// each candidate by how well headless slime populations learn to prefer
// apples.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/slimes/config"
)

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval             int     `csv:"eval"`
	Fitness          float64 `csv:"fitness"`
	Quality          float64 `csv:"quality"`
	LearningRate     float64 `csv:"learning_rate"`
	DiscountFactor   float64 `csv:"discount_factor"`
	EpsilonDecay     float64 `csv:"epsilon_decay"`
	EpsilonMin       float64 `csv:"epsilon_min"`
	Hidden           float64 `csv:"hidden"`
	DecisionInterval float64 `csv:"decision_interval"`
}

func newEvalRecord(eval int, fitness, quality float64, v []float64) EvalRecord {
	return EvalRecord{
		Eval:             eval,
		Fitness:          fitness,
		Quality:          quality,
		LearningRate:     v[0],
		DiscountFactor:   v[1],
		EpsilonDecay:     v[2],
		EpsilonMin:       v[3],
		Hidden:           v[4],
		DecisionInterval: v[5],
	}
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// writeLog rewrites the evaluation log.
func writeLog(path string, records []EvalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&records, f)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 36000, "Simulation length per run in ticks")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	var records []EvalRecord

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			quality := evaluator.LastQuality()
			evalCount++

			improved := fitness < bestFitness
			if improved {
				bestFitness = fitness
				bestParams = append([]float64(nil), clamped...)
			}

			records = append(records, newEvalRecord(evalCount, fitness, quality, clamped))
			if err := writeLog(logPath, records); err != nil {
				log.Printf("failed to write log: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			q := aurora.Yellow(fmt.Sprintf("%.3f", quality))
			if improved {
				q = aurora.Green(fmt.Sprintf("%.3f", quality))
			}
			fmt.Printf("Eval %d/%d: quality=%s (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, q, -bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Println(aurora.Bold(fmt.Sprintf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d",
		dim, popSize, *maxEvals)))
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %s\n", *seeds, humanize.Comma(int64(*maxTicks)))

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Println(aurora.Green(fmt.Sprintf("Best quality: %.3f", -bestFitness)))

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %s\n", aurora.Cyan(spec.Path), humanize.FtoaWithDigits(bestParams[i], 6))
	}

	best := evaluator.BestSummary()
	fmt.Printf("\nBest run: %s apples, %s kiwis, %s episodes\n",
		humanize.Comma(int64(best.Apples)), humanize.Comma(int64(best.Kiwis)), humanize.Comma(int64(best.Episodes)))

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
