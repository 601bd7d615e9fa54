// Command roll-cmd samples a dice expression and writes its distribution as
// offset-prefixed count arrays.
//
// Usage:
//
//	roll-cmd [flags] <dice-term> [rolls]
//
// Each run evaluates the term the requested number of times and produces two
// artifacts in the output directory: a histogram of the evaluated totals and
// a histogram of every individual die face thrown. The face histogram is
// skipped when the term contains no dice. An optional JSON report records the
// run id, distribution statistics and artifact fingerprints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/RobinMarchart/roll-bot/app/dice"
	"github.com/RobinMarchart/roll-bot/app/hist"
	"github.com/RobinMarchart/roll-bot/app/npyfile"
	"github.com/RobinMarchart/roll-bot/app/report"
	"github.com/RobinMarchart/roll-bot/app/settings"
)

type runConfig struct {
	outDir     string
	rollsFile  string
	throwsFile string
	reportFile string
}

func main() {
	log.SetPrefix("roll-cmd: ")
	log.SetFlags(0)

	cfg := settings.GetEffectiveSettings()

	var (
		rolls      = flag.Int("rolls", 0, "number of evaluations, overrides the settings file")
		outDir     = flag.String("out-dir", cfg.OutDir, "directory the artifacts are written to")
		rollsFile  = flag.String("rolls-file", cfg.RollsFile, "file name of the totals histogram")
		throwsFile = flag.String("throws-file", cfg.ThrowsFile, "file name of the die face histogram")
		reportFile = flag.String("report", cfg.ReportFile, "write a JSON run report to this file, empty disables it")
		timeout    = flag.Duration("timeout", 0, "abort the run after this duration, 0 waits forever")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <dice-term> [rolls]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	count := cfg.DefaultRolls
	if *rolls > 0 {
		count = *rolls
	}
	if flag.NArg() == 2 {
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil || n < 1 {
			log.Fatalf("invalid roll count %q", flag.Arg(1))
		}
		count = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	err := run(ctx, flag.Arg(0), count, runConfig{
		outDir:     *outDir,
		rollsFile:  *rollsFile,
		throwsFile: *throwsFile,
		reportFile: *reportFile,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, input string, rolls int, cfg runConfig) error {
	labeled, err := dice.Parse(input)
	if err != nil {
		return err
	}
	expr := &labeled.Expression

	lo, hi, err := expr.Bounds()
	if err != nil {
		return fmt.Errorf("cannot size the totals histogram for %s: %w", expr, err)
	}
	totals, err := hist.NewAccumulator(lo, hi)
	if err != nil {
		return fmt.Errorf("cannot size the totals histogram for %s: %w", expr, err)
	}

	// a term without dice has no faces to count
	var throws *hist.Accumulator
	tlo, thi, hasDice, err := dice.DieRange(expr.Term)
	if err != nil {
		return fmt.Errorf("cannot size the throw histogram for %s: %w", expr, err)
	}
	if hasDice {
		throws, err = hist.NewAccumulator(tlo, thi)
		if err != nil {
			return fmt.Errorf("cannot size the throw histogram for %s: %w", expr, err)
		}
	}

	source, err := dice.NewSource()
	if err != nil {
		return err
	}

	for i := 0; i < rolls; i++ {
		results, err := expr.Eval(ctx, source.Roller())
		if err != nil {
			return fmt.Errorf("failed to roll %s: %w", expr, err)
		}
		for _, r := range results {
			if err := totals.Add(r.Total); err != nil {
				return err
			}
			if throws == nil {
				continue
			}
			for _, f := range r.Faces {
				if err := throws.Add(f); err != nil {
					return err
				}
			}
		}
	}

	rollsPath := filepath.Join(cfg.outDir, cfg.rollsFile)
	if err := npyfile.WriteInt64(rollsPath, totals.Encode()); err != nil {
		return err
	}
	artifacts := []string{rollsPath}
	if throws != nil {
		throwsPath := filepath.Join(cfg.outDir, cfg.throwsFile)
		if err := npyfile.WriteInt64(throwsPath, throws.Encode()); err != nil {
			return err
		}
		artifacts = append(artifacts, throwsPath)
	}

	if cfg.reportFile != "" {
		rep, err := report.Build(labeled, int64(rolls), hist.ComputeStats(totals.Series()), artifacts...)
		if err != nil {
			return err
		}
		if err := rep.WriteFile(filepath.Join(cfg.outDir, cfg.reportFile)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
