// Command entropy renders a count-array artifact as a bar-chart PNG.
//
// Usage:
//
//	entropy <input-array-path> <output-image-path>
//
// The input array holds the bucket offset in its first element and the
// per-bucket counts after that. The output is always PNG, whatever extension
// the output path carries.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/RobinMarchart/roll-bot/app/chart"
	"github.com/RobinMarchart/roll-bot/app/hist"
	"github.com/RobinMarchart/roll-bot/app/npyfile"
)

func main() {
	log.SetPrefix("entropy: ")
	log.SetFlags(0)

	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <input-array-path> <output-image-path>\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2]); err != nil {
		log.Fatal(err)
	}
}

// run loads the artifact before the output path is touched, so a bad input
// never leaves a stale or empty image behind.
func run(inputPath, outputPath string) error {
	array, err := npyfile.Read(inputPath)
	if err != nil {
		return err
	}
	series, err := hist.NewSeries(array.Values)
	if err != nil {
		return fmt.Errorf("failed to interpret %s: %w", inputPath, err)
	}
	return chart.RenderFile(series, outputPath)
}
