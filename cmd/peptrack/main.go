package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrossi/peptrack/pkg/interfaces/cli/commands"
)

func main() {
	args := os.Args[1:]
	subcommand := "plan"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		subcommand = args[0]
		args = args[1:]
	}

	ctx := context.Background()
	var err error
	switch subcommand {
	case "plan":
		err = runPlan(ctx, args)
	case "dose":
		err = runDose(ctx, args)
	case "help":
		commands.NewPlanCommand(commands.Config{Help: true}).Execute(ctx)
	default:
		err = fmt.Errorf("unknown command %q (expected plan or dose)", subcommand)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPlan(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("plan", flag.ExitOnError)
	var (
		dataDir     = flags.String("data", "", "Path to data directory containing CSV files")
		prepsFile   = flags.String("preps", "", "Path to preparations CSV file")
		batchesFile = flags.String("batches", "", "Path to mix batches CSV file")
		cyclesFile  = flags.String("cycles", "", "Path to cycles CSV file")
		database    = flags.String("db", "", "Path to SQLite database (overrides CSV input)")
		date        = flags.String("date", "", "Plan date, YYYY-MM-DD (default: today)")
		outputDir   = flags.String("output", "", "Output directory for results (optional)")
		format      = flags.String("format", "text", "Output format: text, json")
		verbose     = flags.Bool("verbose", false, "Enable verbose output")
		help        = flags.Bool("help", false, "Show help message")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	config := commands.Config{
		DataDir:     *dataDir,
		PrepsFile:   *prepsFile,
		BatchesFile: *batchesFile,
		CyclesFile:  *cyclesFile,
		Database:    *database,
		Date:        *date,
		OutputDir:   *outputDir,
		Format:      *format,
		Verbose:     *verbose,
		Help:        *help,
	}
	return commands.NewPlanCommand(config).Execute(ctx)
}

func runDose(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("dose", flag.ExitOnError)
	var (
		database = flags.String("db", "", "Path to SQLite database")
		cycleID  = flags.Int64("cycle", 0, "Cycle to link the dose to (optional)")
		batchID  = flags.Int64("batch", 0, "Batch whose preparations to draw from")
		volume   = flags.String("volume", "", "Volume to draw, in ml")
		notes    = flags.String("notes", "", "Free-form notes for the administration record")
		verbose  = flags.Bool("verbose", false, "Enable verbose output")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	config := commands.DoseConfig{
		Database: *database,
		CycleID:  *cycleID,
		BatchID:  *batchID,
		VolumeML: *volume,
		Notes:    *notes,
		Verbose:  *verbose,
	}
	return commands.NewDoseCommand(config).Execute(ctx)
}
