package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrossi/peptrack/pkg/application/services"
	"github.com/mrossi/peptrack/pkg/domain/repositories"
	"github.com/mrossi/peptrack/pkg/infrastructure/events"
	"github.com/mrossi/peptrack/pkg/infrastructure/repositories/csv"
	"github.com/mrossi/peptrack/pkg/infrastructure/repositories/memory"
	"github.com/mrossi/peptrack/pkg/infrastructure/repositories/sqlite"
	"github.com/mrossi/peptrack/pkg/interfaces/cli/output"
)

// Config holds configuration for the plan command
type Config struct {
	DataDir     string
	PrepsFile   string
	BatchesFile string
	CyclesFile  string
	Database    string
	Date        string
	Format      string
	OutputDir   string
	Verbose     bool
	Help        bool
}

// PlanCommand evaluates every active cycle for a date and renders the
// due/stock report
type PlanCommand struct {
	config Config
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config) *PlanCommand {
	return &PlanCommand{config: config}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	asOf, err := c.resolveDate()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	cycleRepo, prepRepo, batchRepo, cleanup, err := c.buildRepositories()
	if err != nil {
		return err
	}
	defer cleanup()

	if c.config.Verbose {
		fmt.Printf("🚀 Peptrack daily plan for %s\n\n", asOf.Format("2006-01-02"))
	}

	service := services.NewDosingServiceWith(time.Now, events.NewInMemoryEventStore())
	plan, err := service.DailyPlan(ctx, asOf, cycleRepo, prepRepo, batchRepo)
	if err != nil {
		return fmt.Errorf("error building daily plan: %w", err)
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Generate(plan, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

func (c *PlanCommand) resolveDate() (time.Time, error) {
	if c.config.Date == "" {
		return time.Now(), nil
	}
	asOf, err := time.Parse("2006-01-02", c.config.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", c.config.Date)
	}
	return asOf, nil
}

// buildRepositories wires either the SQLite store or CSV-loaded
// in-memory repositories, depending on configuration.
func (c *PlanCommand) buildRepositories() (
	repositories.CycleRepository,
	repositories.PreparationRepository,
	repositories.BatchRepository,
	func(),
	error,
) {
	if c.config.Database != "" {
		store, err := sqlite.NewStore(c.config.Database)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("error opening database: %w", err)
		}
		return store.Cycles(), store.Preparations(), store.Batches(), func() { store.Close() }, nil
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		fmt.Println("📂 Loading data from CSV files...")
	}
	loader := csv.NewLoader()

	preps, err := loader.LoadPreparations(files["Preparations"])
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error loading preparations: %w", err)
	}
	batches, err := loader.LoadMixBatches(files["Batches"])
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error loading mix batches: %w", err)
	}
	cycles, err := loader.LoadCycles(files["Cycles"])
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error loading cycles: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("✅ Data loaded successfully:\n")
		fmt.Printf("  Preparations: %d\n", len(preps))
		fmt.Printf("  Mix Batches: %d\n", len(batches))
		fmt.Printf("  Cycles: %d\n", len(cycles))
		fmt.Println()
	}

	prepRepo := memory.NewPreparationRepository()
	if err := prepRepo.LoadPreparations(preps); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load preparations into repository: %w", err)
	}
	batchRepo := memory.NewBatchRepository()
	if err := batchRepo.LoadMixBatches(batches); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load mix batches into repository: %w", err)
	}
	cycleRepo := memory.NewCycleRepository()
	if err := cycleRepo.LoadCycles(cycles); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load cycles into repository: %w", err)
	}

	return cycleRepo, prepRepo, batchRepo, func() {}, nil
}

// resolveInputFiles determines the actual file paths to use
func (c *PlanCommand) resolveInputFiles() (map[string]string, error) {
	var prepsPath, batchesPath, cyclesPath string

	if c.config.DataDir != "" {
		prepsPath = filepath.Join(c.config.DataDir, "preparations.csv")
		batchesPath = filepath.Join(c.config.DataDir, "mix_batches.csv")
		cyclesPath = filepath.Join(c.config.DataDir, "cycles.csv")
	} else {
		prepsPath = c.config.PrepsFile
		batchesPath = c.config.BatchesFile
		cyclesPath = c.config.CyclesFile
	}

	files := map[string]string{
		"Preparations": prepsPath,
		"Batches":      batchesPath,
		"Cycles":       cyclesPath,
	}
	for name, path := range files {
		if path == "" {
			return nil, fmt.Errorf("must specify -data directory, -db database, or individual CSV files (%s missing)", name)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}
	return files, nil
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Printf(`Peptrack - Inventory Allocation & Dose Scheduling

USAGE:
    peptrack plan -data <directory>            # Use data directory with CSV files
    peptrack plan -db <file>                   # Use a SQLite database
    peptrack plan -preps <file> ...            # Use individual CSV files
    peptrack dose -db <file> -batch <id> -volume <ml>   # Record a dose

PLAN OPTIONS:
    -data <dir>       Path to data directory containing CSV files
    -db <file>        Path to SQLite database (overrides CSV input)
    -preps <file>     Path to preparations CSV file
    -batches <file>   Path to mix batches CSV file
    -cycles <file>    Path to cycles CSV file
    -date <date>      Plan date, YYYY-MM-DD (default: today)
    -output <dir>     Output directory for results (optional)
    -format <fmt>     Output format: text, json (default: text)
    -verbose          Enable verbose output
    -help             Show this help message

DATA DIRECTORY STRUCTURE:
    data/
    ├── preparations.csv   # Diluted preparations
    ├── mix_batches.csv    # Purchased mix batches
    └── cycles.csv         # Dosing cycles

CSV FILE FORMATS:

preparations.csv (one row per ingredient, grouped by prep_id):
    prep_id,batch_id,ingredient_id,mass_mcg,volume_total_ml,volume_remaining_ml,expiry_date,status
    1,1,1,5000,10,2,2025-04-01,active

mix_batches.csv (one row per ingredient, grouped by batch_id):
    batch_id,product_name,ingredient_id,mass_per_vial_mcg,vials_remaining
    1,Blend A,1,5000,3

cycles.csv (weekdays "mon;wed;fri", ramp "1:50;3:100", requirement "1:250;2:500"):
    cycle_id,name,status,start_date,end_date,duration_weeks,days_on,days_off,weekdays,five_on_two_off,daily_frequency,ramp,requirement
    1,Morning stack,active,2025-01-06,2025-03-31,12,0,0,,1,1,1:50;3:100,1:250

EXAMPLES:
    # Daily report from a data directory
    peptrack plan -data example/data -verbose

    # Daily report from a database, for a specific date
    peptrack plan -db peptrack.db -date 2025-02-14

    # JSON output
    peptrack plan -data example/data -format json -output results/
`)
}
