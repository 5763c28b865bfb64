package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mrossi/peptrack/pkg/application/dto"
	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/dosing"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Generate renders a daily plan in the specified format
func Generate(plan *dto.DailyPlan, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(plan, config)
	case "json":
		return generateJSONOutput(plan, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(plan *dto.DailyPlan, config Config) error {
	fmt.Printf("📊 Daily Dosing Plan — %s\n", plan.Date.Format("2006-01-02"))
	fmt.Printf("================================\n\n")

	if plan.CompletedCycles > 0 {
		fmt.Printf("🏁 Cycles auto-completed: %d\n\n", plan.CompletedCycles)
	}
	if len(plan.Cycles) == 0 {
		fmt.Println("No active cycles.")
		return nil
	}

	for _, cycle := range plan.Cycles {
		fmt.Printf("Cycle %d: %s (week %d)\n", cycle.CycleID, cycle.Name, cycle.Week)

		switch cycle.Verdict {
		case dosing.VerdictDue:
			fmt.Printf("  💉 Due today: %d administration(s)\n", cycle.AdministrationsDue)
		case dosing.VerdictOffDay:
			fmt.Printf("  💤 Off day\n")
		default:
			fmt.Printf("  ⏹  Inactive\n")
		}
		if cycle.PlannedRemaining > 0 {
			fmt.Printf("  Remaining administrations in plan: %d\n", cycle.PlannedRemaining)
		}

		if cycle.Stock != nil {
			printStock(cycle)
		}
		fmt.Println()
	}

	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if config.Verbose {
			fmt.Printf("💾 Results directory: %s\n", config.OutputDir)
		}
	}
	return nil
}

func printStock(cycle dto.CyclePlan) {
	report := cycle.Stock

	ingredientIDs := make([]int64, 0, len(report.PerIngredient))
	for id := range report.PerIngredient {
		ingredientIDs = append(ingredientIDs, int64(id))
	}
	sort.Slice(ingredientIDs, func(i, j int) bool { return ingredientIDs[i] < ingredientIDs[j] })

	fmt.Printf("  %-12s %-12s %-12s %-12s\n", "Ingredient", "Target mcg", "Avail mcg", "Short mcg")
	fmt.Printf("  %-12s %-12s %-12s %-12s\n", "------------", "------------", "------------", "------------")
	for _, id := range ingredientIDs {
		coverage := report.PerIngredient[entities.IngredientID(id)]
		marker := ""
		if coverage.ShortfallMcg.IsPositive() {
			marker = " ⚠️"
		}
		fmt.Printf("  %-12d %-12s %-12s %-12s%s\n",
			id,
			coverage.TargetMcg.StringFixed(1),
			coverage.AvailableMcg.StringFixed(1),
			coverage.ShortfallMcg.StringFixed(1),
			marker)
	}

	for _, mix := range report.Mixes {
		fmt.Printf("  📦 %s (batch %d): supports %d administration(s)\n",
			mix.ProductName, mix.BatchID, mix.SupportedAdministrations)
	}
}

// generateJSONOutput creates JSON output
func generateJSONOutput(plan *dto.DailyPlan, config Config) error {
	jsonData, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Println(string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "daily_plan.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Printf("💾 JSON results saved to: %s\n", filename)
	}
	return nil
}
