package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/application/services"
	"github.com/mrossi/peptrack/pkg/domain/entities"
	"github.com/mrossi/peptrack/pkg/dosing"
	"github.com/mrossi/peptrack/pkg/infrastructure/events"
	"github.com/mrossi/peptrack/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()
	today := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC) // a Wednesday

	// Create repositories
	prepRepo := memory.NewPreparationRepository()
	batchRepo := memory.NewBatchRepository()
	cycleRepo := memory.NewCycleRepository()
	adminRepo := memory.NewAdministrationRepository()

	if err := setupInventory(prepRepo, batchRepo, cycleRepo); err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		return
	}

	store := events.NewInMemoryEventStore()
	service := services.NewDosingServiceWith(func() time.Time { return today }, store)

	fmt.Println("💊 Running the daily dosing plan...")
	fmt.Printf("Date: %s\n\n", today.Format("2006-01-02"))

	plan, err := service.DailyPlan(ctx, today, cycleRepo, prepRepo, batchRepo)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		return
	}

	for _, cycle := range plan.Cycles {
		fmt.Printf("📋 Cycle %q (week %d): %s\n", cycle.Name, cycle.Week, cycle.Verdict)
		if cycle.Verdict != dosing.VerdictDue {
			continue
		}
		for ingredientID, target := range cycle.Requirement {
			fmt.Printf("  Ingredient %d target: %s mcg per administration\n", ingredientID, target)
		}
		for _, mix := range cycle.Stock.Mixes {
			fmt.Printf("  📦 %s supports %d more administration(s)\n", mix.ProductName, mix.SupportedAdministrations)
		}
		if !cycle.Stock.Covered() {
			fmt.Println("  ⚠️  Inventory does not cover the full target")
		}
	}
	fmt.Println()

	// Record a 1.5 ml dose drawn from batch 1's preparations. The dose
	// splits across preparations soonest-expiry-first.
	fmt.Println("💉 Recording a 1.5 ml dose from batch 1...")
	cycleID := entities.CycleID(1)
	committer := services.MemoryCommitter{Preparations: prepRepo, Administrations: adminRepo}
	record, err := service.RecordDose(&cycleID, 1, decimal.NewFromFloat(1.5), today, "morning dose", prepRepo, committer)
	if err != nil {
		fmt.Printf("❌ Dose failed: %v\n", err)
		return
	}

	fmt.Printf("Draw %s:\n", record.DrawID)
	for _, admin := range record.Administrations {
		fmt.Printf("  %s ml from preparation %d\n", admin.VolumeML, admin.PreparationID)
	}
	for _, prepID := range record.Depleted {
		fmt.Printf("  🫙 Preparation %d is now depleted\n", prepID)
	}
	fmt.Println()

	trail, _ := store.ReadAllEvents(0)
	fmt.Printf("📜 Event trail: %d event(s)\n", len(trail))
	for _, event := range trail {
		fmt.Printf("  %s on %s\n", event.Type(), event.StreamID())
	}
}

// setupInventory loads a small scenario: one two-ingredient blend with
// two partially used preparations and a cycle ramping to full dose.
func setupInventory(
	prepRepo *memory.PreparationRepository,
	batchRepo *memory.BatchRepository,
	cycleRepo *memory.CycleRepository,
) error {
	blend, err := entities.NewMixBatch(1, "Morning Blend",
		map[entities.IngredientID]decimal.Decimal{
			1: decimal.NewFromInt(5000),
			2: decimal.NewFromInt(1000),
		}, 3)
	if err != nil {
		return err
	}
	if err := batchRepo.LoadMixBatches([]*entities.MixBatch{blend}); err != nil {
		return err
	}

	soon := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	first, err := entities.NewPreparation(1, 1,
		map[entities.IngredientID]decimal.Decimal{
			1: decimal.NewFromInt(5000),
			2: decimal.NewFromInt(1000),
		},
		decimal.NewFromInt(10), decimal.NewFromFloat(0.8), &soon)
	if err != nil {
		return err
	}
	second, err := entities.NewPreparation(2, 1,
		map[entities.IngredientID]decimal.Decimal{
			1: decimal.NewFromInt(5000),
			2: decimal.NewFromInt(1000),
		},
		decimal.NewFromInt(10), decimal.NewFromInt(10), &later)
	if err != nil {
		return err
	}
	if err := prepRepo.LoadPreparations([]*entities.Preparation{first, second}); err != nil {
		return err
	}

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	cycle, err := entities.NewCycle(1, "Morning stack", entities.CycleActive, start, nil, 1)
	if err != nil {
		return err
	}
	cycle.FiveOnTwoOff = true
	cycle.Ramp = []entities.RampStep{
		{Week: 1, Percent: decimal.NewFromInt(50)},
		{Week: 3, Percent: decimal.NewFromInt(100)},
	}
	cycle.Requirement = map[entities.IngredientID]decimal.Decimal{
		1: decimal.NewFromInt(500),
		2: decimal.NewFromInt(100),
	}
	return cycleRepo.LoadCycles([]*entities.Cycle{cycle})
}
