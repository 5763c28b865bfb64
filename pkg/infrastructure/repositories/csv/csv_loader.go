package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

// Loader handles loading dosing data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadMixBatches loads mix batches from a CSV file. Multi-ingredient
// batches span one row per ingredient, grouped by batch_id; product name
// and vial count must agree across the rows of one batch.
func (l *Loader) LoadMixBatches(filename string) ([]*entities.MixBatch, error) {
	records, err := readAll(filename, "mix batches")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"batch_id", "product_name", "ingredient_id", "mass_per_vial_mcg", "vials_remaining"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("mix batches CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	type batchRow struct {
		productName string
		massPerVial map[entities.IngredientID]decimal.Decimal
		vials       int64
	}
	grouped := make(map[entities.BatchID]*batchRow)
	var order []entities.BatchID

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("mix batches CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		batchID, err := parseID(record[0], "batch_id")
		if err != nil {
			return nil, fmt.Errorf("mix batches CSV row %d: %w", i+2, err)
		}
		ingredientID, err := parseID(record[2], "ingredient_id")
		if err != nil {
			return nil, fmt.Errorf("mix batches CSV row %d: %w", i+2, err)
		}
		mass, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("mix batches CSV row %d: invalid mass_per_vial_mcg: %s", i+2, record[3])
		}
		vials, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mix batches CSV row %d: invalid vials_remaining: %s", i+2, record[4])
		}

		id := entities.BatchID(batchID)
		row, exists := grouped[id]
		if !exists {
			row = &batchRow{
				productName: record[1],
				massPerVial: make(map[entities.IngredientID]decimal.Decimal),
				vials:       vials,
			}
			grouped[id] = row
			order = append(order, id)
		} else if row.productName != record[1] || row.vials != vials {
			return nil, fmt.Errorf("mix batches CSV row %d: batch %d rows disagree on product name or vial count", i+2, id)
		}
		row.massPerVial[entities.IngredientID(ingredientID)] = mass
	}

	var batches []*entities.MixBatch
	for _, id := range order {
		row := grouped[id]
		batch, err := entities.NewMixBatch(id, row.productName, row.massPerVial, row.vials)
		if err != nil {
			return nil, fmt.Errorf("mix batches CSV: batch %d: %w", id, err)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// LoadPreparations loads preparations from a CSV file. Multi-ingredient
// preparations span one row per ingredient, grouped by prep_id.
func (l *Loader) LoadPreparations(filename string) ([]*entities.Preparation, error) {
	records, err := readAll(filename, "preparations")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"prep_id", "batch_id", "ingredient_id", "mass_mcg", "volume_total_ml", "volume_remaining_ml", "expiry_date", "status"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("preparations CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	type prepRow struct {
		batchID     entities.BatchID
		composition map[entities.IngredientID]decimal.Decimal
		total       decimal.Decimal
		remaining   decimal.Decimal
		expiry      *time.Time
		status      entities.PreparationStatus
	}
	grouped := make(map[entities.PreparationID]*prepRow)
	var order []entities.PreparationID

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("preparations CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		prepID, err := parseID(record[0], "prep_id")
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: %w", i+2, err)
		}
		batchID, err := parseID(record[1], "batch_id")
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: %w", i+2, err)
		}
		ingredientID, err := parseID(record[2], "ingredient_id")
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: %w", i+2, err)
		}
		mass, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: invalid mass_mcg: %s", i+2, record[3])
		}
		total, err := decimal.NewFromString(record[4])
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: invalid volume_total_ml: %s", i+2, record[4])
		}
		remaining, err := decimal.NewFromString(record[5])
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: invalid volume_remaining_ml: %s", i+2, record[5])
		}
		expiry, err := parseOptionalDate(record[6])
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: invalid expiry_date: %s (expected YYYY-MM-DD or empty)", i+2, record[6])
		}
		status, err := entities.ParsePreparationStatus(strings.ToLower(strings.TrimSpace(record[7])))
		if err != nil {
			return nil, fmt.Errorf("preparations CSV row %d: %w", i+2, err)
		}

		id := entities.PreparationID(prepID)
		row, exists := grouped[id]
		if !exists {
			row = &prepRow{
				batchID:     entities.BatchID(batchID),
				composition: make(map[entities.IngredientID]decimal.Decimal),
				total:       total,
				remaining:   remaining,
				expiry:      expiry,
				status:      status,
			}
			grouped[id] = row
			order = append(order, id)
		}
		row.composition[entities.IngredientID(ingredientID)] = mass
	}

	var preps []*entities.Preparation
	for _, id := range order {
		row := grouped[id]
		prep, err := entities.NewPreparation(id, row.batchID, row.composition, row.total, row.remaining, row.expiry)
		if err != nil {
			return nil, fmt.Errorf("preparations CSV: preparation %d: %w", id, err)
		}
		prep.Status = row.status
		preps = append(preps, prep)
	}
	return preps, nil
}

// LoadCycles loads dosing cycles from a CSV file. The weekday set, ramp
// schedule, and ingredient requirement are flattened into compact
// semicolon lists: weekdays "mon;wed;fri", ramp "1:50;3:100" (week:percent),
// requirement "1:250;2:500" (ingredient:mcg).
func (l *Loader) LoadCycles(filename string) ([]*entities.Cycle, error) {
	records, err := readAll(filename, "cycles")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"cycle_id", "name", "status", "start_date", "end_date", "duration_weeks",
		"days_on", "days_off", "weekdays", "five_on_two_off", "daily_frequency", "ramp", "requirement"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("cycles CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var cycles []*entities.Cycle
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("cycles CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		cycle, err := parseCycle(record)
		if err != nil {
			return nil, fmt.Errorf("cycles CSV row %d: %w", i+2, err)
		}
		cycles = append(cycles, cycle)
	}
	return cycles, nil
}

// Helper functions for parsing CSV records

func readAll(filename, label string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", label, filename, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", label, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", label)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func parseID(s, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return id, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseCycle(record []string) (*entities.Cycle, error) {
	id, err := parseID(record[0], "cycle_id")
	if err != nil {
		return nil, err
	}
	status, err := entities.ParseCycleStatus(strings.ToLower(strings.TrimSpace(record[2])))
	if err != nil {
		return nil, err
	}
	start, err := time.Parse("2006-01-02", record[3])
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %s (expected YYYY-MM-DD)", record[3])
	}
	end, err := parseOptionalDate(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %s (expected YYYY-MM-DD or empty)", record[4])
	}
	durationWeeks, err := parseOptionalInt(record[5], "duration_weeks")
	if err != nil {
		return nil, err
	}
	daysOn, err := parseOptionalInt(record[6], "days_on")
	if err != nil {
		return nil, err
	}
	daysOff, err := parseOptionalInt(record[7], "days_off")
	if err != nil {
		return nil, err
	}
	weekdays, err := parseWeekdays(record[8])
	if err != nil {
		return nil, err
	}
	fiveOnTwoOff, err := parseBool(record[9], "five_on_two_off")
	if err != nil {
		return nil, err
	}
	dailyFrequency, err := strconv.Atoi(strings.TrimSpace(record[10]))
	if err != nil {
		return nil, fmt.Errorf("invalid daily_frequency: %s", record[10])
	}
	ramp, err := parseRamp(record[11])
	if err != nil {
		return nil, err
	}
	requirement, err := parseRequirement(record[12])
	if err != nil {
		return nil, err
	}

	cycle, err := entities.NewCycle(entities.CycleID(id), record[1], status, start, end, dailyFrequency)
	if err != nil {
		return nil, err
	}
	cycle.DurationWeeks = durationWeeks
	cycle.DaysOn = daysOn
	cycle.DaysOff = daysOff
	cycle.Weekdays = weekdays
	cycle.FiveOnTwoOff = fiveOnTwoOff
	cycle.Ramp = ramp
	cycle.Requirement = requirement
	return cycle, nil
}

func parseOptionalInt(s, field string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return n, nil
}

func parseBool(s, field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("invalid %s: %s", field, s)
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ";") {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %s (expected sun..sat)", part)
		}
		weekdays = append(weekdays, day)
	}
	return weekdays, nil
}

func parseRamp(s string) ([]entities.RampStep, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var ramp []entities.RampStep
	for _, part := range strings.Split(s, ";") {
		week, percent, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid ramp entry: %s (expected week:percent)", part)
		}
		w, err := strconv.Atoi(week)
		if err != nil {
			return nil, fmt.Errorf("invalid ramp week: %s", week)
		}
		p, err := decimal.NewFromString(percent)
		if err != nil {
			return nil, fmt.Errorf("invalid ramp percent: %s", percent)
		}
		ramp = append(ramp, entities.RampStep{Week: w, Percent: p})
	}
	return ramp, nil
}

func parseRequirement(s string) (map[entities.IngredientID]decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	requirement := make(map[entities.IngredientID]decimal.Decimal)
	for _, part := range strings.Split(s, ";") {
		ingredient, mass, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid requirement entry: %s (expected ingredient:mcg)", part)
		}
		id, err := parseID(ingredient, "ingredient_id")
		if err != nil {
			return nil, err
		}
		m, err := decimal.NewFromString(mass)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement mass: %s", mass)
		}
		requirement[entities.IngredientID(id)] = m
	}
	return requirement, nil
}
