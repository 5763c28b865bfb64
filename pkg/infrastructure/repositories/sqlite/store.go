// Package sqlite persists the dosing state to a single SQLite database
// using the pure Go driver, so the binary stays cgo-free.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS mix_batches (
	id             INTEGER PRIMARY KEY,
	product_name   TEXT    NOT NULL,
	mass_per_vial  TEXT    NOT NULL,
	vials_remaining INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS preparations (
	id                  INTEGER PRIMARY KEY,
	batch_id            INTEGER NOT NULL REFERENCES mix_batches(id),
	composition         TEXT    NOT NULL,
	volume_total_ml     TEXT    NOT NULL,
	volume_remaining_ml TEXT    NOT NULL,
	expiry_date         TEXT,
	status              TEXT    NOT NULL,
	wastage             TEXT
);

CREATE TABLE IF NOT EXISTS cycles (
	id              INTEGER PRIMARY KEY,
	name            TEXT    NOT NULL,
	status          TEXT    NOT NULL,
	start_date      TEXT    NOT NULL,
	end_date        TEXT,
	duration_weeks  INTEGER NOT NULL DEFAULT 0,
	days_on         INTEGER NOT NULL DEFAULT 0,
	days_off        INTEGER NOT NULL DEFAULT 0,
	weekdays        TEXT    NOT NULL DEFAULT '[]',
	five_on_two_off INTEGER NOT NULL DEFAULT 0,
	daily_frequency INTEGER NOT NULL,
	ramp            TEXT    NOT NULL DEFAULT '[]',
	requirement     TEXT    NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS administrations (
	id              TEXT PRIMARY KEY,
	draw_id         TEXT NOT NULL,
	cycle_id        INTEGER,
	preparation_id  INTEGER NOT NULL REFERENCES preparations(id),
	volume_ml       TEXT NOT NULL,
	administered_at TEXT NOT NULL,
	notes           TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_administrations_cycle ON administrations(cycle_id);
CREATE INDEX IF NOT EXISTS idx_administrations_prep  ON administrations(preparation_id);
`

// Store implements every repository interface over one SQLite database.
// All repository reads hit the database directly; the transactional draw
// path goes through CommitDraw so volume deductions and administration
// records land together or not at all.
type Store struct {
	db *sql.DB
}

// The repository interfaces overlap in method names, so the Store
// exposes them through narrow views; see Preparations, Batches, Cycles,
// and Administrations at the bottom of this file.

// NewStore opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral database in tests.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "peptrack.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: serializes writers and keeps ":memory:" databases
	// from being recreated per pooled connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// wastageRow is the stored form of a WastageRecord.
type wastageRow struct {
	VolumeML decimal.Decimal `json:"volume_ml"`
	Reason   string          `json:"reason"`
	Notes    string          `json:"notes,omitempty"`
}

// rampStepRow is the stored form of a RampStep.
type rampStepRow struct {
	Week    int             `json:"week"`
	Percent decimal.Decimal `json:"percent"`
}

func marshalComposition(comp map[entities.IngredientID]decimal.Decimal) (string, error) {
	data, err := json.Marshal(comp)
	if err != nil {
		return "", fmt.Errorf("encode composition: %w", err)
	}
	return string(data), nil
}

func unmarshalComposition(raw string) (map[entities.IngredientID]decimal.Decimal, error) {
	comp := make(map[entities.IngredientID]decimal.Decimal)
	if err := json.Unmarshal([]byte(raw), &comp); err != nil {
		return nil, fmt.Errorf("decode composition: %w", err)
	}
	return comp, nil
}

func encodeDate(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return d.Format(dateLayout)
}

func decodeDate(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", raw.String, err)
	}
	return &d, nil
}

// --- mix batches ---

// LoadMixBatches upserts mix batches into the database
func (s *Store) LoadMixBatches(batches []*entities.MixBatch) error {
	for _, batch := range batches {
		if err := s.saveMixBatch(s.db, batch); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) saveMixBatch(ex execer, batch *entities.MixBatch) error {
	mass, err := marshalComposition(batch.MassPerVial)
	if err != nil {
		return err
	}
	_, err = ex.Exec(`
		INSERT INTO mix_batches (id, product_name, mass_per_vial, vials_remaining)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_name = excluded.product_name,
			mass_per_vial = excluded.mass_per_vial,
			vials_remaining = excluded.vials_remaining`,
		batch.ID, batch.ProductName, mass, batch.VialsRemaining)
	if err != nil {
		return fmt.Errorf("save mix batch %d: %w", batch.ID, err)
	}
	return nil
}

func scanMixBatch(row interface{ Scan(...interface{}) error }) (*entities.MixBatch, error) {
	var (
		id          int64
		productName string
		massRaw     string
		vials       int64
	)
	if err := row.Scan(&id, &productName, &massRaw, &vials); err != nil {
		return nil, err
	}
	mass, err := unmarshalComposition(massRaw)
	if err != nil {
		return nil, err
	}
	return &entities.MixBatch{
		ID:             entities.BatchID(id),
		ProductName:    productName,
		MassPerVial:    mass,
		VialsRemaining: vials,
	}, nil
}

// GetMixBatch returns the mix batch with the given ID
func (s *Store) GetMixBatch(id entities.BatchID) (*entities.MixBatch, error) {
	row := s.db.QueryRow(`
		SELECT id, product_name, mass_per_vial, vials_remaining
		FROM mix_batches WHERE id = ?`, id)
	batch, err := scanMixBatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mix batch not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get mix batch %d: %w", id, err)
	}
	return batch, nil
}

// GetAvailableMixes returns batches with at least one vial remaining
func (s *Store) GetAvailableMixes() ([]*entities.MixBatch, error) {
	rows, err := s.db.Query(`
		SELECT id, product_name, mass_per_vial, vials_remaining
		FROM mix_batches WHERE vials_remaining > 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query mix batches: %w", err)
	}
	defer rows.Close()

	var batches []*entities.MixBatch
	for rows.Next() {
		batch, err := scanMixBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// --- preparations ---

// LoadPreparations upserts preparations into the database
func (s *Store) LoadPreparations(preps []*entities.Preparation) error {
	for _, prep := range preps {
		if err := s.Save(prep); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts a preparation
func (s *Store) Save(prep *entities.Preparation) error {
	return s.savePreparation(s.db, prep)
}

func (s *Store) savePreparation(ex execer, prep *entities.Preparation) error {
	comp, err := marshalComposition(prep.Composition)
	if err != nil {
		return err
	}
	var wastage interface{}
	if prep.Wastage != nil {
		data, err := json.Marshal(wastageRow{
			VolumeML: prep.Wastage.VolumeML,
			Reason:   prep.Wastage.Reason.String(),
			Notes:    prep.Wastage.Notes,
		})
		if err != nil {
			return fmt.Errorf("encode wastage: %w", err)
		}
		wastage = string(data)
	}
	_, err = ex.Exec(`
		INSERT INTO preparations
			(id, batch_id, composition, volume_total_ml, volume_remaining_ml, expiry_date, status, wastage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			batch_id = excluded.batch_id,
			composition = excluded.composition,
			volume_total_ml = excluded.volume_total_ml,
			volume_remaining_ml = excluded.volume_remaining_ml,
			expiry_date = excluded.expiry_date,
			status = excluded.status,
			wastage = excluded.wastage`,
		prep.ID, prep.BatchID, comp,
		prep.VolumeTotalML.String(), prep.VolumeRemaining.String(),
		encodeDate(prep.ExpiryDate), prep.Status.String(), wastage)
	if err != nil {
		return fmt.Errorf("save preparation %d: %w", prep.ID, err)
	}
	return nil
}

func scanPreparation(row interface{ Scan(...interface{}) error }) (*entities.Preparation, error) {
	var (
		id           int64
		batchID      int64
		compRaw      string
		totalRaw     string
		remainingRaw string
		expiryRaw    sql.NullString
		statusRaw    string
		wastageRaw   sql.NullString
	)
	if err := row.Scan(&id, &batchID, &compRaw, &totalRaw, &remainingRaw, &expiryRaw, &statusRaw, &wastageRaw); err != nil {
		return nil, err
	}

	comp, err := unmarshalComposition(compRaw)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(totalRaw)
	if err != nil {
		return nil, fmt.Errorf("parse total volume %q: %w", totalRaw, err)
	}
	remaining, err := decimal.NewFromString(remainingRaw)
	if err != nil {
		return nil, fmt.Errorf("parse remaining volume %q: %w", remainingRaw, err)
	}
	expiry, err := decodeDate(expiryRaw)
	if err != nil {
		return nil, err
	}

	prep, err := entities.NewPreparation(
		entities.PreparationID(id), entities.BatchID(batchID),
		comp, total, remaining, expiry)
	if err != nil {
		return nil, fmt.Errorf("rebuild preparation %d: %w", id, err)
	}

	status, err := entities.ParsePreparationStatus(statusRaw)
	if err != nil {
		return nil, fmt.Errorf("preparation %d: %w", id, err)
	}
	prep.Status = status

	if wastageRaw.Valid && wastageRaw.String != "" {
		var row wastageRow
		if err := json.Unmarshal([]byte(wastageRaw.String), &row); err != nil {
			return nil, fmt.Errorf("decode wastage for preparation %d: %w", id, err)
		}
		reason, err := entities.ParseWastageReason(row.Reason)
		if err != nil {
			return nil, fmt.Errorf("preparation %d: %w", id, err)
		}
		prep.Wastage = &entities.WastageRecord{
			VolumeML: row.VolumeML,
			Reason:   reason,
			Notes:    row.Notes,
		}
	}
	return prep, nil
}

const preparationColumns = `id, batch_id, composition, volume_total_ml, volume_remaining_ml, expiry_date, status, wastage`

// GetPreparation returns the preparation with the given ID
func (s *Store) GetPreparation(id entities.PreparationID) (*entities.Preparation, error) {
	row := s.db.QueryRow(`SELECT `+preparationColumns+` FROM preparations WHERE id = ?`, id)
	prep, err := scanPreparation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("preparation not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get preparation %d: %w", id, err)
	}
	return prep, nil
}

func (s *Store) queryPreparations(query string, args ...interface{}) ([]*entities.Preparation, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query preparations: %w", err)
	}
	defer rows.Close()

	var preps []*entities.Preparation
	for rows.Next() {
		prep, err := scanPreparation(rows)
		if err != nil {
			return nil, err
		}
		preps = append(preps, prep)
	}
	return preps, rows.Err()
}

// GetAllPreparations returns every preparation regardless of status
func (s *Store) GetAllPreparations() ([]*entities.Preparation, error) {
	return s.queryPreparations(`SELECT ` + preparationColumns + ` FROM preparations ORDER BY id`)
}

// GetActivePreparations returns preparations usable as of the given
// date. Expiry is filtered at read time against the date, not the
// stored status.
func (s *Store) GetActivePreparations(asOf time.Time) ([]*entities.Preparation, error) {
	day := entities.Day(asOf).Format(dateLayout)
	return s.queryPreparations(`
		SELECT `+preparationColumns+` FROM preparations
		WHERE status = 'active'
		  AND CAST(volume_remaining_ml AS REAL) > 0
		  AND (expiry_date IS NULL OR expiry_date >= ?)
		ORDER BY id`, day)
}

// GetActiveByBatch narrows GetActive to preparations diluted from one batch
func (s *Store) GetActiveByBatch(batchID entities.BatchID, asOf time.Time) ([]*entities.Preparation, error) {
	day := entities.Day(asOf).Format(dateLayout)
	return s.queryPreparations(`
		SELECT `+preparationColumns+` FROM preparations
		WHERE status = 'active'
		  AND batch_id = ?
		  AND CAST(volume_remaining_ml AS REAL) > 0
		  AND (expiry_date IS NULL OR expiry_date >= ?)
		ORDER BY id`, batchID, day)
}

// --- cycles ---

// LoadCycles upserts cycles into the database
func (s *Store) LoadCycles(cycles []*entities.Cycle) error {
	for _, cycle := range cycles {
		if err := s.SaveCycle(cycle); err != nil {
			return err
		}
	}
	return nil
}

// SaveCycle upserts a cycle
func (s *Store) SaveCycle(cycle *entities.Cycle) error {
	weekdays := make([]int, 0, len(cycle.Weekdays))
	for _, w := range cycle.Weekdays {
		weekdays = append(weekdays, int(w))
	}
	weekdaysJSON, err := json.Marshal(weekdays)
	if err != nil {
		return fmt.Errorf("encode weekdays: %w", err)
	}

	ramp := make([]rampStepRow, 0, len(cycle.Ramp))
	for _, step := range cycle.Ramp {
		ramp = append(ramp, rampStepRow{Week: step.Week, Percent: step.Percent})
	}
	rampJSON, err := json.Marshal(ramp)
	if err != nil {
		return fmt.Errorf("encode ramp: %w", err)
	}

	requirement, err := marshalComposition(cycle.Requirement)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO cycles
			(id, name, status, start_date, end_date, duration_weeks,
			 days_on, days_off, weekdays, five_on_two_off, daily_frequency, ramp, requirement)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			duration_weeks = excluded.duration_weeks,
			days_on = excluded.days_on,
			days_off = excluded.days_off,
			weekdays = excluded.weekdays,
			five_on_two_off = excluded.five_on_two_off,
			daily_frequency = excluded.daily_frequency,
			ramp = excluded.ramp,
			requirement = excluded.requirement`,
		cycle.ID, cycle.Name, cycle.Status.String(),
		cycle.StartDate.Format(dateLayout), encodeDate(cycle.EndDate),
		cycle.DurationWeeks, cycle.DaysOn, cycle.DaysOff,
		string(weekdaysJSON), cycle.FiveOnTwoOff, cycle.DailyFrequency,
		string(rampJSON), requirement)
	if err != nil {
		return fmt.Errorf("save cycle %d: %w", cycle.ID, err)
	}
	return nil
}

func scanCycle(row interface{ Scan(...interface{}) error }) (*entities.Cycle, error) {
	var (
		id             int64
		name           string
		statusRaw      string
		startRaw       string
		endRaw         sql.NullString
		durationWeeks  int
		daysOn         int
		daysOff        int
		weekdaysRaw    string
		fiveOnTwoOff   bool
		dailyFrequency int
		rampRaw        string
		requirementRaw string
	)
	if err := row.Scan(&id, &name, &statusRaw, &startRaw, &endRaw, &durationWeeks,
		&daysOn, &daysOff, &weekdaysRaw, &fiveOnTwoOff, &dailyFrequency, &rampRaw, &requirementRaw); err != nil {
		return nil, err
	}

	status, err := entities.ParseCycleStatus(statusRaw)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: %w", id, err)
	}
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: parse start date %q: %w", id, startRaw, err)
	}
	end, err := decodeDate(endRaw)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: %w", id, err)
	}

	cycle, err := entities.NewCycle(entities.CycleID(id), name, status, start, end, dailyFrequency)
	if err != nil {
		return nil, fmt.Errorf("rebuild cycle %d: %w", id, err)
	}
	cycle.DurationWeeks = durationWeeks
	cycle.DaysOn = daysOn
	cycle.DaysOff = daysOff
	cycle.FiveOnTwoOff = fiveOnTwoOff

	var weekdays []int
	if err := json.Unmarshal([]byte(weekdaysRaw), &weekdays); err != nil {
		return nil, fmt.Errorf("cycle %d: decode weekdays: %w", id, err)
	}
	for _, w := range weekdays {
		cycle.Weekdays = append(cycle.Weekdays, time.Weekday(w))
	}

	var ramp []rampStepRow
	if err := json.Unmarshal([]byte(rampRaw), &ramp); err != nil {
		return nil, fmt.Errorf("cycle %d: decode ramp: %w", id, err)
	}
	for _, step := range ramp {
		cycle.Ramp = append(cycle.Ramp, entities.RampStep{Week: step.Week, Percent: step.Percent})
	}

	cycle.Requirement, err = unmarshalComposition(requirementRaw)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: %w", id, err)
	}
	return cycle, nil
}

const cycleColumns = `id, name, status, start_date, end_date, duration_weeks,
	days_on, days_off, weekdays, five_on_two_off, daily_frequency, ramp, requirement`

// GetCycle returns the cycle with the given ID
func (s *Store) GetCycle(id entities.CycleID) (*entities.Cycle, error) {
	row := s.db.QueryRow(`SELECT `+cycleColumns+` FROM cycles WHERE id = ?`, id)
	cycle, err := scanCycle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cycle not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle %d: %w", id, err)
	}
	return cycle, nil
}

// GetActiveCycles returns active cycles ordered by ID
func (s *Store) GetActiveCycles() ([]*entities.Cycle, error) {
	rows, err := s.db.Query(`SELECT ` + cycleColumns + ` FROM cycles WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*entities.Cycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, cycle)
	}
	return cycles, rows.Err()
}

// CompleteEnded marks active cycles whose end date has passed as completed
func (s *Store) CompleteEnded(asOf time.Time) (int, error) {
	day := entities.Day(asOf).Format(dateLayout)
	result, err := s.db.Exec(`
		UPDATE cycles SET status = 'completed'
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date < ?`, day)
	if err != nil {
		return 0, fmt.Errorf("complete ended cycles: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// --- administrations ---

// RecordAdministrations appends administrations outside of a draw, e.g.
// backfilled logs
func (s *Store) RecordAdministrations(admins []*entities.Administration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := insertAdministrations(tx, admins); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertAdministrations(ex execer, admins []*entities.Administration) error {
	for _, admin := range admins {
		var cycleID interface{}
		if admin.CycleID != nil {
			cycleID = int64(*admin.CycleID)
		}
		_, err := ex.Exec(`
			INSERT INTO administrations
				(id, draw_id, cycle_id, preparation_id, volume_ml, administered_at, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			admin.ID.String(), admin.DrawID.String(), cycleID,
			admin.PreparationID, admin.VolumeML.String(),
			admin.AdministeredAt.UTC().Format(time.RFC3339), admin.Notes)
		if err != nil {
			return fmt.Errorf("insert administration %s: %w", admin.ID, err)
		}
	}
	return nil
}

func scanAdministration(row interface{ Scan(...interface{}) error }) (*entities.Administration, error) {
	var (
		idRaw     string
		drawRaw   string
		cycleID   sql.NullInt64
		prepID    int64
		volumeRaw string
		atRaw     string
		notes     string
	)
	if err := row.Scan(&idRaw, &drawRaw, &cycleID, &prepID, &volumeRaw, &atRaw, &notes); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("parse administration id %q: %w", idRaw, err)
	}
	drawID, err := uuid.Parse(drawRaw)
	if err != nil {
		return nil, fmt.Errorf("parse draw id %q: %w", drawRaw, err)
	}
	volume, err := decimal.NewFromString(volumeRaw)
	if err != nil {
		return nil, fmt.Errorf("parse volume %q: %w", volumeRaw, err)
	}
	at, err := time.Parse(time.RFC3339, atRaw)
	if err != nil {
		return nil, fmt.Errorf("parse administered_at %q: %w", atRaw, err)
	}

	admin := &entities.Administration{
		ID:             id,
		DrawID:         drawID,
		PreparationID:  entities.PreparationID(prepID),
		VolumeML:       volume,
		AdministeredAt: at,
		Notes:          notes,
	}
	if cycleID.Valid {
		cid := entities.CycleID(cycleID.Int64)
		admin.CycleID = &cid
	}
	return admin, nil
}

const administrationColumns = `id, draw_id, cycle_id, preparation_id, volume_ml, administered_at, notes`

func (s *Store) queryAdministrations(query string, args ...interface{}) ([]*entities.Administration, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query administrations: %w", err)
	}
	defer rows.Close()

	var admins []*entities.Administration
	for rows.Next() {
		admin, err := scanAdministration(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

// GetByCycle returns administrations linked to a cycle, oldest first
func (s *Store) GetByCycle(cycleID entities.CycleID) ([]*entities.Administration, error) {
	return s.queryAdministrations(`
		SELECT `+administrationColumns+` FROM administrations
		WHERE cycle_id = ? ORDER BY administered_at, id`, cycleID)
}

// GetByPreparation returns administrations drawn from a preparation, oldest first
func (s *Store) GetByPreparation(prepID entities.PreparationID) ([]*entities.Administration, error) {
	return s.queryAdministrations(`
		SELECT `+administrationColumns+` FROM administrations
		WHERE preparation_id = ? ORDER BY administered_at, id`, prepID)
}

// --- transactional draw persistence ---

// CommitDraw persists a committed draw in one transaction: the updated
// volumes and statuses of every drawn preparation, plus the
// administration records produced for them. Either everything lands or
// nothing does.
func (s *Store) CommitDraw(preps []*entities.Preparation, admins []*entities.Administration) (retErr error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			tx.Rollback()
		}
	}()

	for _, prep := range preps {
		if retErr = s.savePreparation(tx, prep); retErr != nil {
			return retErr
		}
	}
	if retErr = insertAdministrations(tx, admins); retErr != nil {
		return retErr
	}
	return tx.Commit()
}
