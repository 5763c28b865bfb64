package dosing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

var thousand = decimal.NewFromInt(1000)

// DilutionVolume returns the diluent volume in ml needed to bring the
// given mass to a target concentration (mg and mg/ml).
func DilutionVolume(massMg, targetConcentrationMgML decimal.Decimal) (decimal.Decimal, error) {
	if targetConcentrationMgML.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("target concentration must be positive, got %s", targetConcentrationMgML)
	}
	return massMg.Div(targetConcentrationMgML), nil
}

// Concentration returns the resulting concentration in mg/ml.
func Concentration(massMg, volumeML decimal.Decimal) (decimal.Decimal, error) {
	if volumeML.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("volume must be positive, got %s", volumeML)
	}
	return massMg.Div(volumeML), nil
}

// McgToML converts a dose in mcg to the injection volume in ml at the
// given concentration in mg/ml.
func McgToML(doseMcg, concentrationMgML decimal.Decimal) (decimal.Decimal, error) {
	if concentrationMgML.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("concentration must be positive, got %s", concentrationMgML)
	}
	return doseMcg.Div(thousand).Div(concentrationMgML), nil
}

// MLToMcg converts an injected volume in ml to the dose in mcg at the
// given concentration in mg/ml.
func MLToMcg(volumeML, concentrationMgML decimal.Decimal) decimal.Decimal {
	return volumeML.Mul(concentrationMgML).Mul(thousand)
}

// DosesFromPreparation returns how many whole administrations of the
// given dose a preparation yields. Floor division: a partial dose at the
// bottom of the vial does not count.
func DosesFromPreparation(totalMg, volumeML, doseMcg decimal.Decimal) (int64, error) {
	concentration, err := Concentration(totalMg, volumeML)
	if err != nil {
		return 0, err
	}
	mlPerDose, err := McgToML(doseMcg, concentration)
	if err != nil {
		return 0, err
	}
	if mlPerDose.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("dose must be positive, got %s mcg", doseMcg)
	}
	return volumeML.Div(mlPerDose).Floor().IntPart(), nil
}

// DilutionSuggestion is the output of SuggestedDilution.
type DilutionSuggestion struct {
	DiluentML         decimal.Decimal
	ConcentrationMgML decimal.Decimal
	VolumePerDoseML   decimal.Decimal
	TotalDoses        int64
}

// SuggestedDilution proposes a dilution so that one administration of
// the target dose lands on a syringe-friendly draw volume, stretching
// the diluent when needed to reach a minimum number of doses.
func SuggestedDilution(massMg, targetDoseMcg, drawVolumeML decimal.Decimal, minDoses int64) (*DilutionSuggestion, error) {
	if drawVolumeML.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("draw volume must be positive, got %s", drawVolumeML)
	}
	if targetDoseMcg.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("target dose must be positive, got %s", targetDoseMcg)
	}

	concentration := targetDoseMcg.Div(thousand).Div(drawVolumeML)
	diluent, err := DilutionVolume(massMg, concentration)
	if err != nil {
		return nil, err
	}
	doses := diluent.Div(drawVolumeML).Floor().IntPart()

	if doses < minDoses {
		diluent = drawVolumeML.Mul(decimal.NewFromInt(minDoses))
		concentration = massMg.Div(diluent)
		doses = minDoses
	}

	return &DilutionSuggestion{
		DiluentML:         diluent,
		ConcentrationMgML: concentration,
		VolumePerDoseML:   drawVolumeML,
		TotalDoses:        doses,
	}, nil
}

// SuggestedExpiry returns the recommended expiry date for a freshly
// reconstituted preparation: 28 days for standard peptides, 14 for
// fragments, 21 for modified ones.
func SuggestedExpiry(preparedOn time.Time, peptideType string) time.Time {
	days := 28
	switch peptideType {
	case "fragment":
		days = 14
	case "modified":
		days = 21
	}
	return entities.Day(preparedOn).AddDate(0, 0, days)
}
