// Package units converts weights between kilograms and pounds. All weights
// are stored in kilograms; pounds only exist at the edges (import, display).
package units

import (
	"fmt"
	"math"
	"strconv"

	"github.com/liftlog/liftlog/internal/models"
)

const (
	KgToLbsFactor = 2.20462262185
	LbsToKgFactor = 0.45359237
)

func LbsToKg(lbs float64) float64 { return lbs * LbsToKgFactor }

func KgToLbs(kg float64) float64 { return kg * KgToLbsFactor }

// ToDisplay converts a stored weight to the user's preferred unit.
func ToDisplay(kg float64, pref models.UnitPreference) float64 {
	if pref == models.Imperial {
		return KgToLbs(kg)
	}
	return kg
}

// ToStorage converts a weight entered in the user's preferred unit to kilograms.
func ToStorage(v float64, pref models.UnitPreference) float64 {
	if pref == models.Imperial {
		return LbsToKg(v)
	}
	return v
}

// Label returns "lbs" for imperial and "kg" otherwise.
func Label(pref models.UnitPreference) string {
	if pref == models.Imperial {
		return "lbs"
	}
	return "kg"
}

// Format renders a stored weight rounded to one decimal with its unit label,
// e.g. "225 lbs" or "61.2 kg".
func Format(kg float64, pref models.UnitPreference) string {
	rounded := math.Round(ToDisplay(kg, pref)*10) / 10
	return fmt.Sprintf("%s %s", strconv.FormatFloat(rounded, 'f', -1, 64), Label(pref))
}
