package units

import (
	"math"
	"testing"

	"github.com/liftlog/liftlog/internal/models"
)

func TestLbsToKg(t *testing.T) {
	tests := []struct {
		lbs  float64
		want float64
	}{
		{225, 102.06},
		{135, 61.23},
		{185, 83.91},
		{0, 0},
	}
	for _, tt := range tests {
		if got := LbsToKg(tt.lbs); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("LbsToKg(%v) = %v, want ~%v", tt.lbs, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, kg := range []float64{0, 20, 61.2349, 102.5} {
		if got := LbsToKg(KgToLbs(kg)); math.Abs(got-kg) > 1e-6 {
			t.Errorf("round trip %v -> %v", kg, got)
		}
	}
}

func TestDisplayAndStorage(t *testing.T) {
	if got := ToDisplay(100, models.Metric); got != 100 {
		t.Errorf("ToDisplay metric = %v, want 100", got)
	}
	if got := ToStorage(100, models.Metric); got != 100 {
		t.Errorf("ToStorage metric = %v, want 100", got)
	}
	if got := ToStorage(225, models.Imperial); math.Abs(got-102.058) > 0.001 {
		t.Errorf("ToStorage imperial = %v", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		kg   float64
		pref models.UnitPreference
		want string
	}{
		{100, models.Metric, "100 kg"},
		{61.2349, models.Metric, "61.2 kg"},
		{LbsToKg(225), models.Imperial, "225 lbs"},
		{0, models.Imperial, "0 lbs"},
	}
	for _, tt := range tests {
		if got := Format(tt.kg, tt.pref); got != tt.want {
			t.Errorf("Format(%v, %s) = %q, want %q", tt.kg, tt.pref, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if Label(models.Imperial) != "lbs" || Label(models.Metric) != "kg" {
		t.Error("unexpected labels")
	}
}
