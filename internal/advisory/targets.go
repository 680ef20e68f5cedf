package advisory

import "strings"

// #region targets

// Targets maps advisory sub-commands onto commanded vertical speeds in fpm.
// Up values are given with their climb sign; Down values mirror them.
type Targets struct {
	ClimbFPM         float64 `yaml:"climb_fpm" json:"climb_fpm"`
	ClimbIncreaseFPM float64 `yaml:"climb_increase_fpm" json:"climb_increase_fpm"`
	DontFPM          float64 `yaml:"dont_fpm" json:"dont_fpm"`
	Limit500FPM      float64 `yaml:"limit_500_fpm" json:"limit_500_fpm"`
	Limit1000FPM     float64 `yaml:"limit_1000_fpm" json:"limit_1000_fpm"`
	Limit2000FPM     float64 `yaml:"limit_2000_fpm" json:"limit_2000_fpm"`
	// CorrectiveFallbackFPM applies to "...Corrective" labels without a specific
	// mapping. Provisional until the label vocabulary is fully mapped.
	CorrectiveFallbackFPM float64 `yaml:"corrective_fallback_fpm" json:"corrective_fallback_fpm"`
}

// DefaultTargets returns the FAA TCAS II v7.1 nominal rates.
func DefaultTargets() Targets {
	return Targets{
		ClimbFPM:              1500,
		ClimbIncreaseFPM:      2500,
		DontFPM:               0,
		Limit500FPM:           -500,
		Limit1000FPM:          -1000,
		Limit2000FPM:          -2000,
		CorrectiveFallbackFPM: -2000,
	}
}

// #endregion targets

// #region required

// RequiredUp returns the commanded vertical speed for an up-sense sub-command.
// ok is false when the label has no mapping.
func (t Targets) RequiredUp(up, vertical string) (fpm float64, ok bool) {
	return t.resolve(up, Climb, DontDescend, vertical)
}

// RequiredDown returns the commanded vertical speed for a down-sense sub-command,
// the mirror image of RequiredUp.
func (t Targets) RequiredDown(down, vertical string) (fpm float64, ok bool) {
	fpm, ok = t.resolve(down, Descend, DontClimb, vertical)
	if !ok {
		return 0, false
	}
	if fpm == 0 {
		return 0, true
	}
	return -fpm, true
}

func (t Targets) resolve(label, move, dont, vertical string) (float64, bool) {
	switch {
	case label == move:
		if vertical == Increase {
			return t.ClimbIncreaseFPM, true
		}
		return t.ClimbFPM, true
	case label == dont:
		return t.DontFPM, true
	case strings.HasSuffix(label, " 500"):
		return t.Limit500FPM, true
	case strings.HasSuffix(label, "1000"):
		return t.Limit1000FPM, true
	case strings.HasSuffix(label, "2000"):
		return t.Limit2000FPM, true
	case strings.HasSuffix(label, "Corrective"):
		return t.CorrectiveFallbackFPM, true
	default:
		return 0, false
	}
}

// #endregion required
