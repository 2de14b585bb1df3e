package model

import "math"

// fractionalCutoff separates 0–1 fractional scores from scores already on the
// 0–100 scale. Some producers emit 0.91 meaning 91; anything at or below the
// cutoff is treated as fractional and rescaled.
const fractionalCutoff = 1.5

// NormalizeScore coerces a raw score onto the canonical 0–100 scale.
// Values <= 1.5 are treated as fractional and rescaled by 100; larger values
// are only rounded. The result is clamped to [0, 100]. Idempotent on integer
// scores in [2, 100].
func NormalizeScore(raw float64) float64 {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	var scaled float64
	if raw <= fractionalCutoff {
		scaled = math.Round(raw * 100)
	} else {
		scaled = math.Round(raw)
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}
