package registration

import "ev-assembly/internal/storage"

// outcome maps actual output against the effective expectation to the
// piece-rate result. Without a standard the deviation is still recorded
// but no money moves.
func outcome(actual, expected int, std *storage.ProductionStandard) (deviation int, bonus, penalty float64) {
	deviation = actual - expected

	if std == nil {
		return deviation, 0, 0
	}

	switch {
	case deviation > 0:
		bonus = float64(deviation) * std.BonusPerUnit
	case deviation < 0:
		penalty = float64(-deviation) * std.PenaltyPerUnit
	}

	return deviation, bonus, penalty
}
