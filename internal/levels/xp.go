// Package levels implements the experience/level step function shared
// by the XP ledger and the cooldown duration reduction.
package levels

import "github.com/wardenbot/warden/internal/levels/curve"

// Threshold returns the XP required to advance from the given level to
// the next one. It is strictly increasing in the level, which is what
// guarantees Advance terminates.
func Threshold(level int64) int64 {
	return curve.Threshold(level)
}

// Advance applies gained XP to a (level, in-level XP) pair and returns
// the new pair. The level is advanced iteratively while the accumulated
// XP meets the current threshold; there is no closed form.
func Advance(level, xp, gained int64) (int64, int64) {
	return curve.Advance(level, xp, gained)
}

// ToNext returns the XP still needed to reach the next level from the
// given in-level XP.
func ToNext(level, xp int64) int64 {
	return curve.ToNext(level, xp)
}
