// Package curve holds the pure experience/level step function. It lives
// below both internal/levels and internal/database/models so the model
// layer can compute level advancement without importing the service
// package (which itself depends on the database client).
package curve

// Threshold returns the XP required to advance from the given level to
// the next one. It is strictly increasing in the level, which is what
// guarantees Advance terminates.
func Threshold(level int64) int64 {
	return 5*level*level + 50*level + 100
}

// Advance applies gained XP to a (level, in-level XP) pair and returns
// the new pair. The level is advanced iteratively while the accumulated
// XP meets the current threshold; there is no closed form.
func Advance(level, xp, gained int64) (int64, int64) {
	xp += gained
	for xp >= Threshold(level) {
		xp -= Threshold(level)
		level++
	}

	return level, xp
}

// ToNext returns the XP still needed to reach the next level from the
// given in-level XP.
func ToNext(level, xp int64) int64 {
	return Threshold(level) - xp
}
