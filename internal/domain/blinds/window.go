package blinds

// RecavesOpen reports whether busts and recaves are allowed at effectiveLevel.
// The single break immediately following the rebuy end level is a grace period.
func RecavesOpen(s Schedule, rebuyEndLevel *int, effectiveLevel int) bool {
	if rebuyEndLevel == nil {
		return true
	}
	if effectiveLevel <= *rebuyEndLevel {
		return true
	}
	if effectiveLevel != *rebuyEndLevel+1 {
		return false
	}
	lvl, ok := s.Level(effectiveLevel)
	return ok && lvl.IsBreak
}
