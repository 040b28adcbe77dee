package guard

// OrderChanged reports whether any item of live sits at a different order
// value than the item with the same id in baseline, or whether the two lists
// hold different ids.
func OrderChanged[T any, K comparable](live, baseline []T, id func(T) K, order func(T) int) bool {
	if len(live) != len(baseline) {
		return true
	}
	base := make(map[K]int, len(baseline))
	for _, b := range baseline {
		base[id(b)] = order(b)
	}
	for _, l := range live {
		o, ok := base[id(l)]
		if !ok || o != order(l) {
			return true
		}
	}
	return false
}
