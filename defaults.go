package gsd

// ShouldWrite decides whether a quantity must be written in a frame. It
// must on the first frame of a file, when forced, and whenever at least one
// element differs from def. Floating point values are compared exactly: a
// value suppressed is a value equal to the default, not close to it.
func ShouldWrite[T comparable](frameZero, forced bool, values []T, def T) bool {
	if frameZero || forced {
		return true
	}
	for _, v := range values {
		if v != def {
			return true
		}
	}
	return false
}

// gather collects the values of the particles in tags, in order. A nil
// src means every particle has the value def.
func gather[T any](src []T, tags []uint32, def T) []T {
	ret := make([]T, len(tags))
	if src == nil {
		for i := range ret {
			ret[i] = def
		}
		return ret
	}
	for i, t := range tags {
		ret[i] = src[t]
	}
	return ret
}
