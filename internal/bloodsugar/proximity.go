package bloodsugar

// NearTolerance is how far a value may sit from a boundary and still count
// as near it.
const NearTolerance = 1

// IsNear reports whether value lies within NearTolerance of lower or upper.
// The bounds need not be ordered.
func IsNear(value, lower, upper int) bool {
	return within(value, lower) || within(value, upper)
}

func within(value, boundary int) bool {
	return value >= boundary-NearTolerance && value <= boundary+NearTolerance
}
