package analysis

// PctChange computes the fractional change from oldVal to newVal.
// If oldVal is zero, returns 1.0 when newVal != 0 and 0.0 otherwise.
func PctChange(newVal, oldVal float64) float64 {
	if oldVal == 0 {
		if newVal != 0 {
			return 1.0
		}
		return 0.0
	}
	return (newVal - oldVal) / oldVal
}

// Share returns part as a percentage of whole, or 0 when whole is zero.
func Share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
