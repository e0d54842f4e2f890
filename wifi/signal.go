package wifi

const (
	// Anything worse than or equal to this will show 0 bars.
	minRSSI = -100
	// Anything better than or equal to this will show the max bars.
	maxRSSI = -55

	DefaultSignalLevels = 4
)

// CalculateSignalLevel maps a signal strength in dBm onto a bucket in
// [0, levels-1].
func CalculateSignalLevel(rssi, levels int) int {
	if levels < 1 {
		return 0
	}
	switch {
	case rssi <= minRSSI:
		return 0
	case rssi >= maxRSSI:
		return levels - 1
	}
	return (rssi - minRSSI) * (levels - 1) / (maxRSSI - minRSSI)
}

// SignalLevel returns the display bucket for the access point. Out of range
// access points report 0.
func (ap AccessPoint) SignalLevel(levels int) int {
	if !ap.InRange || ap.RSSI <= minRSSI {
		return 0
	}
	return CalculateSignalLevel(ap.RSSI, levels)
}
