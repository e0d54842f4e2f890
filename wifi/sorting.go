package wifi

import (
	"sort"
	"strings"
)

// Compare orders two access points for display. It returns a negative number
// when a goes above b. The order is:
// 1. Active access point first.
// 2. In range before out of range.
// 3. Saved before unsaved.
// 4. Higher signal level first.
// 5. SSID alphabetically, ignoring case.
// Remaining ties are broken by security and then the exact SSID, so only
// access points with the same Key compare equal.
func Compare(a, b *AccessPoint, levels int) int {
	if a.Active() != b.Active() {
		return boolOrder(a.Active())
	}
	if a.InRange != b.InRange {
		return boolOrder(a.InRange)
	}
	if a.Saved() != b.Saved() {
		return boolOrder(a.Saved())
	}
	if d := b.SignalLevel(levels) - a.SignalLevel(levels); d != 0 {
		return d
	}
	if c := strings.Compare(strings.ToLower(a.SSID), strings.ToLower(b.SSID)); c != 0 {
		return c
	}
	if a.Security != b.Security {
		return int(a.Security) - int(b.Security)
	}
	return strings.Compare(a.SSID, b.SSID)
}

func boolOrder(first bool) int {
	if first {
		return -1
	}
	return 1
}

// SortAccessPoints sorts access points in place using Compare.
func SortAccessPoints(aps []*AccessPoint, levels int) {
	sort.SliceStable(aps, func(i, j int) bool {
		return Compare(aps[i], aps[j], levels) < 0
	})
}
