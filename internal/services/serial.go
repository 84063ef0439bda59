package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// serialPattern matches the human-facing serial format: LW followed by
// digits, case-insensitive.
var serialPattern = regexp.MustCompile(`(?i)^LW(\d+)$`)

// serialScanWindow bounds how many recent serials are fetched when
// allocating; the newest matching serial is expected near the front.
const serialScanWindow = 250

// NextSerial derives the next serial number from existing serials ordered
// newest-created first. The sequence follows the most recently created
// matching serial, not the numeric maximum: given LW01 then LW03, the next
// is LW04. With no matching serial the sequence starts at LW01.
func NextSerial(serialsNewestFirst []string) string {
	for _, s := range serialsNewestFirst {
		m := serialPattern.FindStringSubmatch(strings.TrimSpace(s))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return FormatSerial(n + 1)
	}
	return FormatSerial(1)
}

// FormatSerial renders a serial number zero-padded to two digits,
// overflowing naturally to three and more past 99.
func FormatSerial(n int) string {
	return fmt.Sprintf("LW%02d", n)
}
