package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts an "H:MM:SS" cell into seconds. A nil or malformed cell is 0.
func Parse(raw *string) int {
	if raw == nil {
		return 0
	}
	secs, _ := ParseString(*raw)
	return secs
}

// ParseString reports whether s held exactly three integer tokens. Each token
// keeps its own sign, so "-00:01:00" is 60 and "-01:00:00" is -3600.
func ParseString(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, false
		}
		v[i] = n
	}
	return v[0]*3600 + v[1]*60 + v[2], true
}

// ParseSigned reads a leading "-" as negating the whole duration, so
// "-0:05:00" is -300. This is how the headline averages read the sheet.
func ParseSigned(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	secs, ok := ParseString(strings.TrimPrefix(s, "-"))
	if !ok {
		return 0, false
	}
	if neg {
		secs = -secs
	}
	return secs, true
}

const Sentinel = "00:00:00"

func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Sentinel
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
	}
	abs := math.Abs(seconds)
	hours := int64(abs / 3600)
	minutes := int64(math.Mod(abs, 3600) / 60)
	secs := int64(math.Mod(abs, 60))
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, hours, minutes, secs)
}

// FormatMinutes is for coarse displays only: the seconds field is always 00.
func FormatMinutes(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return Sentinel
	}
	sign := ""
	if minutes < 0 {
		sign = "-"
	}
	abs := math.Abs(minutes)
	hours := int64(abs / 60)
	mins := int64(math.Mod(abs, 60))
	return fmt.Sprintf("%s%02d:%02d:00", sign, hours, mins)
}

// FormatMean renders an optional average, falling back to the sentinel.
func FormatMean(v *float64) string {
	if v == nil {
		return Sentinel
	}
	return FormatSeconds(*v)
}
