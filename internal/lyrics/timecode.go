package lyrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedTimestamp is wrapped by every timecode parse failure.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// ParseTimecode converts "mm:ss.cc" into seconds: minutes*60 + seconds +
// centiseconds/100. A fraction of other length is read as a decimal fraction.
func ParseTimecode(s string) (float64, error) {
	v := strings.TrimSpace(s)
	colon := strings.IndexByte(v, ':')
	if colon <= 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrMalformedTimestamp)
	}
	minutes, err := strconv.Atoi(v[:colon])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%q minutes: %w", s, ErrMalformedTimestamp)
	}

	rest := v[colon+1:]
	secPart, fracPart := rest, ""
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		secPart, fracPart = rest[:dot], rest[dot+1:]
	}
	sec, err := strconv.Atoi(secPart)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("%q seconds: %w", s, ErrMalformedTimestamp)
	}

	var frac float64
	if fracPart != "" {
		n, err := strconv.Atoi(fracPart)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q fraction: %w", s, ErrMalformedTimestamp)
		}
		frac = float64(n) / math.Pow(10, float64(len(fracPart)))
	}
	return float64(minutes)*60 + float64(sec) + frac, nil
}

// FormatTimecode renders seconds as "mm:ss.cc".
func FormatTimecode(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	cs := int(math.Round(sec * 100))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}
