package plist

import (
	"fmt"
	"math"
	"time"
)

// appleEpochUnix is 2001-01-01T00:00:00Z, the reference date for plist
// dates and archived NSDate values, in Unix seconds.
const appleEpochUnix = 978307200

// maxAppleSeconds bounds the dates FromAppleTime accepts so that whole
// seconds fit an int64.
const maxAppleSeconds = 1 << 62

// FromAppleTime converts seconds since 2001-01-01 UTC to a time.  NaN,
// infinities and values beyond ±2^62 seconds are errors.
func FromAppleTime(secs float64) (time.Time, error) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > maxAppleSeconds {
		return time.Time{}, fmt.Errorf("%w: date %v seconds from 2001 out of range", ErrParse, secs)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(appleEpochUnix+int64(whole), int64(math.Round(frac*1e9))).UTC(), nil
}

// ToAppleTime converts t to seconds since 2001-01-01 UTC.
func ToAppleTime(t time.Time) float64 {
	return float64(t.Unix()-appleEpochUnix) + float64(t.Nanosecond())/1e9
}
