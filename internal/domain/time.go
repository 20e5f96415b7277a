package domain

import (
	"math"
	"time"
)

const (
	secondsPerDay = 86400.0
	unixEpochMJD  = 40587.0 // 1970-01-01.
	cnesEpochMJD  = 33282.0 // 1950-01-01.
)

// CNESEpoch is the origin of the continuous day count used by the engine.
//
//nolint:gochecknoglobals // Fixed reference epoch.
var CNESEpoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// CNESDaysFromUnix converts seconds since the Unix epoch into days since
// 1950-01-01 00:00 UTC.
func CNESDaysFromUnix(sec float64) float64 {
	mjd := sec/secondsPerDay + unixEpochMJD
	return mjd - cnesEpochMJD
}

// CNESDays converts a time to days since 1950-01-01 00:00 UTC.
func CNESDays(t time.Time) float64 {
	sec := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return CNESDaysFromUnix(sec)
}

// TimeFromCNESDays is the inverse of CNESDays, rounded to the microsecond.
func TimeFromCNESDays(days float64) time.Time {
	whole := math.Floor(days)
	frac := days - whole
	us := math.Round(frac * secondsPerDay * 1e6)
	return CNESEpoch.AddDate(0, 0, int(whole)).Add(time.Duration(us) * time.Microsecond)
}
