package entity

import "time"

// Now returns the current time in UTC at microsecond precision, the
// resolution TIMESTAMPTZ keeps.
func Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
