package helpers

import (
	"fmt"
	"strings"
	"time"
)

const emailTimeLayout = "02 January 2006, 15:04 MST"

// LocalizeTimes rewrites data["Time"] from data["TimeAt"] in the given IANA
// zone. Unknown zones leave the data untouched.
func LocalizeTimes(data map[string]any, timezone string) {
	if strings.TrimSpace(timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return
	}
	if v, ok := data["TimeAt"]; ok {
		if t, ok2 := parseTimeAny(v); ok2 {
			data["Time"] = t.In(loc).Format(emailTimeLayout)
		}
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s := fmt.Sprintf("%v", v)
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
