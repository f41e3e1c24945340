package rfc9111

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// §  1.2.  Syntax Notation
// §
// §     It also uses a list extension, defined in Section 5.6.1 of [HTTP],
// §     that allows for compact definition of comma-separated lists using a
// §     "#" operator (similar to how the "*" operator indicates repetition).

// GetListHeader returns the members of a "#" list header field,
// combining all field lines. Empty members are dropped.
func GetListHeader(header http.Header, field string) []string {
	list := make([]string, 0)
	for _, hdr := range header.Values(field) {
		for _, item := range strings.Split(hdr, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}
	return list
}

// §  1.2.2. Delta Seconds
// §
// §  The delta-seconds rule specifies a non-negative integer, representing time
// §  in seconds.
// §
// §      delta-seconds  = 1*DIGIT
// §
// §  [...] If a cache receives a delta-seconds value greater than the greatest
// §  integer it can represent, or if any of its subsequent calculations overflows,
// §  the cache MUST consider the value to be 2147483648 (2^31) or the greatest
// §  positive integer it can conveniently represent.
const maxDeltaSeconds = 2147483648

func deltaSeconds(secondsStr string) time.Duration {
	seconds, err := strconv.ParseUint(secondsStr, 10, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return time.Second * maxDeltaSeconds
		}
		return 0
	}
	if seconds > maxDeltaSeconds {
		seconds = maxDeltaSeconds
	}
	return time.Second * time.Duration(seconds)
}

// toDeltaSeconds never generates a negative value.
func toDeltaSeconds(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	return fmt.Sprintf("%.f", duration.Truncate(time.Second).Seconds())
}

// HttpDate parses an HTTP-date (Section 5.6.7 of [HTTP]), accepting the
// IMF-fixdate form as well as the two obsolete forms.
func HttpDate(dateStr string) (time.Time, error) {
	date, err := http.ParseTime(strings.TrimSpace(dateStr))
	if err != nil {
		return date, fmt.Errorf("parse http-date %q: %w", dateStr, err)
	}
	return date.UTC(), nil
}

// FormatHttpDate generates the preferred IMF-fixdate form, always in GMT.
func FormatHttpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
