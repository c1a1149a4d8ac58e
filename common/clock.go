package common

import (
	"strconv"
	"time"
)

// httpDateLayouts lists the layouts accepted for an HTTP Date header,
// in preference order: RFC 1123 (the format Reddit actually sends),
// then RFC 1123 with a numeric zone (the RFC 2822 form), then ANSI C
// asctime, one of the legacy layouts RFC 7231 §7.1.1.1 still requires
// parsers to accept.
var httpDateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.ANSIC,
}

// NowMillis returns the current wall-clock time as milliseconds since
// the Unix epoch. It is the only source of time consulted by
// scheduling decisions; nothing in the crawler calls time.Now directly.
func NowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// ParseHTTPDate parses an RFC-2822-style Date header value into
// seconds since the Unix epoch. Reddit sends RFC 1123, so that's tried
// first; unparsable input is not an error here, it is the caller's
// responsibility to apply the documented default.
func ParseHTTPDate(s string) (seconds uint64, ok bool) {
	for _, layout := range httpDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return uint64(t.Unix()), true
		}
	}
	return 0, false
}

// ParseUintHeader parses a header value as a base-10 unsigned integer,
// reporting ok=false on any malformed input rather than erroring.
func ParseUintHeader(s string) (value uint64, ok bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloatHeaderTruncated parses a header value as a float and
// truncates it to an unsigned integer, matching Reddit's
// x-ratelimit-remaining header which is sent as a decimal (e.g. "99.0").
func ParseFloatHeaderTruncated(s string) (value uint64, ok bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return uint64(f), true
}
