package reddit

import (
	"net/http"

	"github.com/evalgo/mansa/common"
)

// RateLimitInfo is the trio of session fields extracted from a Reddit
// response's headers (spec.md §4.6, bit-exact defaults).
type RateLimitInfo struct {
	RetrieveTimestamp uint64
	MillisToRefresh   uint64
	RequestsLimit     int64
}

// ParseRateLimitHeaders extracts RateLimitInfo from resp per spec.md's
// bit-exact contract:
//   - Date → RFC-2822 → epoch seconds; absent or unparsable → 0.
//   - x-ratelimit-reset → uint millis; absent or unparsable → 400.
//   - x-ratelimit-remaining → float, truncated to uint; absent or
//     unparsable → 0.
func ParseRateLimitHeaders(h http.Header) RateLimitInfo {
	var info RateLimitInfo

	if seconds, ok := common.ParseHTTPDate(h.Get("Date")); ok {
		info.RetrieveTimestamp = seconds
	}

	info.MillisToRefresh = 400
	if v, ok := common.ParseUintHeader(h.Get("x-ratelimit-reset")); ok {
		info.MillisToRefresh = v
	}

	if v, ok := common.ParseFloatHeaderTruncated(h.Get("x-ratelimit-remaining")); ok {
		info.RequestsLimit = int64(v)
	}

	return info
}
