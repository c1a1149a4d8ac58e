package reddit

import (
	"net/http"
	"testing"
)

func TestParseRateLimitHeadersDefaults(t *testing.T) {
	info := ParseRateLimitHeaders(http.Header{})
	if info.RetrieveTimestamp != 0 {
		t.Fatalf("got RetrieveTimestamp %d, want 0", info.RetrieveTimestamp)
	}
	if info.MillisToRefresh != 400 {
		t.Fatalf("got MillisToRefresh %d, want 400", info.MillisToRefresh)
	}
	if info.RequestsLimit != 0 {
		t.Fatalf("got RequestsLimit %d, want 0", info.RequestsLimit)
	}
}

func TestParseRateLimitHeadersPresent(t *testing.T) {
	h := http.Header{}
	h.Set("Date", "Sun, 31 Jul 2022 00:01:30 GMT")
	h.Set("x-ratelimit-reset", "123")
	h.Set("x-ratelimit-remaining", "99.7")

	info := ParseRateLimitHeaders(h)
	if info.RetrieveTimestamp == 0 {
		t.Fatal("expected a nonzero timestamp parsed from Date")
	}
	if info.MillisToRefresh != 123 {
		t.Fatalf("got MillisToRefresh %d, want 123", info.MillisToRefresh)
	}
	if info.RequestsLimit != 99 {
		t.Fatalf("got RequestsLimit %d, want 99 (truncated)", info.RequestsLimit)
	}
}

func TestParseRateLimitHeadersMalformed(t *testing.T) {
	h := http.Header{}
	h.Set("Date", "not a date")
	h.Set("x-ratelimit-reset", "not a number")
	h.Set("x-ratelimit-remaining", "not a float")

	info := ParseRateLimitHeaders(h)
	if info.RetrieveTimestamp != 0 || info.MillisToRefresh != 400 || info.RequestsLimit != 0 {
		t.Fatalf("malformed headers should fall back to documented defaults, got %+v", info)
	}
}
