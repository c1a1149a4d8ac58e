// Package account implements the authenticated-account abstraction
// (spec.md §4.7) and the rate-limit-aware pool that hands accounts out
// to the parser orchestrator (spec.md §4.8).
package account

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/evalgo/mansa/model"
)

// userAgent is fixed per spec.md §4.7; Reddit's OAuth API keys off the
// installed-app user agent string rather than a browser UA.
const userAgent = "PostmanRuntime/7.29.0"

// userAgentTransport stamps every outgoing request with the fixed
// user agent, following this codebase's pattern of layering behavior
// onto http.Client via a custom http.RoundTripper rather than setting
// headers at each call site.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

// Account pairs immutable credentials with a mutable, lock-guarded
// session and an HTTP client it owns outright. The session is never
// read or written except through the explicit Session/SetSession
// accessors, which take the read/write lock spec.md §4.7 requires.
type Account struct {
	Data       model.AccountData
	HTTPClient *http.Client

	mu      sync.RWMutex
	session model.Session
}

// New constructs an Account bound to data, wiring an optional proxy
// into the HTTP client's transport and the fixed user agent onto every
// request the client issues.
func New(data model.AccountData, proxy *model.Proxy) (*Account, error) {
	transport := &http.Transport{}

	if proxy != nil {
		proxyURL, err := url.Parse(proxy.Host)
		if err != nil {
			return nil, err
		}
		if proxy.Login != "" {
			proxyURL.User = url.UserPassword(proxy.Login, proxy.Password)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: &userAgentTransport{base: transport},
	}

	return &Account{Data: data, HTTPClient: client}, nil
}

// Session returns a value-copy of the current session under a read
// lock, matching spec.md §4.7's requirement that readers only ever see
// a consistent snapshot.
func (a *Account) Session() model.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// SetSession atomically replaces the session under a write lock.
func (a *Account) SetSession(s model.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = s
}

// RefreshTime returns the current session's refresh_time, the instant
// at which its rate-limit window resets.
func (a *Account) RefreshTime() uint64 {
	return a.Session().RefreshTime()
}

// TryAcquire implements the write-locked inspect-and-decrement step of
// Pool.GetAccount (spec.md §4.8 step 2-4). If the session has requests
// remaining, it is decremented and acquired reports true; exhausted
// reports whether the limit reached zero on this call, signalling the
// caller to requeue the account via move_end. If the session had no
// requests remaining, acquired is false and the caller must sleep
// until refreshTime before retrying — no decrement happens in that case.
func (a *Account) TryAcquire() (acquired, exhausted bool, refreshTime uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	refreshTime = a.session.RefreshTime()
	if a.session.RequestsLimit <= 0 {
		return false, false, refreshTime
	}

	a.session.RequestsLimit--
	return true, a.session.RequestsLimit == 0, refreshTime
}
