package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
)

// authURL is the fixed OAuth2 password-grant endpoint (spec.md §4.6).
const authURL = "https://www.reddit.com/api/v1/access_token"

// Auth obtains a fresh session for data by POSTing an OAuth2
// password-grant request with HTTP Basic auth over (public_key,
// private_key), per spec.md §4.6.
func Auth(ctx context.Context, data model.AccountData, client *http.Client) (model.Session, error) {
	body := fmt.Sprintf(
		"grant_type=password&username=%s&password=%s",
		url.QueryEscape(data.Login),
		url.QueryEscape(data.Password),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(body))
	if err != nil {
		return model.Session{}, fmt.Errorf("reddit: building auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(data.PublicKey, data.PrivateKey)

	resp, err := client.Do(req)
	if err != nil {
		return model.Session{}, fmt.Errorf("reddit: auth request failed: %w", err)
	}
	defer resp.Body.Close()

	rateLimit := ParseRateLimitHeaders(resp.Header)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Session{}, fmt.Errorf("reddit: reading auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Session{}, fmt.Errorf("reddit: auth failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed AuthResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Session{}, fmt.Errorf("reddit: decoding auth response: %w", err)
	}

	return model.Session{
		Token:             parsed.AccessToken,
		RetrieveTimestamp: common.NowMillis(),
		MillisToRefresh:   rateLimit.MillisToRefresh,
		RequestsLimit:     rateLimit.RequestsLimit,
	}, nil
}
