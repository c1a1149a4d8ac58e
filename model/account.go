package model

// AccountData is the immutable credential half of an Account (spec.md
// §3). Fields are optional because different networks populate
// different subsets (password grant vs. key pair).
type AccountData struct {
	Login         string           `json:"login,omitempty"`
	Password      string           `json:"password,omitempty"`
	PublicKey     string           `json:"public_key,omitempty"`
	PrivateKey    string           `json:"private_key,omitempty"`
	SocialNetwork SocialNetworkTag `json:"social_network"`
}

// Equal reports whether two AccountData values denote the same account.
// Account identity is account_data identity (spec.md §3 invariants).
func (a AccountData) Equal(other AccountData) bool {
	return a == other
}

// Proxy is an optional upstream HTTP proxy descriptor (spec.md §6).
type Proxy struct {
	Host     string `json:"host"`
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
}

// Session is the mutable authentication + rate-limit state attached to
// an authenticated Account (spec.md §3).
type Session struct {
	Token              string `json:"token"`
	RetrieveTimestamp  uint64 `json:"retrieve_timestamp"`
	MillisToRefresh    uint64 `json:"millis_to_refresh"`
	RequestsLimit      int64  `json:"requests_limit"`
}

// RefreshTime is the wall-clock instant at which this session's
// rate-limit window resets (spec.md GLOSSARY "Refresh time").
func (s Session) RefreshTime() uint64 {
	return s.RetrieveTimestamp + s.MillisToRefresh
}
