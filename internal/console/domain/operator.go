package domain

import "time"

// Operator is a console user authenticating with an API key.
type Operator struct {
	ID            string
	Username      string
	APIKeyHash    string     // argon2id PHC string
	TOTPSecret    *string    // base32, set during enrollment
	TOTPEnabledAt *time.Time // nil until the first code is verified
	CreatedAt     time.Time
	LastSeenAt    *time.Time
}

func (o Operator) TOTPEnabled() bool { return o.TOTPEnabledAt != nil }

type TOTPEnrollment struct {
	Secret  string
	URL     string // otpauth:// URL
	Issuer  string
	Account string
}
