package domain

import "time"

const (
	ChallengeStatusPending  ChallengeStatus = "pending"
	ChallengeStatusVerified ChallengeStatus = "verified"
	ChallengeStatusExpired  ChallengeStatus = "expired"
	ChallengeStatusFailed   ChallengeStatus = "failed"
)

// ChallengeStatus represents the state of a DNS ownership challenge.
type ChallengeStatus string

// Terminal reports whether the status is absorbing: once a challenge is
// verified, expired or failed it never transitions again.
func (s ChallengeStatus) Terminal() bool {
	switch s {
	case ChallengeStatusVerified, ChallengeStatusExpired, ChallengeStatusFailed:
		return true
	default:
		return false
	}
}

// ChallengeTTL is how long a pending challenge remains checkable.
// DNS propagation can take the full window, so lookup failures before
// this elapses are not terminal.
const ChallengeTTL = 24 * time.Hour

// VerificationChallenge is a time-boxed, single-use proof that an operator
// controls a domain. It carries the registration details needed to promote
// a ServerRecord when the TXT lookup succeeds.
type VerificationChallenge struct {
	ChallengeID string `json:"challenge_id"`
	Domain      string `json:"domain"`

	// Registration details held until promotion.
	Endpoint     string        `json:"endpoint"`
	ContactEmail string        `json:"contact_email,omitempty"`
	Description  string        `json:"description,omitempty"`
	Capabilities Capabilities  `json:"capabilities"`
	Transport    TransportInfo `json:"transport"`

	TXTRecordName  string `json:"txt_record_name"`
	TXTRecordValue string `json:"txt_record_value"`

	Status     ChallengeStatus `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	VerifiedAt *time.Time      `json:"verified_at,omitempty"`
}

// ExpiredAt reports whether the challenge's validity window has passed at now.
func (c VerificationChallenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
