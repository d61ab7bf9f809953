package domain

import "time"

// PendingVerification is the code issued for one email address.
type PendingVerification struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Expired reports whether more than ttl has elapsed since the code was issued.
func (p *PendingVerification) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.IssuedAt) > ttl
}

// CodeDelivery is what the email collaborator needs to send a verification code.
type CodeDelivery struct {
	RecipientName  string
	RecipientEmail string
	Code           string
	OriginLink     string
}
