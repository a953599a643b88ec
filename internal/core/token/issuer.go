// Package token issues and validates the opaque single-use tokens used for email
// verification and passwordless login links.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rbroggi/studyhub/internal/core/model"
)

const (
	// ResendCooldown is the minimum interval between successive issuances for the same
	// account. The comparison is strict: exactly one hour is not yet eligible.
	ResendCooldown = time.Hour

	// tokenBytes is the entropy of a generated token. 32 bytes = 256 bits.
	tokenBytes = 32
)

// Issuer generates and validates account verification tokens. Only one token per
// account is valid at a time: issuing overwrites the stored token.
type Issuer struct {
	nowFunc func() time.Time
}

// IssuerOptArgs are the optional arguments for building an Issuer.
type IssuerOptArgs = func(*Issuer)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) IssuerOptArgs {
	return func(i *Issuer) {
		i.nowFunc = nowFunc
	}
}

// NewIssuer creates a new Issuer.
func NewIssuer(optArgs ...IssuerOptArgs) *Issuer {
	issuer := &Issuer{nowFunc: func() time.Time { return time.Now().UTC() }}
	for _, opt := range optArgs {
		opt(issuer)
	}
	return issuer
}

// Issue generates a fresh random token, stores it on the account together with the
// issuance time and returns it. Any previously issued token stops validating.
func (i *Issuer) Issue(account *model.Account) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating random token: %w", err)
	}
	tok := base64.RawURLEncoding.EncodeToString(buf)
	account.VerificationToken = tok
	account.TokenIssuedAt = i.nowFunc()
	return tok, nil
}

// CanIssue reports whether a new token may be issued: either no token was ever issued
// for the account, or the last issuance happened strictly more than ResendCooldown ago.
func (i *Issuer) CanIssue(account *model.Account) bool {
	if account.TokenIssuedAt.IsZero() {
		return true
	}
	return i.nowFunc().Sub(account.TokenIssuedAt) > ResendCooldown
}

// Validate reports whether supplied exactly matches the token currently stored on the
// account. There is no validation-time expiry: a token stays valid until superseded.
func (i *Issuer) Validate(account *model.Account, supplied string) bool {
	if account.VerificationToken == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(account.VerificationToken), []byte(supplied)) == 1
}
