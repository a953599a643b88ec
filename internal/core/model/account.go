package model

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a member of the platform.
type Account struct {
	// ID unique identifier of the account.
	ID uuid.UUID `json:"id"`

	// Email is the account email. Unique across the system.
	Email string `json:"email"`

	// Nickname is the account nickname. Unique across the system.
	Nickname string `json:"nickname"`

	// PasswordHash contains the password hash. Never populated with plaintext.
	PasswordHash string `json:"-"`

	// EmailVerified reports whether the email check link was followed.
	EmailVerified bool `json:"email_verified"`

	// VerificationToken is the opaque single-use token used for email verification and
	// passwordless login. Reissuing overwrites it, invalidating the previous value.
	VerificationToken string `json:"-"`

	// TokenIssuedAt is the time at which VerificationToken was last generated.
	// Zero-valued if no token was ever issued.
	TokenIssuedAt time.Time `json:"-"`

	// JoinedAt is set once, when verification completes.
	JoinedAt time.Time `json:"joined_at,omitempty"`

	// Profile fields.
	Bio        string `json:"bio,omitempty"`
	URL        string `json:"url,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Location   string `json:"location,omitempty"`

	// Notification preferences, one pair of channels per event type.
	StudyCreatedByEmail          bool `json:"study_created_by_email"`
	StudyCreatedByWeb            bool `json:"study_created_by_web"`
	StudyEnrollmentResultByEmail bool `json:"study_enrollment_result_by_email"`
	StudyEnrollmentResultByWeb   bool `json:"study_enrollment_result_by_web"`
	StudyUpdatedByEmail          bool `json:"study_updated_by_email"`
	StudyUpdatedByWeb            bool `json:"study_updated_by_web"`

	// Tags are the topics the account is interested in. Shared reference data.
	Tags []Tag `json:"tags,omitempty"`

	// Zones are the regions the account is interested in. Shared reference data.
	Zones []Zone `json:"zones,omitempty"`

	// CreatedAt is the time at which the account was created in the system.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the account was last updated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// CompleteVerification transitions the account to the verified state. The transition is
// one-way: verifying an already-verified account fails with ErrInvalidStateTransition.
func (a *Account) CompleteVerification(now time.Time) error {
	if a.EmailVerified {
		return ErrInvalidStateTransition
	}
	a.EmailVerified = true
	a.JoinedAt = now
	return nil
}
