package model

import (
	"time"

	"github.com/google/uuid"
)

// RecruitingCooldown is the minimum wall-clock interval between successive recruiting
// toggles on a study. The boundary is strict: a toggle exactly one hour after the last
// one is still rejected.
const RecruitingCooldown = time.Hour

// Study is a study group. It moves through the lifecycle
// draft -> published (optionally recruiting) -> closed, with closed terminal.
type Study struct {
	// ID unique identifier of the study.
	ID uuid.UUID `json:"id"`

	// Path is the URL-safe slug identifying the study. Unique across the system.
	Path string `json:"path"`

	// Title is the display title of the study.
	Title string `json:"title"`

	// ShortDescription is a one-line summary shown in listings.
	ShortDescription string `json:"short_description,omitempty"`

	// FullDescription is the long-form description of the study.
	FullDescription string `json:"full_description,omitempty"`

	// Managers administer the study. The creator is the first manager.
	Managers []Account `json:"managers,omitempty"`

	// Members joined through recruiting. Disjoint from Managers by convention.
	Members []Account `json:"members,omitempty"`

	// Tags classify the study topics.
	Tags []Tag `json:"tags,omitempty"`

	// Zones classify the study regions.
	Zones []Zone `json:"zones,omitempty"`

	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"published_at,omitempty"`

	Closed   bool      `json:"closed"`
	ClosedAt time.Time `json:"closed_at,omitempty"`

	Recruiting          bool      `json:"recruiting"`
	RecruitingUpdatedAt time.Time `json:"recruiting_updated_at,omitempty"`

	// CreatedAt is the time at which the study was created in the system.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the study was last updated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Publish transitions the study from draft to published. Publishing an already-published
// or closed study fails with ErrInvalidStateTransition.
func (s *Study) Publish(now time.Time) error {
	if s.Published || s.Closed {
		return ErrInvalidStateTransition
	}
	s.Published = true
	s.PublishedAt = now
	return nil
}

// Close transitions a published study to the terminal closed state. Closing a draft or
// an already-closed study fails with ErrInvalidStateTransition.
func (s *Study) Close(now time.Time) error {
	if !s.Published || s.Closed {
		return ErrInvalidStateTransition
	}
	s.Closed = true
	s.ClosedAt = now
	return nil
}

// StartRecruit opens member recruiting. Requires a published, non-closed study and
// an elapsed recruiting cooldown.
func (s *Study) StartRecruit(now time.Time) error {
	return s.setRecruiting(true, now)
}

// StopRecruit stops member recruiting, under the same guards as StartRecruit.
func (s *Study) StopRecruit(now time.Time) error {
	return s.setRecruiting(false, now)
}

func (s *Study) setRecruiting(recruiting bool, now time.Time) error {
	if !s.Published || s.Closed {
		return ErrInvalidStateTransition
	}
	if !s.CanUpdateRecruiting(now) {
		return ErrCooldownActive
	}
	s.Recruiting = recruiting
	s.RecruitingUpdatedAt = now
	return nil
}

// CanUpdateRecruiting reports whether a recruiting toggle is currently allowed: the flag
// was never toggled, or the last toggle happened strictly more than one hour ago.
func (s *Study) CanUpdateRecruiting(now time.Time) bool {
	if s.RecruitingUpdatedAt.IsZero() {
		return true
	}
	return now.Sub(s.RecruitingUpdatedAt) > RecruitingCooldown
}

// Removable reports whether the study may be deleted. A study with members cannot be
// removed; managers do not count since removal is itself a manager operation.
func (s *Study) Removable() bool {
	return len(s.Members) == 0
}

// HasManager reports whether the account is one of the study managers.
func (s *Study) HasManager(accountID uuid.UUID) bool {
	return containsAccount(s.Managers, accountID)
}

// HasMember reports whether the account is one of the study members.
func (s *Study) HasMember(accountID uuid.UUID) bool {
	return containsAccount(s.Members, accountID)
}

func containsAccount(accounts []Account, id uuid.UUID) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}
