package model

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is a gathering organized inside a study: members enroll until the enrollment
// deadline, then the meeting takes place between StartsAt and EndsAt.
type Meeting struct {
	// ID unique identifier of the meeting.
	ID uuid.UUID `json:"id"`

	// StudyID is the study the meeting belongs to.
	StudyID uuid.UUID `json:"study_id"`

	// CreatedByID is the manager account that created the meeting.
	CreatedByID uuid.UUID `json:"created_by_id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// EnrollmentDeadline is the last moment at which members may enroll.
	EnrollmentDeadline time.Time `json:"enrollment_deadline"`

	// StartsAt is when the meeting begins. Always after EnrollmentDeadline.
	StartsAt time.Time `json:"starts_at"`

	// EndsAt is when the meeting ends. Always after StartsAt.
	EndsAt time.Time `json:"ends_at"`

	// EnrollmentLimit caps the number of enrollments. Zero means unlimited.
	EnrollmentLimit int `json:"enrollment_limit,omitempty"`

	// CreatedAt is the time at which the meeting was created.
	CreatedAt time.Time `json:"created_at"`
}

// ValidateWindow checks the temporal consistency of the meeting: the enrollment deadline
// must be in the future, the meeting must start after enrollment closes and end after it
// starts. Violations are reported as ValidationError.
func (m *Meeting) ValidateWindow(now time.Time) error {
	if !m.EnrollmentDeadline.After(now) {
		return Invalid("enrollment_deadline", "must be in the future")
	}
	if m.StartsAt.Before(m.EnrollmentDeadline) {
		return Invalid("starts_at", "must not precede the enrollment deadline")
	}
	if !m.EndsAt.After(m.StartsAt) {
		return Invalid("ends_at", "must be after the start")
	}
	if m.EnrollmentLimit != 0 && m.EnrollmentLimit < 2 {
		return Invalid("enrollment_limit", "must be at least 2 when set")
	}
	return nil
}
