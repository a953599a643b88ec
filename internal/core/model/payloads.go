package model

import "time"

// SignUpArgs contain the arguments of the SignUp use-case.
type SignUpArgs struct {
	// Email is the address the verification link is mailed to. Unique.
	Email string `json:"email" validate:"required,email"`

	// Nickname is the requested nickname. Unique.
	Nickname string `json:"nickname" validate:"required,nickname"`

	// Password is the plaintext password. Hashed before anything is persisted.
	Password string `json:"password" validate:"required,min=8,max=50"`
}

// SignUpResponse contains the created account.
type SignUpResponse struct {
	// Account is the newly created, unverified account.
	Account Account
}

// CompleteVerificationArgs carry the link parameters of the verification mail.
type CompleteVerificationArgs struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// CompleteVerificationResponse contains the verified account and a session token for
// immediate authentication.
type CompleteVerificationResponse struct {
	Account      Account
	SessionToken string
}

// ConsumeLoginLinkArgs carry the link parameters of the login mail.
type ConsumeLoginLinkArgs struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// ConsumeLoginLinkResponse contains the authenticated account and its session token.
type ConsumeLoginLinkResponse struct {
	Account      Account
	SessionToken string
}

// UpdateProfileArgs contain the editable profile fields.
type UpdateProfileArgs struct {
	Bio        string `json:"bio" validate:"max=35"`
	URL        string `json:"url" validate:"max=50"`
	Occupation string `json:"occupation" validate:"max=50"`
	Location   string `json:"location" validate:"max=50"`
}

// UpdateNotificationsArgs contain the per-event-type channel flags.
type UpdateNotificationsArgs struct {
	StudyCreatedByEmail          bool `json:"study_created_by_email"`
	StudyCreatedByWeb            bool `json:"study_created_by_web"`
	StudyEnrollmentResultByEmail bool `json:"study_enrollment_result_by_email"`
	StudyEnrollmentResultByWeb   bool `json:"study_enrollment_result_by_web"`
	StudyUpdatedByEmail          bool `json:"study_updated_by_email"`
	StudyUpdatedByWeb            bool `json:"study_updated_by_web"`
}

// UpdatePasswordArgs contain the new plaintext password.
type UpdatePasswordArgs struct {
	Password string `json:"password" validate:"required,min=8,max=50"`
}

// UpdateNicknameArgs contain the new nickname.
type UpdateNicknameArgs struct {
	Nickname string `json:"nickname" validate:"required,nickname"`
}

// CreateStudyArgs contain the arguments of the CreateStudy use-case.
type CreateStudyArgs struct {
	Path             string `json:"path" validate:"required,studypath"`
	Title            string `json:"title" validate:"required,max=50"`
	ShortDescription string `json:"short_description" validate:"max=100"`
	FullDescription  string `json:"full_description"`
}

// CreateStudyResponse contains the created draft study.
type CreateStudyResponse struct {
	Study Study
}

// UpdateStudyDescriptionArgs contain the editable description fields.
type UpdateStudyDescriptionArgs struct {
	ShortDescription string `json:"short_description" validate:"max=100"`
	FullDescription  string `json:"full_description"`
}

// CreateMeetingArgs contain the arguments of the CreateMeeting use-case.
type CreateMeetingArgs struct {
	Title              string    `json:"title" validate:"required,max=50"`
	Description        string    `json:"description"`
	EnrollmentDeadline time.Time `json:"enrollment_deadline" validate:"required"`
	StartsAt           time.Time `json:"starts_at" validate:"required"`
	EndsAt             time.Time `json:"ends_at" validate:"required"`
	EnrollmentLimit    int       `json:"enrollment_limit"`
}

// CreateMeetingResponse contains the created meeting.
type CreateMeetingResponse struct {
	Meeting Meeting
}
