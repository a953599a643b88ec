package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/rbroggi/studyhub/internal/core/model"
)

// AccountRepository is the persistence contract for accounts. Implementations return
// model.ErrNotFound when a required account does not exist.
type AccountRepository interface {
	// SaveAccount durably saves a new account.
	SaveAccount(ctx context.Context, account *model.Account) error

	// UpdateAccount persists the current in-memory state of the account.
	UpdateAccount(ctx context.Context, account *model.Account) error

	// GetAccountByID returns the account with the given id, relation sets included.
	GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)

	// GetAccountByEmail returns the account with the given email.
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// GetAccountByNickname returns the account with the given nickname.
	GetAccountByNickname(ctx context.Context, nickname string) (*model.Account, error)

	// AddAccountTag links the tag to the account interests.
	AddAccountTag(ctx context.Context, accountID uuid.UUID, tagID int64) error

	// RemoveAccountTag unlinks the tag from the account interests.
	RemoveAccountTag(ctx context.Context, accountID uuid.UUID, tagID int64) error

	// AddAccountZone links the zone to the account interests.
	AddAccountZone(ctx context.Context, accountID uuid.UUID, zoneID int64) error

	// RemoveAccountZone unlinks the zone from the account interests.
	RemoveAccountZone(ctx context.Context, accountID uuid.UUID, zoneID int64) error
}

// StudyRepository is the persistence contract for studies.
type StudyRepository interface {
	// SaveStudy durably saves a new study, manager set included.
	SaveStudy(ctx context.Context, study *model.Study) error

	// UpdateStudy persists the scalar fields of the study (status flags, timestamps,
	// path, title, descriptions). Relation sets are managed through the dedicated
	// methods below.
	UpdateStudy(ctx context.Context, study *model.Study) error

	// GetStudyByPath returns the study with the given path, relation sets included.
	GetStudyByPath(ctx context.Context, path string) (*model.Study, error)

	// ExistsByPath reports whether a study with the given path exists.
	ExistsByPath(ctx context.Context, path string) (bool, error)

	// DeleteStudy removes the study and its relation links.
	DeleteStudy(ctx context.Context, id uuid.UUID) error

	// AddStudyMember adds the account to the member set.
	AddStudyMember(ctx context.Context, studyID, accountID uuid.UUID) error

	// RemoveStudyMember removes the account from the member set.
	RemoveStudyMember(ctx context.Context, studyID, accountID uuid.UUID) error

	// AddStudyTag links the tag to the study.
	AddStudyTag(ctx context.Context, studyID uuid.UUID, tagID int64) error

	// RemoveStudyTag unlinks the tag from the study.
	RemoveStudyTag(ctx context.Context, studyID uuid.UUID, tagID int64) error

	// AddStudyZone links the zone to the study.
	AddStudyZone(ctx context.Context, studyID uuid.UUID, zoneID int64) error

	// RemoveStudyZone unlinks the zone from the study.
	RemoveStudyZone(ctx context.Context, studyID uuid.UUID, zoneID int64) error
}

// TagRepository is the persistence contract for the shared tag reference data.
type TagRepository interface {
	// FindOrCreateTag returns the tag with the given title, creating it if absent.
	// Concurrent creation of the same title is resolved by the storage uniqueness
	// constraint plus a reselect.
	FindOrCreateTag(ctx context.Context, title string) (*model.Tag, error)

	// ListTagTitles returns all known tag titles, used as the input whitelist.
	ListTagTitles(ctx context.Context) ([]string, error)
}

// ZoneRepository is the persistence contract for the seeded zone reference data.
type ZoneRepository interface {
	// GetZone returns the zone with the given city and province.
	GetZone(ctx context.Context, city, province string) (*model.Zone, error)

	// ListZones returns all known zones, used as the input whitelist.
	ListZones(ctx context.Context) ([]model.Zone, error)
}

// MeetingRepository is the persistence contract for study meetings.
type MeetingRepository interface {
	// SaveMeeting durably saves a new meeting.
	SaveMeeting(ctx context.Context, meeting *model.Meeting) error

	// ListStudyMeetings returns the meetings of a study ordered by start time.
	ListStudyMeetings(ctx context.Context, studyID uuid.UUID) ([]model.Meeting, error)
}
