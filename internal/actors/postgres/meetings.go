package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// SaveMeeting will save the meeting in the database.
func (p *PostgresDB) SaveMeeting(ctx context.Context, meeting *model.Meeting) error {
	if meeting == nil {
		return errors.New("nil meeting passed to save method")
	}

	dbMeeting := meetingToDBModel(meeting)
	if dbMeeting.ID == uuid.Nil {
		dbMeeting.ID = uuid.New()
	}
	if dbMeeting.CreatedAt.IsZero() {
		dbMeeting.CreatedAt = p.nowFunc()
	}
	if _, err := p.db.Model(dbMeeting).Insert(); err != nil {
		return err
	}

	meeting.ID = dbMeeting.ID
	meeting.CreatedAt = dbMeeting.CreatedAt
	return nil
}

// ListStudyMeetings returns the meetings of the study ordered by start time.
func (p *PostgresDB) ListStudyMeetings(ctx context.Context, studyID uuid.UUID) ([]model.Meeting, error) {
	var meetings []meetingDB
	err := p.db.Model(&meetings).Where("m.study_id = ?", studyID).Order("starts_at ASC").Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	models := make([]model.Meeting, len(meetings))
	for i := range meetings {
		models[i] = meetingDBToModel(&meetings[i])
	}
	return models, nil
}

func meetingToDBModel(meeting *model.Meeting) *meetingDB {
	return &meetingDB{
		ID:                 meeting.ID,
		StudyID:            meeting.StudyID,
		CreatedByID:        meeting.CreatedByID,
		Title:              meeting.Title,
		Description:        meeting.Description,
		EnrollmentDeadline: meeting.EnrollmentDeadline,
		StartsAt:           meeting.StartsAt,
		EndsAt:             meeting.EndsAt,
		EnrollmentLimit:    meeting.EnrollmentLimit,
		CreatedAt:          meeting.CreatedAt,
	}
}

func meetingDBToModel(dbMeeting *meetingDB) model.Meeting {
	return model.Meeting{
		ID:                 dbMeeting.ID,
		StudyID:            dbMeeting.StudyID,
		CreatedByID:        dbMeeting.CreatedByID,
		Title:              dbMeeting.Title,
		Description:        dbMeeting.Description,
		EnrollmentDeadline: dbMeeting.EnrollmentDeadline,
		StartsAt:           dbMeeting.StartsAt,
		EndsAt:             dbMeeting.EndsAt,
		EnrollmentLimit:    dbMeeting.EnrollmentLimit,
		CreatedAt:          dbMeeting.CreatedAt,
	}
}

type meetingDB struct {
	tableName struct{} `pg:"studyhub.meetings,alias:m"`

	// ID unique identifier of the meeting.
	ID uuid.UUID `pg:"id,type:uuid,pk"`

	// StudyID is the study the meeting belongs to.
	StudyID uuid.UUID `pg:"study_id,type:uuid"`

	// CreatedByID is the manager account that created the meeting.
	CreatedByID uuid.UUID `pg:"created_by_id,type:uuid"`

	Title       string `pg:"title"`
	Description string `pg:"description"`

	EnrollmentDeadline time.Time `pg:"enrollment_deadline"`
	StartsAt           time.Time `pg:"starts_at"`
	EndsAt             time.Time `pg:"ends_at"`

	EnrollmentLimit int `pg:"enrollment_limit,use_zero"`

	// CreatedAt is the time at which the meeting was created.
	CreatedAt time.Time `pg:"created_at"`
}
