package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/rbroggi/studyhub/internal/core/guard"
	"github.com/rbroggi/studyhub/internal/core/model"
	"github.com/rbroggi/studyhub/internal/core/ports"
)

// MeetingServiceArgs contain the mandatory arguments for the MeetingService.
type MeetingServiceArgs struct {
	// Meetings is the meeting repository.
	Meetings ports.MeetingRepository

	// Studies is the study repository, used to resolve and authorize the host study.
	Studies ports.StudyRepository
}

// MeetingServiceOptArgs are the optional arguments for building a MeetingService.
type MeetingServiceOptArgs = func(*MeetingService)

// WithMeetingNowFunc can be used to override the nowFunc. Useful for testing.
func WithMeetingNowFunc(nowFunc func() time.Time) MeetingServiceOptArgs {
	return func(s *MeetingService) {
		s.nowFunc = nowFunc
	}
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(args MeetingServiceArgs, optArgs ...MeetingServiceOptArgs) *MeetingService {
	s := &MeetingService{
		meetings: args.Meetings,
		studies:  args.Studies,
		validate: newValidate(),
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(s)
	}
	return s
}

// MeetingService manages the gatherings organized inside a study.
type MeetingService struct {
	meetings ports.MeetingRepository
	studies  ports.StudyRepository
	validate *validator.Validate
	nowFunc  func() time.Time
}

// Create schedules a meeting in the study. Only managers may create meetings, and the
// enrollment/start/end window must be temporally consistent.
func (s *MeetingService) Create(ctx context.Context, actor *model.Account, path string, args model.CreateMeetingArgs) (*model.CreateMeetingResponse, error) {
	if err := validateStruct(s.validate, args); err != nil {
		return nil, err
	}

	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireManager(actor, study); err != nil {
		return nil, err
	}

	now := s.nowFunc()
	meeting := &model.Meeting{
		ID:                 uuid.New(),
		StudyID:            study.ID,
		CreatedByID:        actor.ID,
		Title:              args.Title,
		Description:        args.Description,
		EnrollmentDeadline: args.EnrollmentDeadline,
		StartsAt:           args.StartsAt,
		EndsAt:             args.EndsAt,
		EnrollmentLimit:    args.EnrollmentLimit,
		CreatedAt:          now,
	}
	if err := meeting.ValidateWindow(now); err != nil {
		return nil, err
	}
	if err := s.meetings.SaveMeeting(ctx, meeting); err != nil {
		return nil, fmt.Errorf("error saving meeting in repository: %w", err)
	}
	return &model.CreateMeetingResponse{Meeting: *meeting}, nil
}

// List returns the meetings of a study ordered by start time.
func (s *MeetingService) List(ctx context.Context, path string) ([]model.Meeting, error) {
	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.meetings.ListStudyMeetings(ctx, study.ID)
}
