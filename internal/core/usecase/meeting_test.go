package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbroggi/studyhub/internal/core/model"
)

func meetingFixture(t *testing.T) (*MeetingService, *fakeClock, model.Account) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)}
	manager := model.Account{ID: uuid.New(), Email: "m@b.com", Nickname: "manager"}
	studies := newFakeStudyRepo(model.Study{
		ID:       uuid.New(),
		Path:     "study-x",
		Title:    "Go study",
		Managers: []model.Account{manager},
	})
	service := NewMeetingService(MeetingServiceArgs{
		Meetings: &fakeMeetingRepo{},
		Studies:  studies,
	}, WithMeetingNowFunc(clock.Now))
	return service, clock, manager
}

func validMeetingArgs(now time.Time) model.CreateMeetingArgs {
	return model.CreateMeetingArgs{
		Title:              "kickoff",
		EnrollmentDeadline: now.Add(24 * time.Hour),
		StartsAt:           now.Add(48 * time.Hour),
		EndsAt:             now.Add(50 * time.Hour),
	}
}

func TestCreateMeeting(t *testing.T) {
	service, clock, manager := meetingFixture(t)
	ctx := context.Background()

	resp, err := service.Create(ctx, &manager, "study-x", validMeetingArgs(clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, "kickoff", resp.Meeting.Title)
	assert.Equal(t, manager.ID, resp.Meeting.CreatedByID)
	assert.Equal(t, clock.Now(), resp.Meeting.CreatedAt)

	meetings, err := service.List(ctx, "study-x")
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, resp.Meeting.ID, meetings[0].ID)
}

func TestCreateMeetingAuthorization(t *testing.T) {
	service, clock, _ := meetingFixture(t)
	ctx := context.Background()
	stranger := model.Account{ID: uuid.New(), Nickname: "stranger"}

	_, err := service.Create(ctx, &stranger, "study-x", validMeetingArgs(clock.Now()))
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = service.Create(ctx, nil, "study-x", validMeetingArgs(clock.Now()))
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = service.Create(ctx, &stranger, "no-such-study", validMeetingArgs(clock.Now()))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateMeetingWindow(t *testing.T) {
	service, clock, manager := meetingFixture(t)
	ctx := context.Background()
	now := clock.Now()

	tests := map[string]func(*model.CreateMeetingArgs){
		"deadline in the past": func(args *model.CreateMeetingArgs) {
			args.EnrollmentDeadline = now.Add(-time.Minute)
		},
		"start before deadline": func(args *model.CreateMeetingArgs) {
			args.StartsAt = args.EnrollmentDeadline.Add(-time.Minute)
		},
		"end before start": func(args *model.CreateMeetingArgs) {
			args.EndsAt = args.StartsAt.Add(-time.Minute)
		},
		"limit of one": func(args *model.CreateMeetingArgs) {
			args.EnrollmentLimit = 1
		},
	}
	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			args := validMeetingArgs(now)
			corrupt(&args)
			_, err := service.Create(ctx, &manager, "study-x", args)
			assert.True(t, model.IsValidation(err))
		})
	}

	// the start may coincide with the enrollment deadline
	args := validMeetingArgs(now)
	args.StartsAt = args.EnrollmentDeadline
	args.EndsAt = args.StartsAt.Add(time.Hour)
	_, err := service.Create(ctx, &manager, "study-x", args)
	require.NoError(t, err)
}
