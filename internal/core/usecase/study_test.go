package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbroggi/studyhub/internal/core/model"
)

type studyFixture struct {
	service *StudyService
	studies *fakeStudyRepo
	mail    *fakeMailSender
	clock   *fakeClock
	manager model.Account
}

func newStudyFixture(t *testing.T, seed ...model.Study) *studyFixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)}
	studies := newFakeStudyRepo(seed...)
	mail := &fakeMailSender{}

	service := NewStudyService(StudyServiceArgs{
		Studies:  studies,
		Tags:     newFakeTagRepo(),
		Zones:    &fakeZoneRepo{zones: []model.Zone{{ID: 1, City: "Seoul", LocalName: "서울", Province: "none"}}},
		Notifier: NewNotifier(mail),
	}, WithStudyNowFunc(clock.Now))

	return &studyFixture{
		service: service,
		studies: studies,
		mail:    mail,
		clock:   clock,
		manager: model.Account{ID: uuid.New(), Email: "m@b.com", Nickname: "manager"},
	}
}

func (f *studyFixture) create(t *testing.T, path string) model.Study {
	t.Helper()
	resp, err := f.service.Create(context.Background(), &f.manager, model.CreateStudyArgs{
		Path:  path,
		Title: "Go study",
	})
	require.NoError(t, err)
	return resp.Study
}

func TestCreateStudy(t *testing.T) {
	fixture := newStudyFixture(t)
	study := fixture.create(t, "study-x")

	assert.False(t, study.Published)
	require.Len(t, study.Managers, 1)
	assert.Equal(t, fixture.manager.ID, study.Managers[0].ID)

	// duplicate path
	_, err := fixture.service.Create(context.Background(), &fixture.manager, model.CreateStudyArgs{
		Path: "study-x", Title: "another",
	})
	assert.True(t, model.IsValidation(err))

	// invalid slug
	_, err = fixture.service.Create(context.Background(), &fixture.manager, model.CreateStudyArgs{
		Path: "Not A Slug!", Title: "another",
	})
	assert.True(t, model.IsValidation(err))

	// anonymous actor
	_, err = fixture.service.Create(context.Background(), nil, model.CreateStudyArgs{
		Path: "study-y", Title: "another",
	})
	assert.ErrorIs(t, err, model.ErrAccessDenied)
}

func TestPublishLifecycle(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	ctx := context.Background()

	require.NoError(t, fixture.service.Publish(ctx, &fixture.manager, "study-x"))
	study, err := fixture.service.Get(ctx, "study-x")
	require.NoError(t, err)
	assert.True(t, study.Published)
	assert.Equal(t, fixture.clock.Now(), study.PublishedAt)

	// publish is not repeatable
	assert.ErrorIs(t, fixture.service.Publish(ctx, &fixture.manager, "study-x"), model.ErrInvalidStateTransition)

	require.NoError(t, fixture.service.Close(ctx, &fixture.manager, "study-x"))
	assert.ErrorIs(t, fixture.service.Close(ctx, &fixture.manager, "study-x"), model.ErrInvalidStateTransition)

	// a closed study cannot recruit
	assert.ErrorIs(t, fixture.service.StartRecruit(ctx, &fixture.manager, "study-x"), model.ErrInvalidStateTransition)
}

func TestPublishRequiresManager(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	stranger := model.Account{ID: uuid.New(), Nickname: "stranger"}

	assert.ErrorIs(t, fixture.service.Publish(context.Background(), &stranger, "study-x"), model.ErrAccessDenied)
	assert.ErrorIs(t, fixture.service.Publish(context.Background(), nil, "study-x"), model.ErrAccessDenied)

	study, err := fixture.service.Get(context.Background(), "study-x")
	require.NoError(t, err)
	assert.False(t, study.Published)
}

func TestRecruitCooldownThroughService(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	ctx := context.Background()

	require.NoError(t, fixture.service.Publish(ctx, &fixture.manager, "study-x"))
	require.NoError(t, fixture.service.StartRecruit(ctx, &fixture.manager, "study-x"))

	// a second toggle within the hour is rejected and leaves recruiting on
	fixture.clock.Advance(30 * time.Minute)
	assert.ErrorIs(t, fixture.service.StopRecruit(ctx, &fixture.manager, "study-x"), model.ErrCooldownActive)
	study, err := fixture.service.Get(ctx, "study-x")
	require.NoError(t, err)
	assert.True(t, study.Recruiting)

	fixture.clock.Advance(31 * time.Minute)
	require.NoError(t, fixture.service.StopRecruit(ctx, &fixture.manager, "study-x"))
	study, err = fixture.service.Get(ctx, "study-x")
	require.NoError(t, err)
	assert.False(t, study.Recruiting)
}

func TestUpdatePath(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	fixture.create(t, "study-y")
	ctx := context.Background()

	assert.True(t, model.IsValidation(fixture.service.UpdatePath(ctx, &fixture.manager, "study-x", "Bad Path")))
	assert.True(t, model.IsValidation(fixture.service.UpdatePath(ctx, &fixture.manager, "study-x", "study-y")))

	require.NoError(t, fixture.service.UpdatePath(ctx, &fixture.manager, "study-x", "study-z"))
	_, err := fixture.service.Get(ctx, "study-x")
	assert.ErrorIs(t, err, model.ErrNotFound)
	study, err := fixture.service.Get(ctx, "study-z")
	require.NoError(t, err)
	assert.Equal(t, "Go study", study.Title)
}

func TestUpdateTitle(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	ctx := context.Background()

	assert.True(t, model.IsValidation(fixture.service.UpdateTitle(ctx, &fixture.manager, "study-x", "")))
	assert.True(t, model.IsValidation(fixture.service.UpdateTitle(ctx, &fixture.manager, "study-x", strings.Repeat("x", 51))))

	require.NoError(t, fixture.service.UpdateTitle(ctx, &fixture.manager, "study-x", strings.Repeat("x", 50)))
}

func TestJoinAndLeave(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	ctx := context.Background()
	joiner := model.Account{ID: uuid.New(), Nickname: "bob"}

	// draft, not recruiting
	assert.ErrorIs(t, fixture.service.Join(ctx, &joiner, "study-x"), model.ErrAccessDenied)

	require.NoError(t, fixture.service.Publish(ctx, &fixture.manager, "study-x"))
	require.NoError(t, fixture.service.StartRecruit(ctx, &fixture.manager, "study-x"))

	// managers cannot join their own study
	assert.ErrorIs(t, fixture.service.Join(ctx, &fixture.manager, "study-x"), model.ErrAccessDenied)

	require.NoError(t, fixture.service.Join(ctx, &joiner, "study-x"))
	study, err := fixture.service.Get(ctx, "study-x")
	require.NoError(t, err)
	assert.True(t, study.HasMember(joiner.ID))

	// joining twice is rejected
	assert.ErrorIs(t, fixture.service.Join(ctx, &joiner, "study-x"), model.ErrAccessDenied)

	require.NoError(t, fixture.service.Leave(ctx, &joiner, "study-x"))
	assert.ErrorIs(t, fixture.service.Leave(ctx, &joiner, "study-x"), model.ErrAccessDenied)
}

func TestRemoveStudy(t *testing.T) {
	fixture := newStudyFixture(t)
	study := fixture.create(t, "study-x")
	ctx := context.Background()

	// a study with members is not removable
	require.NoError(t, fixture.studies.AddStudyMember(ctx, study.ID, uuid.New()))
	assert.ErrorIs(t, fixture.service.Remove(ctx, &fixture.manager, "study-x"), model.ErrInvalidStateTransition)

	members, err := fixture.service.Get(ctx, "study-x")
	require.NoError(t, err)
	require.NoError(t, fixture.studies.RemoveStudyMember(ctx, study.ID, members.Members[0].ID))

	require.NoError(t, fixture.service.Remove(ctx, &fixture.manager, "study-x"))
	_, err = fixture.service.Get(ctx, "study-x")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStudyTagsAndZones(t *testing.T) {
	fixture := newStudyFixture(t)
	fixture.create(t, "study-x")
	ctx := context.Background()

	tag, err := fixture.service.AddTag(ctx, &fixture.manager, "study-x", "golang")
	require.NoError(t, err)
	stored, err := fixture.service.Get(ctx, "study-x")
	require.NoError(t, err)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, tag.ID, stored.Tags[0].ID)

	require.NoError(t, fixture.service.RemoveTag(ctx, &fixture.manager, "study-x", "golang"))

	_, err = fixture.service.AddZone(ctx, &fixture.manager, "study-x", "Atlantis", "none")
	assert.ErrorIs(t, err, model.ErrNotFound)

	zone, err := fixture.service.AddZone(ctx, &fixture.manager, "study-x", "Seoul", "none")
	require.NoError(t, err)
	assert.Equal(t, int64(1), zone.ID)

	// non-managers cannot classify
	stranger := model.Account{ID: uuid.New()}
	_, err = fixture.service.AddTag(ctx, &stranger, "study-x", "golang")
	assert.ErrorIs(t, err, model.ErrAccessDenied)
}

func TestPublishNotifiesOptedInAccounts(t *testing.T) {
	manager := model.Account{ID: uuid.New(), Email: "m@b.com", Nickname: "manager", StudyUpdatedByEmail: true}
	member := model.Account{ID: uuid.New(), Email: "quiet@b.com", Nickname: "quiet"}
	seed := model.Study{
		ID:       uuid.New(),
		Path:     "study-x",
		Title:    "Go study",
		Managers: []model.Account{manager},
		Members:  []model.Account{member},
	}
	fixture := newStudyFixture(t, seed)
	fixture.manager = manager

	require.NoError(t, fixture.service.Publish(context.Background(), &manager, "study-x"))

	// only the opted-in manager is mailed
	require.Len(t, fixture.mail.sent, 1)
	assert.Equal(t, "m@b.com", fixture.mail.sent[0].To)
	assert.Contains(t, fixture.mail.sent[0].Subject, "Go study")
}
