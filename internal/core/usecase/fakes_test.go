package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rbroggi/studyhub/internal/core/model"
)

// fakeAccountRepo is an in-memory account repository for use-case tests.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]model.Account

	saveErr   error
	updateErr error

	tagLinks  map[uuid.UUID][]int64
	zoneLinks map[uuid.UUID][]int64
}

func newFakeAccountRepo(seed ...model.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{
		accounts:  make(map[uuid.UUID]model.Account),
		tagLinks:  make(map[uuid.UUID][]int64),
		zoneLinks: make(map[uuid.UUID][]int64),
	}
	for _, account := range seed {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (r *fakeAccountRepo) SaveAccount(_ context.Context, account *model.Account) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = *account
	return nil
}

func (r *fakeAccountRepo) UpdateAccount(_ context.Context, account *model.Account) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = *account
	return nil
}

func (r *fakeAccountRepo) GetAccountByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := account
	return &copied, nil
}

func (r *fakeAccountRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			copied := account
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeAccountRepo) GetAccountByNickname(_ context.Context, nickname string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Nickname == nickname {
			copied := account
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeAccountRepo) AddAccountTag(_ context.Context, accountID uuid.UUID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tagLinks[accountID] = append(r.tagLinks[accountID], tagID)
	return nil
}

func (r *fakeAccountRepo) RemoveAccountTag(_ context.Context, accountID uuid.UUID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	links := r.tagLinks[accountID]
	for i, id := range links {
		if id == tagID {
			r.tagLinks[accountID] = append(links[:i], links[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeAccountRepo) AddAccountZone(_ context.Context, accountID uuid.UUID, zoneID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zoneLinks[accountID] = append(r.zoneLinks[accountID], zoneID)
	return nil
}

func (r *fakeAccountRepo) RemoveAccountZone(_ context.Context, accountID uuid.UUID, zoneID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	links := r.zoneLinks[accountID]
	for i, id := range links {
		if id == zoneID {
			r.zoneLinks[accountID] = append(links[:i], links[i+1:]...)
			break
		}
	}
	return nil
}

// fakeStudyRepo is an in-memory study repository for use-case tests.
type fakeStudyRepo struct {
	mu      sync.Mutex
	studies map[uuid.UUID]model.Study

	updateErr error
	deleted   []uuid.UUID
}

func newFakeStudyRepo(seed ...model.Study) *fakeStudyRepo {
	repo := &fakeStudyRepo{studies: make(map[uuid.UUID]model.Study)}
	for _, study := range seed {
		repo.studies[study.ID] = study
	}
	return repo
}

func (r *fakeStudyRepo) SaveStudy(_ context.Context, study *model.Study) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.studies[study.ID] = *study
	return nil
}

func (r *fakeStudyRepo) UpdateStudy(_ context.Context, study *model.Study) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.studies[study.ID] = *study
	return nil
}

func (r *fakeStudyRepo) GetStudyByPath(_ context.Context, path string) (*model.Study, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, study := range r.studies {
		if study.Path == path {
			copied := study
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeStudyRepo) ExistsByPath(_ context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, study := range r.studies {
		if study.Path == path {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStudyRepo) DeleteStudy(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.studies, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeStudyRepo) AddStudyMember(_ context.Context, studyID, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study := r.studies[studyID]
	study.Members = append(study.Members, model.Account{ID: accountID})
	r.studies[studyID] = study
	return nil
}

func (r *fakeStudyRepo) RemoveStudyMember(_ context.Context, studyID, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study := r.studies[studyID]
	for i, member := range study.Members {
		if member.ID == accountID {
			study.Members = append(study.Members[:i], study.Members[i+1:]...)
			break
		}
	}
	r.studies[studyID] = study
	return nil
}

func (r *fakeStudyRepo) AddStudyTag(_ context.Context, studyID uuid.UUID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study := r.studies[studyID]
	study.Tags = append(study.Tags, model.Tag{ID: tagID})
	r.studies[studyID] = study
	return nil
}

func (r *fakeStudyRepo) RemoveStudyTag(_ context.Context, studyID uuid.UUID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study := r.studies[studyID]
	for i, tag := range study.Tags {
		if tag.ID == tagID {
			study.Tags = append(study.Tags[:i], study.Tags[i+1:]...)
			break
		}
	}
	r.studies[studyID] = study
	return nil
}

func (r *fakeStudyRepo) AddStudyZone(_ context.Context, studyID uuid.UUID, zoneID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study := r.studies[studyID]
	study.Zones = append(study.Zones, model.Zone{ID: zoneID})
	r.studies[studyID] = study
	return nil
}

func (r *fakeStudyRepo) RemoveStudyZone(_ context.Context, studyID uuid.UUID, zoneID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study := r.studies[studyID]
	for i, zone := range study.Zones {
		if zone.ID == zoneID {
			study.Zones = append(study.Zones[:i], study.Zones[i+1:]...)
			break
		}
	}
	r.studies[studyID] = study
	return nil
}

// fakeTagRepo creates tags lazily with increasing ids, mimicking find-or-create.
type fakeTagRepo struct {
	mu     sync.Mutex
	byName map[string]model.Tag
	nextID int64
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{byName: make(map[string]model.Tag), nextID: 1}
}

func (r *fakeTagRepo) FindOrCreateTag(_ context.Context, title string) (*model.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tag, ok := r.byName[title]; ok {
		copied := tag
		return &copied, nil
	}
	tag := model.Tag{ID: r.nextID, Title: title}
	r.nextID++
	r.byName[title] = tag
	copied := tag
	return &copied, nil
}

func (r *fakeTagRepo) ListTagTitles(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, 0, len(r.byName))
	for title := range r.byName {
		titles = append(titles, title)
	}
	return titles, nil
}

// fakeZoneRepo serves a fixed seed of zones.
type fakeZoneRepo struct {
	zones []model.Zone
}

func (r *fakeZoneRepo) GetZone(_ context.Context, city, province string) (*model.Zone, error) {
	for _, zone := range r.zones {
		if zone.City == city && zone.Province == province {
			copied := zone
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeZoneRepo) ListZones(context.Context) ([]model.Zone, error) {
	return r.zones, nil
}

// fakeMeetingRepo records saved meetings.
type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings []model.Meeting
}

func (r *fakeMeetingRepo) SaveMeeting(_ context.Context, meeting *model.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings = append(r.meetings, *meeting)
	return nil
}

func (r *fakeMeetingRepo) ListStudyMeetings(_ context.Context, studyID uuid.UUID) ([]model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Meeting
	for _, meeting := range r.meetings {
		if meeting.StudyID == studyID {
			out = append(out, meeting)
		}
	}
	return out, nil
}

// fakeMailSender captures enqueued mails and can be told to fail.
type fakeMailSender struct {
	mu      sync.Mutex
	sent    []model.MailMessage
	sendErr error
}

func (s *fakeMailSender) Send(_ context.Context, msg model.MailMessage) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}
