package usecase

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/guard"
	"github.com/rbroggi/studyhub/internal/core/model"
	"github.com/rbroggi/studyhub/internal/core/ports"
)

const maxTitleLength = 50

// StudyServiceArgs contain the mandatory arguments for the StudyService.
type StudyServiceArgs struct {
	// Studies is the study repository.
	Studies ports.StudyRepository

	// Tags is the shared tag reference-data repository.
	Tags ports.TagRepository

	// Zones is the shared zone reference-data repository.
	Zones ports.ZoneRepository

	// Notifier fans lifecycle changes out to the involved accounts.
	Notifier *Notifier
}

// StudyServiceOptArgs are the optional arguments for building a StudyService.
type StudyServiceOptArgs = func(*StudyService)

// WithStudyNowFunc can be used to override the nowFunc. Useful for testing.
func WithStudyNowFunc(nowFunc func() time.Time) StudyServiceOptArgs {
	return func(s *StudyService) {
		s.nowFunc = nowFunc
	}
}

// NewStudyService creates a new StudyService.
func NewStudyService(args StudyServiceArgs, optArgs ...StudyServiceOptArgs) *StudyService {
	s := &StudyService{
		studies:  args.Studies,
		tags:     args.Tags,
		zones:    args.Zones,
		notifier: args.Notifier,
		validate: newValidate(),
		locks:    newKeyedMutex(),
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(s)
	}
	return s
}

// StudyService orchestrates the study lifecycle: creation, the publish/close/recruit
// state machine, membership, and settings. Every operation takes the acting account
// explicitly and runs the membership guard before mutating anything.
type StudyService struct {
	studies  ports.StudyRepository
	tags     ports.TagRepository
	zones    ports.ZoneRepository
	notifier *Notifier
	validate *validator.Validate
	locks    *keyedMutex
	nowFunc  func() time.Time
}

// Create creates a draft study with the actor as its first manager.
func (s *StudyService) Create(ctx context.Context, actor *model.Account, args model.CreateStudyArgs) (*model.CreateStudyResponse, error) {
	if actor == nil {
		return nil, model.ErrAccessDenied
	}
	if err := validateStruct(s.validate, args); err != nil {
		return nil, err
	}
	if err := s.checkPathFree(ctx, args.Path); err != nil {
		return nil, err
	}

	study := &model.Study{
		ID:               uuid.New(),
		Path:             args.Path,
		Title:            args.Title,
		ShortDescription: args.ShortDescription,
		FullDescription:  args.FullDescription,
		Managers:         []model.Account{*actor},
	}
	if err := s.studies.SaveStudy(ctx, study); err != nil {
		return nil, fmt.Errorf("error saving study in repository: %w", err)
	}
	return &model.CreateStudyResponse{Study: *study}, nil
}

// Get returns the study with the given path. Unknown paths fail with model.ErrNotFound.
func (s *StudyService) Get(ctx context.Context, path string) (*model.Study, error) {
	return s.studies.GetStudyByPath(ctx, path)
}

// Publish transitions a draft study to published and notifies the involved accounts.
func (s *StudyService) Publish(ctx context.Context, actor *model.Account, path string) error {
	return s.transition(ctx, actor, path, "the study was published", func(study *model.Study) error {
		return study.Publish(s.nowFunc())
	})
}

// Close transitions a published study to the terminal closed state.
func (s *StudyService) Close(ctx context.Context, actor *model.Account, path string) error {
	return s.transition(ctx, actor, path, "the study was closed", func(study *model.Study) error {
		return study.Close(s.nowFunc())
	})
}

// StartRecruit opens member recruiting on a published study.
func (s *StudyService) StartRecruit(ctx context.Context, actor *model.Account, path string) error {
	return s.transition(ctx, actor, path, "the study started recruiting members", func(study *model.Study) error {
		return study.StartRecruit(s.nowFunc())
	})
}

// StopRecruit stops member recruiting.
func (s *StudyService) StopRecruit(ctx context.Context, actor *model.Account, path string) error {
	return s.transition(ctx, actor, path, "the study stopped recruiting members", func(study *model.Study) error {
		return study.StopRecruit(s.nowFunc())
	})
}

// UpdatePath renames the study slug after validating pattern and uniqueness.
func (s *StudyService) UpdatePath(ctx context.Context, actor *model.Account, path, newPath string) error {
	if !studyPathPattern.MatchString(newPath) {
		return model.Invalid("path", "must be 2-20 characters of a-z, 0-9, - or _")
	}
	if err := s.checkPathFree(ctx, newPath); err != nil {
		return err
	}
	return s.mutateStudy(ctx, actor, path, func(study *model.Study) error {
		study.Path = newPath
		return nil
	})
}

// UpdateTitle renames the study.
func (s *StudyService) UpdateTitle(ctx context.Context, actor *model.Account, path, newTitle string) error {
	if newTitle == "" || utf8.RuneCountInString(newTitle) > maxTitleLength {
		return model.Invalid("title", fmt.Sprintf("must be 1-%d characters", maxTitleLength))
	}
	return s.mutateStudy(ctx, actor, path, func(study *model.Study) error {
		study.Title = newTitle
		return nil
	})
}

// UpdateDescription updates the short and full descriptions.
func (s *StudyService) UpdateDescription(ctx context.Context, actor *model.Account, path string, args model.UpdateStudyDescriptionArgs) error {
	if err := validateStruct(s.validate, args); err != nil {
		return err
	}
	return s.mutateStudy(ctx, actor, path, func(study *model.Study) error {
		study.ShortDescription = args.ShortDescription
		study.FullDescription = args.FullDescription
		return nil
	})
}

// AddTag classifies the study with a topic, lazily creating the shared tag.
func (s *StudyService) AddTag(ctx context.Context, actor *model.Account, path, title string) (*model.Tag, error) {
	study, err := s.getForUpdate(ctx, actor, path)
	if err != nil {
		return nil, err
	}
	tag, err := s.tags.FindOrCreateTag(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := s.studies.AddStudyTag(ctx, study.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("error linking tag to study: %w", err)
	}
	return tag, nil
}

// RemoveTag removes a topic from the study.
func (s *StudyService) RemoveTag(ctx context.Context, actor *model.Account, path, title string) error {
	study, err := s.getForUpdate(ctx, actor, path)
	if err != nil {
		return err
	}
	tag, err := s.tags.FindOrCreateTag(ctx, title)
	if err != nil {
		return err
	}
	return s.studies.RemoveStudyTag(ctx, study.ID, tag.ID)
}

// AddZone classifies the study with a region.
func (s *StudyService) AddZone(ctx context.Context, actor *model.Account, path, city, province string) (*model.Zone, error) {
	study, err := s.getForUpdate(ctx, actor, path)
	if err != nil {
		return nil, err
	}
	zone, err := s.zones.GetZone(ctx, city, province)
	if err != nil {
		return nil, err
	}
	if err := s.studies.AddStudyZone(ctx, study.ID, zone.ID); err != nil {
		return nil, fmt.Errorf("error linking zone to study: %w", err)
	}
	return zone, nil
}

// RemoveZone removes a region from the study.
func (s *StudyService) RemoveZone(ctx context.Context, actor *model.Account, path, city, province string) error {
	study, err := s.getForUpdate(ctx, actor, path)
	if err != nil {
		return err
	}
	zone, err := s.zones.GetZone(ctx, city, province)
	if err != nil {
		return err
	}
	return s.studies.RemoveStudyZone(ctx, study.ID, zone.ID)
}

// Join adds the actor to the member set. Joining requires a published, recruiting study
// and an actor not already involved in it.
func (s *StudyService) Join(ctx context.Context, actor *model.Account, path string) error {
	if actor == nil {
		return model.ErrAccessDenied
	}

	unlock := s.locks.lock("study:" + path)
	defer unlock()

	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return err
	}
	if !guard.CanJoin(actor, study) {
		return model.ErrAccessDenied
	}
	if err := s.studies.AddStudyMember(ctx, study.ID, actor.ID); err != nil {
		return fmt.Errorf("error adding study member: %w", err)
	}
	return nil
}

// Leave removes the actor from the member set.
func (s *StudyService) Leave(ctx context.Context, actor *model.Account, path string) error {
	if actor == nil {
		return model.ErrAccessDenied
	}

	unlock := s.locks.lock("study:" + path)
	defer unlock()

	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return err
	}
	if !guard.IsMember(actor, study) {
		return model.ErrAccessDenied
	}
	if err := s.studies.RemoveStudyMember(ctx, study.ID, actor.ID); err != nil {
		return fmt.Errorf("error removing study member: %w", err)
	}
	return nil
}

// Remove deletes the study. Deletion is a manager operation and requires the study to
// have no members; a populated study must be closed instead.
func (s *StudyService) Remove(ctx context.Context, actor *model.Account, path string) error {
	unlock := s.locks.lock("study:" + path)
	defer unlock()

	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return err
	}
	if err := guard.RequireManager(actor, study); err != nil {
		return err
	}
	if !study.Removable() {
		return model.ErrInvalidStateTransition
	}
	if err := s.studies.DeleteStudy(ctx, study.ID); err != nil {
		return fmt.Errorf("error deleting study: %w", err)
	}
	return nil
}

// transition runs a state-machine transition under the study lock and fans the change
// out to the involved accounts. Notification failures are logged, not propagated: the
// transition itself has already been persisted.
func (s *StudyService) transition(ctx context.Context, actor *model.Account, path, notice string, apply func(*model.Study) error) error {
	var updated *model.Study
	if err := s.mutateStudy(ctx, actor, path, func(study *model.Study) error {
		if err := apply(study); err != nil {
			return err
		}
		updated = study
		return nil
	}); err != nil {
		return err
	}

	if err := s.notifier.StudyUpdated(ctx, updated, notice); err != nil {
		log.WithError(err).WithField("study", updated.Path).Warn("could not notify study update")
	}
	return nil
}

// mutateStudy runs the manager-gated load-mutate-save cycle under the study lock.
func (s *StudyService) mutateStudy(ctx context.Context, actor *model.Account, path string, mutate func(*model.Study) error) error {
	unlock := s.locks.lock("study:" + path)
	defer unlock()

	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return err
	}
	if err := guard.RequireManager(actor, study); err != nil {
		return err
	}
	if err := mutate(study); err != nil {
		return err
	}
	if err := s.studies.UpdateStudy(ctx, study); err != nil {
		return fmt.Errorf("error updating study: %w", err)
	}
	return nil
}

// getForUpdate loads the study and checks the actor manages it.
func (s *StudyService) getForUpdate(ctx context.Context, actor *model.Account, path string) (*model.Study, error) {
	study, err := s.studies.GetStudyByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireManager(actor, study); err != nil {
		return nil, err
	}
	return study, nil
}

func (s *StudyService) checkPathFree(ctx context.Context, path string) error {
	exists, err := s.studies.ExistsByPath(ctx, path)
	if err != nil {
		return fmt.Errorf("error checking path uniqueness: %w", err)
	}
	if exists {
		return model.Invalid("path", "already in use")
	}
	return nil
}
