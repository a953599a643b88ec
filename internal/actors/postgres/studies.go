package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// SaveStudy will save the study and its manager links in a single transaction.
func (p *PostgresDB) SaveStudy(ctx context.Context, study *model.Study) error {
	if study == nil {
		return errors.New("nil study passed to save method")
	}

	conn := p.db.Conn()
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	dbStudy := p.studyToDBModel(study)
	if _, err := tx.Model(dbStudy).Insert(); err != nil {
		return err
	}
	for _, manager := range study.Managers {
		link := &studyManagerDB{StudyID: dbStudy.ID, AccountID: manager.ID}
		if _, err := tx.Model(link).Insert(); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	study.ID = dbStudy.ID
	study.CreatedAt = dbStudy.CreatedAt
	study.UpdatedAt = dbStudy.UpdatedAt
	return nil
}

// UpdateStudy persists the scalar fields of the study. It returns model.ErrNotFound if
// the study does not exist. Relation sets are managed through the dedicated methods.
func (p *PostgresDB) UpdateStudy(ctx context.Context, study *model.Study) error {
	if study == nil {
		return errors.New("nil study passed to update method")
	}

	conn := p.db.Conn()
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing := new(studyDB)
	err = tx.Model(existing).Where("id = ?", study.ID).Select()
	if err != nil && err != pg.ErrNoRows {
		return err
	} else if err == pg.ErrNoRows {
		return model.ErrNotFound
	}

	updated := p.studyToDBModel(study)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = p.nowFunc()
	if _, err := tx.Model(updated).WherePK().Update(); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	study.UpdatedAt = updated.UpdatedAt
	return nil
}

// GetStudyByPath returns the study with the given path, relation sets included.
func (p *PostgresDB) GetStudyByPath(ctx context.Context, path string) (*model.Study, error) {
	dbStudy := new(studyDB)
	err := p.db.Model(dbStudy).Where("s.path = ?", path).Select()
	if err == pg.ErrNoRows {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	study := studyDBToModel(dbStudy)
	if study.Managers, err = p.studyAccounts(dbStudy.ID, "studyhub.study_managers"); err != nil {
		return nil, err
	}
	if study.Members, err = p.studyAccounts(dbStudy.ID, "studyhub.study_members"); err != nil {
		return nil, err
	}
	if study.Tags, err = p.studyTags(dbStudy.ID); err != nil {
		return nil, err
	}
	if study.Zones, err = p.studyZones(dbStudy.ID); err != nil {
		return nil, err
	}
	return study, nil
}

// ExistsByPath reports whether a study with the given path exists.
func (p *PostgresDB) ExistsByPath(ctx context.Context, path string) (bool, error) {
	return p.db.Model((*studyDB)(nil)).Where("s.path = ?", path).Exists()
}

// DeleteStudy removes the study. Relation links go with it through the schema cascade.
func (p *PostgresDB) DeleteStudy(ctx context.Context, id uuid.UUID) error {
	dbStudy := &studyDB{ID: id}
	_, err := p.db.Model(dbStudy).WherePK().Delete()
	return err
}

// AddStudyMember adds the account to the member set. Adding twice is a no-op.
func (p *PostgresDB) AddStudyMember(ctx context.Context, studyID, accountID uuid.UUID) error {
	link := &studyMemberDB{StudyID: studyID, AccountID: accountID}
	_, err := p.db.Model(link).OnConflict("DO NOTHING").Insert()
	return err
}

// RemoveStudyMember removes the account from the member set.
func (p *PostgresDB) RemoveStudyMember(ctx context.Context, studyID, accountID uuid.UUID) error {
	link := &studyMemberDB{StudyID: studyID, AccountID: accountID}
	_, err := p.db.Model(link).WherePK().Delete()
	return err
}

// AddStudyTag links the tag to the study. Linking twice is a no-op.
func (p *PostgresDB) AddStudyTag(ctx context.Context, studyID uuid.UUID, tagID int64) error {
	link := &studyTagDB{StudyID: studyID, TagID: tagID}
	_, err := p.db.Model(link).OnConflict("DO NOTHING").Insert()
	return err
}

// RemoveStudyTag unlinks the tag from the study.
func (p *PostgresDB) RemoveStudyTag(ctx context.Context, studyID uuid.UUID, tagID int64) error {
	link := &studyTagDB{StudyID: studyID, TagID: tagID}
	_, err := p.db.Model(link).WherePK().Delete()
	return err
}

// AddStudyZone links the zone to the study. Linking twice is a no-op.
func (p *PostgresDB) AddStudyZone(ctx context.Context, studyID uuid.UUID, zoneID int64) error {
	link := &studyZoneDB{StudyID: studyID, ZoneID: zoneID}
	_, err := p.db.Model(link).OnConflict("DO NOTHING").Insert()
	return err
}

// RemoveStudyZone unlinks the zone from the study.
func (p *PostgresDB) RemoveStudyZone(ctx context.Context, studyID uuid.UUID, zoneID int64) error {
	link := &studyZoneDB{StudyID: studyID, ZoneID: zoneID}
	_, err := p.db.Model(link).WherePK().Delete()
	return err
}

func (p *PostgresDB) studyAccounts(studyID uuid.UUID, linkTable string) ([]model.Account, error) {
	var accounts []accountDB
	err := p.db.Model(&accounts).
		Join("JOIN "+linkTable+" AS link ON link.account_id = a.id").
		Where("link.study_id = ?", studyID).
		Order("a.nickname ASC").
		Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	models := make([]model.Account, len(accounts))
	for i := range accounts {
		models[i] = *accountDBToModel(&accounts[i])
	}
	return models, nil
}

func (p *PostgresDB) studyTags(studyID uuid.UUID) ([]model.Tag, error) {
	var tags []tagDB
	err := p.db.Model(&tags).
		Join("JOIN studyhub.study_tags AS link ON link.tag_id = t.id").
		Where("link.study_id = ?", studyID).
		Order("t.title ASC").
		Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	return tagDBToModels(tags), nil
}

func (p *PostgresDB) studyZones(studyID uuid.UUID) ([]model.Zone, error) {
	var zones []zoneDB
	err := p.db.Model(&zones).
		Join("JOIN studyhub.study_zones AS link ON link.zone_id = z.id").
		Where("link.study_id = ?", studyID).
		Order("z.city ASC").
		Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	return zoneDBToModels(zones), nil
}

func (p *PostgresDB) studyToDBModel(study *model.Study) *studyDB {
	dbStudy := &studyDB{
		ID:                  study.ID,
		Path:                study.Path,
		Title:               study.Title,
		ShortDescription:    study.ShortDescription,
		FullDescription:     study.FullDescription,
		Published:           study.Published,
		PublishedAt:         study.PublishedAt,
		Closed:              study.Closed,
		ClosedAt:            study.ClosedAt,
		Recruiting:          study.Recruiting,
		RecruitingUpdatedAt: study.RecruitingUpdatedAt,
	}
	if dbStudy.ID == uuid.Nil {
		dbStudy.ID = uuid.New()
	}
	if !study.CreatedAt.IsZero() {
		dbStudy.CreatedAt = study.CreatedAt
	} else {
		dbStudy.CreatedAt = p.nowFunc()
	}
	dbStudy.UpdatedAt = p.nowFunc()
	return dbStudy
}

func studyDBToModel(dbStudy *studyDB) *model.Study {
	return &model.Study{
		ID:                  dbStudy.ID,
		Path:                dbStudy.Path,
		Title:               dbStudy.Title,
		ShortDescription:    dbStudy.ShortDescription,
		FullDescription:     dbStudy.FullDescription,
		Published:           dbStudy.Published,
		PublishedAt:         dbStudy.PublishedAt,
		Closed:              dbStudy.Closed,
		ClosedAt:            dbStudy.ClosedAt,
		Recruiting:          dbStudy.Recruiting,
		RecruitingUpdatedAt: dbStudy.RecruitingUpdatedAt,
		CreatedAt:           dbStudy.CreatedAt,
		UpdatedAt:           dbStudy.UpdatedAt,
	}
}

type studyDB struct {
	tableName struct{} `pg:"studyhub.studies,alias:s"`

	// ID unique identifier of the study.
	ID uuid.UUID `pg:"id,type:uuid,pk"`

	// Path is the URL-safe slug. Unique.
	Path string `pg:"path"`

	// Title is the display title.
	Title string `pg:"title"`

	ShortDescription string `pg:"short_description"`
	FullDescription  string `pg:"full_description"`

	Published   bool      `pg:"published,use_zero"`
	PublishedAt time.Time `pg:"published_at"`

	Closed   bool      `pg:"closed,use_zero"`
	ClosedAt time.Time `pg:"closed_at"`

	Recruiting          bool      `pg:"recruiting,use_zero"`
	RecruitingUpdatedAt time.Time `pg:"recruiting_updated_at"`

	// CreatedAt is the time at which the study was created in the system.
	CreatedAt time.Time `pg:"created_at"`

	// UpdatedAt is the time at which the study was last updated.
	UpdatedAt time.Time `pg:"updated_at"`
}

type studyManagerDB struct {
	tableName struct{} `pg:"studyhub.study_managers"`

	StudyID   uuid.UUID `pg:"study_id,type:uuid,pk"`
	AccountID uuid.UUID `pg:"account_id,type:uuid,pk"`
}

type studyMemberDB struct {
	tableName struct{} `pg:"studyhub.study_members"`

	StudyID   uuid.UUID `pg:"study_id,type:uuid,pk"`
	AccountID uuid.UUID `pg:"account_id,type:uuid,pk"`
}

type studyTagDB struct {
	tableName struct{} `pg:"studyhub.study_tags"`

	StudyID uuid.UUID `pg:"study_id,type:uuid,pk"`
	TagID   int64     `pg:"tag_id,pk"`
}

type studyZoneDB struct {
	tableName struct{} `pg:"studyhub.study_zones"`

	StudyID uuid.UUID `pg:"study_id,type:uuid,pk"`
	ZoneID  int64     `pg:"zone_id,pk"`
}
