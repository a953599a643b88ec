package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// SaveAccount will save the account in the database.
func (p *PostgresDB) SaveAccount(ctx context.Context, account *model.Account) error {
	if account == nil {
		return errors.New("nil account passed to save method")
	}

	dbAccount := p.accountToDBModel(account)
	if _, err := p.db.Model(dbAccount).Insert(); err != nil {
		return err
	}

	account.ID = dbAccount.ID
	account.CreatedAt = dbAccount.CreatedAt
	account.UpdatedAt = dbAccount.UpdatedAt
	return nil
}

// UpdateAccount will update the account. It returns model.ErrNotFound if the input
// account does not exist.
func (p *PostgresDB) UpdateAccount(ctx context.Context, account *model.Account) error {
	if account == nil {
		return errors.New("nil account passed to update method")
	}

	conn := p.db.Conn()
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing := new(accountDB)
	err = tx.Model(existing).Where("id = ?", account.ID).Select()
	if err != nil && err != pg.ErrNoRows {
		return err
	} else if err == pg.ErrNoRows {
		return model.ErrNotFound
	}

	updated := p.accountToDBModel(account)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = p.nowFunc()
	if _, err := tx.Model(updated).WherePK().Update(); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	account.UpdatedAt = updated.UpdatedAt
	return nil
}

// GetAccountByID returns the account with the given id, interests included.
func (p *PostgresDB) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return p.getAccount(ctx, "a.id = ?", id)
}

// GetAccountByEmail returns the account with the given email, interests included.
func (p *PostgresDB) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return p.getAccount(ctx, "a.email = ?", email)
}

// GetAccountByNickname returns the account with the given nickname, interests included.
func (p *PostgresDB) GetAccountByNickname(ctx context.Context, nickname string) (*model.Account, error) {
	return p.getAccount(ctx, "a.nickname = ?", nickname)
}

func (p *PostgresDB) getAccount(ctx context.Context, condition string, arg interface{}) (*model.Account, error) {
	dbAccount := new(accountDB)
	err := p.db.Model(dbAccount).Where(condition, arg).Select()
	if err == pg.ErrNoRows {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	account := accountDBToModel(dbAccount)
	if account.Tags, err = p.accountTags(dbAccount.ID); err != nil {
		return nil, err
	}
	if account.Zones, err = p.accountZones(dbAccount.ID); err != nil {
		return nil, err
	}
	return account, nil
}

// AddAccountTag links the tag to the account interests. Linking twice is a no-op.
func (p *PostgresDB) AddAccountTag(ctx context.Context, accountID uuid.UUID, tagID int64) error {
	link := &accountTagDB{AccountID: accountID, TagID: tagID}
	_, err := p.db.Model(link).OnConflict("DO NOTHING").Insert()
	return err
}

// RemoveAccountTag unlinks the tag from the account interests.
func (p *PostgresDB) RemoveAccountTag(ctx context.Context, accountID uuid.UUID, tagID int64) error {
	link := &accountTagDB{AccountID: accountID, TagID: tagID}
	_, err := p.db.Model(link).WherePK().Delete()
	return err
}

// AddAccountZone links the zone to the account interests. Linking twice is a no-op.
func (p *PostgresDB) AddAccountZone(ctx context.Context, accountID uuid.UUID, zoneID int64) error {
	link := &accountZoneDB{AccountID: accountID, ZoneID: zoneID}
	_, err := p.db.Model(link).OnConflict("DO NOTHING").Insert()
	return err
}

// RemoveAccountZone unlinks the zone from the account interests.
func (p *PostgresDB) RemoveAccountZone(ctx context.Context, accountID uuid.UUID, zoneID int64) error {
	link := &accountZoneDB{AccountID: accountID, ZoneID: zoneID}
	_, err := p.db.Model(link).WherePK().Delete()
	return err
}

func (p *PostgresDB) accountTags(accountID uuid.UUID) ([]model.Tag, error) {
	var tags []tagDB
	err := p.db.Model(&tags).
		Join("JOIN studyhub.account_tags AS link ON link.tag_id = t.id").
		Where("link.account_id = ?", accountID).
		Order("t.title ASC").
		Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	return tagDBToModels(tags), nil
}

func (p *PostgresDB) accountZones(accountID uuid.UUID) ([]model.Zone, error) {
	var zones []zoneDB
	err := p.db.Model(&zones).
		Join("JOIN studyhub.account_zones AS link ON link.zone_id = z.id").
		Where("link.account_id = ?", accountID).
		Order("z.city ASC").
		Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	return zoneDBToModels(zones), nil
}

func (p *PostgresDB) accountToDBModel(account *model.Account) *accountDB {
	dbAccount := &accountDB{
		ID:                           account.ID,
		Email:                        account.Email,
		Nickname:                     account.Nickname,
		PasswordHash:                 account.PasswordHash,
		EmailVerified:                account.EmailVerified,
		VerificationToken:            account.VerificationToken,
		TokenIssuedAt:                account.TokenIssuedAt,
		JoinedAt:                     account.JoinedAt,
		Bio:                          account.Bio,
		URL:                          account.URL,
		Occupation:                   account.Occupation,
		Location:                     account.Location,
		StudyCreatedByEmail:          account.StudyCreatedByEmail,
		StudyCreatedByWeb:            account.StudyCreatedByWeb,
		StudyEnrollmentResultByEmail: account.StudyEnrollmentResultByEmail,
		StudyEnrollmentResultByWeb:   account.StudyEnrollmentResultByWeb,
		StudyUpdatedByEmail:          account.StudyUpdatedByEmail,
		StudyUpdatedByWeb:            account.StudyUpdatedByWeb,
	}
	if dbAccount.ID == uuid.Nil {
		dbAccount.ID = uuid.New()
	}
	if !account.CreatedAt.IsZero() {
		dbAccount.CreatedAt = account.CreatedAt
	} else {
		dbAccount.CreatedAt = p.nowFunc()
	}
	dbAccount.UpdatedAt = p.nowFunc()
	return dbAccount
}

func accountDBToModel(dbAccount *accountDB) *model.Account {
	return &model.Account{
		ID:                           dbAccount.ID,
		Email:                        dbAccount.Email,
		Nickname:                     dbAccount.Nickname,
		PasswordHash:                 dbAccount.PasswordHash,
		EmailVerified:                dbAccount.EmailVerified,
		VerificationToken:            dbAccount.VerificationToken,
		TokenIssuedAt:                dbAccount.TokenIssuedAt,
		JoinedAt:                     dbAccount.JoinedAt,
		Bio:                          dbAccount.Bio,
		URL:                          dbAccount.URL,
		Occupation:                   dbAccount.Occupation,
		Location:                     dbAccount.Location,
		StudyCreatedByEmail:          dbAccount.StudyCreatedByEmail,
		StudyCreatedByWeb:            dbAccount.StudyCreatedByWeb,
		StudyEnrollmentResultByEmail: dbAccount.StudyEnrollmentResultByEmail,
		StudyEnrollmentResultByWeb:   dbAccount.StudyEnrollmentResultByWeb,
		StudyUpdatedByEmail:          dbAccount.StudyUpdatedByEmail,
		StudyUpdatedByWeb:            dbAccount.StudyUpdatedByWeb,
		CreatedAt:                    dbAccount.CreatedAt,
		UpdatedAt:                    dbAccount.UpdatedAt,
	}
}

type accountDB struct {
	tableName struct{} `pg:"studyhub.accounts,alias:a"`

	// ID unique identifier of the account.
	ID uuid.UUID `pg:"id,type:uuid,pk"`

	// Email is the account email. Unique.
	Email string `pg:"email"`

	// Nickname is the account nickname. Unique.
	Nickname string `pg:"nickname"`

	// PasswordHash contains the password hash.
	PasswordHash string `pg:"password_hash"`

	// EmailVerified reports whether the email check link was followed.
	EmailVerified bool `pg:"email_verified,use_zero"`

	// VerificationToken is the current single-use token. Empty if consumed.
	VerificationToken string `pg:"verification_token"`

	// TokenIssuedAt is the time at which the token was last generated.
	TokenIssuedAt time.Time `pg:"token_issued_at"`

	// JoinedAt is set once, when verification completes.
	JoinedAt time.Time `pg:"joined_at"`

	Bio        string `pg:"bio"`
	URL        string `pg:"url"`
	Occupation string `pg:"occupation"`
	Location   string `pg:"location"`

	StudyCreatedByEmail          bool `pg:"study_created_by_email,use_zero"`
	StudyCreatedByWeb            bool `pg:"study_created_by_web,use_zero"`
	StudyEnrollmentResultByEmail bool `pg:"study_enrollment_result_by_email,use_zero"`
	StudyEnrollmentResultByWeb   bool `pg:"study_enrollment_result_by_web,use_zero"`
	StudyUpdatedByEmail          bool `pg:"study_updated_by_email,use_zero"`
	StudyUpdatedByWeb            bool `pg:"study_updated_by_web,use_zero"`

	// CreatedAt is the time at which the account was created in the system.
	CreatedAt time.Time `pg:"created_at"`

	// UpdatedAt is the time at which the account was last updated.
	UpdatedAt time.Time `pg:"updated_at"`
}

type accountTagDB struct {
	tableName struct{} `pg:"studyhub.account_tags"`

	AccountID uuid.UUID `pg:"account_id,type:uuid,pk"`
	TagID     int64     `pg:"tag_id,pk"`
}

type accountZoneDB struct {
	tableName struct{} `pg:"studyhub.account_zones"`

	AccountID uuid.UUID `pg:"account_id,type:uuid,pk"`
	ZoneID    int64     `pg:"zone_id,pk"`
}
