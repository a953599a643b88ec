package postgres

import (
	"context"

	"github.com/go-pg/pg/v10"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// FindOrCreateTag returns the tag with the given title, creating it if absent. Two
// racing creators both end up with the same row: the insert backs off on the title
// uniqueness constraint and the reselect picks the winner up.
func (p *PostgresDB) FindOrCreateTag(ctx context.Context, title string) (*model.Tag, error) {
	dbTag := &tagDB{Title: title}
	if _, err := p.db.Model(dbTag).OnConflict("(title) DO NOTHING").Insert(); err != nil {
		return nil, err
	}

	dbTag = new(tagDB)
	if err := p.db.Model(dbTag).Where("t.title = ?", title).Select(); err != nil {
		return nil, err
	}
	return &model.Tag{ID: dbTag.ID, Title: dbTag.Title}, nil
}

// ListTagTitles returns all known tag titles in alphabetical order.
func (p *PostgresDB) ListTagTitles(ctx context.Context) ([]string, error) {
	var titles []string
	err := p.db.Model((*tagDB)(nil)).Column("title").Order("title ASC").Select(&titles)
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	return titles, nil
}

// GetZone returns the zone with the given city and province.
func (p *PostgresDB) GetZone(ctx context.Context, city, province string) (*model.Zone, error) {
	dbZone := new(zoneDB)
	err := p.db.Model(dbZone).Where("z.city = ?", city).Where("z.province = ?", province).Select()
	if err == pg.ErrNoRows {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	zone := zoneDBToModel(dbZone)
	return &zone, nil
}

// ListZones returns all known zones ordered by city.
func (p *PostgresDB) ListZones(ctx context.Context) ([]model.Zone, error) {
	var zones []zoneDB
	err := p.db.Model(&zones).Order("city ASC").Select()
	if err != nil && err != pg.ErrNoRows {
		return nil, err
	}
	return zoneDBToModels(zones), nil
}

func tagDBToModels(dbTags []tagDB) []model.Tag {
	if len(dbTags) == 0 {
		return nil
	}
	tags := make([]model.Tag, len(dbTags))
	for i, dbTag := range dbTags {
		tags[i] = model.Tag{ID: dbTag.ID, Title: dbTag.Title}
	}
	return tags
}

func zoneDBToModel(dbZone *zoneDB) model.Zone {
	return model.Zone{
		ID:        dbZone.ID,
		City:      dbZone.City,
		LocalName: dbZone.LocalName,
		Province:  dbZone.Province,
	}
}

func zoneDBToModels(dbZones []zoneDB) []model.Zone {
	if len(dbZones) == 0 {
		return nil
	}
	zones := make([]model.Zone, len(dbZones))
	for i := range dbZones {
		zones[i] = zoneDBToModel(&dbZones[i])
	}
	return zones
}

type tagDB struct {
	tableName struct{} `pg:"studyhub.tags,alias:t"`

	// ID is the tag identifier, assigned by the database.
	ID int64 `pg:"id,pk"`

	// Title is the tag title. Unique, stored lowercase.
	Title string `pg:"title"`
}

type zoneDB struct {
	tableName struct{} `pg:"studyhub.zones,alias:z"`

	// ID is the zone identifier from the seed data.
	ID int64 `pg:"id,pk"`

	City      string `pg:"city"`
	LocalName string `pg:"local_name"`
	Province  string `pg:"province"`
}
