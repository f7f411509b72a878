package library

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no catalog record.
var ErrNotFound = errors.New("record not found")

// IdentityFilter carries the identity components used to locate a record.
// Empty components are left out of the query, so a filter with only a slug
// matches across runners, platforms and services.
type IdentityFilter struct {
	Slug     string
	Runner   string
	Platform string
	Service  string
}

// FilterFor builds the re-query filter for a remote entry: slug always,
// plus whichever of runner/platform/service the entry actually carries.
func FilterFor(e RemoteEntry) IdentityFilter {
	return IdentityFilter{
		Slug:     e.Slug,
		Runner:   e.Runner,
		Platform: e.Platform,
		Service:  e.Service,
	}
}

// Catalog is the storage contract the sync engine works against.
type Catalog interface {
	// Games returns every record in the catalog.
	Games(ctx context.Context) ([]GameRecord, error)
	// GamesWhere returns the records matching the non-empty filter components.
	GamesWhere(ctx context.Context, filter IdentityFilter) ([]GameRecord, error)
	// GamesByIDs returns the records with the given primary keys.
	GamesByIDs(ctx context.Context, ids []int64) ([]GameRecord, error)
	// Add inserts a new record.
	Add(ctx context.Context, rec *GameRecord) error
	// Update persists changes to an existing record by primary key.
	Update(ctx context.Context, rec *GameRecord) error
	// Categories returns the category id to name lookup table.
	Categories(ctx context.Context) (map[int64]string, error)
	// GameCategories returns category ids per game id, ordered by category id.
	GameCategories(ctx context.Context) (map[int64][]int64, error)
	// ReadSetting returns a named setting, or "" when it was never written.
	ReadSetting(ctx context.Context, name string) (string, error)
	// WriteSetting persists a named setting, overwriting any previous value.
	WriteSetting(ctx context.Context, name, value string) error
}

// GormCatalog implements Catalog on top of a GORM connection.
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog wraps a database connection in the Catalog interface.
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// Migrate creates the catalog tables when they do not exist yet. Fresh
// sqlite files start empty, so commands run this before the first query.
func (c *GormCatalog) Migrate() error {
	return c.db.AutoMigrate(&GameRecord{}, &Category{}, &GameCategory{}, &Setting{})
}

func (c *GormCatalog) Games(ctx context.Context) ([]GameRecord, error) {
	var recs []GameRecord
	if err := c.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	return recs, nil
}

func (c *GormCatalog) GamesWhere(ctx context.Context, filter IdentityFilter) ([]GameRecord, error) {
	q := c.db.WithContext(ctx).Where("slug = ?", filter.Slug)
	if filter.Runner != "" {
		q = q.Where("runner = ?", filter.Runner)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.Service != "" {
		q = q.Where("service = ?", filter.Service)
	}

	var recs []GameRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	return recs, nil
}

func (c *GormCatalog) GamesByIDs(ctx context.Context, ids []int64) ([]GameRecord, error) {
	var recs []GameRecord
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load games by id: %w", err)
	}
	return recs, nil
}

func (c *GormCatalog) Add(ctx context.Context, rec *GameRecord) error {
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to insert game %s: %w", rec.Slug, err)
	}
	return nil
}

func (c *GormCatalog) Update(ctx context.Context, rec *GameRecord) error {
	if rec.ID == 0 {
		return ErrNotFound
	}
	res := c.db.WithContext(ctx).Model(&GameRecord{}).Where("id = ?", rec.ID).
		Updates(map[string]any{
			"playtime":   rec.Playtime,
			"lastplayed": rec.LastPlayed,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update game %s: %w", rec.Slug, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *GormCatalog) Categories(ctx context.Context) (map[int64]string, error) {
	var cats []Category
	if err := c.db.WithContext(ctx).Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	out := make(map[int64]string, len(cats))
	for _, cat := range cats {
		out[cat.ID] = cat.Name
	}
	return out, nil
}

func (c *GormCatalog) GameCategories(ctx context.Context) (map[int64][]int64, error) {
	var joins []GameCategory
	if err := c.db.WithContext(ctx).Order("category_id").Find(&joins).Error; err != nil {
		return nil, fmt.Errorf("failed to load game categories: %w", err)
	}
	out := make(map[int64][]int64)
	for _, j := range joins {
		out[j.GameID] = append(out[j.GameID], j.CategoryID)
	}
	return out, nil
}

func (c *GormCatalog) ReadSetting(ctx context.Context, name string) (string, error) {
	var s Setting
	err := c.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return s.Value, nil
}

func (c *GormCatalog) WriteSetting(ctx context.Context, name, value string) error {
	s := Setting{Name: name, Value: value}
	res := c.db.WithContext(ctx).Model(&Setting{}).Where("name = ?", name).Update("value", value)
	if res.Error != nil {
		return fmt.Errorf("failed to write setting %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := c.db.WithContext(ctx).Create(&s).Error; err != nil {
			return fmt.Errorf("failed to write setting %s: %w", name, err)
		}
	}
	return nil
}
