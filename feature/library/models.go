package library

// GameRecord is a row of the local game catalog.
type GameRecord struct {
	ID          int64   `gorm:"column:id;primaryKey"`
	Name        string  `gorm:"column:name"`
	Slug        string  `gorm:"column:slug"`
	Runner      string  `gorm:"column:runner"`
	Platform    string  `gorm:"column:platform"`
	Playtime    float64 `gorm:"column:playtime"`     // fractional hours
	LastPlayed  int64   `gorm:"column:lastplayed"`   // epoch seconds, 0 = never played
	Installed   bool    `gorm:"column:installed"`
	InstalledAt int64   `gorm:"column:installed_at"` // epoch seconds, 0 = unknown
	Service     string  `gorm:"column:service"`
	ServiceID   string  `gorm:"column:service_id"`
}

// TableName overrides the table name for GameRecord.
func (GameRecord) TableName() string {
	return "games"
}

// Key returns the record's identity across the local and remote libraries.
func (g GameRecord) Key() IdentityKey {
	return IdentityKey{
		Slug:     g.Slug,
		Runner:   g.Runner,
		Platform: g.Platform,
		Service:  g.Service,
	}
}

// Category is a user-defined tag attached to games.
type Category struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

// TableName overrides the table name for Category.
func (Category) TableName() string {
	return "categories"
}

// GameCategory is the many-to-many join between games and categories.
type GameCategory struct {
	GameID     int64 `gorm:"column:game_id"`
	CategoryID int64 `gorm:"column:category_id"`
}

// TableName overrides the table name for GameCategory.
func (GameCategory) TableName() string {
	return "games_categories"
}

// Setting is a named scalar persisted in the catalog database. The sync
// checkpoint is stored as one of these.
type Setting struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value string `gorm:"column:value"`
}

// TableName overrides the table name for Setting.
func (Setting) TableName() string {
	return "settings"
}

// IdentityKey is the 4-tuple matching local records against remote entries.
// Absent components are the empty string.
type IdentityKey struct {
	Slug     string
	Runner   string
	Platform string
	Service  string
}
