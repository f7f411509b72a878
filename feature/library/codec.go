package library

import (
	"context"
	"fmt"
)

// LibraryEntry is the wire representation of a catalog record as uploaded to
// the remote library service. Playtime is a fixed 5-decimal string so the
// value survives transport without floating-point drift.
type LibraryEntry struct {
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Runner     string   `json:"runner"`
	Platform   string   `json:"platform"`
	Playtime   string   `json:"playtime"`
	LastPlayed int64    `json:"lastplayed"`
	Service    string   `json:"service"`
	ServiceID  string   `json:"service_id"`
	Categories []string `json:"categories"`
}

// RemoteEntry is an entry returned by the remote library service. Unlike the
// uploaded form, playtime arrives as a JSON number.
type RemoteEntry struct {
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Runner     string  `json:"runner"`
	Platform   string  `json:"platform"`
	Playtime   float64 `json:"playtime"`
	LastPlayed int64   `json:"lastplayed"`
	Service    string  `json:"service"`
	ServiceID  string  `json:"service_id"`
}

// Key returns the entry's identity. Components the server sent as empty
// strings stay empty.
func (e RemoteEntry) Key() IdentityKey {
	return IdentityKey{
		Slug:     e.Slug,
		Runner:   e.Runner,
		Platform: e.Platform,
		Service:  e.Service,
	}
}

// Codec converts catalog records to their wire representation. The category
// lookup tables are loaded once at construction and reused for every encode,
// so a Codec sees the category set as of the moment it was built.
type Codec struct {
	categories     map[int64]string
	gameCategories map[int64][]int64
}

// NewCodec builds a codec over the catalog's current category tables.
func NewCodec(ctx context.Context, catalog Catalog) (*Codec, error) {
	categories, err := catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}
	gameCategories, err := catalog.GameCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &Codec{
		categories:     categories,
		gameCategories: gameCategories,
	}, nil
}

// Encode converts a single record. It is a pure function of the record and
// the codec's category tables.
func (c *Codec) Encode(rec GameRecord) LibraryEntry {
	categories := []string{}
	for _, catID := range c.gameCategories[rec.ID] {
		if name, ok := c.categories[catID]; ok {
			categories = append(categories, name)
		}
	}
	return LibraryEntry{
		Name:       rec.Name,
		Slug:       rec.Slug,
		Runner:     rec.Runner,
		Platform:   rec.Platform,
		Playtime:   fmt.Sprintf("%0.5f", rec.Playtime),
		LastPlayed: rec.LastPlayed,
		Service:    rec.Service,
		ServiceID:  rec.ServiceID,
		Categories: categories,
	}
}

// EncodeBatch converts records for upload. When since is non-zero, a record
// is kept only if its lastplayed or installed_at reaches the checkpoint;
// records where both are still older are dropped.
func (c *Codec) EncodeBatch(recs []GameRecord, since int64) []LibraryEntry {
	payload := []LibraryEntry{}
	for _, rec := range recs {
		if since > 0 && rec.LastPlayed < since && rec.InstalledAt < since {
			continue
		}
		payload = append(payload, c.Encode(rec))
	}
	return payload
}
