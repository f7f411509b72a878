package library

import (
	"context"
	"strconv"
)

// checkpointSetting names the settings row holding the epoch seconds of the
// last successful sync.
const checkpointSetting = "last_library_sync_at"

// Checkpoint reads and writes the incremental sync boundary.
type Checkpoint struct {
	catalog Catalog
}

// NewCheckpoint builds a checkpoint over the catalog's settings storage.
func NewCheckpoint(catalog Catalog) *Checkpoint {
	return &Checkpoint{catalog: catalog}
}

// Read returns the stored checkpoint, or 0 when none exists or the stored
// value is not a number. 0 means the next pass is a full sync.
func (c *Checkpoint) Read(ctx context.Context) int64 {
	raw, err := c.catalog.ReadSetting(ctx, checkpointSetting)
	if err != nil || raw == "" {
		return 0
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// Write persists a new checkpoint.
func (c *Checkpoint) Write(ctx context.Context, ts int64) error {
	return c.catalog.WriteSetting(ctx, checkpointSetting, strconv.FormatInt(ts, 10))
}
