package library

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"library-sync/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Syncer reconciles the local catalog with the remote library service.
// One pass uploads local changes since the checkpoint, fetches remote changes
// since the same checkpoint, merges them field-wise and persists a new
// checkpoint. At most one pass runs at a time per Syncer.
type Syncer struct {
	catalog    Catalog
	codec      *Codec
	remote     Remote
	creds      CredentialProvider
	checkpoint *Checkpoint
	notifier   *Notifier
	archiver   *Archiver
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	syncing bool
}

// NewSyncer creates a sync engine. The archiver is optional; pass nil to
// disable post-pass snapshots.
func NewSyncer(catalog Catalog, codec *Codec, remote Remote, creds CredentialProvider, archiver *Archiver, logg *zap.Logger) *Syncer {
	return &Syncer{
		catalog:    catalog,
		codec:      codec,
		remote:     remote,
		creds:      creds,
		checkpoint: NewCheckpoint(catalog),
		notifier:   NewNotifier(),
		archiver:   archiver,
		logger:     logg,
		now:        time.Now,
	}
}

// Notifier exposes the engine's lifecycle events for subscription.
func (s *Syncer) Notifier() *Notifier {
	return s.notifier
}

// IsSyncing reports whether a pass is currently running. Triggering a sync
// while this is true is a no-op.
func (s *Syncer) IsSyncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// LastSyncAt returns the stored checkpoint, 0 when no sync ever completed.
func (s *Syncer) LastSyncAt(ctx context.Context) int64 {
	return s.checkpoint.Read(ctx)
}

func (s *Syncer) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing {
		return false
	}
	s.syncing = true
	return true
}

func (s *Syncer) release() {
	s.mu.Lock()
	s.syncing = false
	s.mu.Unlock()
}

// SyncLocalLibrary runs one sync pass. When force is true the checkpoint is
// ignored and the full library is exchanged. All failures are contained
// within the pass; a failed pass leaves the checkpoint untouched so the next
// pass re-covers the same window, which is safe because the field-wise
// max-wins merge is idempotent.
func (s *Syncer) SyncLocalLibrary(ctx context.Context, force bool) {
	if !s.acquire() {
		return
	}

	l := logger.WithPass(s.logger, uuid.NewString())

	var since int64
	if !force {
		since = s.checkpoint.Read(ctx)
	}

	allGames, err := s.catalog.Games(ctx)
	if err != nil {
		l.Error("Failed to load local library", zap.Error(err))
		s.release()
		return
	}
	outbound := s.codec.EncodeBatch(allGames, since)

	token, ok := s.creds.Token()
	if !ok {
		// Sync is not configured; silent no-op.
		s.release()
		return
	}

	s.notifier.fire(EventSyncing)
	anyLocalChanges := false
	defer func() {
		s.release()
		s.notifier.fire(EventSynced)
		if anyLocalChanges {
			s.notifier.fire(EventUpdated)
		}
	}()

	l.Info("Starting library sync",
		zap.Int64("since", since),
		zap.Int("local_games", len(allGames)),
		zap.Int("outbound", len(outbound)))

	stepStart := time.Now()
	if err := s.remote.Upload(ctx, token, outbound); err != nil {
		l.Error("Could not send local library to server", zap.Error(err))
		return
	}
	l.Info("Upload completed", zap.Duration("duration", time.Since(stepStart)))

	stepStart = time.Now()
	remoteEntries, err := s.remote.Fetch(ctx, token, since)
	if err != nil {
		l.Error("Could not fetch remote library", zap.Error(err))
		return
	}
	l.Info("Fetch completed",
		zap.Duration("duration", time.Since(stepStart)),
		zap.Int("remote_entries", len(remoteEntries)))

	// Index the full local library, not the filtered outbound batch. A key
	// seen twice locally is ambiguous for the whole pass.
	duplicates := make(map[IdentityKey]struct{})
	byKey := make(map[IdentityKey]GameRecord, len(allGames))
	slugs := make(map[string]struct{}, len(allGames))
	for _, rec := range allGames {
		key := rec.Key()
		if _, seen := byKey[key]; seen {
			duplicates[key] = struct{}{}
		}
		byKey[key] = rec
		slugs[rec.Slug] = struct{}{}
	}

	stepStart = time.Now()
	for _, entry := range remoteEntries {
		key := entry.Key()
		if _, dup := duplicates[key]; dup {
			l.Warn("Duplicate local game, not syncing", keyFields(key)...)
			continue
		}
		if _, exists := byKey[key]; exists {
			if s.mergeExisting(ctx, l, entry) {
				anyLocalChanges = true
			}
			continue
		}
		// A slug already present locally under a different runner/platform/
		// service is usually the same game with partial data; never create a
		// second record for it.
		if _, exists := slugs[entry.Slug]; exists {
			continue
		}
		l.Info("Creating game from remote entry", keyFields(key)...)
		rec := GameRecord{
			Name:       entry.Name,
			Slug:       entry.Slug,
			Runner:     entry.Runner,
			Platform:   entry.Platform,
			Playtime:   entry.Playtime,
			LastPlayed: entry.LastPlayed,
			Installed:  false,
			Service:    entry.Service,
			ServiceID:  entry.ServiceID,
		}
		if err := s.catalog.Add(ctx, &rec); err != nil {
			l.Error("Failed to create game", append(keyFields(key), zap.Error(err))...)
			continue
		}
		anyLocalChanges = true
	}
	l.Info("Merge completed",
		zap.Duration("duration", time.Since(stepStart)),
		zap.Bool("local_changes", anyLocalChanges))

	// Checkpoint on local wall clock, not the server's.
	if err := s.checkpoint.Write(ctx, s.now().Unix()); err != nil {
		l.Error("Failed to persist sync checkpoint", zap.Error(err))
	}

	if s.archiver != nil && anyLocalChanges {
		s.snapshot(ctx, l)
	}
}

// mergeExisting applies a remote entry to its local counterpart, taking the
// greater value of playtime and lastplayed independently per field so neither
// machine's progress is ever regressed. Returns true when the record changed.
func (s *Syncer) mergeExisting(ctx context.Context, l *zap.Logger, entry RemoteEntry) bool {
	key := entry.Key()

	// Re-query using only the components the remote entry actually carries;
	// blank runner/platform/service must not narrow the match.
	matches, err := s.catalog.GamesWhere(ctx, FilterFor(entry))
	if err != nil {
		l.Error("Failed to query local game", append(keyFields(key), zap.Error(err))...)
		return false
	}
	if len(matches) == 0 {
		l.Error("No game found for remote entry", keyFields(key)...)
		return false
	}
	if len(matches) > 1 {
		l.Error("More than one game found for remote entry", keyFields(key)...)
		return false
	}

	rec := matches[0]
	changed := false
	if entry.Playtime > rec.Playtime {
		rec.Playtime = entry.Playtime
		changed = true
	}
	if entry.LastPlayed > rec.LastPlayed {
		rec.LastPlayed = entry.LastPlayed
		changed = true
	}
	if !changed {
		return false
	}
	if err := s.catalog.Update(ctx, &rec); err != nil {
		l.Error("Failed to update game", append(keyFields(key), zap.Error(err))...)
		return false
	}
	return true
}

// snapshot archives the merged library to object storage. Best effort; a
// failed snapshot never fails the pass.
func (s *Syncer) snapshot(ctx context.Context, l *zap.Logger) {
	recs, err := s.catalog.Games(ctx)
	if err != nil {
		l.Warn("Library snapshot skipped", zap.Error(err))
		return
	}
	if err := s.archiver.Archive(ctx, s.codec.EncodeBatch(recs, 0)); err != nil {
		l.Warn("Library snapshot failed", zap.Error(err))
		return
	}
	l.Info("Library snapshot archived", zap.Int("entries", len(recs)))
}

// DeleteFromRemoteLibrary asks the remote side to remove the given records.
// No local state is mutated. Returns the server response verbatim, or a nil
// result when credentials are missing or the transport failed.
func (s *Syncer) DeleteFromRemoteLibrary(ctx context.Context, recs []GameRecord) (json.RawMessage, error) {
	token, ok := s.creds.Token()
	if !ok {
		return nil, nil
	}
	resp, err := s.remote.Delete(ctx, token, s.codec.EncodeBatch(recs, 0))
	if err != nil {
		s.logger.Error("Could not delete from remote library", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func keyFields(key IdentityKey) []zap.Field {
	return []zap.Field{
		zap.String("slug", key.Slug),
		zap.String("runner", key.Runner),
		zap.String("platform", key.Platform),
		zap.String("service", key.Service),
	}
}
