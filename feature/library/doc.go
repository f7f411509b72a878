// Package library implements bidirectional sync between the local game
// catalog and the remote library service.
//
// # Sync pass
//
// One pass, run by Syncer.SyncLocalLibrary, performs in order:
//
//  1. Encode the full local library and an outbound batch filtered by the
//     stored checkpoint (records whose lastplayed and installed_at are both
//     older than the checkpoint are left out).
//  2. Upload the outbound batch. A transport failure aborts the pass without
//     advancing the checkpoint.
//  3. Fetch remote entries changed since the checkpoint and merge them:
//     per matched record, playtime and lastplayed each take the remote value
//     only when it is strictly greater (max-wins per field, never regress);
//     unmatched entries become new not-installed records unless their slug
//     already exists locally.
//  4. Persist a new checkpoint from the local wall clock.
//
// Identity is the (slug, runner, platform, service) tuple. A tuple appearing
// twice in the local library is ambiguous and all remote entries carrying it
// are skipped for the whole pass.
//
// # Lifecycle
//
// At most one pass runs at a time; a second trigger observes the guard and
// returns immediately. The Notifier publishes EventSyncing at pass entry and
// EventSynced on every exit path; EventUpdated additionally fires when the
// pass changed local data. Missing credentials make the pass a silent no-op.
//
// The pass as a whole is not transactional: a crash mid-merge leaves the old
// checkpoint in place and the next pass re-applies the same window, which the
// max-wins merge absorbs without data loss.
package library
