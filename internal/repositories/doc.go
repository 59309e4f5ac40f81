// Package repositories implements SQLite persistence for track metadata and room snapshots.
//
// Key Implementations:
//   - [TrackRepository] : track metadata cache keyed by track id, with age-based purging
//   - [CachedTrackService] : [services.TrackService] decorator that only fetches cache misses
//   - [RoomSnapshotRepository] : last known state of rooms a session had open
//
// Repositories take a *sql.DB opened with [shared.OpenDatabase], which applies the schema migrations.
package repositories
