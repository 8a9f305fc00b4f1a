package cache

import "time"

// RebuildInterval is how old a snapshot must be before a scheduled rebuild.
const RebuildInterval = 24 * time.Hour

// IsStale reports whether a remote document modified at remoteModified is
// newer than a snapshot written at snapshotWritten. Equal times are fresh.
func IsStale(remoteModified, snapshotWritten time.Time) bool {
	return remoteModified.After(snapshotWritten)
}

// ShouldRebuild reports whether at least one whole day has passed since lastWrite.
func ShouldRebuild(now, lastWrite time.Time) bool {
	return now.Sub(lastWrite) >= RebuildInterval
}
