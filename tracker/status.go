package tracker

import "time"

// SyncState describes where the store sits relative to the remote
// mirror. Purely observational; it never gates functionality.
type SyncState int

const (
	StateIdle SyncState = iota
	StateSyncing
	StateSynced
	StateError
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of sync health. LastSync is the zero
// time until the first successful remote operation.
type Status struct {
	State    SyncState
	LastSync time.Time
}
