package services

import "fmt"

// SyncError identifies which app a fetch-and-store failure belongs to. The
// queue uses it for retry accounting; the CLI layer renders it.
type SyncError struct {
	Appid uint
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed for appid %d: %v", e.Appid, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
