package model

import "time"

// Keyword is one phrase pair in the working collection.
type Keyword struct {
	ID         string
	RemoteID   *int64 // set once the remote store has acknowledged the row
	NativeText string
	TargetText string
	Situation  Situation
	CreatedAt  time.Time
}

// HasRemoteID reports whether the keyword is known to exist remotely.
func (k Keyword) HasRemoteID() bool {
	return k.RemoteID != nil
}

// RemoteKeyword is a row as returned by the remote store.
type RemoteKeyword struct {
	ID         int64
	NativeText string
	TargetText string
	Situation  string
	UserEmail  string
	CreatedAt  time.Time
}
