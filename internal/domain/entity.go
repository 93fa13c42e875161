package domain

import "time"

// Entity is the capability shared by every persisted aggregate: a
// storage-assigned identifier plus creation/modification timestamps.
type Entity interface {
	GetID() int64
	GetCreatedAt() time.Time
	GetUpdatedAt() *time.Time
}
