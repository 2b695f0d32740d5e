package domain

import "time"

// StoredFile is the metadata row for an uploaded object. The bytes live
// in object storage under ObjectKey; Postgres only tracks ownership.
type StoredFile struct {
	ID          string
	OwnerID     string
	ObjectKey   string
	FileName    string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}
