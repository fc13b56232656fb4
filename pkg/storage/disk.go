// Package storage keeps listing photos behind a disk abstraction.
//
// Two drivers ship:
//   - "local" — files under STORAGE_LOCAL_ROOT, served via the /storage/* route
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Photos are keyed "listings/farmer_<id>/<uuid>.<ext>" so one farmer's
// uploads can be wiped with a single DeletePrefix.
//
//	storage.Connect()
//	storage.PutStream("listings/farmer_7/a1b2.jpg", file)
//	url := storage.URL("listings/farmer_7/a1b2.jpg")
//
//	storage.Use("s3").Put("exports/listings.csv", data)
package storage

import "io"

// Disk is what a photo store must do. Drivers translate these onto the
// local filesystem or an object store.
type Disk interface {
	// Put writes content under key, creating parents as needed.
	Put(key string, content []byte) error

	// PutStream writes everything from r under key.
	PutStream(key string, r io.Reader) error

	// Get returns the full content under key.
	Get(key string) ([]byte, error)

	// GetStream opens the content under key. Caller closes.
	GetStream(key string) (io.ReadCloser, error)

	// Exists reports whether key holds content.
	Exists(key string) bool

	// Size returns the byte size of the content under key.
	Size(key string) (int64, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// DeletePrefix removes every key under prefix.
	DeletePrefix(prefix string) error

	// URL returns the public URL serving key.
	URL(key string) string
}
