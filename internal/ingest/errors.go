package ingest

import (
	"errors"
	"fmt"
)

// ErrManifestUnavailable is returned when the list of posts cannot be read.
var ErrManifestUnavailable = errors.New("failed to load post manifest")

// PostUnavailableError is returned when any single post fails to load. One
// failure fails the whole ingestion.
type PostUnavailableError struct {
	Filename string
	Err      error
}

func (e *PostUnavailableError) Error() string {
	return fmt.Sprintf("failed to load post: %s: %v", e.Filename, e.Err)
}

func (e *PostUnavailableError) Unwrap() error { return e.Err }
