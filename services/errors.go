package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned when a document's MIME type has no parser.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrDocumentNotFound is returned when a document does not exist or does
	// not belong to the requesting user.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrPodcastNotFound is returned when a podcast does not exist or does
	// not belong to the requesting user.
	ErrPodcastNotFound = errors.New("podcast not found")

	// ErrNoContent is returned when none of the requested documents is in
	// the "processed" state, so there is no text to generate a script from.
	ErrNoContent = errors.New("no processed documents found")

	// ErrEmptyCompletion is returned when the completion service responds
	// without any usable text.
	ErrEmptyCompletion = errors.New("completion service returned no text")

	// ErrNoTranscript is returned when audio synthesis is requested for a
	// podcast that has no generated transcript yet.
	ErrNoTranscript = errors.New("podcast has no transcript")
)

// ParseError wraps any parser-library failure with the filename it occurred
// on. The parser never returns partial text alongside it.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse file %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DownloadError wraps a blob-store read failure.
type DownloadError struct {
	Path string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download file %s: %v", e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// CleanedUpError marks a script-generation failure whose partial side
// effects (audio object, document links, podcast row) were already removed,
// so a caller-level failure handler must not clean up again.
type CleanedUpError struct {
	Err error
}

func (e *CleanedUpError) Error() string { return e.Err.Error() }

func (e *CleanedUpError) Unwrap() error { return e.Err }
