package errors

// Package errors provides sentinel errors for content loading operations.
// These enable consistent classification of build failures back to the CLI.

import "errors"

var (
	// ErrMalformedMetadata indicates a document's front matter is missing a
	// required field or carries an unparseable value. Always fatal: a broken
	// document must not silently disappear from the site.
	ErrMalformedMetadata = errors.New("malformed front matter")

	// ErrContentDirWalkFailed indicates filesystem traversal of the content directory failed.
	ErrContentDirWalkFailed = errors.New("content directory walk failed")

	// ErrContentDirNotFound indicates the configured content directory does not exist.
	ErrContentDirNotFound = errors.New("content directory not found")

	// ErrFileReadFailed indicates reading a discovered content file failed.
	ErrFileReadFailed = errors.New("content file read failed")

	// ErrMissingSeriesReference indicates a document references a series no
	// other document establishes. Non-fatal: the document renders without
	// series navigation.
	ErrMissingSeriesReference = errors.New("missing series reference")
)
