package ttsupdate

import "errors"

var (
	// ErrWrongProjectRoot is returned before any network activity when the
	// project root lacks one of the expected entries.
	ErrWrongProjectRoot = errors.New("please make sure that you are running this program in the correct directory")
	// ErrCatalogMissing means mini_courses.json has not been built yet.
	ErrCatalogMissing = errors.New("minimized course index not found, refresh the catalog first")
	// ErrMalformedCourse is returned for catalog entries without a numeric
	// course_id or a string acronym.
	ErrMalformedCourse = errors.New("malformed course entry")
	// ErrBatchFailed is returned by a batch that continued past failing courses.
	ErrBatchFailed = errors.New("one or more courses failed")
)
