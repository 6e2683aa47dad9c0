package draft

import "errors"

// Sentinel errors for draft operations.
var (
	// ErrRemoteSave wraps a failed backend write. The local copy was still
	// attempted; see ErrLocalWrite.
	ErrRemoteSave = errors.New("draft: remote save failed")

	// ErrLocalWrite wraps a failed write of the local copy.
	ErrLocalWrite = errors.New("draft: local write failed")

	// ErrLocalRead wraps a failed read of the local copy.
	ErrLocalRead = errors.New("draft: local read failed")

	// ErrNotFound may be returned by Remote implementations when no draft
	// exists. 404 responses from package remote are recognised as well.
	ErrNotFound = errors.New("draft: not found")
)
