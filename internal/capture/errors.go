package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a malformed target URL. Not retryable.
	ErrInvalidInput = errors.New("capture: invalid target url")
	// ErrProviderNotConfigured marks missing rendering credentials.
	ErrProviderNotConfigured = errors.New("capture: screenshot provider not configured")
	// ErrCaptureFetch marks a failed render download. Retryable.
	ErrCaptureFetch = errors.New("capture: render fetch failed")
	// ErrAssetUpload marks a failed re-host after a successful render. Retryable.
	ErrAssetUpload = errors.New("capture: asset upload failed")
)

// FetchError carries the upstream status (0 on transport failure).
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d", ErrCaptureFetch, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", ErrCaptureFetch, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrCaptureFetch }

// UploadError wraps the asset host error for the identifier being written.
type UploadError struct {
	PublicID string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrAssetUpload, e.PublicID, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrAssetUpload }
