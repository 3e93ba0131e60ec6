package analysis

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse       = errors.New("model returned an empty response")
	ErrPersistenceDisabled = errors.New("result persistence is disabled")
)

// UploadTooLargeError is returned before any processing when an upload
// exceeds the configured cap.
type UploadTooLargeError struct {
	Limit int64
}

func (e *UploadTooLargeError) Error() string {
	return fmt.Sprintf("file too large: limit is %d bytes", e.Limit)
}

// AIServiceError wraps any failure to obtain text from the vision model.
type AIServiceError struct {
	Err error
}

func (e *AIServiceError) Error() string {
	return "ai service failure: " + e.Err.Error()
}

func (e *AIServiceError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the model call ran out of time.
func (e *AIServiceError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
