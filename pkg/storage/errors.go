package storage

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Sentinel errors for storage operations.
var (
	// ErrInvalidConfig indicates a resolved backend is missing required
	// connection parameters.
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrAccessDenied indicates the backend rejected the credentials.
	ErrAccessDenied = errors.New("storage: access denied")

	// ErrPresignFailed indicates the provider's signing step failed.
	// Callers may retry at their discretion; this package never does.
	ErrPresignFailed = errors.New("storage: presign failed")
)

// wrapS3Error maps provider errors onto sentinel errors. Uses %v (not %w)
// for the original error so callers match with errors.Is on the
// sentinels, not errors.As on AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
