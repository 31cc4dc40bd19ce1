package storage

import "time"

// Config holds S3-compatible connection parameters for one storage backend.
// A Config is resolved per request (explicit reference, tenant default, or
// deployment fallback) and is never cached between calls.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"STORAGE_BUCKET"`

	// Region is the bucket region (required).
	Region string `env:"STORAGE_REGION"`

	// AccessKeyID is the access key id for the backend (required).
	AccessKeyID string `env:"STORAGE_ACCESS_KEY_ID"`

	// SecretAccessKey is the secret access key for the backend (required).
	SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY"`

	// Endpoint is a custom S3 endpoint URL (optional, for MinIO, COS and
	// other S3-compatible services).
	Endpoint string `env:"STORAGE_ENDPOINT"`
}

// Complete reports whether every required connection parameter is present.
// The deployment-level fallback config may be entirely absent; callers use
// Complete to distinguish "not configured" from a resolved backend.
func (c Config) Complete() bool {
	return c.Bucket != "" && c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// validate checks that required configuration fields are set.
func (c Config) validate() error {
	if !c.Complete() {
		return ErrInvalidConfig
	}
	return nil
}

// UploadParams describes a single upload a client intends to perform.
type UploadParams struct {
	// Filename is the client-supplied file name. Spaces are replaced with
	// underscores when deriving the object key; no other normalization is
	// applied, so same-day uploads of identically named files collide.
	Filename string

	// ContentType is the MIME type the client will send with its PUT.
	ContentType string

	// Size is the exact content length in bytes the client will send.
	Size int64
}

// PresignedUpload is a time-boxed, provider-signed permission to PUT one
// object directly to the storage backend.
type PresignedUpload struct {
	// URL is the signed upload URL.
	URL string

	// Method is always http.MethodPut.
	Method string

	// Key is the derived object key the URL points at.
	Key string
}

// DefaultUploadExpiry is how long a presigned upload URL stays valid.
// Expiry is enforced entirely by the provider's signature; nothing is
// tracked on this side.
const DefaultUploadExpiry = 60 * time.Second
