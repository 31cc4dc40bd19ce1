package storage

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Signer presigns direct-to-bucket uploads against one resolved backend.
// Construction is cheap and performs no network I/O, so a fresh signer is
// built from the resolved Config on every issuance call. Signers hold no
// mutable state and are safe for concurrent use.
type S3Signer struct {
	presigner *s3.PresignClient
	cfg       Config
}

// New creates an S3Signer for the given backend configuration.
func New(cfg Config) (*S3Signer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.New(s3.Options{}, opts...)

	return &S3Signer{
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// PresignUpload issues a signed PUT URL for the upload described by params.
// The URL pins the content type and content length the client promised and
// expires after expiry (DefaultUploadExpiry when zero). Signing is not
// retried; any failure surfaces immediately.
func (s *S3Signer) PresignUpload(ctx context.Context, params UploadParams, expiry time.Duration) (*PresignedUpload, error) {
	if expiry <= 0 {
		expiry = DefaultUploadExpiry
	}

	key := UploadKey(params.Filename, time.Now())

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(params.ContentType),
		ContentLength: aws.Int64(params.Size),
	}

	result, err := s.presigner.PresignPutObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = expiry
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrPresignFailed)
	}

	return &PresignedUpload{
		URL:    result.URL,
		Method: http.MethodPut,
		Key:    key,
	}, nil
}
