// Package storage issues presigned upload URLs for S3-compatible object
// storage backends.
//
// Unlike a typical storage client, this package never moves bytes: clients
// PUT directly to the provider with a signed URL, and the service only
// records metadata after the fact. Signers are constructed per call from a
// resolved Config, which keeps issuance stateless and safe under
// concurrent requests with differing tenant backends.
//
//	signer, err := storage.New(cfg)
//	if err != nil { ... }
//	up, err := signer.PresignUpload(ctx, storage.UploadParams{
//		Filename:    "report.pdf",
//		ContentType: "application/pdf",
//		Size:        1024,
//	}, storage.DefaultUploadExpiry)
package storage
