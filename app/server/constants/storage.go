package constants

import "time"

// Storage gateway path segments. The gateway exposes the S3 write API under
// /s3 and serves objects back over plain HTTP under /object/..., with an
// image-resizing CDN mounted at /render/image/....
const (
	StorageS3PathPrefix     = "/s3"
	StoragePublicObjectPath = "/object/public/" // + bucket + "/" + key
	StorageSignObjectPath   = "/object/sign/"   // + bucket + "/" + key, presigned
	StorageRenderPublicPath = "/render/image/public/"
	StorageRenderSignPath   = "/render/image/sign/"
)

// Object key folders inside the bucket, one per asset family.
const (
	KeyFolderHistories  = "histories"
	KeyFolderPrincipals = "principals"
)

const (
	SignedURLTTL = 1 * time.Hour // read TTL for signed asset URLs
)

// Cleanup queue (Redis list of JSON deletion intents).
const (
	CleanupQueueKey    = "school:assets:cleanup"
	CleanupMaxAttempts = 5
	CleanupPopTimeout  = 5 * time.Second
)
