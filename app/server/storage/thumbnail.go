package storage

import (
	"fmt"
	"strings"

	"school-site-console/app/server/constants"
)

// Default render parameters for admin previews.
const (
	ThumbnailWidth   = 800
	ThumbnailQuality = 80
)

// ToThumbnailURL rewrites an asset retrieval URL to the gateway's on-the-fly
// resize variant. Pure string transform: URLs that are neither the public nor
// the signed object form (local previews, bare keys, garbage) are returned
// unchanged, and an already rewritten URL is returned as is so repeated
// application never stacks query parameters. Never fails.
func ToThumbnailURL(raw string, width int, quality int) string {
	if raw == "" {
		return raw
	}

	// Already the render variant
	if strings.Contains(raw, constants.StorageRenderPublicPath) ||
		strings.Contains(raw, constants.StorageRenderSignPath) {
		return raw
	}

	var rewritten string
	switch {
	case strings.Contains(raw, constants.StoragePublicObjectPath):
		rewritten = strings.Replace(raw, constants.StoragePublicObjectPath, constants.StorageRenderPublicPath, 1)
	case strings.Contains(raw, constants.StorageSignObjectPath):
		rewritten = strings.Replace(raw, constants.StorageSignObjectPath, constants.StorageRenderSignPath, 1)
	default:
		return raw
	}

	sep := "?"
	if strings.Contains(rewritten, "?") {
		sep = "&"
	}

	return rewritten + sep + fmt.Sprintf("width=%d&quality=%d", width, quality)
}
