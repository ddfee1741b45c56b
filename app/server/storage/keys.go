package storage

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-site-console/app/server/constants"
)

// RefKind says which representation a stored asset reference uses. Rows hold
// either a full retrieval URL or a bare object key depending on which write
// path produced them, every reader has to accept both.
type RefKind int

const (
	RefNone RefKind = iota // empty or unrecognized, no key available
	RefURL                 // full gateway URL, public or signed form
	RefKey                 // bare object key
)

type AssetRef struct {
	Kind RefKind
	Key  string // object key inside the bucket, "" when Kind is RefNone
}

// ParseAssetRef normalizes a stored asset reference. URLs are matched against
// the gateway's public and signed path markers for the bucket; anything that
// looks like neither (but is not a URL at all) passes through as a bare key.
func ParseAssetRef(raw string, bucket string) AssetRef {
	if raw == "" {
		return AssetRef{Kind: RefNone}
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return AssetRef{Kind: RefKey, Key: raw}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return AssetRef{Kind: RefNone}
	}

	for _, marker := range []string{
		constants.StoragePublicObjectPath + bucket + "/",
		constants.StorageSignObjectPath + bucket + "/",
	} {
		if idx := strings.Index(u.Path, marker); idx != -1 {
			key := u.Path[idx+len(marker):]
			if unescaped, err := url.PathUnescape(key); err == nil {
				key = unescaped
			}
			if key == "" {
				return AssetRef{Kind: RefNone}
			}
			return AssetRef{Kind: RefURL, Key: key}
		}
	}

	return AssetRef{Kind: RefNone}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// NewObjectKey builds a fresh collision-resistant key for an upload, keeping
// the original extension and folder-per-asset-family layout.
func NewObjectKey(folder string, filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	ext = unsafeNameChars.ReplaceAllString(ext, "_")

	return fmt.Sprintf("%s/%d_%s%s", folder, time.Now().UnixMilli(), uuid.NewString(), ext)
}
