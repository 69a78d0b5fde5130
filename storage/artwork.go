package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
)

// DefaultBucket is the bucket artwork is stored in unless configured otherwise.
const DefaultBucket = "artworks"

var allowedContentTypes = map[string]bool{
	"image/jpeg":             true,
	"image/jpg":              true,
	"image/png":              true,
	"image/webp":             true,
	"image/gif":              true,
	"image/svg+xml":          true,
	"application/pdf":        true,
	"application/postscript": true,
}

// IsAllowedContentType reports whether artwork of this MIME type may be uploaded.
func IsAllowedContentType(contentType string) bool {
	return allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// AllowedContentTypes lists the accepted MIME types, sorted.
func AllowedContentTypes() []string {
	types := make([]string, 0, len(allowedContentTypes))
	for t := range allowedContentTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SanitizeFilename strips directory components and replaces characters that
// are awkward in object keys and URLs.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "artwork"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ObjectKey builds "{ownerId}/{unixMillis}_{filename}".
func ObjectKey(ownerID uuid.UUID, filename string, at time.Time) string {
	return fmt.Sprintf("%s/%d_%s", ownerID, at.UnixMilli(), SanitizeFilename(filename))
}

// OwnerPrefix is the key prefix every object of ownerID lives under.
func OwnerPrefix(ownerID uuid.UUID) string {
	return ownerID.String() + "/"
}

// PublicBaseURL derives where objects of bucket are publicly served from.
func PublicBaseURL(bucket, region, endpoint string) string {
	switch {
	case endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(endpoint, "/"), bucket)
	case region != "":
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
}

// Upload is a presigned upload slot.
type Upload struct {
	Key       string
	UploadURL string
	Headers   map[string]string
	PublicURL string
	Expiry    time.Duration
}

// ArtworkStore issues upload slots and resolves public references for artwork.
type ArtworkStore interface {
	PresignUpload(ctx context.Context, ownerID uuid.UUID, filename, contentType string, at time.Time) (*Upload, error)
	// KeyForOwnerURL returns the object key behind a public URL if, and only if,
	// the URL points into ownerID's prefix.
	KeyForOwnerURL(ownerID uuid.UUID, publicURL string) (string, bool)
	Exists(ctx context.Context, key string) (bool, error)
}

// S3ArtworkStore implements ArtworkStore on S3.
type S3ArtworkStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	expiry        time.Duration
}

func NewS3ArtworkStore(client *s3.Client, bucket, publicBaseURL string, expiry time.Duration) *S3ArtworkStore {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3ArtworkStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		expiry:        expiry,
	}
}

func (s *S3ArtworkStore) PresignUpload(ctx context.Context, ownerID uuid.UUID, filename, contentType string, at time.Time) (*Upload, error) {
	key := ObjectKey(ownerID, filename, at)
	url, headers, err := aws_pkg.GeneratePresignedPutURL(ctx, s.client, s.bucket, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}
	return &Upload{
		Key:       key,
		UploadURL: url,
		Headers:   headers,
		PublicURL: s.PublicURL(key),
		Expiry:    s.expiry,
	}, nil
}

func (s *S3ArtworkStore) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

func (s *S3ArtworkStore) KeyForOwnerURL(ownerID uuid.UUID, publicURL string) (string, bool) {
	return keyForOwnerURL(s.publicBaseURL, ownerID, publicURL)
}

func (s *S3ArtworkStore) Exists(ctx context.Context, key string) (bool, error) {
	return aws_pkg.ObjectExists(ctx, s.client, s.bucket, key)
}

func keyForOwnerURL(base string, ownerID uuid.UUID, publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, base+"/")
	if !ok || strings.Contains(key, "..") {
		return "", false
	}
	rest, ok := strings.CutPrefix(key, OwnerPrefix(ownerID))
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return key, true
}
