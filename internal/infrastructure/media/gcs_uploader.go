package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/vidora/vidora/pkg/helpers"
)

// GCSUploader stores media objects in a Google Cloud Storage bucket and
// returns their public URLs.
type GCSUploader struct {
	Client *storage.Client
	Bucket string
}

func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket}
}

// Upload writes r under folder/ with a random object name derived from
// the original filename's extension.
func (g *GCSUploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))
	return helpers.UploadObject(ctx, g.Client, g.Bucket, objectPath, contentType, r)
}
