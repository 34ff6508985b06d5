// Package imagestore archives uploaded leaf photos in Supabase storage.
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

// Archiver stores one image and returns its object path inside the bucket.
type Archiver interface {
	Archive(ctx context.Context, crop, mimeType string, data []byte) (string, error)
}

type supabaseArchiver struct {
	client *storage_go.Client
	bucket string
}

// NewSupabase expects the project URL; the storage API path is appended.
func NewSupabase(projectURL, key, bucket string) Archiver {
	base := strings.TrimRight(projectURL, "/")
	if !strings.HasSuffix(base, "/storage/v1") {
		base += "/storage/v1"
	}
	return &supabaseArchiver{client: storage_go.NewClient(base, key, nil), bucket: bucket}
}

func (a *supabaseArchiver) Archive(ctx context.Context, crop, mimeType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := ObjectPath(crop, mimeType)
	upsert := false
	if _, err := a.client.UploadFile(a.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &mimeType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return path, nil
}

// ObjectPath names a new object as <crop>/<uuid><ext>.
func ObjectPath(crop, mimeType string) string {
	crop = strings.ToLower(strings.TrimSpace(crop))
	if crop == "" {
		crop = "unknown"
	}
	return crop + "/" + uuid.NewString() + extFor(mimeType)
}

func extFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	case "image/bmp":
		return ".bmp"
	}
	return ""
}
