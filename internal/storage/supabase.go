package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	supastorage "github.com/supabase-community/storage-go"
)

// Supabase stores files in a public Supabase Storage bucket.
type Supabase struct {
	client  *supastorage.Client
	bucket  string
	baseURL string
}

func NewSupabase(supabaseURL, serviceRoleKey, bucket string) *Supabase {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &Supabase{
		client:  supastorage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

func (s *Supabase) Upload(ctx context.Context, owner, filename string, r io.Reader) (string, error) {
	contentType, err := ContentType(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(owner, filename)
	upsert := false
	if _, err := s.client.UploadFile(s.bucket, key, r, supastorage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload to supabase storage: %w", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the public object URL for a key in the bucket.
func (s *Supabase) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
