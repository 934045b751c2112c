package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedFile is returned for uploads that are not 3D model files.
var ErrUnsupportedFile = errors.New("unsupported file type")

var modelContentTypes = map[string]string{
	".stl": "model/stl",
	".obj": "model/obj",
	".3mf": "model/3mf",
}

// FileStore persists uploaded model files and returns a URL they can be fetched from.
type FileStore interface {
	Upload(ctx context.Context, owner, filename string, r io.Reader) (string, error)
}

// ContentType returns the MIME type for a supported model file, or ErrUnsupportedFile.
func ContentType(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	ct, ok := modelContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("%q: %w", filename, ErrUnsupportedFile)
	}
	return ct, nil
}

// objectKey builds a collision-free storage path that keeps the original extension.
func objectKey(owner, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("models/%s/%s%s", ownerPrefix(owner), uuid.NewString(), ext)
}

// ownerPrefix maps an email to a stable, path-safe directory name.
func ownerPrefix(owner string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(owner))).String()
}
