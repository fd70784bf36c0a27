// Package upload stores multipart file attachments (appointment photos,
// product images) on local disk. The core never inspects file bytes; it only
// persists them and records the stored filename on the owning entity.
package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExt lists the image extensions accepted for uploads.
var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// StoredName returns a collision-free filename for an upload, preserving the
// original extension (lower-cased). Unknown extensions are rejected with
// false.
func StoredName(original string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExt[ext] {
		return "", false
	}
	return uuid.NewString() + ext, true
}

// Save writes the multipart file into dir under a generated name and returns
// that name. The directory is created on first use.
func Save(dir string, fh *multipart.FileHeader) (string, error) {
	name, ok := StoredName(fh.Filename)
	if !ok {
		return "", ErrUnsupportedType
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}
