package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/CodeWizard18/AgriConnect/internal/config"
)

// saveUploadedImage stores a multipart image file under the upload dir with
// a random filename and returns the public path it will be served from. A
// missing file field is not an error; the empty path is returned instead.
func saveUploadedImage(r *http.Request, field string, cfg *config.Config) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", fmt.Errorf("read uploaded file: %w", err)
	}
	defer file.Close()

	if header.Size > cfg.Uploads.MaxBytes {
		return "", fmt.Errorf("file too large (max %d bytes)", cfg.Uploads.MaxBytes)
	}
	if contentType := header.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("only image files are allowed")
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(cfg.Uploads.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return "/uploads/" + name, nil
}
