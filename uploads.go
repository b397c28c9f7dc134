package birdblog

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

var errBadFilename = errors.New("invalid upload filename")

// sanitizeFilename reduces a client-supplied filename to a safe base name:
// path components are stripped, spaces become underscores, and anything
// outside [A-Za-z0-9._-] is dropped. Returns "" when nothing usable remains.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// uniqueName appends a UTC microsecond timestamp before the extension so
// bursts of identically named uploads never collide on disk.
func uniqueName(filename string, now time.Time) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	now = now.UTC()
	stamp := now.Format("20060102150405") + fmt.Sprintf("%06d", now.Nanosecond()/1000)
	return fmt.Sprintf("%s_%s%s", base, stamp, ext)
}

// saveUpload writes one submitted image into the upload directory and returns
// the stored filename. The file content is copied byte-for-byte; nothing
// inspects or re-encodes it.
func (a *App) saveUpload(file *multipart.FileHeader) (string, error) {
	name := sanitizeFilename(file.Filename)
	if name == "" {
		return "", errBadFilename
	}
	name = uniqueName(name, time.Now())

	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(a.Config.UploadDir, name))
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// removeUpload deletes a stored image, tolerating files that are already
// gone. Failures are logged, never fatal.
func (a *App) removeUpload(c echo.Context, filename string) {
	if filename == "" {
		return
	}
	p := filepath.Join(a.Config.UploadDir, filepath.Base(filename))
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		c.Logger().Warnf("remove image %s: %v", filename, err)
	}
}
