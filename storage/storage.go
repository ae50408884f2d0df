package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ProgressFunc receives the number of bytes written so far and the total size.
type ProgressFunc func(written, total int64)

// ImageStore persists image bytes and hands back a public URL.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64, progress ProgressFunc) (string, error)
	Delete(ctx context.Context, url string) error
}

var ErrNotOwned = errors.New("url does not belong to this store")

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// ObjectName builds a collision-free object name under folder, keeping a
// sanitised form of the original base name for readability.
func ObjectName(folder, original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "image"
	}
	if len(base) > 40 {
		base = base[:40]
	}
	return folder + "/" + uuid.NewString()[:8] + "_" + base + ext
}

type progressReader struct {
	r        io.Reader
	written  int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		if p.progress != nil {
			p.progress(p.written, p.total)
		}
	}
	return n, err
}
