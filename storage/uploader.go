package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

// Uploader compresses images and pushes them to an ImageStore, retrying
// failed attempts with an exponential pause.
type Uploader struct {
	Store     ImageStore
	MaxSide   int
	Quality   int
	Attempts  int
	BaseDelay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewUploader(store ImageStore, maxSide, quality, attempts int, baseDelay time.Duration) *Uploader {
	return &Uploader{
		Store:     store,
		MaxSide:   maxSide,
		Quality:   quality,
		Attempts:  attempts,
		BaseDelay: baseDelay,
		sleep:     sleepCtx,
	}
}

// UploadImage compresses src and stores it under folder. It returns the public URL.
func (u *Uploader) UploadImage(ctx context.Context, folder, filename string, src io.Reader) (string, error) {
	data, err := Compress(src, u.MaxSide, u.Quality)
	if err != nil {
		return "", err
	}
	name := ObjectName(folder, filename, ".jpg")
	size := int64(len(data))

	var lastErr error
	for i := 0; i < u.Attempts; i++ {
		if i > 0 {
			delay := u.BaseDelay * time.Duration(1<<(i-1))
			log.Warn().Err(lastErr).Str("object", name).Int("attempt", i+1).Dur("delay", delay).Msg("retrying image upload")
			if err := u.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		progress := quarterProgress(func(pct int) {
			log.Debug().Str("object", name).Int("percent", pct).Msg("image upload progress")
		})

		url, err := u.Store.Save(ctx, name, "image/jpeg", bytes.NewReader(data), size, progress)
		if err == nil {
			return url, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("upload %s failed after %d attempts: %w", name, u.Attempts, lastErr)
}

// quarterProgress reports the first progress update seen in each quarter of
// an upload.
func quarterProgress(report func(pct int)) ProgressFunc {
	lastBucket := -1
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		pct := int(written * 100 / total)
		if bucket := pct / 25; bucket != lastBucket {
			lastBucket = bucket
			report(pct)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Delete removes an image previously returned by UploadImage.
func (u *Uploader) Delete(ctx context.Context, url string) error {
	return u.Store.Delete(ctx, url)
}
