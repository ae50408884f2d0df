package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

const firebaseChunkSize = 256 * 1024

// FirebaseStore writes images to a Firebase Storage bucket and returns
// token-based download URLs.
type FirebaseStore struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewFirebaseStore opens the named bucket, or the app's default bucket when name is empty.
func NewFirebaseStore(ctx context.Context, app *firebase.App, name string) (*FirebaseStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}
	var bucket *gcs.BucketHandle
	if name == "" {
		bucket, err = client.DefaultBucket()
	} else {
		bucket, err = client.Bucket(name)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase bucket: %w", err)
	}
	attrsName := name
	if attrsName == "" {
		attrsName = bucket.BucketName()
	}
	return &FirebaseStore{bucket: bucket, name: attrsName}, nil
}

func (s *FirebaseStore) Save(ctx context.Context, name, contentType string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	token := uuid.NewString()

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ChunkSize = firebaseChunkSize
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if progress != nil {
		w.ProgressFunc = func(written int64) { progress(written, size) }
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", name, err)
	}
	return s.downloadURL(name, token), nil
}

func (s *FirebaseStore) Delete(ctx context.Context, rawURL string) error {
	name, err := s.objectFromURL(rawURL)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(name).Delete(ctx); err != nil && err != gcs.ErrObjectNotExist {
		return err
	}
	return nil
}

func (s *FirebaseStore) downloadURL(name, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.name, url.PathEscape(name), token)
}

func (s *FirebaseStore) objectFromURL(rawURL string) (string, error) {
	prefix := "https://firebasestorage.googleapis.com/v0/b/" + s.name + "/o/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", ErrNotOwned
	}
	escaped := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexByte(escaped, '?'); i >= 0 {
		escaped = escaped[:i]
	}
	return url.PathUnescape(escaped)
}
