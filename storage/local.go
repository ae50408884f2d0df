package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images under Dir and serves them from PublicBaseURL/uploads.
type LocalStore struct {
	Dir           string
	PublicBaseURL string
}

const localPublicPath = "/uploads"

func NewLocalStore(dir, publicBaseURL string) *LocalStore {
	return &LocalStore{Dir: dir, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *LocalStore) Save(ctx context.Context, name, _ string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	dest := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, &progressReader{r: r, total: size, progress: progress}); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s/%s", s.PublicBaseURL, localPublicPath, name), nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	prefix := s.PublicBaseURL + localPublicPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return ErrNotOwned
	}
	rel := strings.TrimPrefix(url, prefix)
	if strings.Contains(rel, "..") {
		return ErrNotOwned
	}
	if err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
