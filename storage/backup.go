package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// RunDailyBackup copies srcDir into a timestamped folder under backupDir every
// day at hour:00 and prunes backups older than retention. It returns when ctx ends.
func RunDailyBackup(ctx context.Context, srcDir, backupDir string, retention time.Duration, hour int) {
	for {
		next := nextRun(time.Now(), hour)
		log.Info().Time("next_run", next).Msg("⏳ next image backup scheduled")

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}

		if dest, err := BackupOnce(srcDir, backupDir, time.Now()); err != nil {
			log.Error().Err(err).Msg("❌ image backup failed")
		} else {
			log.Info().Str("dest", dest).Msg("✅ images backed up")
		}
		CleanupOldBackups(backupDir, retention, time.Now())
	}
}

func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// BackupOnce copies srcDir to backupDir/<timestamp> and returns the destination.
func BackupOnce(srcDir, backupDir string, at time.Time) (string, error) {
	dest := filepath.Join(backupDir, at.Format("2006-01-02_15-04-05"))
	return dest, copyDir(srcDir, dest)
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// CleanupOldBackups removes backup folders whose mtime is older than retention.
func CleanupOldBackups(backupDir string, retention time.Duration, now time.Time) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		log.Error().Err(err).Msg("❌ read backup directory")
		return
	}
	cutoff := now.Add(-retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(backupDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("❌ remove old backup")
		} else {
			log.Info().Str("path", path).Msg("🗑️ removed old backup")
		}
	}
}
