package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupService copies the CSV backing files into timestamped
// snapshot directories on a daily schedule.
type BackupService struct {
	store    *Store
	dir      string
	keepDays int
	logger   *zerolog.Logger
}

func NewBackupService(st *Store, dir string, keepDays int, logger *zerolog.Logger) *BackupService {
	if keepDays <= 0 {
		keepDays = 30
	}
	return &BackupService{store: st, dir: dir, keepDays: keepDays, logger: logger}
}

func (s *BackupService) Start(ctx context.Context) {
	if s.dir == "" {
		s.logger.Info().Msg("backups disabled")
		return
	}

	s.logger.Info().Str("dir", s.dir).Msg("backup service started")

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup snapshots every backing file under a timestamped
// directory. Full rewrites are atomic renames and cannot tear, but
// ledger appends land outside the store lock, so a snapshot is
// best-effort like the rest of the durability model.
func (s *BackupService) PerformBackup() error {
	stamp := time.Now().Format("20060102_150405")
	target := filepath.Join(s.dir, "backup_"+stamp)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	for _, name := range []string{
		FileTables, FileReservations, FileOccupancy, FileStocks,
		FileMenus, FileRecords, FileSoups, FileMains, FileSalads, FileDrinks,
	} {
		if err := copyFile(s.store.Path(name), filepath.Join(target, name)); err != nil {
			return fmt.Errorf("backup %s: %w", name, err)
		}
	}

	s.logger.Info().Str("path", target).Msg("data backup written")
	return nil
}

// CleanupOldBackups removes snapshot directories older than keepDays.
func (s *BackupService) CleanupOldBackups() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn().Err(err).Msg("backup cleanup: read dir failed")
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.keepDays)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "backup_") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		stamp, err := time.ParseInLocation("20060102_150405", strings.TrimPrefix(name, "backup_"), time.Local)
		if err != nil || !stamp.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, name)); err != nil {
			s.logger.Warn().Err(err).Str("backup", name).Msg("backup cleanup failed")
			continue
		}
		s.logger.Info().Str("backup", name).Msg("old backup removed")
	}
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}
