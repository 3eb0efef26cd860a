package store

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/0xfern/chatsnipe/internal/model"
)

const (
	// DefaultPath is where the ledger lives when no path is configured.
	DefaultPath = "data/addresses.txt"
	// DefaultBackupDir receives timestamped ledger snapshots.
	DefaultBackupDir = "data/backups"

	defaultRecentLimit = 10
)

// Config controls where the ledger and its backups are written.
type Config struct {
	Path      string
	BackupDir string
}

// DefaultConfig returns a store config with standard paths.
func DefaultConfig() Config {
	return Config{
		Path:      DefaultPath,
		BackupDir: DefaultBackupDir,
	}
}

// Store is the durable address ledger. All reads and writes funnel through
// a single mutex so a rewrite is never interleaved with a read.
type Store struct {
	mu        sync.Mutex
	path      string
	backupDir string
	logger    *slog.Logger
}

// New creates the ledger file (and its directory) if missing and returns a
// ready store.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = DefaultBackupDir
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close store file: %w", err)
	}

	return &Store{
		path:      cfg.Path,
		backupDir: cfg.BackupDir,
		logger:    logger.With("component", "store"),
	}, nil
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Append merges one record into the ledger. If the address already exists
// the stored timestamp is replaced only when the incoming one is newer;
// otherwise the record is appended. The file is rewritten in ascending
// timestamp order either way.
func (s *Store) Append(rec model.AddressRecord) error {
	if rec.Address == "" {
		return model.ErrInvalidAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAllLocked()
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].Address != rec.Address {
			continue
		}
		found = true
		if rec.Timestamp.After(records[i].Timestamp) {
			records[i].Timestamp = rec.Timestamp
			s.logger.Debug("updated address timestamp",
				"address", rec.Address,
				"timestamp", rec.Timestamp)
		} else {
			s.logger.Debug("ignored stale append",
				"address", rec.Address,
				"timestamp", rec.Timestamp)
		}
		break
	}
	if !found {
		records = append(records, rec)
		s.logger.Debug("appended address",
			"address", rec.Address,
			"timestamp", rec.Timestamp)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	return s.writeAllLocked(records)
}

// ReadLatest returns the record with the newest timestamp, or ok=false when
// the ledger is empty.
func (s *Store) ReadLatest() (model.AddressRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAllLocked()
	if err != nil {
		return model.AddressRecord{}, false, err
	}
	if len(records) == 0 {
		return model.AddressRecord{}, false, nil
	}

	latest := records[0]
	for _, rec := range records[1:] {
		if rec.Timestamp.After(latest.Timestamp) {
			latest = rec
		}
	}
	return latest, true, nil
}

// ReadAll returns every record in file order (ascending timestamp).
func (s *Store) ReadAll() ([]model.AddressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAllLocked()
}

// Recent returns up to limit records, newest first. A non-positive limit
// means 10.
func (s *Store) Recent(limit int) ([]model.AddressRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAllLocked()
	if err != nil {
		return nil, err
	}

	out := make([]model.AddressRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// Backup copies the current ledger into the backup directory under a
// timestamped name. Failures are logged, never returned: a missed backup
// must not take the pipeline down.
func (s *Store) Backup(now time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Error("backup read failed", "error", err)
		return "", false
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		s.logger.Error("backup directory failed", "error", err)
		return "", false
	}

	name := fmt.Sprintf("addresses_%s.txt", now.UTC().Format("20060102_150405"))
	dest := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		s.logger.Error("backup write failed", "path", dest, "error", err)
		return "", false
	}

	s.logger.Info("ledger backed up", "path", dest, "bytes", len(data))
	return dest, true
}

// Clear truncates the ledger to zero records.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.logger.Info("ledger cleared", "path", s.path)
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAllLocked()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// readAllLocked loads the ledger, skipping lines that fail to parse.
// Caller must hold s.mu.
func (s *Store) readAllLocked() ([]model.AddressRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	var records []model.AddressRecord
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			s.logger.Debug("skipping malformed line",
				"line", lineNo,
				"error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	return records, nil
}

// writeAllLocked rewrites the ledger atomically via a temp file and rename.
// Caller must hold s.mu.
func (s *Store) writeAllLocked(records []model.AddressRecord) error {
	var b []byte
	for _, rec := range records {
		b = append(b, formatLine(rec)...)
		b = append(b, '\n')
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
