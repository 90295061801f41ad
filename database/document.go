// nationportal/database/document.go
package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"nationportal/models"
	"nationportal/utils"
)

// ErrNothingToBackup is returned by Backup when no document has been persisted yet.
var ErrNothingToBackup = errors.New("no persisted document to back up")

// DocumentService loads and saves the nation document as one JSON file.
//
// Saves replace the whole file atomically and are serialized in-process by a
// mutex and across processes by an advisory lock on a sibling ".lock" file.
// Sessions still race at the read-modify-write level: the last save wins.
type DocumentService struct {
	path      string
	backupDir string
	logger    *slog.Logger
	mu        sync.Mutex
}

// InitDocumentStore prepares the directories for the document and its backups.
func InitDocumentStore(path, backupDir string, logger *slog.Logger) (*DocumentService, error) {
	if path == "" {
		return nil, fmt.Errorf("document path is not configured")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create document directory %s: %w", dir, err)
		}
	}
	ds := &DocumentService{path: path, backupDir: backupDir, logger: logger}
	if _, err := os.Stat(path); err == nil {
		logger.Info("Nation document found", "path", path)
	} else {
		logger.Info("No nation document persisted yet, bootstrap default will be served", "path", path)
	}
	return ds, nil
}

// Path returns the location of the persisted document.
func (ds *DocumentService) Path() string { return ds.path }

// Load returns the persisted document, or the bootstrap default when none exists.
func (ds *DocumentService) Load() (*models.NationDocument, error) {
	data, err := os.ReadFile(ds.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.DefaultDocument(), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", models.ErrPersistence, ds.path, err)
	}
	return decodeDocument(data)
}

// Save writes the entire document, replacing the persisted copy atomically.
func (ds *DocumentService) Save(doc *models.NationDocument) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: encoding document: %v", models.ErrPersistence, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	unlock, err := lockFile(ds.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: locking %s: %v", models.ErrPersistence, ds.path, err)
	}
	defer unlock()

	if err := writeFileAtomic(ds.path, data); err != nil {
		ds.logger.Error("Failed to persist nation document", "path", ds.path, "error", err)
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

// Reset deletes the persisted copy. Absence is not an error.
func (ds *DocumentService) Reset() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	unlock, err := lockFile(ds.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: locking %s: %v", models.ErrPersistence, ds.path, err)
	}
	defer unlock()

	if err := os.Remove(ds.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %v", models.ErrPersistence, ds.path, err)
	}
	ds.logger.Info("Nation document reset", "path", ds.path)
	return nil
}

// Backup copies the persisted document into the backup directory.
func (ds *DocumentService) Backup() (string, error) {
	if ds.backupDir == "" {
		return "", fmt.Errorf("backup directory is not configured")
	}

	ds.mu.Lock()
	data, err := os.ReadFile(ds.path)
	ds.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNothingToBackup
		}
		return "", fmt.Errorf("%w: reading %s: %v", models.ErrPersistence, ds.path, err)
	}

	if err := os.MkdirAll(ds.backupDir, 0755); err != nil {
		return "", fmt.Errorf("could not create backup directory %s: %w", ds.backupDir, err)
	}
	timestamp := utils.GetUTCTime().Format("2006-01-02_15-04-05.000")
	backupPath := filepath.Join(ds.backupDir, fmt.Sprintf("nation_backup_%s.json", timestamp))

	ds.logger.Info("Starting document backup", "destination", backupPath)
	if err := writeFileAtomic(backupPath, data); err != nil {
		return "", fmt.Errorf("%w: writing backup: %v", models.ErrPersistence, err)
	}
	return backupPath, nil
}

func decodeDocument(data []byte) (*models.NationDocument, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty document", models.ErrCorruptDocument)
	}
	var doc models.NationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptDocument, err)
	}
	return &doc, nil
}

// encodeDocument pretty-prints with two-space indentation and keeps non-ASCII text raw.
func encodeDocument(doc *models.NationDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes to a temp file in the target directory, syncs it and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
