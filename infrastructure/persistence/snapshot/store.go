package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	pkgerrors "canvas-backend/pkg/errors"
)

// FileStore persists snapshots as JSON documents, one file per
// workspace, under a single directory
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates the store directory if needed
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.NewInternalError("failed to create snapshot directory").WithCause(err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Save writes the snapshot atomically: a temp file in the same
// directory is renamed over the target, so readers never observe a
// partial document
func (fs *FileStore) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode snapshot").WithCause(err)
	}

	target := fs.path(snap.ID)
	tmp, err := os.CreateTemp(fs.dir, "snapshot-*.tmp")
	if err != nil {
		return pkgerrors.NewInternalError("failed to create temp snapshot").WithCause(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return pkgerrors.NewInternalError("failed to write snapshot").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return pkgerrors.NewInternalError("failed to close snapshot").WithCause(err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return pkgerrors.NewInternalError("failed to replace snapshot").WithCause(err)
	}

	fs.logger.Info("snapshot saved",
		zap.String("workspace", snap.ID),
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("edges", len(snap.Edges)),
	)
	return nil
}

// Load reads and decodes the snapshot for the given workspace id
func (fs *FileStore) Load(id string) (*Snapshot, error) {
	data, err := os.ReadFile(fs.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.NewNotFoundError("snapshot")
		}
		return nil, pkgerrors.NewInternalError("failed to read snapshot").WithCause(err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, pkgerrors.NewValidationError("malformed snapshot document").WithCause(err)
	}
	return &snap, nil
}

// Delete removes a stored snapshot. Missing files are not an error.
func (fs *FileStore) Delete(id string) error {
	err := os.Remove(fs.path(id))
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.NewInternalError("failed to delete snapshot").WithCause(err)
	}
	return nil
}

// List returns the workspace ids with a stored snapshot
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to list snapshots").WithCause(err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.dir, sanitize(id)+".json")
}

// sanitize keeps snapshot filenames inside the store directory
func sanitize(id string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return replacer.Replace(id)
}
