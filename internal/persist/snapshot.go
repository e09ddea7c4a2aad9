package persist

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const snapshotVersion = 1

// ErrSnapshotVersion is returned when a snapshot file has an unsupported version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type snapshotFile struct {
	Version int `json:"version"`
	ClaimSnapshot
}

// SnapshotStore keeps the claim state in a single zstd-compressed JSON file.
// Writes go to a temporary file that is renamed over the old one.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// LoadAll reads the snapshot. A missing file is an empty state.
func (s *SnapshotStore) LoadAll(_ context.Context) (*ClaimSnapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ClaimSnapshot{}, nil
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var file snapshotFile
	if err := json.NewDecoder(dec).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if file.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s: %w: %d", s.path, ErrSnapshotVersion, file.Version)
	}
	return &file.ClaimSnapshot, nil
}

// SaveAll writes snap atomically.
func (s *SnapshotStore) SaveAll(ctx context.Context, snap *ClaimSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := writeSnapshot(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(f *os.File, snap *ClaimSnapshot) error {
	w := bufio.NewWriter(f)
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snapshotFile{Version: snapshotVersion, ClaimSnapshot: *snap}); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish zstd: %w", err)
	}
	return w.Flush()
}
