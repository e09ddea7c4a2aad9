package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStoreMissingFileIsEmpty(t *testing.T) {
	s := NewSnapshotStore(filepath.Join(t.TempDir(), "claims.json.zst"))
	snap, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Claims)
	assert.Empty(t, snap.Outposts)
	assert.Empty(t, snap.Quotas)
}

func TestSnapshotStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "claims.json.zst")
	s := NewSnapshotStore(path)
	want := &ClaimSnapshot{
		Claims:   []ClaimRow{{World: "overworld", X: 1, Z: -2, GuildID: 3}},
		Outposts: []OutpostRow{{GuildID: 3, World: "overworld", X: 1, Z: -2}},
		Quotas:   []QuotaRow{{GuildID: 3, Allowance: 2, Founded: 1}},
	}
	require.NoError(t, s.SaveAll(context.Background(), want))

	got, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Overwrite leaves no temp files behind.
	require.NoError(t, s.SaveAll(context.Background(), &ClaimSnapshot{}))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSnapshotStoreRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.json.zst")
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(enc).Encode(map[string]any{"version": 99}))
	require.NoError(t, enc.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = NewSnapshotStore(path).LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotVersion)
}

func TestSnapshotStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.json.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))
	_, err := NewSnapshotStore(path).LoadAll(context.Background())
	assert.Error(t, err)
}

func TestSnapshotStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSnapshotStore(filepath.Join(t.TempDir(), "x.zst")).SaveAll(ctx, &ClaimSnapshot{})
	assert.ErrorIs(t, err, context.Canceled)
}
