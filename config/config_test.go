package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/triecache/triecache"
)

func TestLoadHuJSONWithComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.hujson")
	body := `{
  // bound the cache to 1000 keys
  "maxKeys": 1000,
  "maxBytes": 0,
  "maxBuckets": 8,
  "reindexScatter": 16,
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	f, err := Load(path)
	require.NoError(t, err)

	want := triecache.Options{MaxKeys: 1000, MaxBuckets: 8, ReindexScatter: 16}
	if diff := cmp.Diff(want, f.Options()); diff != "" {
		t.Fatalf("Options() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hujson"))
	require.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")

	stats := triecache.Stats{NumKeys: 3, DataSize: 42}
	require.NoError(t, Snapshot(path, stats))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(body), `"numKeys": 3`)
}
