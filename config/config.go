// Package config loads triecache.Options from a HuJSON (JSON-with-comments)
// file and persists Stats snapshots atomically. Neither operation touches
// cache payload bytes: only tuning parameters and observability data cross
// the filesystem boundary, leaving the cache engine itself free of any
// persistence concern.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"github.com/tailscale/hujson"

	"github.com/triecache/triecache"
)

// File is the on-disk shape of a cache config file. Zero values mean
// "use the package default" once converted to triecache.Options.
type File struct {
	MaxKeys        uint64 `json:"maxKeys"`
	MaxBytes       uint64 `json:"maxBytes"`
	MaxBuckets     int    `json:"maxBuckets"`
	ReindexScatter int    `json:"reindexScatter"`
}

// Options converts a File into triecache.Options.
func (f File) Options() triecache.Options {
	return triecache.Options{
		MaxKeys:        f.MaxKeys,
		MaxBytes:       f.MaxBytes,
		MaxBuckets:     f.MaxBuckets,
		ReindexScatter: f.ReindexScatter,
	}
}

// Load reads and parses a HuJSON config file at path.
func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.Wrapf(err, "read config %s", path)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return File{}, errors.Wrapf(err, "parse config %s", path)
	}

	var f File
	if err := json.Unmarshal(standard, &f); err != nil {
		return File{}, errors.Wrapf(err, "decode config %s", path)
	}
	return f, nil
}

// Snapshot atomically writes a triecache.Stats value to path as JSON, for
// bench-tool reporting. atomic.WriteFile writes to a temp file in the same
// directory and renames over the destination, so a crash mid-write never
// leaves a truncated snapshot.
func Snapshot(path string, stats triecache.Stats) error {
	body, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal stats snapshot")
	}
	body = append(body, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(body)); err != nil {
		return errors.Wrapf(err, "write snapshot %s", path)
	}
	return nil
}
