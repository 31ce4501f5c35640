package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scourhq/scour/internal/types"
)

// Snapshot file names under the state directory.
const (
	visitedFile = "visited_urls.json"
	hashesFile  = "content_hashes.json"
	storeFile   = "content_store.json"
)

// Snapshotter persists crawl state as three JSON files under a state
// directory. Each file is written to a temp path and renamed, so a crash
// mid-save never leaves a torn file behind.
type Snapshotter struct {
	dir string
}

// NewSnapshotter creates a snapshotter rooted at dir.
func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{dir: dir}
}

// Save writes the visited set, the content-hash set, and the document
// store to disk.
func (p *Snapshotter) Save(visited, hashes []string, docs []types.Document) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("create state dir: %w", err)}
	}
	if visited == nil {
		visited = []string{}
	}
	if hashes == nil {
		hashes = []string{}
	}
	if docs == nil {
		docs = []types.Document{}
	}

	if err := p.writeJSON(visitedFile, visited); err != nil {
		return err
	}
	if err := p.writeJSON(hashesFile, hashes); err != nil {
		return err
	}
	return p.writeJSON(storeFile, docs)
}

// Load reads the three snapshot files. A missing state directory or a
// fully absent snapshot yields empty state with no error. Any read or
// decode failure also yields empty state, with the error returned so
// the caller can log it; partial state is never returned.
func (p *Snapshotter) Load() (visited, hashes []string, docs []types.Document, err error) {
	if _, statErr := os.Stat(filepath.Join(p.dir, storeFile)); os.IsNotExist(statErr) {
		return nil, nil, nil, nil
	}

	if err = p.readJSON(visitedFile, &visited); err != nil {
		return nil, nil, nil, err
	}
	if err = p.readJSON(hashesFile, &hashes); err != nil {
		return nil, nil, nil, err
	}
	if err = p.readJSON(storeFile, &docs); err != nil {
		return nil, nil, nil, err
	}
	return visited, hashes, docs, nil
}

func (p *Snapshotter) writeJSON(name string, v any) error {
	tmpPath := filepath.Join(p.dir, name+".tmp")
	finalPath := filepath.Join(p.dir, name)

	f, err := os.Create(tmpPath)
	if err != nil {
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("create %s: %w", name, err)}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("encode %s: %w", name, err)}
	}
	if err := f.Close(); err != nil {
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("close %s: %w", name, err)}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("rename %s: %w", name, err)}
	}
	return nil
}

func (p *Snapshotter) readJSON(name string, v any) error {
	f, err := os.Open(filepath.Join(p.dir, name))
	if err != nil {
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("open %s: %w", name, err)}
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &types.StoreError{Backend: "snapshot", Err: fmt.Errorf("decode %s: %w", name, err)}
	}
	return nil
}
