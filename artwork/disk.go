package artwork

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const tempPrefix = ".tmp-"

// DiskStore keeps one encoded artifact per key in a single directory.
// Writes go to a temporary file first and are renamed into place, so a
// reader never observes a partially written artifact.
type DiskStore struct {
	mu sync.Mutex
	fs billy.Filesystem
}

// Artifact describes one stored file.
type Artifact struct {
	Name    string
	Key     Key
	HasKey  bool
	Size    int64
	ModTime time.Time
}

func NewDiskStore(fs billy.Filesystem) *DiskStore {
	return &DiskStore{fs: fs}
}

// OpenDiskStore creates dir if needed and returns a store rooted at it.
func OpenDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return NewDiskStore(osfs.New(dir)), nil
}

// Get returns the artifact bytes for key. Any failure reads as absence.
func (d *DiskStore) Get(key Key) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := util.ReadFile(d.fs, key.FileName())
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Put atomically replaces the artifact for key with data.
func (d *DiskStore) Put(key Key, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to store empty artifact for %s", key)
	}
	name := key.FileName()
	tmp, err := tempName(name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = d.fs.Remove(tmp)
		return fmt.Errorf("failed to write temp file: %w", errors.Join(werr, cerr))
	}
	if err := d.fs.Rename(tmp, name); err != nil {
		_ = d.fs.Remove(tmp)
		return fmt.Errorf("failed to rename temp file to %q: %w", name, err)
	}
	return nil
}

// Delete removes the artifact for key. Deleting an absent key is not an error.
func (d *DiskStore) Delete(key Key) error {
	return d.Remove(key.FileName())
}

// Remove deletes a stored file by name.
func (d *DiskStore) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %q: %w", name, err)
	}
	return nil
}

// Read returns a stored file by name, as listed by List.
func (d *DiskStore) Read(name string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return util.ReadFile(d.fs, name)
}

// List returns every artifact in the store. Leftover temp files are skipped.
func (d *DiskStore) List() ([]Artifact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	infos, err := d.fs.ReadDir(".")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") || !strings.HasSuffix(info.Name(), artifactExt) {
			continue
		}
		a := Artifact{
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		a.Key, a.HasKey = keyFromFileName(info.Name())
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// Purge removes every artifact and returns how many were removed.
func (d *DiskStore) Purge() (int, error) {
	artifacts, err := d.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, a := range artifacts {
		if err := d.Remove(a.Name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func tempName(name string) (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate temp name: %w", err)
	}
	return tempPrefix + hex.EncodeToString(b[:]) + "-" + name, nil
}
