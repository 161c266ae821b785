package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	filePerm os.FileMode = 0666
	dirPerm  os.FileMode = 0700

	// tempSuffix marks files that are still being written
	tempSuffix = ".part"
	// DefaultMaxDiskEntries is used when no disk entry bound is configured
	DefaultMaxDiskEntries = 4096
)

var (
	// ErrEntryNotFound represents an error where a cache entry was not found
	ErrEntryNotFound = errors.New("cache entry not found")
)

// OpenDisk opens the disk byte cache in dir, creating it if needed
// maxEntries bounds the amount of files, the least recently used ones are deleted
func OpenDisk(dir string, maxEntries int) (*Disk, error) {
	if dir == "" {
		return nil, errors.New("cache dir not provided")
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxDiskEntries
	}
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cache dir")
	}

	d := &Disk{dir: dir}
	d.index, err = lru.NewWithEvict(maxEntries, d.onEvict)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create disk cache index")
	}
	err = d.cleanDir()
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Disk represents a directory of asset bytes keyed by file name.
// It is an accelerator only, callers treat every error as a miss.
type Disk struct {
	dir   string
	index *lru.Cache
}

// Read returns the cached bytes of a file
func (d *Disk) Read(name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		d.index.Remove(name)
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cache file %s", name)
	}
	if _, ok := d.index.Get(name); !ok {
		d.index.Add(name, struct{}{})
	}

	return data, nil
}

// Write stores the bytes of a file.
// The data is written to a temporary file first so readers never see a partial file,
// concurrent writers of the same name are last writer wins.
func (d *Disk) Write(name string, data []byte) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	tmp := filepath.Join(d.dir, fmt.Sprintf("%s_%s%s", name, generateID(10), tempSuffix))
	err = os.WriteFile(tmp, data, filePerm)
	if err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write cache file %s", name)
	}
	err = os.Rename(tmp, p)
	if err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to move cache file %s in place", name)
	}
	d.index.Add(name, struct{}{})

	return nil
}

// Len returns the amount of indexed files
func (d *Disk) Len() int {
	return d.index.Len()
}

// path returns the path of a cache file, names can't leave the cache dir
func (d *Disk) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errors.Errorf("invalid cache file name %q", name)
	}

	return filepath.Join(d.dir, name), nil
}

func (d *Disk) onEvict(key interface{}, _ interface{}) {
	name, ok := key.(string)
	if !ok {
		return
	}
	err := deletefile(d.dir, name)
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		log.Errorf("Failed to delete file %s: %s", name, err)
	}
}
