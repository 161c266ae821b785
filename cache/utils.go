package cache

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

const base64URLCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// generateID returns a random base64URL string of provided length
// Not guaranteed to be unique
func generateID(length int) string {
	r := make([]byte, length)
	for i := range r {
		r[i] = base64URLCharset[rand.Intn(len(base64URLCharset))]
	}

	return string(r)
}

// listFiles returns the regular files of dir, oldest modification first
func listFiles(dir string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read dir")
	}

	files := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime().Before(files[j].ModTime())
	})

	return files, nil
}

// deletefile removes a file from dir
func deletefile(dir, name string) error {
	err := os.Remove(filepath.Join(dir, name))
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", name)
	}

	return nil
}
