package cache

import (
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sweep evicts every ready texture that was not requested since the previous sweep.
// In flight assets are not affected. It returns the amount of evicted textures.
func (c *Cache) Sweep() int {
	used := c.used.Take()

	c.m.Lock()
	evicted := 0
	for id := range c.ready {
		if _, ok := used[id]; !ok {
			delete(c.ready, id)
			evicted++
		}
	}
	remaining := len(c.ready)
	c.m.Unlock()

	atomic.AddUint64(&c.evicted, uint64(evicted))
	log.Debugf("Swept asset cache, evicted %d, kept %d", evicted, remaining)

	return evicted
}

// cleanDir indexes the files already in the disk cache dir, oldest first,
// and deletes temporary files left behind by interrupted writes
func (d *Disk) cleanDir() error {
	log.Debug("Started indexing disk cache files")

	files, err := listFiles(d.dir)
	if err != nil {
		return errors.Wrap(err, "failed to list cache dir files")
	}
	for _, f := range files {
		if strings.HasSuffix(f.Name(), tempSuffix) {
			err = deletefile(d.dir, f.Name())
			if err != nil {
				log.Errorf("Failed to delete file %s: %s", f.Name(), err)
			}
			continue
		}
		d.index.Add(f.Name(), struct{}{})
	}

	log.Debugf("Finished indexing disk cache files, %d indexed", d.index.Len())
	return nil
}
