package cache

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chrisvdg/peeps/channels"
	"github.com/chrisvdg/peeps/lanes"
	"github.com/chrisvdg/peeps/texture"
	log "github.com/sirupsen/logrus"
)

// Spawner runs jobs off the calling goroutine
type Spawner interface {
	SpawnData(job lanes.Job)
}

// Fetcher resolves the bytes of an asset, it may block
type Fetcher interface {
	Fetch(a Asset) ([]byte, error)
}

// Config represents an asset cache configuration
type Config struct {
	// Dir is the disk byte cache directory, empty disables the disk cache
	Dir string
	// MaxDiskEntries bounds the amount of files kept in Dir
	MaxDiskEntries int
	// MaxEdge bounds the longest edge of decoded textures (0 keeps the original size)
	MaxEdge uint
	// UserAgent is sent with asset downloads
	UserAgent string
	// Timeout bounds a single asset download
	Timeout time.Duration
}

// New returns a new asset cache fetching from the disk cache then the network
// A disk cache that can't be opened is logged and skipped
func New(c *Config, spawner Spawner, images *channels.Queue[channels.ImageMsg]) *Cache {
	var disk *Disk
	if c.Dir != "" {
		var err error
		disk, err = OpenDisk(c.Dir, c.MaxDiskEntries)
		if err != nil {
			log.WithError(err).Warn("disk cache disabled")
			disk = nil
		}
	}
	h := &http.Client{Timeout: c.Timeout}

	return NewWithFetcher(newBackend(disk, h, c.UserAgent), spawner, images, c.MaxEdge)
}

// NewWithFetcher returns a new asset cache using the provided fetcher
func NewWithFetcher(f Fetcher, spawner Spawner, images *channels.Queue[channels.ImageMsg], maxEdge uint) *Cache {
	return &Cache{
		spawner:  spawner,
		fetcher:  f,
		images:   images,
		maxEdge:  maxEdge,
		m:        &sync.RWMutex{},
		ready:    make(map[string]*texture.Texture),
		inFlight: newIDSet(),
		used:     newIDSet(),
	}
}

// Cache represents the decoded texture cache.
// Get, Complete and Sweep are meant for the UI goroutine but every
// collection is guarded so fetch jobs finishing elsewhere are safe.
type Cache struct {
	spawner Spawner
	fetcher Fetcher
	images  *channels.Queue[channels.ImageMsg]
	maxEdge uint

	m        *sync.RWMutex
	ready    map[string]*texture.Texture
	inFlight *idSet
	used     *idSet

	hits    uint64
	misses  uint64
	fetches uint64
	evicted uint64
}

// Get returns the texture of an asset if it's ready.
// On a miss a fetch job is spawned unless one is already in flight for the asset.
func (c *Cache) Get(a Asset) (*texture.Texture, bool) {
	if a.ID == "" {
		return nil, false
	}
	c.used.Insert(a.ID)

	if t, ok := c.Peek(a.ID); ok {
		atomic.AddUint64(&c.hits, 1)
		return t, true
	}
	atomic.AddUint64(&c.misses, 1)

	if !c.inFlight.Insert(a.ID) {
		return nil, false
	}
	atomic.AddUint64(&c.fetches, 1)
	log.WithField("asset", a.ID).Debug("fetching asset")
	c.spawner.SpawnData(func() {
		c.images.Send(c.load(a))
	})

	return nil, false
}

// Peek returns a ready texture without marking it as used or fetching it
func (c *Cache) Peek(id string) (*texture.Texture, bool) {
	c.m.RLock()
	defer c.m.RUnlock()

	t, ok := c.ready[id]
	return t, ok
}

// Complete applies a finished fetch.
// A failed fetch leaves the asset absent so the next Get tries again.
func (c *Cache) Complete(msg channels.ImageMsg) {
	if msg.Texture != nil {
		c.m.Lock()
		c.ready[msg.ID] = msg.Texture
		c.m.Unlock()
	}
	c.inFlight.Remove(msg.ID)
}

// Reconcile applies every finished fetch and returns how many there were
func (c *Cache) Reconcile() int {
	msgs := c.images.Drain()
	for _, msg := range msgs {
		c.Complete(msg)
	}

	return len(msgs)
}

// State returns the cache state of an asset
func (c *Cache) State(id string) State {
	if _, ok := c.Peek(id); ok {
		return StateReady
	}
	if c.inFlight.Contains(id) {
		return StateInFlight
	}

	return StateAbsent
}

// Stats represents cache counters
type Stats struct {
	Ready    int    `json:"ready"`
	InFlight int    `json:"inFlight"`
	Used     int    `json:"used"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Fetches  uint64 `json:"fetches"`
	Evicted  uint64 `json:"evicted"`
}

// Stats returns the current cache counters
func (c *Cache) Stats() Stats {
	c.m.RLock()
	ready := len(c.ready)
	c.m.RUnlock()

	return Stats{
		Ready:    ready,
		InFlight: c.inFlight.Len(),
		Used:     c.used.Len(),
		Hits:     atomic.LoadUint64(&c.hits),
		Misses:   atomic.LoadUint64(&c.misses),
		Fetches:  atomic.LoadUint64(&c.fetches),
		Evicted:  atomic.LoadUint64(&c.evicted),
	}
}

// load fetches, decodes and converts an asset, it runs on a lane worker
func (c *Cache) load(a Asset) channels.ImageMsg {
	msg := channels.ImageMsg{ID: a.ID}
	logger := log.WithField("asset", a.ID)

	data, err := c.fetcher.Fetch(a)
	if err != nil {
		logger.WithError(err).Warn("failed to fetch image")
		return msg
	}
	img, err := decode(data)
	if err != nil {
		logger.WithError(err).Warn("failed to decode image")
		return msg
	}
	msg.Texture = texture.FromImage(a.ID, img, c.maxEdge)

	return msg
}

func newIDSet() *idSet {
	return &idSet{
		ids: make(map[string]struct{}),
		m:   &sync.Mutex{},
	}
}

// idSet represents a set of asset ids safe for concurrent use
type idSet struct {
	ids map[string]struct{}
	m   *sync.Mutex
}

// Insert adds an id and returns false if it was already present
func (s *idSet) Insert(id string) bool {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}

	return true
}

func (s *idSet) Remove(id string) {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.ids, id)
}

func (s *idSet) Contains(id string) bool {
	s.m.Lock()
	defer s.m.Unlock()

	_, ok := s.ids[id]
	return ok
}

func (s *idSet) Len() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.ids)
}

// Take returns the current ids and replaces them with an empty set
func (s *idSet) Take() map[string]struct{} {
	s.m.Lock()
	defer s.m.Unlock()

	ids := s.ids
	s.ids = make(map[string]struct{})

	return ids
}
