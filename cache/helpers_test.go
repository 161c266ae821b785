package cache

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/chrisvdg/peeps/channels"
	"github.com/chrisvdg/peeps/lanes"
	"github.com/pkg/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

// manualSpawner queues jobs until runAll is called
type manualSpawner struct {
	m       sync.Mutex
	jobs    []lanes.Job
	spawned int
}

func (s *manualSpawner) SpawnData(job lanes.Job) {
	s.m.Lock()
	defer s.m.Unlock()
	s.jobs = append(s.jobs, job)
	s.spawned++
}

func (s *manualSpawner) runAll() {
	s.m.Lock()
	jobs := s.jobs
	s.jobs = nil
	s.m.Unlock()

	for _, job := range jobs {
		job()
	}
}

func (s *manualSpawner) count() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.spawned
}

// fakeFetcher serves a PNG for every asset unless told to fail
type fakeFetcher struct {
	m     sync.Mutex
	data  []byte
	calls map[string]int
	fail  map[string]bool
}

func newFakeFetcher(t *testing.T) *fakeFetcher {
	return &fakeFetcher{
		data:  pngBytes(t, 8, 8),
		calls: map[string]int{},
		fail:  map[string]bool{},
	}
}

func (f *fakeFetcher) Fetch(a Asset) ([]byte, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls[a.ID]++
	if f.fail[a.ID] {
		return nil, errors.New("non-200 status: 404")
	}

	return f.data, nil
}

func (f *fakeFetcher) callCount(id string) int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.calls[id]
}

func (f *fakeFetcher) setFail(id string, fail bool) {
	f.m.Lock()
	defer f.m.Unlock()
	f.fail[id] = fail
}

func newTestCache(t *testing.T) (*Cache, *manualSpawner, *fakeFetcher) {
	s := &manualSpawner{}
	f := newFakeFetcher(t)
	c := NewWithFetcher(f, s, channels.NewQueue[channels.ImageMsg](), 0)

	return c, s, f
}

func asset(id string) Asset {
	return Asset{ID: id, URL: "https://assets.example.com/" + id}
}

func newImageQueue() *channels.Queue[channels.ImageMsg] {
	return channels.NewQueue[channels.ImageMsg]()
}
