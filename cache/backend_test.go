package cache

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssetServer(t *testing.T, body []byte) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		if req.URL.Path == "/missing.png" {
			res.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "peeps-test", req.Header.Get("User-Agent"))
		res.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func TestFetchUsesDiskAfterFirstDownload(t *testing.T) {
	assert := assert.New(t)
	body := pngBytes(t, 2, 2)
	srv, hits := newAssetServer(t, body)
	disk, err := OpenDisk(t.TempDir(), 10)
	require.NoError(t, err)
	b := newBackend(disk, srv.Client(), "peeps-test")
	a := Asset{ID: "avatar.png", URL: srv.URL + "/avatar.png"}

	data, err := b.Fetch(a)
	require.NoError(t, err)
	assert.Equal(body, data)
	assert.Equal(int32(1), atomic.LoadInt32(hits))

	data, err = b.Fetch(a)
	require.NoError(t, err)
	assert.Equal(body, data)
	assert.Equal(int32(1), atomic.LoadInt32(hits))
}

func TestFetchNotFound(t *testing.T) {
	srv, _ := newAssetServer(t, nil)
	b := newBackend(nil, srv.Client(), "peeps-test")

	_, err := b.Fetch(Asset{ID: "missing.png", URL: srv.URL + "/missing.png"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchIgnoresDiskWriteFailure(t *testing.T) {
	assert := assert.New(t)
	body := pngBytes(t, 2, 2)
	srv, hits := newAssetServer(t, body)
	dir := t.TempDir()
	disk, err := OpenDisk(dir, 10)
	require.NoError(t, err)
	b := newBackend(disk, srv.Client(), "peeps-test")

	// the final name is taken by a directory so the rename fails
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blocked.png"), dirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocked.png", "x"), nil, filePerm))

	data, err := b.Fetch(Asset{ID: "blocked.png", URL: srv.URL + "/blocked.png"})
	assert.NoError(err)
	assert.Equal(body, data)

	_, err = b.Fetch(Asset{ID: "blocked.png", URL: srv.URL + "/blocked.png"})
	assert.NoError(err)
	assert.Equal(int32(2), atomic.LoadInt32(hits))
}

func TestCacheEndToEnd(t *testing.T) {
	assert := assert.New(t)
	srv, hits := newAssetServer(t, pngBytes(t, 300, 150))
	s := &manualSpawner{}
	c := New(&Config{Dir: t.TempDir(), MaxEdge: 100, UserAgent: "peeps-test"}, s, newImageQueue())
	a := Asset{ID: "thumb.png", URL: srv.URL + "/thumb.png"}
	c.fetcher.(*backend).http = srv.Client()

	_, ok := c.Get(a)
	assert.False(ok)
	s.runAll()
	c.Reconcile()

	tex, ok := c.Get(a)
	require.True(t, ok)
	assert.Equal(100, tex.Width())
	assert.Equal(50, tex.Height())
	assert.Equal(int32(1), atomic.LoadInt32(hits))
}
