package cache

import (
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func newBackend(disk *Disk, h *http.Client, userAgent string) *backend {
	if h == nil {
		h = &http.Client{}
	}

	return &backend{
		disk:      disk,
		http:      h,
		userAgent: userAgent,
	}
}

// backend resolves asset bytes from the disk cache, falling back to the network
type backend struct {
	disk      *Disk
	http      *http.Client
	userAgent string
}

// Fetch returns the bytes of an asset.
// Disk errors never fail the fetch, they are logged and the network is used instead.
func (b *backend) Fetch(a Asset) ([]byte, error) {
	logger := log.WithField("asset", a.ID)

	if b.disk != nil {
		data, err := b.disk.Read(a.ID)
		if err == nil {
			logger.Debug("disk cache hit")
			return data, nil
		}
		if err != ErrEntryNotFound {
			logger.WithError(err).Warn("failed to read disk cache")
		}
	}

	data, err := b.download(a.URL)
	if err != nil {
		return nil, err
	}

	if b.disk != nil {
		err = b.disk.Write(a.ID, data)
		if err != nil {
			logger.WithError(err).Warn("failed to write disk cache")
		}
	}

	return data, nil
}

func (b *backend) download(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create asset request")
	}
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}

	res, err := b.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "asset request failed")
	}
	defer res.Body.Close()

	return readResponse(res)
}
