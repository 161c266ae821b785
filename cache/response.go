package cache

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// maxAssetSize caps how much of an asset response is read
const maxAssetSize = 15 * 1024 * 1024

// ErrAssetTooLarge represents an asset response larger than maxAssetSize
var ErrAssetTooLarge = errors.New("asset too large")

// readResponse returns the body of a successful asset response
func readResponse(res *http.Response) ([]byte, error) {
	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("non-200 status: %d", res.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxAssetSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read asset body")
	}
	if len(data) > maxAssetSize {
		return nil, ErrAssetTooLarge
	}

	return data, nil
}
