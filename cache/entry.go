package cache

import (
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// State represents the cache state of an asset
type State string

const (
	// StateAbsent represents an asset that is neither loaded nor being loaded
	StateAbsent State = "absent"
	// StateInFlight represents an asset a fetch job is loading
	StateInFlight State = "in flight"
	// StateReady represents an asset with a decoded texture
	StateReady State = "ready"
)

// DefaultAssetBaseURL is where neosdb asset signatures are resolved
const DefaultAssetBaseURL = "https://assets.neos.com/assets/"

// Asset represents a remote image
type Asset struct {
	// ID is the filename component of the asset URL, it is the cache key and disk file name
	ID string
	// URL is where the asset can be downloaded from
	URL string
}

// ParseAsset parses an asset URL
// neosdb:///<signature>.<ext> URLs are resolved against assetBase, http(s) URLs are used as is
func ParseAsset(raw, assetBase string) (Asset, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Asset{}, errors.Wrap(err, "failed to parse asset URL")
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return Asset{}, errors.Errorf("asset URL %q has no file name", raw)
	}

	switch u.Scheme {
	case "neosdb":
		if assetBase == "" {
			assetBase = DefaultAssetBaseURL
		}
		b, err := url.Parse(assetBase)
		if err != nil {
			return Asset{}, errors.Wrap(err, "failed to parse asset base URL")
		}
		b.Path = path.Join(b.Path, strings.TrimSuffix(name, path.Ext(name)))
		return Asset{ID: name, URL: b.String()}, nil
	case "http", "https":
		return Asset{ID: name, URL: u.String()}, nil
	default:
		return Asset{}, errors.Errorf("asset URL scheme %q not supported", u.Scheme)
	}
}
