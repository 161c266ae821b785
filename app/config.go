package app

import "time"

// Config represents the app configuration
type Config struct {
	// AssetBaseURL is where neosdb asset URLs are resolved
	AssetBaseURL string
	// MessageLimit is the amount of messages fetched per refresh
	MessageLimit int
	// LoadingTimeout clears loading flags that were set longer than this ago,
	// 0 keeps them until their result arrives
	LoadingTimeout time.Duration
}

// DefaultMessageLimit is used when no message limit is configured
const DefaultMessageLimit = 100
