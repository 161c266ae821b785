package server

// Config represents an inspection server config
type Config struct {
	// ListenAddr is the plain http address, empty disables it
	ListenAddr    string
	TLSListenAddr string
	TLSOnly       bool
	TLS           *TLSConfig
}

// TLSConfig represents a TLS configuration
type TLSConfig struct {
	KeyFile  string
	CertFile string
}

// Enabled returns true when the config serves on at least one address
func (c *Config) Enabled() bool {
	if c.tlsEnabled() {
		return true
	}

	return !c.TLSOnly && c.ListenAddr != ""
}

func (c *Config) tlsEnabled() bool {
	return c.TLS != nil && c.TLS.CertFile != "" && c.TLS.KeyFile != "" && c.TLSListenAddr != ""
}
