package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chrisvdg/peeps/api"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	filePerm os.FileMode = 0600
	dirPerm  os.FileMode = 0700

	// DefaultRefreshFrequency is how often friends, sessions and messages are refreshed
	DefaultRefreshFrequency = 120 * time.Second
	// minRefreshFrequency keeps a bad preferences file from hammering the service
	minRefreshFrequency = 5 * time.Second
)

// Page represents the page shown by the UI
type Page string

const (
	PagePeeps    Page = "peeps"
	PageSessions Page = "sessions"
)

// DefaultPreferences returns the preferences of a first run
func DefaultPreferences() *Preferences {
	return &Preferences{
		RefreshFrequency:  DefaultRefreshFrequency,
		Page:              PagePeeps,
		FilterFriendsOnly: true,
	}
}

// Preferences represents the state persisted between runs
type Preferences struct {
	// UserSession is re-validated at startup, nil when logged out
	UserSession       *api.UserSession `yaml:"user_session,omitempty"`
	Identifier        string           `yaml:"identifier"`
	RefreshFrequency  time.Duration    `yaml:"refresh_frequency"`
	Page              Page             `yaml:"page"`
	FilterFriendsOnly bool             `yaml:"filter_friends_only"`
	FilterSearch      string           `yaml:"filter_search"`

	path string
}

// LoadPreferences reads the preferences file, a missing file returns the defaults
func LoadPreferences(path string) (*Preferences, error) {
	p := DefaultPreferences()
	p.path = path
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read preferences file")
	}
	err = yaml.Unmarshal(data, p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse preferences file")
	}
	if p.RefreshFrequency < minRefreshFrequency {
		p.RefreshFrequency = minRefreshFrequency
	}
	if p.Page != PageSessions {
		p.Page = PagePeeps
	}

	return p, nil
}

// Save writes the preferences file, preferences without a path are not saved
func (p *Preferences) Save() error {
	if p.path == "" {
		return nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed to marshal preferences")
	}
	err = os.MkdirAll(filepath.Dir(p.path), dirPerm)
	if err != nil {
		return errors.Wrap(err, "failed to create preferences dir")
	}
	err = os.WriteFile(p.path, data, filePerm)
	if err != nil {
		return errors.Wrap(err, "failed to write preferences file")
	}

	return nil
}

// Path returns where the preferences are saved
func (p *Preferences) Path() string {
	return p.path
}
