package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"

	"github.com/chrisvdg/peeps/app"
	"github.com/chrisvdg/peeps/cache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func newHandlers(state StateSource, assets AssetSource, backlog BacklogSource) *handlers {
	return &handlers{
		state:   state,
		assets:  assets,
		backlog: backlog,
	}
}

type handlers struct {
	state   StateSource
	assets  AssetSource
	backlog BacklogSource
}

// Status represents the body of the status endpoint
type Status struct {
	App   app.Snapshot `json:"app"`
	Cache cache.Stats  `json:"cache"`
	Lanes Backlog      `json:"lanes"`
}

// Backlog represents the queued jobs per lane
type Backlog struct {
	Data int `json:"data"`
	Auth int `json:"auth"`
}

// StatusHandler serves the app state, cache counters and lane backlog
func (h *handlers) StatusHandler(res http.ResponseWriter, req *http.Request) {
	s := Status{
		App:   h.state.Snapshot(),
		Cache: h.assets.Stats(),
	}
	s.Lanes.Data, s.Lanes.Auth = h.backlog.Pending()

	res.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(res).Encode(s)
	if err != nil {
		log.WithError(err).Error("failed to write status")
	}
}

// AssetHandler serves a decoded asset as PNG, only assets already in the cache are served
func (h *handlers) AssetHandler(res http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	t, ok := h.assets.Peek(id)
	if !ok {
		http.Error(res, "asset not loaded", http.StatusNotFound)
		return
	}

	buf := &bytes.Buffer{}
	err := png.Encode(buf, t.Image)
	if err != nil {
		log.WithError(err).WithField("asset", id).Error("failed to encode asset")
		http.Error(res, "failed to encode asset", http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "image/png")
	_, err = res.Write(buf.Bytes())
	if err != nil {
		log.WithError(err).WithField("asset", id).Debug("failed to write asset")
	}
}
