package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/app"
	"github.com/chrisvdg/peeps/cache"
	"github.com/chrisvdg/peeps/channels"
	"github.com/chrisvdg/peeps/lanes"
	"github.com/chrisvdg/peeps/server"
	"github.com/chrisvdg/peeps/tui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	appName   = "neos-peeps"
	userAgent = "NeosPeeps/0.1"
)

func main() {
	listenAddr := pflag.StringP("listenaddr", "l", "", "inspection server http listen address (disabled when empty)")
	tlsListenAddr := pflag.StringP("tlsaddr", "t", "", "inspection server https listen address")
	tlsKey := pflag.StringP("tlskey", "k", "", "TLS private key file path")
	tlsCert := pflag.StringP("tlscert", "c", "", "TLS certificate file path")
	tlsOnly := pflag.BoolP("tlsonly", "s", false, "Only serve TLS")
	verbose := pflag.BoolP("verbose", "v", false, "Verbose output")
	headless := pflag.Bool("headless", false, "Run without the terminal UI, resuming the stored user session")
	logFile := pflag.String("logfile", defaultPath(os.UserCacheDir, "peeps.log"), "log file used while the terminal UI runs")
	prefsFile := pflag.StringP("prefs", "p", defaultPath(os.UserConfigDir, "prefs.yaml"), "preferences file path")
	cacheDir := pflag.String("cachedir", defaultPath(os.UserCacheDir, "assets"), "asset disk cache dir (disabled when empty)")
	cacheEntries := pflag.Int("cacheentries", cache.DefaultMaxDiskEntries, "maximum amount of files in the asset disk cache")
	maxEdge := pflag.Uint("maxedge", 256, "longest edge of decoded images in pixels (0 keeps the original size)")
	apiURL := pflag.String("apiurl", api.DefaultBaseURL, "service API base URL")
	assetURL := pflag.String("asseturl", cache.DefaultAssetBaseURL, "asset base URL")
	dataWorkers := pflag.Int("workers", 0, "amount of parallel data workers (0 uses the CPU count)")
	frameInterval := pflag.Duration("frame", tui.DefaultFrameInterval, "interval between frames")
	refresh := pflag.Duration("refresh", 0, "refresh frequency, overrides the preferences when set")
	assetTimeout := pflag.Duration("assettimeout", 30*time.Second, "asset download timeout")
	loadingTimeout := pflag.Duration("loadingtimeout", 0, "clear loading indicators without a result after this long (0 waits forever)")
	messageLimit := pflag.Int("messages", app.DefaultMessageLimit, "amount of messages fetched per refresh")
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if !*headless {
		f, err := openLogFile(*logFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	setFormatter()

	prefs, err := app.LoadPreferences(*prefsFile)
	if err != nil {
		log.Fatal(err)
	}
	if *refresh > 0 {
		prefs.RefreshFrequency = *refresh
	}

	client, err := api.NewHTTPClient(*apiURL, userAgent)
	if err != nil {
		log.Fatal(err)
	}

	l := lanes.New(*dataWorkers)
	defer l.Close()
	ch := channels.NewSet()
	assets := cache.New(&cache.Config{
		Dir:            *cacheDir,
		MaxDiskEntries: *cacheEntries,
		MaxEdge:        *maxEdge,
		UserAgent:      userAgent,
		Timeout:        *assetTimeout,
	}, l, ch.Images)

	a := app.New(&app.Config{
		AssetBaseURL:   *assetURL,
		MessageLimit:   *messageLimit,
		LoadingTimeout: *loadingTimeout,
	}, l, ch, assets, client, prefs)
	defer a.SavePreferences()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sc := &server.Config{
		ListenAddr:    *listenAddr,
		TLSListenAddr: *tlsListenAddr,
		TLSOnly:       *tlsOnly,
		TLS: &server.TLSConfig{
			KeyFile:  *tlsKey,
			CertFile: *tlsCert,
		},
	}
	if sc.Enabled() {
		s, err := server.New(sc, a, assets, l)
		if err != nil {
			log.Fatal(err)
		}
		go s.ListenAndServe(ctx)
	}

	a.Start()

	if *headless {
		runHeadless(ctx, a, *frameInterval)
		return
	}

	p := tea.NewProgram(tui.NewModel(a, &tui.Config{FrameInterval: *frameInterval}), tea.WithAltScreen(), tea.WithContext(ctx))
	a.SetRepainter(tui.Repainter(p))
	_, err = p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.WithError(err).Error("terminal UI stopped")
	}
}

// runHeadless runs the frames without drawing them until ctx is done
func runHeadless(ctx context.Context, a *app.App, interval time.Duration) {
	if a.Preferences().UserSession == nil {
		log.Warn("No stored user session, only unauthenticated state is available")
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			a.Reconcile()
			a.Tick(now)
		}
	}
}

// setFormatter uses colored text when logging to a terminal and JSON otherwise
func setFormatter() {
	f, ok := log.StandardLogger().Out.(*os.File)
	if ok && isatty.IsTerminal(f.Fd()) {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		return
	}
	log.SetFormatter(&log.JSONFormatter{})
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		path = os.DevNull
	}
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create log dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}

	return f, nil
}

func defaultPath(base func() (string, error), name string) string {
	dir, err := base()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, appName, name)
}
