package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pinchcursor/internal/app"
	"github.com/ayusman/pinchcursor/internal/capture"
	"github.com/ayusman/pinchcursor/internal/config"
	"github.com/ayusman/pinchcursor/internal/detector"
	"github.com/ayusman/pinchcursor/internal/mailbox"
	"github.com/ayusman/pinchcursor/internal/plugin"
	"github.com/ayusman/pinchcursor/internal/pointer"
	"github.com/ayusman/pinchcursor/internal/render"
	"github.com/ayusman/pinchcursor/internal/server"
	"github.com/ayusman/pinchcursor/internal/store"
	"github.com/ayusman/pinchcursor/internal/tracker"
	"github.com/ayusman/pinchcursor/internal/tray"
)

// rectsFlag collects -target x,y,w,h rectangles.
type rectsFlag []image.Rectangle

func (r *rectsFlag) String() string {
	parts := make([]string, 0, len(*r))
	for _, rect := range *r {
		parts = append(parts, rect.String())
	}
	return strings.Join(parts, " ")
}

func (r *rectsFlag) Set(v string) error {
	rect, err := parseRect(v)
	if err != nil {
		return err
	}
	*r = append(*r, rect)
	return nil
}

func parseRect(v string) (image.Rectangle, error) {
	fields := strings.Split(v, ",")
	if len(fields) != 4 {
		return image.Rectangle{}, fmt.Errorf("want x,y,w,h, got %q", v)
	}
	var n [4]int
	for i, f := range fields {
		x, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("bad number %q in %q", f, v)
		}
		n[i] = x
	}
	if n[2] <= 0 || n[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("empty rectangle %q", v)
	}
	return image.Rect(n[0], n[1], n[0]+n[2], n[1]+n[3]), nil
}

// centreTarget is the answer region used when no -target is given.
func centreTarget(cfg config.Config) image.Rectangle {
	c := image.Pt(cfg.DisplayWidth/2, cfg.DisplayHeight/2)
	return image.Rect(c.X-200, c.Y-200, c.X+200, c.Y+200)
}

func main() {
	var (
		configPath = flag.String("config", "", "JSON config file")
		cameraID   = flag.Int("camera", 0, "camera device id")
		dbPath     = flag.String("db", "", "selection history database (default ~/.pinchcursor/pinchcursor.db)")
		listenAddr = flag.String("listen", "", "debug server address (empty string disables)")
		pluginDir  = flag.String("plugins", "", "selection hook directory (default ~/.pinchcursor/plugins)")
		debug      = flag.Bool("debug", false, "publish the annotated camera preview")
		useTray    = flag.Bool("tray", false, "show the system tray menu instead of the cursor window")
		windowed   = flag.Bool("windowed", false, "do not go fullscreen")
		targets    rectsFlag
	)
	flag.Var(&targets, "target", "correct answer region x,y,w,h (repeatable)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Flags override the file only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.CameraID = *cameraID
		case "db":
			cfg.DBPath = *dbPath
		case "listen":
			cfg.ListenAddr = *listenAddr
		case "plugins":
			cfg.PluginDir = *pluginDir
		case "debug":
			cfg.Debug = *debug
		case "tray":
			cfg.Tray = *useTray
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dataDir, err := dataDir()
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, "pinchcursor.db")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(dataDir, "plugins")
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	sessionID := uuid.NewString()
	session := &store.Session{
		ID:            sessionID,
		DisplayWidth:  cfg.DisplayWidth,
		DisplayHeight: cfg.DisplayHeight,
		Style:         cfg.Style.String(),
	}
	if err := st.Sessions().Create(session); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	log.Printf("Session %s started", sessionID)
	defer func() {
		if err := st.Sessions().End(sessionID, time.Now()); err != nil {
			log.Printf("Failed to end session: %v", err)
		}
		log.Printf("Session %s ended", sessionID)
	}()

	manager := plugin.NewManager(cfg.PluginDir)
	if err := manager.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	log.Printf("Loaded %d selection hooks from %s", len(manager.List()), cfg.PluginDir)

	enabled := st.Settings().GetBool(store.SettingTrackingEnabled, true)

	sinks := []app.Sink{
		app.NewHistorySink(st),
		plugin.NewHooks(manager, plugin.NewExecutor(cfg.PluginTimeout)),
	}
	var tr *tray.Tray
	if cfg.Tray {
		tr = tray.New(enabled)
		sinks = append(sinks, tr)
	}
	dispatcher := app.NewDispatcher(cfg.EventQueue, sinks...)
	defer dispatcher.Close()

	if len(targets) == 0 {
		targets = rectsFlag{centreTarget(cfg)}
	}

	samples := mailbox.New[pointer.Sample]()
	core, err := app.New(cfg, samples, app.RegionJudge(targets),
		app.WithSession(sessionID),
		app.WithDispatcher(dispatcher),
	)
	if err != nil {
		log.Fatalf("Failed to build cursor: %v", err)
	}

	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(cfg.Detector()); err != nil {
		log.Printf("Hand detector unavailable, cursor will not move: %v", err)
		det = detector.NewMockDetector()
	} else {
		det = mp
	}
	defer det.Close()

	trk := tracker.New(cfg.Tracker(), capture.NewCamera(cfg.Camera()), det, samples)
	trk.SetEnabled(enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := trk.Run(ctx); err != nil {
			log.Printf("Tracker failed: %v", err)
		}
	}()

	var httpSrv *http.Server
	if cfg.ListenAddr != "" {
		srvCfg := server.Config{
			State:          core,
			Store:          st,
			StreamInterval: cfg.StreamInterval,
		}
		if cfg.Debug {
			srvCfg.Preview = trk.Preview()
		}
		httpSrv = server.New(srvCfg).HTTPServer(cfg.ListenAddr)
		go func() {
			log.Printf("Debug server on http://%s", cfg.ListenAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	runDisplay := func() {
		display, closeDisplay := openDisplay(cfg, !*windowed)
		defer closeDisplay()
		if err := core.Run(ctx, display); err != nil {
			log.Printf("Display loop failed: %v", err)
		}
		stop()
	}

	if tr != nil {
		tr.OnToggle(func(on bool) {
			trk.SetEnabled(on)
			if err := st.Settings().SetBool(store.SettingTrackingEnabled, on); err != nil {
				log.Printf("Failed to save tracking state: %v", err)
			}
		})
		tr.OnQuit(stop)
		if httpSrv == nil {
			log.Println("Tray mode has no cursor window and the debug server is disabled; the cursor is not visible")
		}
		// The tray owns the main goroutine; the headless loop runs beside it.
		go func() {
			runDisplay()
			tr.Quit()
		}()
		tr.Run()
	} else {
		runDisplay()
	}

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}
	dispatcher.Close()
	stats := dispatcher.Stats()
	log.Printf("Selections handled %d, dropped %d, failed %d", stats.Handled, stats.Dropped, stats.Failed)
}

// openDisplay returns the display the tick loop draws into and its release
// function. systray and OpenCV highgui both need the main thread on macOS,
// so with the tray enabled the loop runs headless and the cursor is only
// served over /api/stream.
func openDisplay(cfg config.Config, fullscreen bool) (app.Display, func()) {
	if cfg.Tray {
		return &render.Headless{}, func() {}
	}
	win := render.NewWindow("Pinch Cursor", cfg.DisplayWidth, cfg.DisplayHeight, fullscreen)
	return win, func() {
		if err := win.Close(); err != nil {
			log.Printf("Failed to close window: %v", err)
		}
	}
}

// dataDir returns ~/.pinchcursor, creating it if needed.
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".pinchcursor")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
